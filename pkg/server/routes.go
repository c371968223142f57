/*
 * stream-catalog is a project to load and relay the catalog of an IPTV service.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucasduport/stream-catalog/pkg/utils"
)

// relayRoute is the relay mount point, matching streamurl.DefaultProxyPrefix.
const relayRoute = "/proxy"

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{})))

	s.relayRoutes(r.Group(relayRoute))

	if s.cfg.Service != nil {
		s.apiRoutes(r.Group("/api"))
	} else {
		utils.WarnLog("No acquisition service configured, /api routes disabled")
	}

	utils.DebugLog("Routes initialized")
}

func (s *Server) relayRoutes(r *gin.RouterGroup) {
	r.Use(requestID(), relayCORS())
	preflight := func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	}
	// "" serves /proxy?url=, /*target serves /proxy/{encoded url}.
	for _, p := range []string{"", "/*target"} {
		r.GET(p, s.relay)
		r.HEAD(p, s.relay)
		r.POST(p, s.relay)
		r.OPTIONS(p, preflight)
	}
}

func (s *Server) apiRoutes(r *gin.RouterGroup) {
	r.Use(cors.Default(), apiRecovery())
	r.POST("/acquire", s.acquireHandler)
	r.POST("/export", s.exportHandler)
	r.POST("/stream-url", s.streamURLHandler)
	// Preflights are answered by the cors middleware.
	r.OPTIONS("/*any", func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
}
