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
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/stream-catalog/pkg/acquire"
	"github.com/lucasduport/stream-catalog/pkg/playlist"
	"github.com/lucasduport/stream-catalog/pkg/streamurl"
	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

type acquireRequest struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

func (r acquireRequest) subscription() types.Subscription {
	return types.Subscription{URL: r.URL, Username: r.Username, Password: r.Password}
}

type streamURLRequest struct {
	URL       string `json:"url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
}

type causeJSON struct {
	Adapter string `json:"adapter"`
	Error   string `json:"error"`
}

type errorResponse struct {
	Error   string      `json:"error"`
	Missing []string    `json:"missing,omitempty"`
	Causes  []causeJSON `json:"causes,omitempty"`
}

// apiRecovery turns panics into a JSON 500 instead of an empty reply.
func apiRecovery() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.ErrorLog("API PANIC RECOVERED: %v\nStack trace: %s", err, debug.Stack())
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
					Error: fmt.Sprintf("Internal server error: %v", err),
				})
			}
		}()
		ctx.Next()
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(ctx *gin.Context, err error) {
	var (
		mce *types.MissingCredentialsError
		ume *streamurl.UnknownMediaTypeError
		ae  *acquire.AcquisitionError
	)
	switch {
	case errors.As(err, &mce):
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Missing: mce.Fields})
	case errors.As(err, &ume):
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &ae):
		resp := errorResponse{Error: err.Error()}
		for _, c := range ae.Causes {
			resp.Causes = append(resp.Causes, causeJSON{Adapter: c.Adapter, Error: c.Err.Error()})
		}
		ctx.JSON(http.StatusBadGateway, resp)
	case errors.Is(err, context.Canceled):
		// client went away
		ctx.Status(499)
	default:
		utils.ErrorLog("API error: %v", err)
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (s *Server) load(ctx *gin.Context) (types.Subscription, types.ContentType, *acquire.Result, bool) {
	var req acquireRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return types.Subscription{}, "", nil, false
	}
	ct, err := types.ParseContentType(req.Type)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return types.Subscription{}, "", nil, false
	}

	sub := req.subscription()
	res, err := s.cfg.Service.Load(ctx.Request.Context(), sub, ct, func(step string, percent int) {
		utils.DebugLog("Acquisition progress: %s %d%%", step, percent)
	})
	if err != nil {
		writeError(ctx, err)
		return types.Subscription{}, "", nil, false
	}
	return sub, ct, res, true
}

// acquireHandler loads a catalog and returns it as JSON.
func (s *Server) acquireHandler(ctx *gin.Context) {
	_, _, res, ok := s.load(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, res)
}

// exportHandler loads a catalog and returns it as an M3U playlist whose
// stream URLs go through the relay.
func (s *Server) exportHandler(ctx *gin.Context) {
	sub, ct, res, ok := s.load(ctx)
	if !ok {
		return
	}
	channels, err := s.cfg.Builder.Fill(sub, res.Channels, ct.MediaType())
	if err != nil {
		writeError(ctx, err)
		return
	}

	var buf bytes.Buffer
	if err := playlist.Export(&buf, channels); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, "playlist.m3u"))
	ctx.Data(http.StatusOK, "audio/x-mpegurl", buf.Bytes())
}

// streamURLHandler resolves the proxied play URL of one item.
func (s *Server) streamURLHandler(ctx *gin.Context) {
	var req streamURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	mt := types.MediaType(strings.ToLower(strings.TrimSpace(req.MediaType)))
	if ct, err := types.ParseContentType(req.MediaType); err == nil {
		mt = ct.MediaType()
	}

	u, err := s.cfg.Builder.BuildURL(types.Subscription{URL: req.URL, Username: req.Username, Password: req.Password}, req.ID, mt)
	if err != nil {
		// BuildURL does no I/O, every failure is a bad request.
		resp := errorResponse{Error: err.Error()}
		var mce *types.MissingCredentialsError
		if errors.As(err, &mce) {
			resp.Missing = mce.Fields
		}
		ctx.JSON(http.StatusBadRequest, resp)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"url": u})
}
