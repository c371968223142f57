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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lucasduport/stream-catalog/pkg/acquire"
	"github.com/lucasduport/stream-catalog/pkg/streamurl"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

// Config represent the server configuration
type Config struct {
	Port int
	// RelayUserAgent replaces the client User-Agent on relayed requests.
	RelayUserAgent string
	// Builder produces the stream URLs handed out by the API.
	Builder streamurl.Builder
	// Service runs acquisitions for the API. The API routes are disabled
	// when it is nil.
	Service *acquire.Service
	// Gatherer backs /metrics. Defaults to the Prometheus default registry.
	Gatherer prometheus.Gatherer
	// RelayClient performs upstream relay requests.
	RelayClient *http.Client
}

// Server hosts the proxy relay and the JSON API.
type Server struct {
	cfg    Config
	router *gin.Engine
}

// NewServer initializes a new server with all routes registered.
func NewServer(cfg Config) *Server {
	if cfg.RelayUserAgent == "" {
		cfg.RelayUserAgent = utils.RelayUserAgent
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.RelayClient == nil {
		cfg.RelayClient = newRelayClient()
	}

	s := &Server{cfg: cfg, router: gin.New()}
	s.router.Use(gin.Logger(), gin.Recovery())
	s.routes(s.router)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// newRelayClient is tuned for long-lived streams: no global timeout, the
// request context bounds each relay.
func newRelayClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     false,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	utils.InfoLog("[stream-catalog] Server is starting on port %d...", s.cfg.Port)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return utils.PrintErrorAndReturn(err)
	case <-ctx.Done():
		utils.InfoLog("[stream-catalog] Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), utils.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		return nil
	}
}
