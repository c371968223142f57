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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"

	"github.com/lucasduport/stream-catalog/pkg/utils"
)

const relayAllowMethods = "GET, HEAD, POST, OPTIONS"

// requestID tags every relayed request so upstream failures can be matched
// with client reports.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewV4().String()
		}
		ctx.Set("request_id", id)
		ctx.Header("X-Request-Id", id)
		ctx.Next()
	}
}

// relayCORS opens the relay to any origin and echoes requested headers.
func relayCORS() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", relayAllowMethods)
		if h := ctx.GetHeader("Access-Control-Request-Headers"); h != "" {
			ctx.Header("Access-Control-Allow-Headers", h)
		} else {
			ctx.Header("Access-Control-Allow-Headers", "*")
		}
		ctx.Header("Access-Control-Expose-Headers", "*")
		ctx.Header("Access-Control-Max-Age", "86400")
		ctx.Next()
	}
}

// relayTarget extracts the upstream URL from /proxy/{urlencoded} or
// /proxy/?url=.
func relayTarget(r *http.Request) (string, error) {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), relayRoute)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "" {
		return r.URL.Query().Get("url"), nil
	}

	target, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode target: %w", err)
	}
	// Unencoded targets lose their query string to the relay URL.
	if !strings.Contains(target, "?") && r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return target, nil
}

func validateTarget(target string) (*url.URL, error) {
	if target == "" {
		return nil, errors.New("missing target url")
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("target url has no host")
	}
	return u, nil
}

// relay forwards the request upstream and streams the response back with
// its status and headers.
func (s *Server) relay(ctx *gin.Context) {
	target, err := relayTarget(ctx.Request)
	if err == nil {
		_, err = validateTarget(target)
	}
	if err != nil {
		utils.DebugLog("Relay rejected %s: %v", ctx.Request.URL.Path, err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	utils.DebugLog("-> Relay %s %s [%s]", ctx.Request.Method, utils.MaskURL(target), ctx.GetString("request_id"))

	var body io.Reader
	if ctx.Request.Method == http.MethodPost {
		body = ctx.Request.Body
	}
	// Bound to the client context so it cancels if the client disconnects.
	req, err := http.NewRequestWithContext(ctx.Request.Context(), ctx.Request.Method, target, body)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	copyRequestHeaders(req.Header, ctx.Request.Header)
	req.Header.Set("User-Agent", s.cfg.RelayUserAgent)
	req.Header.Set("Accept-Encoding", "identity")
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}

	resp, err := s.cfg.RelayClient.Do(req)
	if err != nil {
		if ctx.Request.Context().Err() != nil {
			utils.DebugLog("Client cancelled relay for %s", utils.MaskURL(target))
			return
		}
		utils.WarnLog("Relay upstream error for %s: %v", utils.MaskURL(target), err)
		ctx.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
		return
	}
	defer resp.Body.Close()

	utils.DebugLog("<- Relay upstream status: %d", resp.StatusCode)

	copyResponseHeaders(ctx.Writer.Header(), resp.Header)
	if ctx.Writer.Header().Get("Content-Type") == "" {
		ctx.Header("Content-Type", contentTypeForPath(req.URL.Path))
	}
	ctx.Status(resp.StatusCode)
	if ctx.Request.Method == http.MethodHead {
		return
	}

	stream(ctx, resp.Body)
}

// stream copies body to the client with flushes until EOF or until the
// client goes away.
func stream(ctx *gin.Context, body io.Reader) {
	w := ctx.Writer
	buf := make([]byte, 64*1024)

	for {
		select {
		case <-ctx.Request.Context().Done():
			utils.DebugLog("Client cancelled stream for URL: %s", ctx.Request.URL.Path)
			return
		default:
		}

		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				utils.DebugLog("Client write error: %v", werr)
				return
			}
			w.Flush()
		}
		if rerr != nil {
			if rerr != io.EOF {
				utils.DebugLog("Upstream read error: %v", rerr)
			}
			return
		}
	}
}
