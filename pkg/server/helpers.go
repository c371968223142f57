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
	"path"
	"strings"
)

// hopHeaders are meaningful only for a single connection.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func isHopHeader(k string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(h, k) {
			return true
		}
	}
	return false
}

// contentTypeForPath maps a file extension or known path to an appropriate
// Content-Type value for streaming responses.
func contentTypeForPath(p string) string {
	lp := strings.ToLower(p)
	ext := path.Ext(lp)
	if strings.Contains(lp, "/live/") || ext == ".ts" {
		return "video/mp2t"
	}
	switch ext {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".m3u":
		return "audio/x-mpegurl"
	case ".mp4":
		return "video/mp4"
	case ".mkv":
		return "video/x-matroska"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

type values []string

func (vs values) contains(s string) bool {
	for _, v := range vs {
		if v == s {
			return true
		}
	}
	return false
}

// mergeHttpHeader copies headers from src to dst without duplicating identical values.
func mergeHttpHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			if values(dst.Values(k)).contains(v) {
				continue
			}
			dst.Add(k, v)
		}
	}
}

// copyRequestHeaders forwards client headers upstream, minus hop-by-hop
// and browser-only ones.
func copyRequestHeaders(dst, src http.Header) {
	clean := http.Header{}
	for k, vv := range src {
		switch {
		case isHopHeader(k),
			strings.EqualFold(k, "Host"),
			strings.EqualFold(k, "Origin"),
			strings.EqualFold(k, "Cookie"),
			strings.HasPrefix(http.CanonicalHeaderKey(k), "Access-Control-"):
			continue
		}
		clean[k] = vv
	}
	mergeHttpHeader(dst, clean)
}

// copyResponseHeaders passes upstream headers through. CORS headers are
// owned by the relay.
func copyResponseHeaders(dst, src http.Header) {
	clean := http.Header{}
	for k, vv := range src {
		if isHopHeader(k) || strings.HasPrefix(http.CanonicalHeaderKey(k), "Access-Control-") {
			continue
		}
		clean[k] = vv
	}
	mergeHttpHeader(dst, clean)
}
