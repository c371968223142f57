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

package utils

import (
	"net/url"
	"strings"
)

// MaskString masks sensitive parts of strings for logging.
func MaskString(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "[empty]"
		}
		return s[:1] + "******"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// streamPathKinds are the path families that embed credentials as
// /{kind}/{username}/{password}/{id}.
var streamPathKinds = map[string]bool{
	"live":      true,
	"movie":     true,
	"series":    true,
	"timeshift": true,
}

// MaskURL masks credentials in Xtream style URLs for logging: the
// username/password query parameters and the path segments following a
// live/movie/series/timeshift prefix.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	q := u.Query()
	masked := false
	for _, key := range []string{"username", "password"} {
		if v := q.Get(key); v != "" {
			q.Set(key, MaskString(v))
			masked = true
		}
	}
	if masked {
		u.RawQuery = q.Encode()
	}

	parts := strings.Split(u.Path, "/")
	for i := 0; i+3 < len(parts); i++ {
		if streamPathKinds[parts[i]] {
			parts[i+1] = MaskString(parts[i+1])
			parts[i+2] = MaskString(parts[i+2])
			u.Path = strings.Join(parts, "/")
			u.RawPath = ""
			break
		}
	}

	s := u.String()
	if unescaped, err := url.PathUnescape(s); err == nil {
		return unescaped
	}
	return s
}
