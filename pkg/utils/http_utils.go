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

// RelayUserAgent is sent upstream by the proxy relay in place of the
// browser's own user agent.
const RelayUserAgent = "VLC/3.0.18 LibVLC/3.0.18"

// GetIPTVUserAgent returns the user agent to use for IPTV upstream requests
// Uses the USER_AGENT environment variable if set, otherwise defaults to "IPTVSmartersPro"
func GetIPTVUserAgent() string {
	return GetEnvOrDefault("USER_AGENT", "IPTVSmartersPro")
}
