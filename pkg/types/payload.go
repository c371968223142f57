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

package types

// Adapter names, also the values stored as the last successful method.
const (
	AdapterXtream = "xtream"
	AdapterM3U    = "m3u"
)

// PayloadKind tags what an adapter produced.
type PayloadKind int

const (
	// PayloadJSON carries a raw JSON array of provider records.
	PayloadJSON PayloadKind = iota + 1
	// PayloadPlaylist carries raw #EXTM3U text.
	PayloadPlaylist
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadJSON:
		return "json"
	case PayloadPlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// Payload is the raw result of one adapter, normalized into channels by
// the orchestrator before anything reaches a caller.
type Payload struct {
	Kind PayloadKind
	// Records is the validated JSON array (PayloadJSON).
	Records []byte
	// Text is the playlist body (PayloadPlaylist).
	Text string
	// CategoryNames maps provider category ids to display names when the
	// adapter could resolve them.
	CategoryNames map[string]string
}
