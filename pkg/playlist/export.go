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

package playlist

import (
	"io"
	"strings"

	"github.com/jamesnetherton/m3u"

	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

// Export writes channels as an #EXTM3U playlist. Channels without a URL are
// skipped.
func Export(w io.Writer, channels []types.Channel) error {
	var p m3u.Playlist
	p.Tracks = make([]m3u.Track, 0, len(channels))

	for _, ch := range channels {
		if strings.TrimSpace(ch.URL) == "" {
			continue
		}
		track := m3u.Track{
			Name:   quoteSafe(ch.Name),
			Length: -1,
			URI:    ch.URL,
		}
		if ch.ID != "" {
			track.Tags = append(track.Tags, m3u.Tag{Name: "tvg-id", Value: quoteSafe(ch.ID)})
		}
		track.Tags = append(track.Tags, m3u.Tag{Name: "tvg-name", Value: quoteSafe(ch.Name)})
		if ch.Logo != "" && !strings.HasPrefix(ch.Logo, "data:") {
			track.Tags = append(track.Tags, m3u.Tag{Name: "tvg-logo", Value: quoteSafe(ch.Logo)})
		}
		if ch.Country != "" {
			track.Tags = append(track.Tags, m3u.Tag{Name: "tvg-country", Value: quoteSafe(ch.Country)})
		}
		if ch.Category != "" {
			track.Tags = append(track.Tags, m3u.Tag{Name: "group-title", Value: quoteSafe(ch.Category)})
		}
		p.Tracks = append(p.Tracks, track)
	}

	r, err := m3u.Marshall(p)
	if err != nil {
		return utils.ErrorWithLocation(err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return utils.ErrorWithLocation(err)
	}
	utils.DebugLog("Exported %d tracks", len(p.Tracks))
	return nil
}

// quoteSafe keeps attribute values and names on a single line and free of
// double quotes, which the attribute syntax cannot escape.
func quoteSafe(s string) string {
	return strings.NewReplacer("\"", "'", "\r", " ", "\n", " ").Replace(s)
}
