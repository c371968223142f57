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

package acquire

import (
	"fmt"
	"strconv"

	"github.com/lucasduport/stream-catalog/pkg/playlist"
	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/xtream"
)

// Defaults applied during normalization.
const (
	DefaultCategory = "General"
	DefaultCountry  = "Unknown"
	// DefaultLogo is a grey 80x60 "TV" placeholder.
	DefaultLogo = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iODAiIGhlaWdodD0iNjAiIHZpZXdCb3g9IjAgMCA4MCA2MCIgZmlsbD0ibm9uZSIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj4KPHJlY3Qgd2lkdGg9IjgwIiBoZWlnaHQ9IjYwIiBmaWxsPSIjMzMzMzMzIi8+Cjx0ZXh0IHg9IjQwIiB5PSIzNSIgZm9udC1mYW1pbHk9IkFyaWFsIiBmb250LXNpemU9IjEyIiBmaWxsPSJ3aGl0ZSIgdGV4dC1hbmNob3I9Im1pZGRsZSI+VFY8L3RleHQ+Cjwvc3ZnPgo="
)

// Normalize turns an adapter payload into channels. Every channel gets an
// ID and a Name; URL is always empty.
func Normalize(p types.Payload, ct types.ContentType) ([]types.Channel, error) {
	switch p.Kind {
	case types.PayloadJSON:
		return normalizeRecords(p.Records, p.CategoryNames, ct)
	case types.PayloadPlaylist:
		parsed := playlist.Parse(p.Text)
		channels := make([]types.Channel, 0, len(parsed))
		for i, ch := range parsed {
			ch.URL = ""
			channels = append(channels, finish(ch, i, ct))
		}
		return channels, nil
	default:
		return nil, fmt.Errorf("unknown payload kind %v", p.Kind)
	}
}

func normalizeRecords(data []byte, categoryNames map[string]string, ct types.ContentType) ([]types.Channel, error) {
	var channels []types.Channel
	err := xtream.EachRecord(data, func(i int, rec []byte) {
		category := xtream.Field(rec, "category_name", "category")
		if category == "" {
			if id := xtream.Field(rec, "category_id"); id != "" {
				category = categoryNames[id]
			}
		}
		ch := types.Channel{
			ID:          xtream.Field(rec, "id", "stream_id", "series_id"),
			Name:        xtream.Field(rec, "name", "title"),
			Logo:        xtream.Field(rec, "logo", "stream_icon", "cover", "tvg-logo"),
			Category:    category,
			Country:     xtream.Field(rec, "country"),
			Description: xtream.Field(rec, "plot", "description"),
			Year:        xtream.Field(rec, "year", "releaseDate", "release_date"),
		}
		channels = append(channels, finish(ch, i, ct))
	})
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return channels, nil
}

func finish(ch types.Channel, i int, ct types.ContentType) types.Channel {
	if ch.ID == "" {
		ch.ID = "item_" + strconv.Itoa(i)
	}
	if ch.Name == "" {
		ch.Name = "Item " + strconv.Itoa(i+1)
	}
	if ch.Logo == "" {
		ch.Logo = DefaultLogo
	}
	if ch.Category == "" {
		ch.Category = DefaultCategory
	}
	if ch.Country == "" {
		ch.Country = DefaultCountry
	}
	ch.URL = ""
	ch.IsVOD = ct.IsVOD()
	return ch
}

// Categories returns the distinct channel categories in first-seen order.
func Categories(channels []types.Channel) []types.Category {
	seen := make(map[string]struct{})
	var out []types.Category
	for _, ch := range channels {
		if _, ok := seen[ch.Category]; ok {
			continue
		}
		seen[ch.Category] = struct{}{}
		out = append(out, types.Category{CategoryName: ch.Category})
	}
	return out
}
