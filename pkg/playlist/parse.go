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
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasduport/stream-catalog/pkg/types"
)

// DefaultGroup is used for entries without a group-title.
const DefaultGroup = "General"

var attrPattern = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)

type entry struct {
	attrs map[string]string
	label string
	group string
}

// Parse scans an #EXTM3U document into channels. An #EXTINF line is kept
// only when the next meaningful line is an http(s) URL; anything else in
// between discards it. Parse does no I/O and can be called repeatedly on
// the same text.
func Parse(text string) []types.Channel {
	var (
		channels []types.Channel
		pending  *entry
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXTINF:"):
			pending = parseExtinf(line)
		case strings.HasPrefix(line, "#EXTGRP:"):
			if pending != nil && pending.group == "" {
				pending.group = strings.TrimSpace(strings.TrimPrefix(line, "#EXTGRP:"))
			}
		case strings.HasPrefix(line, "#"):
			// #EXTM3U, #EXTVLCOPT and friends
		case isHTTP(line):
			if pending != nil {
				channels = append(channels, pending.channel(line, len(channels)+1))
				pending = nil
			}
		default:
			pending = nil
		}
	}
	return channels
}

func isHTTP(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func parseExtinf(line string) *entry {
	body := strings.TrimPrefix(line, "#EXTINF:")
	e := &entry{attrs: make(map[string]string)}

	comma := lastCommaOutsideQuotes(body)
	head := body
	if comma >= 0 {
		e.label = strings.TrimSpace(body[comma+1:])
		head = body[:comma]
	}
	for _, m := range attrPattern.FindAllStringSubmatch(head, -1) {
		e.attrs[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	e.group = e.attrs["group-title"]
	return e
}

func lastCommaOutsideQuotes(s string) int {
	idx := -1
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				idx = i
			}
		}
	}
	return idx
}

func (e *entry) channel(streamURL string, n int) types.Channel {
	name := e.label
	if name == "" {
		name = e.attrs["tvg-name"]
	}
	if name == "" {
		name = fmt.Sprintf("Channel %d", n)
	}
	group := e.group
	if group == "" {
		group = DefaultGroup
	}
	id := StreamID(streamURL)
	if id == "" {
		id = e.attrs["tvg-id"]
	}
	return types.Channel{
		ID:       id,
		Name:     name,
		Logo:     e.attrs["tvg-logo"],
		Category: group,
		URL:      streamURL,
		Country:  e.attrs["tvg-country"],
	}
}

// StreamID returns the numeric id in the last path segment of a provider
// stream URL (".../live/u/p/1234.ts" gives "1234"), or "".
func StreamID(streamURL string) string {
	u, err := url.Parse(streamURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	if _, err := strconv.ParseUint(base, 10, 64); err != nil {
		return ""
	}
	return base
}
