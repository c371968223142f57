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

import (
	"fmt"
	"strings"
)

// Subscription holds the provider credentials supplied by the caller.
type Subscription struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// BaseURL returns the subscription URL without trailing slashes.
func (s Subscription) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.URL), "/")
}

// Validate reports a *MissingCredentialsError when any field is empty.
func (s Subscription) Validate() error {
	var missing []string
	if strings.TrimSpace(s.URL) == "" {
		missing = append(missing, "url")
	}
	if s.Username == "" {
		missing = append(missing, "username")
	}
	if s.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &MissingCredentialsError{Fields: missing}
	}
	return nil
}

// Channel is the canonical catalog entry handed to callers.
type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Logo        string `json:"logo"`
	Category    string `json:"category"`
	URL         string `json:"url"`
	Country     string `json:"country"`
	IsVOD       bool   `json:"isVOD"`
	Description string `json:"description,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Category is one distinct channel category of a catalog.
type Category struct {
	CategoryName string `json:"category_name"`
}

// ContentType selects which listing is acquired from a provider.
type ContentType string

const (
	ContentLive   ContentType = "live"
	ContentVOD    ContentType = "vod"
	ContentSeries ContentType = "series"
)

// ParseContentType accepts live, vod, movie and series. Empty means live.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "live":
		return ContentLive, nil
	case "vod", "movie":
		return ContentVOD, nil
	case "series":
		return ContentSeries, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// IsVOD reports whether items of this content type are on-demand.
func (c ContentType) IsVOD() bool {
	return c != ContentLive
}

// MediaType selects the stream path used when building a play URL.
type MediaType string

const (
	MediaLive   MediaType = "live"
	MediaVOD    MediaType = "vod"
	MediaSeries MediaType = "series"
)

// MediaType maps a content type onto the stream path family.
func (c ContentType) MediaType() MediaType {
	switch c {
	case ContentVOD:
		return MediaVOD
	case ContentSeries:
		return MediaSeries
	default:
		return MediaLive
	}
}

// ProgressFunc receives a step label and a completion percentage in [0,100].
type ProgressFunc func(step string, percent int)

// NoProgress discards progress reports.
func NoProgress(string, int) {}
