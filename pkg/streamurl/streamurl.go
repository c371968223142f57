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

// Package streamurl builds playable stream URLs for catalog items. Every
// URL handed out is wrapped through the proxy relay.
package streamurl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lucasduport/stream-catalog/pkg/types"
)

// DefaultProxyPrefix is the relay route the built URLs point at.
const DefaultProxyPrefix = "/proxy/"

// UnknownMediaTypeError is returned for media types without a stream path.
type UnknownMediaTypeError struct {
	MediaType types.MediaType
}

func (e *UnknownMediaTypeError) Error() string {
	return fmt.Sprintf("unknown media type %q", string(e.MediaType))
}

type pathTemplate struct {
	segment   string
	extension string
}

var templates = map[types.MediaType]pathTemplate{
	types.MediaLive:   {segment: "live", extension: "ts"},
	types.MediaVOD:    {segment: "movie", extension: "mp4"},
	types.MediaSeries: {segment: "series", extension: "mp4"},
}

// Builder resolves item ids to proxied stream URLs.
type Builder struct {
	// ProxyPrefix is prepended to the encoded upstream URL. It may be an
	// absolute relay address such as "https://relay.example/proxy/".
	ProxyPrefix string
}

// BuildURL is Builder{}.BuildURL.
func BuildURL(sub types.Subscription, itemID string, mediaType types.MediaType) (string, error) {
	return Builder{}.BuildURL(sub, itemID, mediaType)
}

// BuildURL returns the proxied stream URL of itemID. It never performs I/O.
func (b Builder) BuildURL(sub types.Subscription, itemID string, mediaType types.MediaType) (string, error) {
	upstream, err := Upstream(sub, itemID, mediaType)
	if err != nil {
		return "", err
	}
	prefix := b.ProxyPrefix
	if prefix == "" {
		prefix = DefaultProxyPrefix
	}
	return ProxyURL(prefix, upstream), nil
}

// Fill returns a copy of channels with URL set to the proxied stream URL
// of each channel.
func (b Builder) Fill(sub types.Subscription, channels []types.Channel, mediaType types.MediaType) ([]types.Channel, error) {
	out := make([]types.Channel, len(channels))
	for i, ch := range channels {
		u, err := b.BuildURL(sub, ch.ID, mediaType)
		if err != nil {
			return nil, err
		}
		ch.URL = u
		out[i] = ch
	}
	return out, nil
}

// Upstream returns the direct provider URL
// {base}/{live|movie|series}/{username}/{password}/{id}.{ts|mp4}.
func Upstream(sub types.Subscription, itemID string, mediaType types.MediaType) (string, error) {
	if err := sub.Validate(); err != nil {
		return "", err
	}
	tpl, ok := templates[mediaType]
	if !ok {
		return "", &UnknownMediaTypeError{MediaType: mediaType}
	}
	if strings.TrimSpace(itemID) == "" {
		return "", fmt.Errorf("empty item id")
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s.%s",
		sub.BaseURL(),
		tpl.segment,
		url.PathEscape(sub.Username),
		url.PathEscape(sub.Password),
		url.PathEscape(itemID),
		tpl.extension), nil
}

// ProxyURL rewrites upstream through the relay mounted at prefix.
func ProxyURL(prefix, upstream string) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + url.QueryEscape(upstream)
}

// Unwrap reverses ProxyURL for a URL built with prefix.
func Unwrap(prefix, proxied string) (string, error) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(proxied, prefix) {
		return "", fmt.Errorf("%q is not routed through %q", proxied, prefix)
	}
	return url.QueryUnescape(strings.TrimPrefix(proxied, prefix))
}
