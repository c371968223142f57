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

// Package playlist downloads, parses and writes M3U playlists.
package playlist

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/lucasduport/stream-catalog/pkg/transport"
	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

const header = "#EXTM3U"

// Progress labels reported by Fetch.
const (
	StepDownloading = "downloading"
	StepReceived    = "received"
)

// InvalidFormatError is returned when the download is not an M3U playlist.
type InvalidFormatError struct {
	Snippet string
}

func (e *InvalidFormatError) Error() string {
	if e.Snippet == "" {
		return "invalid playlist: missing " + header
	}
	return "invalid playlist: missing " + header + " (" + e.Snippet + ")"
}

// Fetcher is the transport used by the adapter.
type Fetcher interface {
	TryBothProtocols(ctx context.Context, rawURL string, opts transport.Options, timeout time.Duration) (*transport.Response, error)
}

// Client is the get.php playlist adapter.
type Client struct {
	transport Fetcher
	timeout   time.Duration
}

// New creates a Client issuing requests through t, each bounded by timeout.
func New(t Fetcher, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}
	return &Client{transport: t, timeout: timeout}
}

// Name identifies the adapter.
func (c *Client) Name() string { return types.AdapterM3U }

// URL returns {base}/get.php?username=&password=&type=m3u_plus&output=ts.
func URL(sub types.Subscription) string {
	params := url.Values{}
	params.Set("username", sub.Username)
	params.Set("password", sub.Password)
	params.Set("type", "m3u_plus")
	params.Set("output", "ts")
	return sub.BaseURL() + "/get.php?" + params.Encode()
}

// Download fetches the raw playlist text and checks its header.
func (c *Client) Download(ctx context.Context, sub types.Subscription) (string, error) {
	if err := sub.Validate(); err != nil {
		return "", err
	}

	resp, err := c.transport.TryBothProtocols(ctx, URL(sub), transport.Options{
		Header: map[string][]string{"Accept": {"audio/x-mpegurl, text/plain, */*"}},
	}, c.timeout)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", &transport.HTTPStatusError{URL: utils.MaskURL(resp.URL), StatusCode: resp.StatusCode}
	}

	text := string(resp.Body)
	if !strings.Contains(text, header) {
		s := strings.TrimSpace(text)
		if len(s) > 64 {
			s = s[:64]
		}
		return "", &InvalidFormatError{Snippet: s}
	}
	return text, nil
}

// Fetch implements the acquisition adapter contract for playlists. The
// content type does not change the request; get.php returns everything.
func (c *Client) Fetch(ctx context.Context, sub types.Subscription, _ types.ContentType, progress types.ProgressFunc) (types.Payload, error) {
	if progress == nil {
		progress = types.NoProgress
	}
	if err := sub.Validate(); err != nil {
		return types.Payload{}, err
	}

	progress(StepDownloading, 30)
	text, err := c.Download(ctx, sub)
	if err != nil {
		return types.Payload{}, err
	}
	progress(StepReceived, 60)

	utils.DebugLog("Playlist downloaded from %s: %d bytes", utils.MaskURL(sub.BaseURL()), len(text))
	return types.Payload{Kind: types.PayloadPlaylist, Text: text}, nil
}
