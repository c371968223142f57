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

package xtream

import (
	"context"
	"net/url"
	"time"

	"github.com/lucasduport/stream-catalog/pkg/transport"
	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

// API endpoint constants
const (
	getLiveCategories   = "get_live_categories"
	getLiveStreams      = "get_live_streams"
	getVodCategories    = "get_vod_categories"
	getVodStreams       = "get_vod_streams"
	getSeriesCategories = "get_series_categories"
	getSeries           = "get_series"
)

// Progress labels reported by Fetch.
const (
	StepConnecting = "connecting"
	StepReceived   = "received"
	StepCategories = "categories"
)

// Fetcher is the transport used by the adapter.
type Fetcher interface {
	TryBothProtocols(ctx context.Context, rawURL string, opts transport.Options, timeout time.Duration) (*transport.Response, error)
}

// Client is the player_api.php adapter.
type Client struct {
	transport Fetcher
	timeout   time.Duration
	// ResolveCategories makes Fetch look up category names after the
	// stream listing. Failures there are ignored.
	ResolveCategories bool
}

// New creates a Client issuing requests through t, each bounded by timeout.
func New(t Fetcher, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}
	return &Client{
		transport:         t,
		timeout:           timeout,
		ResolveCategories: true,
	}
}

// Name identifies the adapter.
func (c *Client) Name() string { return types.AdapterXtream }

// endpoint builds {base}/player_api.php?username=&password=&action=.
func endpoint(sub types.Subscription, action string, extra url.Values) string {
	params := url.Values{}
	params.Set("username", sub.Username)
	params.Set("password", sub.Password)
	if action != "" {
		params.Set("action", action)
	}
	for k, vs := range extra {
		if k == "username" || k == "password" || k == "action" {
			continue
		}
		for _, v := range vs {
			if v != "" {
				params.Add(k, v)
			}
		}
	}
	return sub.BaseURL() + "/player_api.php?" + params.Encode()
}

// Action runs one player_api action and returns the validated JSON array.
func (c *Client) Action(ctx context.Context, sub types.Subscription, action string, extra url.Values) ([]byte, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	u := endpoint(sub, action, extra)
	utils.DebugLog("Processing Xtream action=%s", action)

	resp, err := c.transport.TryBothProtocols(ctx, u, transport.Options{
		Header: map[string][]string{"Accept": {"application/json, text/plain, */*"}},
	}, c.timeout)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &transport.HTTPStatusError{URL: utils.MaskURL(resp.URL), StatusCode: resp.StatusCode}
	}

	records, err := ValidateArray(resp.Body)
	if err != nil {
		if ire, ok := err.(*InvalidResponseError); ok {
			ire.Action = action
		}
		return nil, err
	}
	return records, nil
}

// LiveStreams lists live channels (get_live_streams).
func (c *Client) LiveStreams(ctx context.Context, sub types.Subscription) ([]byte, error) {
	return c.Action(ctx, sub, getLiveStreams, nil)
}

// VODStreams lists movies (get_vod_streams).
func (c *Client) VODStreams(ctx context.Context, sub types.Subscription) ([]byte, error) {
	return c.Action(ctx, sub, getVodStreams, nil)
}

// SeriesStreams lists series (get_series).
func (c *Client) SeriesStreams(ctx context.Context, sub types.Subscription) ([]byte, error) {
	return c.Action(ctx, sub, getSeries, nil)
}

// Streams dispatches to the listing matching ct.
func (c *Client) Streams(ctx context.Context, sub types.Subscription, ct types.ContentType) ([]byte, error) {
	switch ct {
	case types.ContentVOD:
		return c.VODStreams(ctx, sub)
	case types.ContentSeries:
		return c.SeriesStreams(ctx, sub)
	default:
		return c.LiveStreams(ctx, sub)
	}
}

// Categories returns category_id -> category_name for ct.
func (c *Client) Categories(ctx context.Context, sub types.Subscription, ct types.ContentType) (map[string]string, error) {
	action := getLiveCategories
	switch ct {
	case types.ContentVOD:
		action = getVodCategories
	case types.ContentSeries:
		action = getSeriesCategories
	}

	data, err := c.Action(ctx, sub, action, nil)
	if err != nil {
		return nil, err
	}
	return CategoryNames(data)
}

// Fetch implements the acquisition adapter contract for the JSON API.
func (c *Client) Fetch(ctx context.Context, sub types.Subscription, ct types.ContentType, progress types.ProgressFunc) (types.Payload, error) {
	if progress == nil {
		progress = types.NoProgress
	}
	if err := sub.Validate(); err != nil {
		return types.Payload{}, err
	}

	progress(StepConnecting, 20)
	records, err := c.Streams(ctx, sub, ct)
	if err != nil {
		return types.Payload{}, err
	}
	progress(StepReceived, 40)

	payload := types.Payload{Kind: types.PayloadJSON, Records: records}
	if c.ResolveCategories {
		names, err := c.Categories(ctx, sub, ct)
		switch {
		case ctx.Err() != nil:
			return types.Payload{}, ctx.Err()
		case err != nil:
			utils.WarnLog("Xtream categories unavailable for %s: %v", utils.MaskURL(sub.BaseURL()), err)
		default:
			payload.CategoryNames = names
		}
		progress(StepCategories, 50)
	}

	utils.DebugLog("Xtream %s listing: %d bytes", ct, len(records))
	return payload, nil
}
