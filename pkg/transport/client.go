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

package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lucasduport/stream-catalog/pkg/streamurl"
	"github.com/lucasduport/stream-catalog/pkg/utils"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize int64 = 64 * 1024 * 1024
)

// Options describes the request to send. Zero value is a plain GET.
type Options struct {
	Method string
	Header http.Header
	Body   []byte
}

// Response is a fully read upstream response.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Config holds the Client settings.
type Config struct {
	// RelayBase, when set, routes every request through the proxy relay
	// at {RelayBase}/proxy/{encoded url}.
	RelayBase   string
	UserAgent   string
	InsecureTLS bool
	// RequestsPerSecond limits upstream requests; zero disables the limiter.
	RequestsPerSecond float64
	Burst             int
	MaxBodySize       int64
	HTTPClient        *http.Client
}

// Client performs upstream requests for the provider adapters.
type Client struct {
	http        *http.Client
	relayBase   string
	userAgent   string
	limiter     *rate.Limiter
	maxBodySize int64
}

// New creates a Client from cfg, filling defaults.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   16,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	c := &Client{
		http:        httpClient,
		relayBase:   strings.TrimRight(cfg.RelayBase, "/"),
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
	}
	if c.userAgent == "" {
		c.userAgent = utils.GetIPTVUserAgent()
	}
	if c.maxBodySize <= 0 {
		c.maxBodySize = DefaultMaxBodySize
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// target applies the relay rewrite to an upstream URL.
func (c *Client) target(rawURL string) string {
	if c.relayBase == "" {
		return rawURL
	}
	return streamurl.ProxyURL(c.relayBase+streamurl.DefaultProxyPrefix, rawURL)
}

// FetchWithTimeout sends one request and reads the whole body within
// timeout. When the timer fires first the request is aborted and a
// *TimeoutError is returned. Cancellation of ctx returns ctx.Err().
// Non-2xx statuses are returned as a Response, not an error.
func (c *Client) FetchWithTimeout(ctx context.Context, rawURL string, opts Options, timeout time.Duration) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	reqCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	target := c.target(rawURL)
	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return nil, utils.ErrorWithLocation(fmt.Errorf("build request: %w", err))
	}
	for k, vv := range opts.Header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}

	utils.DebugLog("-> %s %s", method, utils.MaskURL(target))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(ctx, reqCtx, rawURL, timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, c.classify(ctx, reqCtx, rawURL, timeout, err)
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, &BodyTooLargeError{URL: utils.MaskURL(rawURL), Limit: c.maxBodySize}
	}

	utils.DebugLog("<- %d %s (%d bytes, %v)", resp.StatusCode, utils.MaskURL(target), len(data), time.Since(start).Round(time.Millisecond))
	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// classify separates caller cancellation, our own timer and network errors.
func (c *Client) classify(parent, reqCtx context.Context, rawURL string, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: utils.MaskURL(rawURL), After: timeout}
	}
	return fmt.Errorf("fetch %s: %w", utils.MaskURL(rawURL), err)
}

// TryBothProtocols fetches rawURL and, if that attempt returns an error,
// repeats it once with the http/https scheme swapped. When both attempts
// fail the error of the first attempt is returned. Caller cancellation is
// never retried.
func (c *Client) TryBothProtocols(ctx context.Context, rawURL string, opts Options, timeout time.Duration) (*Response, error) {
	resp, err := c.FetchWithTimeout(ctx, rawURL, opts, timeout)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	alt, ok := SwapScheme(rawURL)
	if !ok {
		return nil, err
	}
	utils.DebugLog("First attempt failed (%v), trying alternative protocol", err)

	resp, altErr := c.FetchWithTimeout(ctx, alt, opts, timeout)
	if altErr != nil {
		utils.DebugLog("Alternative protocol failed too: %v", altErr)
		return nil, err
	}
	return resp, nil
}

// SwapScheme turns http:// into https:// and back. ok is false for any
// other scheme.
func SwapScheme(rawURL string) (string, bool) {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasPrefix(lower, "https://"):
		return "http://" + rawURL[len("https://"):], true
	case strings.HasPrefix(lower, "http://"):
		return "https://" + rawURL[len("http://"):], true
	}
	return rawURL, false
}
