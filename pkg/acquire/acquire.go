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

// Package acquire loads a provider catalog by trying each delivery style
// in turn until one yields channels.
package acquire

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lucasduport/stream-catalog/pkg/playlist"
	"github.com/lucasduport/stream-catalog/pkg/transport"
	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
	"github.com/lucasduport/stream-catalog/pkg/xtream"
)

// DefaultAdapterTimeout bounds a single adapter attempt.
const DefaultAdapterTimeout = 60 * time.Second

// StepDone is the last progress report of a successful acquisition.
const StepDone = "done"

// Adapter fetches a raw catalog in one delivery style.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, sub types.Subscription, ct types.ContentType, progress types.ProgressFunc) (types.Payload, error)
}

// Options tune one Acquire call.
type Options struct {
	// Preferred is moved to the front of the adapter order when known.
	Preferred string
	Progress  types.ProgressFunc
	// Policy applies per adapter. A zero policy means DefaultRetryPolicy.
	Policy         transport.RetryPolicy
	AdapterTimeout time.Duration
}

// Result is a successful acquisition.
type Result struct {
	Channels         []types.Channel  `json:"channels"`
	Categories       []types.Category `json:"categories"`
	SucceededAdapter string           `json:"adapter"`
	AcquisitionID    string           `json:"acquisition_id"`
}

// Acquirer runs adapters in order with retries and timeouts.
type Acquirer struct {
	adapters []Adapter
	metrics  *Metrics
}

// New returns an Acquirer trying adapters in the given order. metrics may
// be nil.
func New(metrics *Metrics, adapters ...Adapter) *Acquirer {
	return &Acquirer{adapters: adapters, metrics: metrics}
}

// NewDefault wires the JSON API adapter followed by the playlist adapter on
// top of t. requestTimeout bounds each HTTP request.
func NewDefault(t *transport.Client, requestTimeout time.Duration, metrics *Metrics) *Acquirer {
	return New(metrics,
		xtream.New(t, requestTimeout),
		playlist.New(t, requestTimeout),
	)
}

// Adapters lists adapter names in default order.
func (a *Acquirer) Adapters() []string {
	names := make([]string, 0, len(a.adapters))
	for _, ad := range a.adapters {
		names = append(names, ad.Name())
	}
	return names
}

// order moves the preferred adapter to the front, keeping the rest in place.
func (a *Acquirer) order(preferred string) []Adapter {
	out := make([]Adapter, 0, len(a.adapters))
	for _, ad := range a.adapters {
		if ad.Name() == preferred {
			out = append(out, ad)
		}
	}
	for _, ad := range a.adapters {
		if ad.Name() != preferred {
			out = append(out, ad)
		}
	}
	return out
}

// Acquire loads the catalog of sub. The first adapter producing at least
// one channel wins and later adapters are not tried. When every adapter
// fails the error is an *AcquisitionError. When ctx is cancelled Acquire
// returns ctx.Err() and no further progress is reported.
func (a *Acquirer) Acquire(ctx context.Context, sub types.Subscription, ct types.ContentType, opts Options) (*Result, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if ct == "" {
		ct = types.ContentLive
	}
	policy := opts.Policy
	if policy.MaxAttempts == 0 && policy.Backoff == 0 {
		policy = transport.DefaultRetryPolicy
	}
	timeout := opts.AdapterTimeout
	if timeout <= 0 {
		timeout = DefaultAdapterTimeout
	}
	progress := newProgress(ctx, opts.Progress)

	id := uuid.NewString()
	utils.InfoLog("[%s] Loading %s catalog from %s (preferred=%q)", id, ct, utils.MaskURL(sub.BaseURL()), opts.Preferred)

	var causes []AdapterError
	for _, ad := range a.order(opts.Preferred) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := ad.Name()
		var channels []types.Channel
		err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
			start := time.Now()
			payload, err := a.attempt(ctx, ad, sub, ct, timeout, progress.report)
			if err == nil {
				channels, err = Normalize(payload, ct)
				if err == nil && len(channels) == 0 {
					err = ErrEmptyResult
				}
			}
			a.metrics.observeAttempt(name, outcome(err), time.Since(start))
			if err != nil {
				utils.DebugLog("[%s] %s attempt %d failed: %v", id, name, attempt+1, err)
			}
			return err
		}, retryable)

		if err == nil {
			progress.report(StepDone, 100)
			progress.stop()
			a.metrics.observeSuccess(name, string(ct), len(channels))
			utils.InfoLog("[%s] Loaded %d channels via %s", id, len(channels), name)
			return &Result{
				Channels:         channels,
				Categories:       Categories(channels),
				SucceededAdapter: name,
				AcquisitionID:    id,
			}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		utils.WarnLog("[%s] Adapter %s failed: %v", id, name, err)
		causes = append(causes, AdapterError{Adapter: name, Err: err})
	}

	progress.stop()
	a.metrics.observeFailure()
	utils.ErrorLog("[%s] All adapters failed for %s", id, utils.MaskURL(sub.BaseURL()))
	return nil, &AcquisitionError{Causes: causes}
}

// attempt runs one adapter call raced against timeout. An abandoned call is
// cancelled and can no longer report progress.
func (a *Acquirer) attempt(ctx context.Context, ad Adapter, sub types.Subscription, ct types.ContentType, timeout time.Duration, progress types.ProgressFunc) (types.Payload, error) {
	actx, cancel := context.WithCancel(ctx)
	defer cancel()

	var abandoned atomic.Bool
	report := func(step string, percent int) {
		if !abandoned.Load() {
			progress(step, percent)
		}
	}

	type fetched struct {
		payload types.Payload
		err     error
	}
	done := make(chan fetched, 1)
	go func() {
		p, err := ad.Fetch(actx, sub, ct, report)
		done <- fetched{p, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.payload, o.err
	case <-timer.C:
		abandoned.Store(true)
		return types.Payload{}, &transport.TimeoutError{After: timeout}
	case <-ctx.Done():
		abandoned.Store(true)
		return types.Payload{}, ctx.Err()
	}
}

// retryable rejects errors that another attempt cannot fix.
func retryable(err error) bool {
	var (
		ire *xtream.InvalidResponseError
		ife *playlist.InvalidFormatError
		mce *types.MissingCredentialsError
		tle *transport.BodyTooLargeError
	)
	switch {
	case errors.As(err, &ire), errors.As(err, &ife), errors.As(err, &mce), errors.As(err, &tle):
		return false
	case errors.Is(err, ErrEmptyResult):
		return false
	}
	return true
}

func outcome(err error) string {
	var te *transport.TimeoutError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &te):
		return outcomeTimeout
	case errors.Is(err, ErrEmptyResult):
		return outcomeEmpty
	case errors.Is(err, context.Canceled):
		return outcomeCanceled
	}
	return outcomeFailure
}

// progressGate forwards reports while ctx is live, never letting the
// percentage go backwards.
type progressGate struct {
	ctx     context.Context
	fn      types.ProgressFunc
	mu      sync.Mutex
	last    int
	stopped bool
}

func newProgress(ctx context.Context, fn types.ProgressFunc) *progressGate {
	if fn == nil {
		fn = types.NoProgress
	}
	return &progressGate{ctx: ctx, fn: fn}
}

func (p *progressGate) report(step string, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.ctx.Err() != nil {
		return
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(step, percent)
}

func (p *progressGate) stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}
