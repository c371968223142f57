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
	"context"
	"time"
)

const maxRetryAttempts = 3

// RetryPolicy is a bounded exponential backoff: attempt i (0-based) that
// fails is followed by a wait of Backoff * 2^i.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy tries twice with a one second pause.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 2,
	Backoff:     1 * time.Second,
}

// Attempts returns MaxAttempts clamped to [1,3].
func (p RetryPolicy) Attempts() int {
	switch {
	case p.MaxAttempts < 1:
		return 1
	case p.MaxAttempts > maxRetryAttempts:
		return maxRetryAttempts
	}
	return p.MaxAttempts
}

// Delay is the wait after the failed attempt with the given 0-based index.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Backoff <= 0 || attempt < 0 {
		return 0
	}
	return p.Backoff * time.Duration(1<<uint(attempt))
}

// Do runs fn until it succeeds, the attempts are used up, retryable
// rejects the error, or ctx is done. A nil retryable retries everything.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error, retryable func(error) bool) error {
	n := p.Attempts()
	var err error
	for attempt := 0; attempt < n; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == n-1 || (retryable != nil && !retryable(err)) {
			return err
		}

		wait := p.Delay(attempt)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
