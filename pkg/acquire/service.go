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
	"context"
	"errors"
	"sync"

	"github.com/lucasduport/stream-catalog/pkg/store"
	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

// Runner is anything that can acquire a catalog, usually an *Acquirer.
type Runner interface {
	Acquire(ctx context.Context, sub types.Subscription, ct types.ContentType, opts Options) (*Result, error)
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// Service remembers the last adapter that worked and feeds it back as the
// preferred one. A new Load for a subscription cancels the previous one, so
// only the latest call may record its winner.
type Service struct {
	runner   Runner
	store    store.Store
	defaults Options

	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflight

	// writeMu serializes preference writes. s.mu is never held across
	// store I/O so a slow store cannot delay superseding.
	writeMu sync.Mutex
}

// NewService returns a Service. defaults.Preferred and defaults.Progress
// are ignored.
func NewService(r Runner, s store.Store, defaults Options) *Service {
	return &Service{
		runner:   r,
		store:    s,
		defaults: defaults,
		inflight: make(map[string]inflight),
	}
}

func subscriptionKey(sub types.Subscription) string {
	return sub.BaseURL() + "|" + sub.Username
}

// Preferred returns the stored adapter name, or "" when none is known.
func (s *Service) Preferred(ctx context.Context) string {
	v, err := s.store.Get(ctx, store.LastSuccessKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.WarnLog("Could not read %s: %v", store.LastSuccessKey, err)
		}
		return ""
	}
	return v
}

// Load acquires the catalog of sub using the stored preference.
func (s *Service) Load(ctx context.Context, sub types.Subscription, ct types.ContentType, progress types.ProgressFunc) (*Result, error) {
	key := subscriptionKey(sub)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if prev, ok := s.inflight[key]; ok {
		utils.DebugLog("Superseding in-flight acquisition for %s", utils.MaskURL(sub.BaseURL()))
		prev.cancel()
	}
	s.seq++
	seq := s.seq
	s.inflight[key] = inflight{seq: seq, cancel: cancel}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if cur, ok := s.inflight[key]; ok && cur.seq == seq {
			delete(s.inflight, key)
		}
		s.mu.Unlock()
	}()

	opts := s.defaults
	opts.Preferred = s.Preferred(ctx)
	opts.Progress = progress

	res, err := s.runner.Acquire(ctx, sub, ct, opts)
	if err != nil {
		return nil, err
	}

	if res.SucceededAdapter == "" || res.SucceededAdapter == opts.Preferred {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return res, nil
	}

	// A newer Load cancels ctx before it can take writeMu, so a call that
	// is still live here is the latest one to write.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, store.LastSuccessKey, res.SucceededAdapter); err != nil {
		utils.WarnLog("Could not store %s: %v", store.LastSuccessKey, err)
	}
	return res, nil
}
