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
	"testing"
	"time"

	"github.com/lucasduport/stream-catalog/pkg/store"
	"github.com/lucasduport/stream-catalog/pkg/types"
)

type runnerFunc func(ctx context.Context, sub types.Subscription, ct types.ContentType, opts Options) (*Result, error)

func (f runnerFunc) Acquire(ctx context.Context, sub types.Subscription, ct types.ContentType, opts Options) (*Result, error) {
	return f(ctx, sub, ct, opts)
}

func TestServiceStoresWinnerAndReusesIt(t *testing.T) {
	st := store.NewMemory()
	x, m := adapters(nil, invalidJSON, m3uOK)
	svc := NewService(New(nil, x, m), st, Options{Policy: noRetry})

	res, err := svc.Load(context.Background(), sub, types.ContentLive, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.SucceededAdapter != types.AdapterM3U {
		t.Fatalf("SucceededAdapter = %q", res.SucceededAdapter)
	}
	if v, _ := st.Get(context.Background(), store.LastSuccessKey); v != types.AdapterM3U {
		t.Errorf("stored = %q, want m3u", v)
	}

	if _, err := svc.Load(context.Background(), sub, types.ContentLive, nil); err != nil {
		t.Fatal(err)
	}
	if x.calls() != 1 {
		t.Errorf("xtream called %d times, the stored preference should skip it", x.calls())
	}
}

func TestServiceFailureKeepsPreference(t *testing.T) {
	st := store.NewMemory()
	st.Set(context.Background(), store.LastSuccessKey, types.AdapterXtream)
	x, m := adapters(nil, invalidJSON, invalidM3U)
	svc := NewService(New(nil, x, m), st, Options{Policy: noRetry})

	_, err := svc.Load(context.Background(), sub, types.ContentLive, nil)
	var ae *AcquisitionError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v", err)
	}
	if v, _ := st.Get(context.Background(), store.LastSuccessKey); v != types.AdapterXtream {
		t.Errorf("stored = %q", v)
	}
}

func TestServiceSupersededCallDoesNotWrite(t *testing.T) {
	st := store.NewMemory()
	started := make(chan struct{})
	release := make(chan struct{})

	calls := 0
	svc := NewService(runnerFunc(func(ctx context.Context, _ types.Subscription, _ types.ContentType, _ Options) (*Result, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			// Ignores cancellation and reports a stale winner.
			return &Result{SucceededAdapter: types.AdapterXtream}, nil
		}
		return &Result{SucceededAdapter: types.AdapterM3U}, nil
	}), st, Options{})

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Load(context.Background(), sub, types.ContentLive, nil)
		firstErr <- err
	}()
	<-started

	if _, err := svc.Load(context.Background(), sub, types.ContentLive, nil); err != nil {
		t.Fatal(err)
	}
	close(release)

	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first Load err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Load did not return")
	}
	if v, _ := st.Get(context.Background(), store.LastSuccessKey); v != types.AdapterM3U {
		t.Errorf("stored = %q, want m3u", v)
	}
}

// blockingStore holds every Set until release is closed.
type blockingStore struct {
	*store.Memory
	setting chan struct{}
	release chan struct{}
}

func (b *blockingStore) Set(ctx context.Context, key, value string) error {
	b.setting <- struct{}{}
	<-b.release
	return b.Memory.Set(ctx, key, value)
}

func TestServiceSlowStoreDoesNotBlockSupersede(t *testing.T) {
	st := &blockingStore{
		Memory:  store.NewMemory(),
		setting: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	secondRan := make(chan struct{})
	calls := 0
	svc := NewService(runnerFunc(func(context.Context, types.Subscription, types.ContentType, Options) (*Result, error) {
		calls++
		if calls == 2 {
			close(secondRan)
		}
		return &Result{SucceededAdapter: types.AdapterM3U}, nil
	}), st, Options{})

	firstDone := make(chan struct{})
	go func() {
		svc.Load(context.Background(), sub, types.ContentLive, nil)
		close(firstDone)
	}()
	<-st.setting

	secondDone := make(chan struct{})
	go func() {
		svc.Load(context.Background(), sub, types.ContentLive, nil)
		close(secondDone)
	}()

	select {
	case <-secondRan:
	case <-time.After(2 * time.Second):
		t.Fatal("second Load blocked behind the first store write")
	}

	close(st.release)
	for _, done := range []chan struct{}{firstDone, secondDone} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Load did not return")
		}
	}
	if v, _ := st.Get(context.Background(), store.LastSuccessKey); v != types.AdapterM3U {
		t.Errorf("stored = %q, want m3u", v)
	}
}

func TestServiceCancelledCallerDoesNotWrite(t *testing.T) {
	st := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewService(runnerFunc(func(context.Context, types.Subscription, types.ContentType, Options) (*Result, error) {
		cancel()
		return &Result{SucceededAdapter: types.AdapterM3U}, nil
	}), st, Options{})

	if _, err := svc.Load(ctx, sub, types.ContentLive, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if _, err := st.Get(context.Background(), store.LastSuccessKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("preference written after cancellation: %v", err)
	}
}
