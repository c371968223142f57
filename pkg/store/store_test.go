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

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, LastSuccessKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(empty) err = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, LastSuccessKey, "m3u"); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Get(ctx, LastSuccessKey); err != nil || v != "m3u" {
		t.Fatalf("Get() = %q, %v", v, err)
	}
	if err := s.Set(ctx, LastSuccessKey, "xtream"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(ctx, LastSuccessKey); v != "xtream" {
		t.Fatalf("Get() after overwrite = %q", v)
	}
	if err := s.Delete(ctx, LastSuccessKey); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, LastSuccessKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(deleted) err = %v", err)
	}
	if err := s.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("Delete(missing) = %v", err)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, f)
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	a, _ := NewFile(path)
	if err := a.Set(ctx, LastSuccessKey, "m3u"); err != nil {
		t.Fatal(err)
	}
	b, _ := NewFile(path)
	if v, err := b.Get(ctx, LastSuccessKey); err != nil || v != "m3u" {
		t.Errorf("Get() = %q, %v", v, err)
	}
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, _ := NewFile(path)
	if _, err := f.Get(context.Background(), LastSuccessKey); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want decode error", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{}, false},
		{Config{Kind: "memory"}, false},
		{Config{Kind: "FILE", Path: filepath.Join(t.TempDir(), "s.json")}, false},
		{Config{Kind: "redis", RedisURL: "redis://localhost:6379/0"}, false},
		{Config{Kind: "redis"}, true},
		{Config{Kind: "redis", RedisURL: "://bad"}, true},
		{Config{Kind: "etcd"}, true},
	}
	for _, tt := range tests {
		s, err := Open(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%+v) err = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			continue
		}
		if err != nil {
			if s != nil {
				t.Errorf("Open(%+v) returned a non-nil store %T with an error", tt.cfg, s)
			}
			continue
		}
		s.Close()
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	r, err := NewRedis("redis://localhost:6379/0")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if got := r.key(LastSuccessKey); got != "stream-catalog:iptv_last_success_method" {
		t.Errorf("key = %q", got)
	}
}
