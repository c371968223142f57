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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/lucasduport/stream-catalog/pkg/utils"
)

// DefaultFilePath is used when File is opened with an empty path.
const DefaultFilePath = "~/.stream-catalog/state.json"

// File persists values as a JSON object on disk.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile opens the JSON file at path, expanding a leading ~. The file is
// created on the first Set.
func NewFile(path string) (*File, error) {
	if path == "" {
		path = DefaultFilePath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, utils.ErrorWithLocation(fmt.Errorf("expand store path: %w", err))
	}
	return &File{path: expanded}, nil
}

// Path returns the expanded file location.
func (f *File) Path() string { return f.path }

func (f *File) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", utils.ErrorWithLocation(err)
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return utils.ErrorWithLocation(err)
	}
	values[key] = value
	if err := f.save(values); err != nil {
		return utils.ErrorWithLocation(err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return utils.ErrorWithLocation(err)
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if err := f.save(values); err != nil {
		return utils.ErrorWithLocation(err)
	}
	return nil
}

func (f *File) Close() error { return nil }
