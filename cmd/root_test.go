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

package cmd

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
)

func TestStreamURLCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"stream-url",
		"--url", "http://provider.example:8080/",
		"--username", "u",
		"--password", "p",
		"--media-type", "movie",
		"42",
	})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := "/proxy/" + url.QueryEscape("http://provider.example:8080/movie/u/p/42.mp4")
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("stream-url printed %q, want %q", got, want)
	}
}
