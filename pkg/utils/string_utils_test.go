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

package utils

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestMaskString(t *testing.T) {
	tests := map[string]string{
		"":           "[empty]",
		"abc":        "a******",
		"12345678":   "1******",
		"secretpass": "secr...pass",
	}
	for in, want := range tests {
		if got := MaskString(in); got != want {
			t.Errorf("MaskString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		hidden  []string
		visible []string
	}{
		{
			name:    "stream path",
			in:      "http://h.com/live/johnsmith/secretpass/42.ts",
			hidden:  []string{"johnsmith", "secretpass"},
			visible: []string{"/live/", "42.ts", "john...mith", "secr...pass"},
		},
		{
			name:    "player api query",
			in:      "http://h.com/player_api.php?username=johnsmith&password=secretpass&action=get_live_streams",
			hidden:  []string{"johnsmith", "secretpass"},
			visible: []string{"player_api.php", "action=get_live_streams"},
		},
		{
			name:    "nothing to mask",
			in:      "http://h.com/logo.png",
			visible: []string{"http://h.com/logo.png"},
		},
		{
			name:    "not a url",
			in:      "not a url",
			visible: []string{"not a url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskURL(tt.in)
			for _, h := range tt.hidden {
				if strings.Contains(got, h) {
					t.Errorf("MaskURL() = %q still contains %q", got, h)
				}
			}
			for _, v := range tt.visible {
				if !strings.Contains(got, v) {
					t.Errorf("MaskURL() = %q, missing %q", got, v)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("WARN", false) != LevelWarn {
		t.Error("WARN should parse to LevelWarn")
	}
	if ParseLevel("", true) != LevelDebug {
		t.Error("empty level with debug should be LevelDebug")
	}
	if ParseLevel("bogus", false) != LevelInfo {
		t.Error("unknown level should default to LevelInfo")
	}
	if LevelError.String() != "ERROR" {
		t.Errorf("LevelError.String() = %q", LevelError.String())
	}
}

func TestGetEnvDuration(t *testing.T) {
	os.Setenv("SC_TEST_DURATION", "45s")
	defer os.Unsetenv("SC_TEST_DURATION")
	if got := GetEnvDuration("SC_TEST_DURATION", time.Second); got != 45*time.Second {
		t.Errorf("GetEnvDuration = %v", got)
	}

	os.Setenv("SC_TEST_DURATION", "12")
	if got := GetEnvDuration("SC_TEST_DURATION", time.Second); got != 12*time.Second {
		t.Errorf("GetEnvDuration bare seconds = %v", got)
	}

	os.Setenv("SC_TEST_DURATION", "soon")
	if got := GetEnvDuration("SC_TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("GetEnvDuration invalid = %v", got)
	}
}
