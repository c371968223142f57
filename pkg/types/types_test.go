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

package types

import (
	"errors"
	"reflect"
	"testing"
)

func TestSubscriptionValidate(t *testing.T) {
	tests := []struct {
		name    string
		sub     Subscription
		missing []string
	}{
		{
			name: "complete",
			sub:  Subscription{URL: "http://x.com", Username: "u", Password: "p"},
		},
		{
			name:    "missing url",
			sub:     Subscription{Username: "u", Password: "p"},
			missing: []string{"url"},
		},
		{
			name:    "blank url and no password",
			sub:     Subscription{URL: "   ", Username: "u"},
			missing: []string{"url", "password"},
		},
		{
			name:    "empty",
			missing: []string{"url", "username", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.missing == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var mce *MissingCredentialsError
			if !errors.As(err, &mce) {
				t.Fatalf("Validate() = %v, want *MissingCredentialsError", err)
			}
			if !reflect.DeepEqual(mce.Fields, tt.missing) {
				t.Errorf("Fields = %v, want %v", mce.Fields, tt.missing)
			}
		})
	}
}

func TestSubscriptionBaseURL(t *testing.T) {
	s := Subscription{URL: " http://x.com:8080// "}
	if got := s.BaseURL(); got != "http://x.com:8080" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestParseContentType(t *testing.T) {
	tests := map[string]ContentType{
		"":       ContentLive,
		"live":   ContentLive,
		"VOD":    ContentVOD,
		"movie":  ContentVOD,
		"series": ContentSeries,
	}
	for in, want := range tests {
		got, err := ParseContentType(in)
		if err != nil {
			t.Fatalf("ParseContentType(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseContentType(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseContentType("radio"); err == nil {
		t.Error("ParseContentType(radio) should fail")
	}
}

func TestContentTypeMediaType(t *testing.T) {
	if ContentLive.IsVOD() {
		t.Error("live must not be VOD")
	}
	if !ContentSeries.IsVOD() {
		t.Error("series must be VOD")
	}
	if ContentVOD.MediaType() != MediaVOD || ContentSeries.MediaType() != MediaSeries || ContentLive.MediaType() != MediaLive {
		t.Error("unexpected media type mapping")
	}
}
