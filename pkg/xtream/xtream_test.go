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

package xtream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lucasduport/stream-catalog/pkg/transport"
	"github.com/lucasduport/stream-catalog/pkg/types"
)

func newProvider(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, types.Subscription) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	c := New(transport.New(transport.Config{}), time.Second)
	return c, types.Subscription{URL: srv.URL + "/", Username: "u", Password: "p"}
}

func TestFetchLiveStreams(t *testing.T) {
	var actions []string
	c, sub := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player_api.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("username") != "u" || q.Get("password") != "p" {
			t.Errorf("credentials = %q/%q", q.Get("username"), q.Get("password"))
		}
		actions = append(actions, q.Get("action"))
		switch q.Get("action") {
		case "get_live_streams":
			w.Write([]byte("\xef\xbb\xbf  [{\"stream_id\":1,\"name\":\"One\",\"category_id\":\"3\"}]\n"))
		case "get_live_categories":
			w.Write([]byte(`[{"category_id":"3","category_name":"News"},{"category_id":4,"category_name":"Sport"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	var steps []string
	var last int
	payload, err := c.Fetch(context.Background(), sub, types.ContentLive, func(step string, percent int) {
		if percent < last {
			t.Errorf("progress went backwards: %d after %d", percent, last)
		}
		last = percent
		steps = append(steps, step)
	})
	if err != nil {
		t.Fatal(err)
	}
	if payload.Kind != types.PayloadJSON {
		t.Errorf("Kind = %v", payload.Kind)
	}
	if string(payload.Records) != `[{"stream_id":1,"name":"One","category_id":"3"}]` {
		t.Errorf("Records = %s", payload.Records)
	}
	if payload.CategoryNames["3"] != "News" || payload.CategoryNames["4"] != "Sport" {
		t.Errorf("CategoryNames = %v", payload.CategoryNames)
	}
	if len(steps) < 2 || steps[0] != StepConnecting || steps[1] != StepReceived {
		t.Errorf("steps = %v", steps)
	}
	if len(actions) != 2 || actions[0] != "get_live_streams" {
		t.Errorf("actions = %v", actions)
	}
}

func TestFetchActionsPerContentType(t *testing.T) {
	tests := map[types.ContentType]string{
		types.ContentLive:   "get_live_streams",
		types.ContentVOD:    "get_vod_streams",
		types.ContentSeries: "get_series",
	}
	for ct, want := range tests {
		t.Run(string(ct), func(t *testing.T) {
			var got string
			c, sub := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query().Get("action")
				w.Write([]byte(`[]`))
			})
			c.ResolveCategories = false
			if _, err := c.Fetch(context.Background(), sub, ct, nil); err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("action = %q, want %q", got, want)
			}
		})
	}
}

func TestFetchRejectsHTML(t *testing.T) {
	c, sub := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  <!doctype html><html><body>blocked</body></html>"))
	})
	_, err := c.Fetch(context.Background(), sub, types.ContentLive, nil)
	var ire *InvalidResponseError
	if !errors.As(err, &ire) {
		t.Fatalf("err = %v, want *InvalidResponseError", err)
	}
	if ire.Reason != ReasonHTML || ire.Action != "get_live_streams" {
		t.Errorf("err = %+v", ire)
	}
}

func TestFetchRejectsObject(t *testing.T) {
	c, sub := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_info":{"auth":0}}`))
	})
	_, err := c.Fetch(context.Background(), sub, types.ContentLive, nil)
	var ire *InvalidResponseError
	if !errors.As(err, &ire) || ire.Reason != ReasonNotArray {
		t.Fatalf("err = %v, want not-array InvalidResponseError", err)
	}
}

func TestFetchHTTPStatus(t *testing.T) {
	c, sub := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Fetch(context.Background(), sub, types.ContentLive, nil)
	var hse *transport.HTTPStatusError
	if !errors.As(err, &hse) || hse.StatusCode != http.StatusForbidden {
		t.Fatalf("err = %v, want 403 HTTPStatusError", err)
	}
}

func TestFetchIgnoresCategoryFailure(t *testing.T) {
	c, sub := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "get_vod_categories" {
			w.Write([]byte(`<html>oops</html>`))
			return
		}
		w.Write([]byte(`[{"stream_id":"9","name":"Film"}]`))
	})
	payload, err := c.Fetch(context.Background(), sub, types.ContentVOD, nil)
	if err != nil {
		t.Fatal(err)
	}
	if payload.CategoryNames != nil {
		t.Errorf("CategoryNames = %v, want nil", payload.CategoryNames)
	}
}

func TestFetchMissingCredentials(t *testing.T) {
	c := New(transport.New(transport.Config{}), time.Second)
	_, err := c.Fetch(context.Background(), types.Subscription{URL: "http://x"}, types.ContentLive, nil)
	var mce *types.MissingCredentialsError
	if !errors.As(err, &mce) {
		t.Fatalf("err = %v, want *MissingCredentialsError", err)
	}
}

func TestValidateArray(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"array", ` [1,2] `, ""},
		{"empty array", `[]`, ""},
		{"bom", "\xef\xbb\xbf[]", ""},
		{"html upper", "<HTML><body></body></HTML>", ReasonHTML},
		{"doctype", "<!DOCTYPE html>", ReasonHTML},
		{"object", `{"a":1}`, ReasonNotArray},
		{"null", `null`, ReasonNotArray},
		{"empty", ``, ReasonNotArray},
		{"truncated", `[{"a":1}`, ReasonMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateArray([]byte(tt.body))
			if tt.reason == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			var ire *InvalidResponseError
			if !errors.As(err, &ire) || ire.Reason != tt.reason {
				t.Errorf("err = %v, want reason %q", err, tt.reason)
			}
		})
	}
}

func TestField(t *testing.T) {
	rec := []byte(`{"stream_id":42,"id":"","name":"  Name é ","title":"T","num":1.0,"nested":{"a":1}}`)
	tests := []struct {
		keys []string
		want string
	}{
		{[]string{"id", "stream_id"}, "42"},
		{[]string{"name"}, "Name é"},
		{[]string{"missing", "title"}, "T"},
		{[]string{"num"}, "1"},
		{[]string{"nested"}, ""},
	}
	for _, tt := range tests {
		if got := Field(rec, tt.keys...); got != tt.want {
			t.Errorf("Field(%v) = %q, want %q", tt.keys, got, tt.want)
		}
	}
}

func TestEachRecordSkipsNonObjects(t *testing.T) {
	var seen []int
	err := EachRecord([]byte(`[{"a":1}, 3, "x", {"b":2}]`), func(i int, _ []byte) {
		seen = append(seen, i)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Errorf("seen = %v", seen)
	}
}
