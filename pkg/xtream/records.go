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
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// InvalidResponseError means the provider answered, but not with a JSON
// array of records.
type InvalidResponseError struct {
	Action string
	Reason string
	// Snippet is the start of the offending body.
	Snippet string
}

func (e *InvalidResponseError) Error() string {
	msg := "invalid Xtream response"
	if e.Action != "" {
		msg += " to " + e.Action
	}
	msg += ": " + e.Reason
	if e.Snippet != "" {
		msg += fmt.Sprintf(" (%q)", e.Snippet)
	}
	return msg
}

// Reasons carried by InvalidResponseError.
const (
	ReasonHTML      = "html"
	ReasonNotArray  = "not a JSON array"
	ReasonMalformed = "malformed JSON"
)

const snippetLen = 64

var utf8BOM = []byte("\xef\xbb\xbf")

func snippet(b []byte) string {
	if len(b) > snippetLen {
		b = b[:snippetLen]
	}
	return string(b)
}

// ValidateArray trims a BOM and surrounding whitespace from body and checks
// that what remains is a JSON array. HTML error pages are reported with
// ReasonHTML.
func ValidateArray(body []byte) ([]byte, error) {
	trim := bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(body), utf8BOM))

	lower := strings.ToLower(snippet(trim))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return nil, &InvalidResponseError{Reason: ReasonHTML, Snippet: snippet(trim)}
	}
	if len(trim) == 0 || trim[0] != '[' {
		return nil, &InvalidResponseError{Reason: ReasonNotArray, Snippet: snippet(trim)}
	}
	if !json.Valid(trim) {
		return nil, &InvalidResponseError{Reason: ReasonMalformed, Snippet: snippet(trim)}
	}
	return trim, nil
}

// Field returns the first non-empty scalar among keys of a JSON object.
// Numbers are returned in their literal form, so 42 and "42" read the same.
func Field(record []byte, keys ...string) string {
	for _, key := range keys {
		value, dataType, _, err := jsonparser.Get(record, key)
		if err != nil {
			continue
		}
		var s string
		switch dataType {
		case jsonparser.String:
			s, err = jsonparser.ParseString(value)
			if err != nil {
				continue
			}
		case jsonparser.Number:
			s = string(value)
			if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
				s = strconv.FormatInt(int64(f), 10)
			}
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// EachRecord calls fn for every object of a JSON array, with its index.
// Non-object elements are skipped.
func EachRecord(data []byte, fn func(i int, record []byte)) error {
	i := 0
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil || dataType != jsonparser.Object {
			return
		}
		fn(i, value)
		i++
	})
	return err
}

// CategoryNames reads a *_categories listing into category_id -> category_name.
func CategoryNames(data []byte) (map[string]string, error) {
	names := make(map[string]string)
	err := EachRecord(data, func(_ int, record []byte) {
		id := Field(record, "category_id")
		name := Field(record, "category_name")
		if id != "" && name != "" {
			names[id] = name
		}
	})
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return names, nil
}
