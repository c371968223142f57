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
	"errors"
	"strings"
)

// ErrEmptyResult is an adapter success that normalized to zero channels.
var ErrEmptyResult = errors.New("no channels in provider response")

// AdapterError is the failure of one adapter.
type AdapterError struct {
	Adapter string
	Err     error
}

func (e AdapterError) Error() string {
	return e.Adapter + ": " + e.Err.Error()
}

func (e AdapterError) Unwrap() error { return e.Err }

// AcquisitionError is returned when every adapter failed.
type AcquisitionError struct {
	Causes []AdapterError
}

// Error is the message shown to end users.
func (e *AcquisitionError) Error() string {
	var b strings.Builder
	b.WriteString("לא ניתן לטעון ערוצים מהשרת.")
	if len(e.Causes) > 0 {
		b.WriteString(" שיטות שנוסו:")
		for _, c := range e.Causes {
			b.WriteString("\n")
			b.WriteString(c.Adapter)
			b.WriteString(": ")
			b.WriteString(c.Err.Error())
		}
	}
	b.WriteString("\nאנא בדוק את פרטי ההתחברות ונסה שוב.")
	return b.String()
}

func (e *AcquisitionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes))
	for _, c := range e.Causes {
		errs = append(errs, c)
	}
	return errs
}
