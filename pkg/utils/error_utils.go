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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrorDetailLevel represents the level of error detail to display
type ErrorDetailLevel int

const (
	// ErrorDetailNone suppresses printing; errors are still annotated
	ErrorDetailNone ErrorDetailLevel = iota
	// ErrorDetailSimple adds file, line and function (default)
	ErrorDetailSimple
	// ErrorDetailFull adds the stack trace
	ErrorDetailFull
)

func getErrorDetailLevel() ErrorDetailLevel {
	switch strings.ToLower(os.Getenv("ERROR_DETAIL_LEVEL")) {
	case "none":
		return ErrorDetailNone
	case "full":
		return ErrorDetailFull
	default:
		return ErrorDetailSimple
	}
}

// LocatedError carries the call site of an infrastructure failure while
// keeping the original error reachable through errors.Is / errors.As.
type LocatedError struct {
	Err      error
	File     string
	Line     int
	Function string
	Stack    string
}

func (e *LocatedError) Error() string {
	if e.Stack != "" {
		return fmt.Sprintf(`
Error Location:
  File: %s
  Line: %d
  Function: %s
Error Details:
  %v
Stack Trace:
%s`, e.File, e.Line, e.Function, e.Err, e.Stack)
	}
	return fmt.Sprintf("%s:%d [%s]: %v", e.File, e.Line, e.Function, e.Err)
}

func (e *LocatedError) Unwrap() error { return e.Err }

// locate annotates err with the frame skip levels above its caller.
func locate(err error, skip int) error {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return err
	}
	le := &LocatedError{
		Err:  err,
		File: filepath.Base(file),
		Line: line,
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		le.Function = filepath.Base(fn.Name())
	}
	if getErrorDetailLevel() == ErrorDetailFull {
		buffer := make([]byte, 4096)
		n := runtime.Stack(buffer, false)
		stackLines := strings.Split(string(buffer[:n]), "\n")
		if len(stackLines) > 0 {
			stackLines = stackLines[1:]
		}
		le.Stack = strings.Join(stackLines, "\n")
	}
	return le
}

// ErrorWithLocation wraps an error with location information based on detail level
func ErrorWithLocation(err error) error {
	if err == nil {
		return nil
	}
	return locate(err, 1)
}

// PrintErrorAndReturn prints the annotated error to stderr (unless the
// detail level is none) and returns it.
func PrintErrorAndReturn(err error) error {
	if err == nil {
		return nil
	}

	wrappedErr := locate(err, 1)
	if getErrorDetailLevel() != ErrorDetailNone {
		fmt.Fprintln(os.Stderr, wrappedErr)
	}
	return wrappedErr
}
