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
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel represents logging levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	logMu        sync.RWMutex
	logLevel     = LevelInfo
	debugEnabled bool
	logFile      *os.File
)

func init() {
	debug := os.Getenv("DEBUG_LOGGING") == "true"
	Configure(os.Getenv("LOG_LEVEL"), debug, os.Getenv("LOG_FILE"))
}

// Configure sets the level, debug switch and optional log file.
// An unknown level falls back to debug when debug is set, info otherwise.
func Configure(level string, debug bool, file string) {
	logMu.Lock()
	defer logMu.Unlock()

	debugEnabled = debug
	logLevel = ParseLevel(level, debug)

	if file == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		log.Printf("Error creating log directory: %v", err)
		return
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Error opening log file: %v", err)
		return
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	log.SetOutput(f)
}

// ParseLevel converts a level name to a LogLevel.
func ParseLevel(level string, debug bool) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	if debug {
		return LevelDebug
	}
	return LevelInfo
}

// Close closes any open log files
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
		log.SetOutput(os.Stderr)
	}
}

func enabled(level LogLevel) bool {
	logMu.RLock()
	defer logMu.RUnlock()
	if level == LevelDebug {
		return debugEnabled || logLevel == LevelDebug
	}
	return logLevel <= level
}

// DebugLog logs a debug message if debug logging is enabled
func DebugLog(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		logWithCaller(LevelDebug, format, v...)
	}
}

// InfoLog logs an info message
func InfoLog(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		logWithCaller(LevelInfo, format, v...)
	}
}

// WarnLog logs a warning message
func WarnLog(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		logWithCaller(LevelWarn, format, v...)
	}
}

// ErrorLog logs an error message
func ErrorLog(format string, v ...interface{}) {
	if enabled(LevelError) {
		logWithCaller(LevelError, format, v...)
	}
}

func logWithCaller(level LogLevel, format string, v ...interface{}) {
	_, file, line, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	log.Println(fmt.Sprintf("%s [%s] (%s) %s",
		timestamp, level, caller, fmt.Sprintf(format, v...)))
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
