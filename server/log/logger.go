// Copyright (C) 2026 Christian Rößner
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/log/color"
	"github.com/mattn/go-isatty"
)

var (
	mu sync.Mutex

	// Logger is used for all messages that are printed to stdout
	Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// ParseLevel maps a textual verbosity to one of the LogLevel constants.
func ParseLevel(value string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return definitions.LogLevelNone, nil
	case "error":
		return definitions.LogLevelError, nil
	case "warn", "warning":
		return definitions.LogLevelWarn, nil
	case "", "info":
		return definitions.LogLevelInfo, nil
	case "debug":
		return definitions.LogLevelDebug, nil
	default:
		return definitions.LogLevelNone, errors.ErrWrongVerboseLevel
	}
}

// UseColor reports whether colored output makes sense for the given writer.
func UseColor(out *os.File) bool {
	return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
}

// SetupLogging initializes the global "Logger" object writing to stdout.
func SetupLogging(configLogLevel int, formatJSON bool, useColor bool, instance string) {
	SetupLoggingWriter(os.Stdout, configLogLevel, formatJSON, useColor, instance)
}

// SetupLoggingWriter initializes the global "Logger" object writing to out.
func SetupLoggingWriter(out io.Writer, configLogLevel int, formatJSON bool, useColor bool, instance string) {
	mu.Lock()

	defer mu.Unlock()

	Logger = NewLogger(out, configLogLevel, formatJSON, useColor, instance)
}

// NewLogger builds a logger without touching the global one.
func NewLogger(out io.Writer, configLogLevel int, formatJSON bool, useColor bool, instance string) *slog.Logger {
	if configLogLevel == definitions.LogLevelNone {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := &slog.HandlerOptions{Level: toSlogLevel(configLogLevel)}

	var handler slog.Handler

	switch {
	case formatJSON:
		handler = slog.NewJSONHandler(out, opts)
	case useColor:
		handler = color.NewHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler).With(definitions.LogKeyInstance, instance)
}

func toSlogLevel(configLogLevel int) slog.Level {
	switch configLogLevel {
	case definitions.LogLevelError:
		return slog.LevelError
	case definitions.LogLevelWarn:
		return slog.LevelWarn
	case definitions.LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
