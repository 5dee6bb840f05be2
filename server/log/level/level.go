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

// Package level adapts keyval style log calls to log/slog:
//
//	level.Info(logger).Log(definitions.LogKeyMsg, "User found", definitions.LogKeyUsername, username)
//
// The definitions.LogKeyMsg pair becomes the record message, all other pairs become attributes.
package level

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
)

const (
	badKey   = "!BADKEY"
	nilValue = "<nil>"
)

// Logger is the keyval logger returned by Debug, Info, Warn, Error and At.
type Logger interface {
	Log(keyvals ...any) error
}

type leveled struct {
	ctx    context.Context
	logger *slog.Logger
	level  slog.Level
}

// At returns a Logger for an arbitrary level. ctx is handed to the slog handler and may be nil.
func At(ctx context.Context, l *slog.Logger, lvl slog.Level) Logger {
	if l == nil {
		l = slog.Default()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return &leveled{ctx: ctx, logger: l, level: lvl}
}

func Debug(l *slog.Logger) Logger { return At(context.Background(), l, slog.LevelDebug) }

func Info(l *slog.Logger) Logger { return At(context.Background(), l, slog.LevelInfo) }

func Warn(l *slog.Logger) Logger { return At(context.Background(), l, slog.LevelWarn) }

func Error(l *slog.Logger) Logger { return At(context.Background(), l, slog.LevelError) }

// Log emits one record if the level is enabled. It never fails.
func (l *leveled) Log(keyvals ...any) error {
	if !l.logger.Enabled(l.ctx, l.level) {
		return nil
	}

	msg, attrs := splitKeyvals(keyvals)
	if msg == "" {
		msg = strings.ToLower(l.level.String())
	}

	l.logger.LogAttrs(l.ctx, l.level, msg, attrs...)

	return nil
}

// splitKeyvals separates the message from the attributes. A dangling value is kept under "!BADKEY", as slog does.
func splitKeyvals(keyvals []any) (msg string, attrs []slog.Attr) {
	attrs = make([]slog.Attr, 0, (len(keyvals)+1)/2)

	for len(keyvals) > 0 {
		if len(keyvals) == 1 {
			attrs = append(attrs, slog.Attr{Key: badKey, Value: attrValue(keyvals[0])})

			break
		}

		key, ok := keyvals[0].(string)
		if !ok {
			key = fmt.Sprint(keyvals[0])
		}

		value := keyvals[1]
		keyvals = keyvals[2:]

		if text, isString := value.(string); isString && key == definitions.LogKeyMsg && msg == "" {
			msg = text

			continue
		}

		attrs = append(attrs, slog.Attr{Key: key, Value: attrValue(value)})
	}

	return msg, attrs
}

func attrValue(value any) slog.Value {
	switch v := value.(type) {
	case nil:
		return slog.StringValue(nilValue)
	case string:
		return slog.StringValue(v)
	case *string:
		if v == nil {
			return slog.StringValue(nilValue)
		}

		return slog.StringValue(*v)
	case error:
		if isNil(v) {
			return slog.StringValue(nilValue)
		}

		return slog.StringValue(v.Error())
	}

	// Typed nil pointers make some LogValuer and Stringer implementations panic.
	if isNil(value) {
		return slog.StringValue(nilValue)
	}

	return slog.AnyValue(value)
}

func isNil(value any) bool {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
