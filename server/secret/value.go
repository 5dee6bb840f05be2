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

// Package secret holds configuration secrets such as the pepper or the database password.
package secret

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
)

// Value stores secret material. Printing or logging a Value never shows its content.
type Value struct {
	data []byte
}

// New wraps a string secret into a Value.
func New(value string) Value {
	if value == "" {
		return Value{}
	}

	return Value{data: []byte(value)}
}

func (v Value) IsZero() bool {
	return len(v.data) == 0
}

func (v Value) Len() int {
	return len(v.data)
}

// Reveal returns the secret as a string. Use only when an API strictly requires one, e.g. a driver DSN.
func (v Value) Reveal() string {
	return string(v.data)
}

// Equal compares the secret with s in constant time.
func (v Value) Equal(s string) bool {
	return subtle.ConstantTimeCompare(v.data, []byte(s)) == 1
}

// String returns a placeholder. An empty secret prints as the empty string.
func (v Value) String() string {
	if v.IsZero() {
		return ""
	}

	return definitions.HiddenValue
}

func (v Value) GoString() string {
	return definitions.HiddenValue
}

// Format applies to every fmt verb, so %x or %q cannot leak the secret either.
func (v Value) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(v.String()))
}

func (v Value) LogValue() slog.Value {
	return slog.StringValue(definitions.HiddenValue)
}

// WithBytes provides a temporary copy of the secret and clears it afterwards.
func (v Value) WithBytes(fn func([]byte)) {
	if v.IsZero() {
		fn(nil)

		return
	}

	buf := bytes.Clone(v.data)
	defer clear(buf)

	fn(buf)
}

// WithString provides the secret as a string to fn.
func (v Value) WithString(fn func(string)) {
	v.WithBytes(func(buf []byte) {
		fn(string(buf))
	})
}

var (
	_ slog.LogValuer = Value{}
	_ fmt.Formatter  = Value{}
	_ fmt.GoStringer = Value{}
)
