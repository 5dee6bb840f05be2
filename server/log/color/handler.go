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

// Package color provides a slog.Handler for terminals. Lines are formatted by slog.TextHandler, start with a colored
// level tag and show the authentication result in green or red.
package color

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"

	fcolor "github.com/fatih/color"
)

var (
	levelColors = map[slog.Level]*fcolor.Color{
		slog.LevelDebug: forced(fcolor.FgCyan),
		slog.LevelInfo:  forced(fcolor.FgGreen),
		slog.LevelWarn:  forced(fcolor.FgYellow),
		slog.LevelError: forced(fcolor.FgRed, fcolor.Bold),
	}

	accepted = forced(fcolor.FgGreen, fcolor.Bold)
	rejected = forced(fcolor.FgRed, fcolor.Bold)
)

// forced returns a color that is printed even if fatih/color decides stdout is not a terminal. The caller of
// NewHandler made that decision already.
func forced(attrs ...fcolor.Attribute) *fcolor.Color {
	c := fcolor.New(attrs...)
	c.EnableColor()

	return c
}

// Handler is a slog.Handler writing colored text lines.
type Handler struct {
	mu     *sync.Mutex
	out    io.Writer
	opts   slog.HandlerOptions
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a Handler writing to out. opts may be nil.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{mu: &sync.Mutex{}, out: out}

	if opts != nil {
		h.opts = *opts
	}

	return h
}

func (h *Handler) Enabled(_ context.Context, lvl slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return lvl >= minLevel
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var buf bytes.Buffer

	opts := h.opts
	opts.ReplaceAttr = h.replaceAttr

	var inner slog.Handler = slog.NewTextHandler(&buf, &opts)

	for _, group := range h.groups {
		inner = inner.WithGroup(group)
	}

	if len(h.attrs) > 0 {
		inner = inner.WithAttrs(h.attrs)
	}

	if err := inner.Handle(ctx, r); err != nil {
		return err
	}

	line := highlightResult(strings.TrimSuffix(buf.String(), "\n"))

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := fmt.Fprintf(h.out, "%s %s\n", levelColor(r.Level).Sprintf("%-5s", r.Level.String()), line)

	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	if len(attrs) > 0 {
		cp.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	}

	return &cp
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	cp := *h
	cp.groups = append(append([]string(nil), h.groups...), name)

	return &cp
}

// replaceAttr drops the level, which is printed as tag instead, and then applies the caller's ReplaceAttr.
func (h *Handler) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		return slog.Attr{}
	}

	if h.opts.ReplaceAttr != nil {
		return h.opts.ReplaceAttr(groups, a)
	}

	return a
}

// highlightResult colors the value of the authentication result attribute. slog.TextHandler would quote escape
// sequences, so this works on the formatted line.
func highlightResult(line string) string {
	for value, c := range map[string]*fcolor.Color{"true": accepted, "false": rejected} {
		field := " " + definitions.LogKeyStatus + "=" + value

		if idx := strings.Index(line+" ", field+" "); idx >= 0 {
			return line[:idx] + " " + definitions.LogKeyStatus + "=" + c.Sprint(value) + line[idx+len(field):]
		}
	}

	return line
}

func levelColor(lvl slog.Level) *fcolor.Color {
	switch {
	case lvl >= slog.LevelError:
		return levelColors[slog.LevelError]
	case lvl >= slog.LevelWarn:
		return levelColors[slog.LevelWarn]
	case lvl >= slog.LevelInfo:
		return levelColors[slog.LevelInfo]
	default:
		return levelColors[slog.LevelDebug]
	}
}

var _ slog.Handler = (*Handler)(nil)
