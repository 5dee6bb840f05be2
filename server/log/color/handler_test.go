package color

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerPrefixesColoredLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Error("lookup failed", "table", "users")

	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\x1b[31;1mERROR\x1b[0m "), "unexpected prefix in %q", out)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.NotContains(t, out, "level=")
	assert.Contains(t, out, `msg="lookup failed"`)
	assert.Contains(t, out, "table=users")
}

func TestHandlerPadsShortLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewHandler(buf, nil))

	logger.Info("ready")

	assert.True(t, strings.HasPrefix(buf.String(), "\x1b[32mINFO \x1b[0m "), "unexpected prefix in %q", buf.String())
}

func TestHandlerHighlightsResult(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewHandler(buf, nil))

	logger.Info("Password check", "authenticated", true, "model", "User")
	logger.Info("Password check", "authenticated", false)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "authenticated=\x1b[32;1mtrue\x1b[0m model=User")
	assert.True(t, strings.HasSuffix(lines[1], "authenticated=\x1b[31;1mfalse\x1b[0m"), "got %q", lines[1])
}

func TestHandlerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("skipped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestHandlerWithAttrsAndGroups(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewHandler(buf, nil)).With("instance", "sqlpassdb").WithGroup("db")

	logger.Info("hello", "table", "users")

	assert.Contains(t, buf.String(), "instance=sqlpassdb")
	assert.Contains(t, buf.String(), "db.table=users")
}

func TestHandlerKeepsReplaceAttr(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}

	slog.New(NewHandler(buf, opts)).Info("no time")

	assert.NotContains(t, buf.String(), "time=")
	assert.Contains(t, buf.String(), `msg="no time"`)
}
