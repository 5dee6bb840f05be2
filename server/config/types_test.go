package config

import (
	"testing"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbositySet(t *testing.T) {
	testCases := []struct {
		value string
		level int
		name  string
	}{
		{"debug", definitions.LogLevelDebug, "debug"},
		{" WARN ", definitions.LogLevelWarn, "warn"},
		{"", definitions.LogLevelInfo, "info"},
		{"none", definitions.LogLevelNone, "none"},
	}

	for _, tc := range testCases {
		v := &Verbosity{}

		require.NoError(t, v.Set(tc.value))
		assert.Equal(t, tc.level, v.Level())
		assert.Equal(t, tc.name, v.Get())
	}

	assert.ErrorIs(t, (&Verbosity{}).Set("loud"), errors.ErrWrongVerboseLevel)
}

func TestVerbosityIsFlagValue(t *testing.T) {
	v := &Verbosity{}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	flags.Var(v, "log-level", "")

	require.NoError(t, flags.Parse([]string{"--log-level", "error"}))
	assert.Equal(t, definitions.LogLevelError, v.Level())
}
