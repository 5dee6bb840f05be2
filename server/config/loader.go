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

package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/secret"
	"github.com/croessner/nauthilus-sqlpassdb/server/util"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// envKeys are bound explicitly, so that environment variables work even if the key is missing from the file.
var envKeys = []string{
	"passdb.connection.dsn",
	"passdb.connection.adapter",
	"passdb.connection.database",
	"passdb.connection.host",
	"passdb.connection.port",
	"passdb.connection.username",
	"passdb.connection.password",
	"passdb.connection.max_open_conns",
	"passdb.connection.max_idle_conns",
	"passdb.connection.conn_max_lifetime",
	"passdb.connection.lookup_timeout",
	"passdb.connection.max_concurrent_lookups",
	"passdb.table",
	"passdb.username_column",
	"passdb.password_column",
	"passdb.password_salt_column",
	"passdb.pepper",
	"passdb.model_name",
	"log.level",
	"log.json",
	"log.color",
	"instance_name",
	"tracing.enabled",
	"tracing.exporter",
	"tracing.endpoint",
	"tracing.insecure",
	"tracing.service_name",
	"tracing.sampler_ratio",
	"tracing.propagators",
	"tracing.log_export_results",
}

var secretType = reflect.TypeOf(secret.Value{})

// Load reads a YAML, TOML or JSON file (selected by extension) and validates the passdb section. Values may be
// overridden with SQLPASSDB_ environment variables, e.g. SQLPASSDB_PASSDB_PEPPER.
//
// Keys read from a file are lower-cased, which also applies to extra attribute names and constraint columns. Use
// NewPassDBFromMap if the case of those keys matters.
func Load(path string) (*File, error) {
	reader := viper.New()

	reader.SetConfigFile(path)
	reader.SetEnvPrefix(definitions.EnvPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	reader.AutomaticEnv()

	for _, key := range envKeys {
		_ = reader.BindEnv(key)
	}

	if err := reader.ReadInConfig(); err != nil {
		return nil, errors.ErrSQLConfig.WithDetail(fmt.Sprintf("read config %q: %v", path, err)).WithCause(err)
	}

	if !reader.IsSet(definitions.ConfigRoot) {
		return nil, errors.ErrSQLConfig.WithDetail(errors.ErrNoPassDBSection.Error()).WithCause(errors.ErrNoPassDBSection)
	}

	file := &File{}

	if err := reader.Unmarshal(file, decoderOption()); err != nil {
		return nil, errors.ErrSQLConfig.WithDetail(err.Error()).WithCause(err)
	}

	if err := validate.Struct(file); err != nil {
		return nil, errors.ErrSQLConfig.WithDetail(formatValidationError(err)).WithCause(err)
	}

	if err := file.PassDB.Validate(); err != nil {
		return nil, err
	}

	util.DebugModule(definitions.DbgConfig, definitions.LogKeyMsg, "Configuration loaded", "passdb", file.PassDB.String())

	return file, nil
}

// NewPassDBFromMap decodes and validates a passdb section given as a plain map, for example by an embedding
// application. Key case is preserved.
func NewPassDBFromMap(settings map[string]any) (*PassDB, error) {
	passDB := &PassDB{}

	decoderConfig := &mapstructure.DecoderConfig{Result: passDB}
	decoderOption()(decoderConfig)

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, err
	}

	if err = decoder.Decode(settings); err != nil {
		return nil, errors.ErrSQLConfig.WithDetail(err.Error()).WithCause(err)
	}

	if err = passDB.Validate(); err != nil {
		return nil, err
	}

	return passDB, nil
}

func decoderOption() viper.DecoderConfigOption {
	return func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			secretHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
		config.WeaklyTypedInput = true
		config.ErrorUnused = true
	}
}

// secretHookFunc decodes scalars into secret.Value. Numbers are accepted since YAML has no quoting requirement.
func secretHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != secretType {
			return data, nil
		}

		switch value := data.(type) {
		case nil:
			return secret.Value{}, nil
		case secret.Value:
			return value, nil
		case string:
			return secret.New(value), nil
		case map[string]any, []any:
			return nil, fmt.Errorf("secret value must be a scalar, got %T", data)
		default:
			return secret.New(fmt.Sprint(value)), nil
		}
	}
}
