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

package definitions

import "time"

// Logging strings.
const (
	LogKeyGUID         = "session"
	LogKeyMsg          = "msg"
	LogKeyError        = "error"
	LogKeyErrorDetails = "error_details"
	LogKeyInstance     = "instance"
	LogKeyUsername     = "username"
	LogKeyModel        = "model"
	LogKeyTable        = "table"
	LogKeyScheme       = "scheme"
	LogKeyDriver       = "driver"
	LogKeyQuery        = "query"
	LogKeyStatus       = "authenticated"
	LogKeyUserFound    = "user_found"
	LogKeyLatency      = "latency"
	LogKeyDebugModule  = "debug_module"

	NotAvailable = "N/A"
	HiddenValue  = "<hidden>"
)

// Defaults.
const (
	InstanceName = "sqlpassdb"

	SQLMaxConns        = 10
	SQLMaxIdleConns    = 10
	SQLConnMaxLifetime = 3 * time.Minute
	SQLLookupTimeout   = 5 * time.Second

	TelemetryShutdownTimeout = 5 * time.Second

	EnvPrefix  = "SQLPASSDB"
	ConfigRoot = "passdb"
)

// Log level.
const (
	LogLevelNone  = iota
	LogLevelError = iota
	LogLevelWarn  = iota
	LogLevelInfo  = iota
	LogLevelDebug = iota
)

// Debug modules.
const (
	DbgAll    DbgModule = iota
	DbgPassDB DbgModule = iota
	DbgSQL    DbgModule = iota
	DbgConfig DbgModule = iota
)

const (
	DbgAllName    = "all"
	DbgPassDBName = "passdb"
	DbgSQLName    = "sql"
	DbgConfigName = "config"
)

// Password schemes recognized in stored password values.
const (
	SchemeUnknown        Scheme = iota
	SchemeBcrypt         Scheme = iota
	SchemePHPass         Scheme = iota
	SchemeIteratedDigest Scheme = iota
	SchemeCrypt          Scheme = iota
	SchemePlain          Scheme = iota
)

const (
	SchemeUnknownName        = "unknown"
	SchemeBcryptName         = "bcrypt"
	SchemePHPassName         = "phpass"
	SchemeIteratedDigestName = "iterated_digest"
	SchemeCryptName          = "crypt"
	SchemePlainName          = "plaintext"
)

// Supported SQL drivers.
const (
	DriverUnknown  Driver = iota
	DriverMySQL    Driver = iota
	DriverPostgres Driver = iota
	DriverSQLite   Driver = iota
)

const (
	DriverUnknownName  = "unknown"
	DriverMySQLName    = "mysql"
	DriverPostgresName = "postgresql"
	DriverSQLiteName   = "sqlite"
)

// Iterated digest scheme parameters.
const (
	IteratedDigestRounds    = 10
	IteratedDigestSeparator = "--"
)

// Statistics labels for the validation counter.
const (
	LabelSuccess   = "success"
	LabelFailure   = "failure"
	LabelNotFound  = "not_found"
	LabelTempFail  = "tempfail"
	LabelLookupErr = "lookup_error"
)
