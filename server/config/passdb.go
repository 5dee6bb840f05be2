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
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/croessner/nauthilus-sqlpassdb/server/backend/rowstore"
	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/secret"
)

var nonLetters = regexp.MustCompile(`[^a-zA-Z]+`)

// File is the root of a configuration file.
type File struct {
	InstanceName string   `mapstructure:"instance_name" validate:"omitempty,printascii"`
	PassDB       *PassDB  `mapstructure:"passdb" validate:"required"`
	Log          *Log     `mapstructure:"log"`
	Tracing      *Tracing `mapstructure:"tracing"`
}

// GetInstanceName returns the instance name reported in traces, "sqlpassdb" if unset.
func (f *File) GetInstanceName() string {
	if f == nil || f.InstanceName == "" {
		return definitions.InstanceName
	}

	return f.InstanceName
}

// GetTracing returns the tracing section. It may be nil.
func (f *File) GetTracing() *Tracing {
	if f == nil {
		return nil
	}

	return f.Tracing
}

// GetPassDB returns the passdb section.
func (f *File) GetPassDB() *PassDB {
	if f == nil {
		return nil
	}

	return f.PassDB
}

// GetLog returns the log section.
func (f *File) GetLog() *Log {
	if f == nil {
		return nil
	}

	return f.Log
}

// Log holds logging defaults. Command line flags take precedence.
type Log struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=none error warn warning info debug"`
	JSON  bool   `mapstructure:"json"`
	Color *bool  `mapstructure:"color"`
}

// GetLevel returns the configured log level or "info".
func (l *Log) GetLevel() string {
	if l == nil || l.Level == "" {
		return "info"
	}

	return l.Level
}

// GetJSON reports whether log lines are written as JSON.
func (l *Log) GetJSON() bool {
	if l == nil {
		return false
	}

	return l.JSON
}

// GetColor returns the color setting and whether it was set at all.
func (l *Log) GetColor() (useColor bool, isSet bool) {
	if l == nil || l.Color == nil {
		return false, false
	}

	return *l.Color, true
}

// PassDB describes the user table and how to reach it.
type PassDB struct {
	Connection         *Connection       `mapstructure:"connection" validate:"required"`
	Table              string            `mapstructure:"table" validate:"required,sql_identifier"`
	UsernameColumn     string            `mapstructure:"username_column" validate:"required,sql_identifier"`
	PasswordColumn     string            `mapstructure:"password_column" validate:"required,sql_identifier"`
	PasswordSaltColumn string            `mapstructure:"password_salt_column" validate:"omitempty,sql_identifier"`
	Pepper             secret.Value      `mapstructure:"pepper"`
	ConstraintColumns  map[string]any    `mapstructure:"constraint_columns"`
	ExtraAttributes    map[string]string `mapstructure:"extra_attributes" validate:"omitempty,dive,keys,required,endkeys,required,sql_identifier"`
	ModelName          string            `mapstructure:"model_name" validate:"omitempty,printascii"`
}

func (p *PassDB) String() string {
	if p == nil {
		return "<nil>"
	}

	return fmt.Sprintf(
		"PassDB{Model:'%s' Connection:%s Table:'%s' UsernameColumn:'%s' PasswordColumn:'%s' PasswordSaltColumn:'%s' Pepper:'%s' ConstraintColumns:%v ExtraAttributes:%v}",
		p.GetModelName(), p.Connection, p.Table, p.UsernameColumn, p.PasswordColumn, p.PasswordSaltColumn,
		definitions.HiddenValue, p.ConstraintColumns, p.ExtraAttributes,
	)
}

// GetConnection returns the connection settings.
func (p *PassDB) GetConnection() *Connection {
	if p == nil {
		return nil
	}

	return p.Connection
}

// GetTable returns the user table name.
func (p *PassDB) GetTable() string {
	if p == nil {
		return ""
	}

	return p.Table
}

// GetUsernameColumn returns the column compared with the login name.
func (p *PassDB) GetUsernameColumn() string {
	if p == nil {
		return ""
	}

	return p.UsernameColumn
}

// GetPasswordColumn returns the column holding the password hash.
func (p *PassDB) GetPasswordColumn() string {
	if p == nil {
		return ""
	}

	return p.PasswordColumn
}

// GetPasswordSaltColumn returns the optional column holding an external salt.
func (p *PassDB) GetPasswordSaltColumn() string {
	if p == nil {
		return ""
	}

	return p.PasswordSaltColumn
}

// GetPepper returns the pepper. An unset pepper is empty.
func (p *PassDB) GetPepper() secret.Value {
	if p == nil {
		return secret.Value{}
	}

	return p.Pepper
}

// GetConstraints returns the fixed equality constraints ordered by column name.
func (p *PassDB) GetConstraints() []rowstore.Constraint {
	if p == nil || len(p.ConstraintColumns) == 0 {
		return nil
	}

	constraints := make([]rowstore.Constraint, 0, len(p.ConstraintColumns))

	for column, value := range p.ConstraintColumns {
		constraints = append(constraints, rowstore.Constraint{Column: column, Value: value})
	}

	rowstore.SortConstraints(constraints)

	return constraints
}

// GetExtraAttributes returns the mapping of output attribute names to source columns.
func (p *PassDB) GetExtraAttributes() map[string]string {
	if p == nil {
		return nil
	}

	return p.ExtraAttributes
}

// GetExtraAttributeNames returns the output attribute names in sorted order.
func (p *PassDB) GetExtraAttributeNames() []string {
	names := make([]string, 0, len(p.GetExtraAttributes()))

	for name := range p.GetExtraAttributes() {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// GetModelName returns the label used in logs and metrics. Without an explicit model_name it is derived from the
// table name, prefixed with the letters of the database name if the connection is given by parts.
func (p *PassDB) GetModelName() string {
	if p == nil {
		return ""
	}

	if p.ModelName != "" {
		return p.ModelName
	}

	name := p.Table

	if conn := p.GetConnection(); conn != nil && conn.DSN == "" && conn.Database != "" {
		name = nonLetters.ReplaceAllString(conn.Database, "") + "_" + name
	}

	return classify(name)
}

// classify turns a table name into a singular, camel-cased model name, e.g. "auth_users" becomes "AuthUser".
func classify(name string) string {
	if index := strings.LastIndex(name, "."); index >= 0 {
		name = name[index+1:]
	}

	name = singularize(name)

	var sb strings.Builder

	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}

		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}

	return sb.String()
}

func singularize(word string) string {
	lower := strings.ToLower(word)

	switch {
	case strings.HasSuffix(lower, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "sses"), strings.HasSuffix(lower, "xes"), strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"):
		return word
	case strings.HasSuffix(lower, "s") && len(word) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}

// Connection holds either a DSN or the parts of one.
type Connection struct {
	DSN      string            `mapstructure:"dsn"`
	Adapter  string            `mapstructure:"adapter"`
	Database string            `mapstructure:"database"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username string            `mapstructure:"username"`
	Password secret.Value      `mapstructure:"password"`
	Params   map[string]string `mapstructure:"params"`

	MaxOpenConns         int           `mapstructure:"max_open_conns" validate:"omitempty,min=0"`
	MaxIdleConns         int           `mapstructure:"max_idle_conns" validate:"omitempty,min=0"`
	ConnMaxLifetime      time.Duration `mapstructure:"conn_max_lifetime"`
	LookupTimeout        time.Duration `mapstructure:"lookup_timeout" validate:"omitempty,max=10m"`
	MaxConcurrentLookups int64         `mapstructure:"max_concurrent_lookups" validate:"omitempty,min=0"`
}

func (c *Connection) String() string {
	if c == nil {
		return "<nil>"
	}

	if c.DSN != "" {
		return fmt.Sprintf("{DSN:'%s'}", definitions.HiddenValue)
	}

	return fmt.Sprintf("{Adapter:'%s' Database:'%s' Host:'%s' Port:%d Username:'%s' Password:'%s'}",
		c.Adapter, c.Database, c.Host, c.Port, c.Username, definitions.HiddenValue)
}

// GetDSN returns the configured DSN or builds one from the connection parts.
func (c *Connection) GetDSN() (string, error) {
	if c == nil {
		return "", nil
	}

	if c.DSN != "" {
		return c.DSN, nil
	}

	return rowstore.Endpoint{
		Adapter:  c.Adapter,
		Database: c.Database,
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Params:   c.Params,
	}.FormatDSN()
}

// GetMaxOpenConns returns the pool size.
func (c *Connection) GetMaxOpenConns() int {
	if c == nil || c.MaxOpenConns <= 0 {
		return definitions.SQLMaxConns
	}

	return c.MaxOpenConns
}

// GetMaxIdleConns returns the number of idle connections kept in the pool.
func (c *Connection) GetMaxIdleConns() int {
	if c == nil || c.MaxIdleConns <= 0 {
		return definitions.SQLMaxIdleConns
	}

	return c.MaxIdleConns
}

// GetConnMaxLifetime returns how long a pooled connection may be reused.
func (c *Connection) GetConnMaxLifetime() time.Duration {
	if c == nil || c.ConnMaxLifetime <= 0 {
		return definitions.SQLConnMaxLifetime
	}

	return c.ConnMaxLifetime
}

// GetLookupTimeout returns the deadline of a single lookup.
func (c *Connection) GetLookupTimeout() time.Duration {
	if c == nil || c.LookupTimeout <= 0 {
		return definitions.SQLLookupTimeout
	}

	return c.LookupTimeout
}

// GetMaxConcurrentLookups returns the lookup concurrency limit. Zero means unlimited.
func (c *Connection) GetMaxConcurrentLookups() int64 {
	if c == nil || c.MaxConcurrentLookups < 0 {
		return 0
	}

	return c.MaxConcurrentLookups
}
