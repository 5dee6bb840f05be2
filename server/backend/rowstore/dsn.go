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

package rowstore

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/secret"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Names under which the drivers register themselves with database/sql.
const (
	driverNameMySQL    = "mysql"
	driverNamePostgres = "pgx"
	driverNameSQLite   = "sqlite3"
)

// DataSource is a parsed connection URL.
type DataSource struct {
	Driver definitions.Driver

	// Name is the driver specific data source name handed to sql.Open.
	Name string
}

// DriverName returns the database/sql driver name.
func (d DataSource) DriverName() string {
	switch d.Driver {
	case definitions.DriverMySQL:
		return driverNameMySQL
	case definitions.DriverPostgres:
		return driverNamePostgres
	case definitions.DriverSQLite:
		return driverNameSQLite
	default:
		return ""
	}
}

// ParseDSN selects a driver by the URL scheme of dsn. MySQL DSNs carry the go-sql-driver format after the
// "mysql://" prefix, PostgreSQL DSNs are passed to pgx unchanged and SQLite DSNs name a file (or ":memory:").
func ParseDSN(dsn string) (DataSource, error) {
	switch {
	case strings.HasPrefix(dsn, "mysql://"):
		name := dsn[strings.Index(dsn, "://")+3:]

		if _, err := mysql.ParseDSN(name); err != nil {
			return DataSource{}, errors.ErrSQLConfig.WithDetail(fmt.Sprintf("Invalid MySQL DSN: %v", err))
		}

		return DataSource{Driver: definitions.DriverMySQL, Name: name}, nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		if _, err := pgx.ParseConfig(dsn); err != nil {
			return DataSource{}, errors.ErrSQLConfig.WithDetail(fmt.Sprintf("Invalid PostgreSQL DSN: %v", err))
		}

		return DataSource{Driver: definitions.DriverPostgres, Name: dsn}, nil
	case strings.HasPrefix(dsn, "sqlite://") || strings.HasPrefix(dsn, "sqlite3://"):
		name := dsn[strings.Index(dsn, "://")+3:]
		if name == "" {
			return DataSource{}, errors.ErrSQLConfig.WithDetail("Missing SQLite database file")
		}

		return DataSource{Driver: definitions.DriverSQLite, Name: name}, nil
	default:
		return DataSource{}, errors.ErrUnsupportedSQLDriver
	}
}

// Endpoint describes a connection by its parts instead of a URL.
type Endpoint struct {
	Adapter  string
	Database string
	Host     string
	Port     int
	Username string
	Password secret.Value
	Params   map[string]string
}

// AdapterDriver maps an adapter name to a driver. Rails adapter names are accepted as aliases.
func AdapterDriver(adapter string) definitions.Driver {
	switch strings.ToLower(adapter) {
	case "mysql", "mysql2", "mariadb", "trilogy":
		return definitions.DriverMySQL
	case "postgres", "postgresql", "postgis", "pgx":
		return definitions.DriverPostgres
	case "sqlite", "sqlite3":
		return definitions.DriverSQLite
	default:
		return definitions.DriverUnknown
	}
}

// FormatDSN renders the endpoint as a URL understood by ParseDSN.
func (e Endpoint) FormatDSN() (string, error) {
	if e.Database == "" {
		return "", errors.ErrSQLConfig.WithDetail("Missing database name")
	}

	switch AdapterDriver(e.Adapter) {
	case definitions.DriverMySQL:
		cfg := mysql.NewConfig()

		cfg.User = e.Username
		cfg.Passwd = e.Password.Reveal()
		cfg.DBName = e.Database

		if e.Host != "" {
			cfg.Net = "tcp"
			cfg.Addr = e.Host

			if e.Port > 0 {
				cfg.Addr = net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
			}
		}

		if len(e.Params) > 0 {
			cfg.Params = make(map[string]string, len(e.Params))

			for key, value := range e.Params {
				cfg.Params[key] = value
			}
		}

		return "mysql://" + cfg.FormatDSN(), nil
	case definitions.DriverPostgres:
		dsn := &url.URL{
			Scheme: "postgres",
			Host:   e.Host,
			Path:   "/" + e.Database,
		}

		if e.Port > 0 {
			dsn.Host = net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
		}

		if e.Username != "" {
			if e.Password.IsZero() {
				dsn.User = url.User(e.Username)
			} else {
				dsn.User = url.UserPassword(e.Username, e.Password.Reveal())
			}
		}

		if len(e.Params) > 0 {
			query := url.Values{}

			for key, value := range e.Params {
				query.Set(key, value)
			}

			dsn.RawQuery = query.Encode()
		}

		return dsn.String(), nil
	case definitions.DriverSQLite:
		return "sqlite://" + e.Database, nil
	default:
		return "", errors.ErrUnsupportedSQLDriver
	}
}
