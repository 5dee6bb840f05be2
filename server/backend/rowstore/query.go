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
	"sort"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/util"

	"github.com/jmoiron/sqlx"
)

// Constraint is an equality condition. Value is always sent as a bind parameter.
type Constraint struct {
	Column string
	Value  any
}

// Query selects at most one row from Table.
type Query struct {
	Table string

	// Columns lists the columns to return. An empty list selects all columns.
	Columns []string

	Constraints []Constraint
}

// Row maps column names to nullable values.
type Row map[string]*string

// Get returns the value of column. Column names are matched case-insensitively, since drivers differ in how they
// report them.
func (r Row) Get(column string) (*string, bool) {
	if value, found := r[column]; found {
		return value, true
	}

	for key, value := range r {
		if strings.EqualFold(key, column) {
			return value, true
		}
	}

	return nil, false
}

// SortConstraints orders constraints by column name.
func SortConstraints(constraints []Constraint) {
	sort.SliceStable(constraints, func(i, j int) bool {
		return constraints[i].Column < constraints[j].Column
	})
}

// QuoteIdentifier validates name and quotes each dot separated part for the given driver.
func QuoteIdentifier(driver definitions.Driver, name string) (string, error) {
	if !util.ValidateSQLIdentifier(name) {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidIdentifier, name)
	}

	quote := `"`
	if driver == definitions.DriverMySQL {
		quote = "`"
	}

	parts := strings.Split(name, ".")
	for index := range parts {
		parts[index] = quote + parts[index] + quote
	}

	return strings.Join(parts, "."), nil
}

// Build renders the query for driver. The returned statement uses the driver's bind variable style.
func (q Query) Build(driver definitions.Driver) (string, []any, error) {
	var (
		sb   strings.Builder
		args []any
	)

	table, err := QuoteIdentifier(driver, q.Table)
	if err != nil {
		return "", nil, err
	}

	sb.WriteString("SELECT ")

	if len(q.Columns) == 0 {
		sb.WriteString("*")
	} else {
		for index, column := range q.Columns {
			quoted, err := QuoteIdentifier(driver, column)
			if err != nil {
				return "", nil, err
			}

			if index > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(quoted)
		}
	}

	sb.WriteString(" FROM ")
	sb.WriteString(table)

	for index, constraint := range q.Constraints {
		quoted, err := QuoteIdentifier(driver, constraint.Column)
		if err != nil {
			return "", nil, err
		}

		if index == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}

		sb.WriteString(quoted)
		sb.WriteString(" = ?")

		args = append(args, constraint.Value)
	}

	sb.WriteString(" LIMIT 1")

	return sqlx.Rebind(bindType(driver), sb.String()), args, nil
}

func bindType(driver definitions.Driver) int {
	switch driver {
	case definitions.DriverPostgres:
		return sqlx.DOLLAR
	default:
		return sqlx.QUESTION
	}
}
