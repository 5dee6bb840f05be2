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
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/croessner/nauthilus-sqlpassdb/server/backend/rowstore"
	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/util"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("sql_identifier", isSQLIdentifier)

	return v
}

// isSQLIdentifier validates table and column names that are interpolated into statements.
func isSQLIdentifier(fl validator.FieldLevel) bool {
	return util.ValidateSQLIdentifier(fl.Field().String())
}

// Validate checks the section once. A valid PassDB must not be changed afterwards.
func (p *PassDB) Validate() error {
	if p == nil {
		return errors.ErrSQLConfig.WithDetail(errors.ErrNoPassDBSection.Error())
	}

	if err := validate.Struct(p); err != nil {
		return errors.ErrSQLConfig.WithDetail(formatValidationError(err)).WithCause(err)
	}

	// Constraint values may be false, 0 or "", so only the keys are checked.
	columns := make([]string, 0, len(p.ConstraintColumns))
	for column := range p.ConstraintColumns {
		columns = append(columns, column)
	}

	sort.Strings(columns)

	for _, column := range columns {
		if !util.ValidateSQLIdentifier(column) {
			return errors.ErrSQLConfig.WithDetail(fmt.Sprintf("Invalid constraint column %q", column))
		}

		value := p.ConstraintColumns[column]

		if value == nil {
			return errors.ErrSQLConfig.WithDetail(fmt.Sprintf("Constraint column %q has no value", column))
		}

		if !isScalar(value) {
			return errors.ErrSQLConfig.WithDetail(fmt.Sprintf("Constraint column %q has unsupported value type %T", column, value))
		}
	}

	return p.Connection.validate()
}

// isScalar reports whether value can be bound as a single statement parameter.
func isScalar(value any) bool {
	switch value.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time:
		return true
	default:
		return false
	}
}

func (c *Connection) validate() error {
	if c.DSN != "" && c.Adapter != "" {
		return errors.ErrSQLConfig.WithDetail("Connection 'dsn' and 'adapter' are mutually exclusive")
	}

	if c.DSN == "" {
		if c.Adapter == "" {
			return errors.ErrSQLConfig.WithDetail("Connection requires 'dsn' or 'adapter'")
		}

		if rowstore.AdapterDriver(c.Adapter) == definitions.DriverUnknown {
			return errors.ErrSQLConfig.WithDetail(fmt.Sprintf("Unsupported adapter %q", c.Adapter)).
				WithCause(errors.ErrUnsupportedSQLDriver)
		}
	}

	dsn, err := c.GetDSN()
	if err != nil {
		return toConfigError(err)
	}

	if _, err = rowstore.ParseDSN(dsn); err != nil {
		return toConfigError(err)
	}

	return nil
}

func toConfigError(err error) error {
	if stderrors.Is(err, errors.ErrSQLConfig) {
		return err
	}

	return errors.ErrSQLConfig.WithDetail(err.Error()).WithCause(err)
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors

	if !stderrors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))

	for _, fieldError := range validationErrors {
		if fieldError.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s: failed on '%s=%s'", fieldError.Namespace(), fieldError.Tag(), fieldError.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s: failed on '%s'", fieldError.Namespace(), fieldError.Tag()))
		}
	}

	return strings.Join(messages, "; ")
}
