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

package errors

import (
	"errors"
)

// DetailedError is a sentinel error that can carry a human-readable detail and an underlying cause. The With*
// methods return copies, so package level sentinels are never modified and can be shared between goroutines.
type DetailedError struct {
	err      error
	cause    error
	guid     string
	details  string
	model    string
}

func (d *DetailedError) Error() string {
	if d.details == "" {
		return d.err.Error()
	}

	return d.err.Error() + ": " + d.details
}

// Is reports whether target is the sentinel this error was derived from.
func (d *DetailedError) Is(target error) bool {
	if d == nil {
		return target == nil
	}

	if t, ok := target.(*DetailedError); ok {
		return t.err == d.err
	}

	return false
}

// Unwrap returns the cause attached with WithCause.
func (d *DetailedError) Unwrap() error {
	if d == nil {
		return nil
	}

	return d.cause
}

func (d *DetailedError) clone() *DetailedError {
	cp := *d

	return &cp
}

func (d *DetailedError) WithGUID(guid string) *DetailedError {
	if d == nil {
		return nil
	}

	cp := d.clone()
	cp.guid = guid

	return cp
}

func (d *DetailedError) WithDetail(detail string) *DetailedError {
	if d == nil {
		return nil
	}

	cp := d.clone()
	cp.details = detail

	return cp
}

// WithModel records the passdb model the error belongs to.
func (d *DetailedError) WithModel(model string) *DetailedError {
	if d == nil {
		return nil
	}

	cp := d.clone()
	cp.model = model

	return cp
}

func (d *DetailedError) WithCause(cause error) *DetailedError {
	if d == nil {
		return nil
	}

	cp := d.clone()
	cp.cause = cause

	return cp
}

func (d *DetailedError) GetGUID() string {
	return d.guid
}

func (d *DetailedError) GetDetails() string {
	return d.details
}

func (d *DetailedError) GetModel() string {
	return d.model
}

func NewDetailedError(err string) *DetailedError {
	return &DetailedError{err: errors.New(err)}
}

// sql.

var (
	ErrSQLConfig            = NewDetailedError("sql_config_error")
	ErrLookup               = NewDetailedError("sql_lookup_error")
	ErrNoDatabaseConnection = NewDetailedError("sql_no_connection")
	ErrUnsupportedSQLDriver = errors.New("unsupported SQL driver")
	ErrInvalidIdentifier    = errors.New("invalid SQL identifier")
)

// config.

var (
	ErrNoPassDBSection   = errors.New("no 'passdb:' section found")
	ErrWrongVerboseLevel = errors.New("wrong verbose level")
	ErrMissingOption     = errors.New("missing required option")
)

// util.

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
	ErrMalformedHash        = errors.New("malformed password hash")
	ErrMissingSalt          = errors.New("missing external salt")
)
