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
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/log"
	"github.com/croessner/nauthilus-sqlpassdb/server/log/level"
	"github.com/croessner/nauthilus-sqlpassdb/server/monitoring/trace"
	"github.com/croessner/nauthilus-sqlpassdb/server/stats"
	"github.com/croessner/nauthilus-sqlpassdb/server/util"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/semaphore"
)

// Store returns at most one row per query.
type Store interface {
	// Find returns the first matching row. A missing row is reported with found == false and a nil error.
	Find(ctx context.Context, query Query) (row Row, found bool, err error)

	Close() error
}

// Options configures a SQLStore.
type Options struct {
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// LookupTimeout bounds every Find call. Zero selects the default.
	LookupTimeout time.Duration

	// MaxConcurrentLookups limits parallel Find calls. Zero means no limit besides the pool size.
	MaxConcurrentLookups int64

	// Model labels log lines and metrics.
	Model string

	Tracer trace.Tracer
}

// SQLStore is a Store on top of a sqlx connection pool. It is safe for concurrent use.
type SQLStore struct {
	db      *sqlx.DB
	driver  definitions.Driver
	timeout time.Duration
	model   string
	sem     *semaphore.Weighted
	tracer  trace.Tracer
}

var _ Store = (*SQLStore)(nil)

// Open parses opts.DSN and prepares the pool. No connection is established until the first lookup.
func Open(opts Options) (*SQLStore, error) {
	source, err := ParseDSN(opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(source.DriverName(), source.Name)
	if err != nil {
		return nil, errors.ErrNoDatabaseConnection.WithDetail(source.Driver.String()).WithCause(err)
	}

	return NewSQLStore(db, source.Driver, opts), nil
}

// NewSQLStore wraps an already opened pool.
func NewSQLStore(db *sqlx.DB, driver definitions.Driver, opts Options) *SQLStore {
	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = definitions.SQLMaxConns
	}

	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = definitions.SQLMaxIdleConns
	}

	lifetime := opts.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = definitions.SQLConnMaxLifetime
	}

	db.SetConnMaxLifetime(lifetime)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	store := &SQLStore{
		db:      db,
		driver:  driver,
		timeout: opts.LookupTimeout,
		model:   opts.Model,
		tracer:  opts.Tracer,
	}

	if store.timeout <= 0 {
		store.timeout = definitions.SQLLookupTimeout
	}

	if store.model == "" {
		store.model = definitions.NotAvailable
	}

	if store.tracer == nil {
		store.tracer = trace.New("sqlpassdb/rowstore")
	}

	if opts.MaxConcurrentLookups > 0 {
		store.sem = semaphore.NewWeighted(opts.MaxConcurrentLookups)
	}

	return store
}

// Driver returns the SQL dialect of the store.
func (s *SQLStore) Driver() definitions.Driver {
	return s.driver
}

// Find implements Store.
func (s *SQLStore) Find(ctx context.Context, query Query) (row Row, found bool, err error) {
	statement, args, err := query.Build(s.driver)
	if err != nil {
		return nil, false, errors.ErrLookup.WithDetail("Invalid query").WithCause(err)
	}

	ctx, span := s.tracer.StartClient(ctx, "rowstore.find",
		trace.DBSystem.String(s.driver.String()),
		trace.DBTable.String(query.Table),
	)

	defer func() {
		trace.Finish(span, err, trace.DBRowFound.Bool(found))
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	defer cancel()

	if s.sem != nil {
		if err = s.sem.Acquire(ctx, 1); err != nil {
			stats.LookupErrorsCounter.WithLabelValues(s.model).Inc()

			return nil, false, errors.ErrLookup.WithDetail("Waiting for a free lookup slot").WithCause(err)
		}

		defer s.sem.Release(1)
	}

	stats.LookupsInFlight.WithLabelValues(s.model).Inc()

	defer stats.LookupsInFlight.WithLabelValues(s.model).Dec()

	util.DebugModule(definitions.DbgSQL,
		definitions.LogKeyModel, s.model,
		definitions.LogKeyTable, query.Table,
		definitions.LogKeyQuery, statement,
	)

	start := time.Now()
	result := make(map[string]any)

	err = s.db.QueryRowxContext(ctx, statement, args...).MapScan(result)

	stats.LookupDurationHist.WithLabelValues(s.model).Observe(time.Since(start).Seconds())

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		stats.LookupErrorsCounter.WithLabelValues(s.model).Inc()

		level.Error(log.Logger).Log(
			definitions.LogKeyModel, s.model,
			definitions.LogKeyTable, query.Table,
			definitions.LogKeyLatency, util.FormatDurationMs(time.Since(start)),
			definitions.LogKeyError, err,
		)

		return nil, false, errors.ErrLookup.WithDetail(fmt.Sprintf("Query on table %q failed", query.Table)).WithCause(err)
	}

	row = make(Row, len(result))
	for column, value := range result {
		row[column] = util.NormalizeValue(value)
	}

	return row, true, nil
}

// Close releases the pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
