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

package passdb

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/croessner/nauthilus-sqlpassdb/server/backend/rowstore"
	"github.com/croessner/nauthilus-sqlpassdb/server/config"
	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/log"
	"github.com/croessner/nauthilus-sqlpassdb/server/log/level"
	"github.com/croessner/nauthilus-sqlpassdb/server/monitoring/trace"
	"github.com/croessner/nauthilus-sqlpassdb/server/stats"
	"github.com/croessner/nauthilus-sqlpassdb/server/util"

	"github.com/segmentio/ksuid"
)

// Verifier checks credentials against a user table. It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	conf   *config.PassDB
	store  rowstore.Store
	model  string
	tracer trace.Tracer
	logger *slog.Logger
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithTracer replaces the tracer. It is also handed to the row store created by New.
func WithTracer(tracer trace.Tracer) Option {
	return func(v *Verifier) {
		if tracer != nil {
			v.tracer = tracer
		}
	}
}

// WithLogger sets a logger. Without it the global logger of the log package is used at call time.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// New validates conf and opens a connection pool for it.
func New(conf *config.PassDB, opts ...Option) (*Verifier, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	verifier := newVerifier(conf, nil, opts)

	dsn, err := conf.GetConnection().GetDSN()
	if err != nil {
		return nil, err
	}

	conn := conf.GetConnection()

	store, err := rowstore.Open(rowstore.Options{
		DSN:                  dsn,
		MaxOpenConns:         conn.GetMaxOpenConns(),
		MaxIdleConns:         conn.GetMaxIdleConns(),
		ConnMaxLifetime:      conn.GetConnMaxLifetime(),
		LookupTimeout:        conn.GetLookupTimeout(),
		MaxConcurrentLookups: conn.GetMaxConcurrentLookups(),
		Model:                verifier.model,
		Tracer:               verifier.tracer,
	})
	if err != nil {
		return nil, err
	}

	verifier.store = store

	util.DebugModule(definitions.DbgPassDB, definitions.LogKeyModel, verifier.model, definitions.LogKeyMsg, "Verifier created")

	return verifier, nil
}

// NewWithStore validates conf and uses store for all lookups.
func NewWithStore(conf *config.PassDB, store rowstore.Store, opts ...Option) (*Verifier, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if store == nil {
		return nil, errors.ErrNoDatabaseConnection.WithDetail("No row store given")
	}

	return newVerifier(conf, store, opts), nil
}

func newVerifier(conf *config.PassDB, store rowstore.Store, opts []Option) *Verifier {
	verifier := &Verifier{
		conf:   conf,
		store:  store,
		model:  conf.GetModelName(),
		tracer: trace.New("sqlpassdb/passdb"),
	}

	for _, opt := range opts {
		opt(verifier)
	}

	return verifier
}

// Model returns the model name used in logs and metrics.
func (v *Verifier) Model() string {
	return v.model
}

// Validate returns the user data if password matches the stored password of username. A wrong password, an unknown
// user or an unusable stored value yield nil without an error. Errors are only returned if the lookup failed.
func (v *Verifier) Validate(ctx context.Context, username string, password string) (*UserData, error) {
	guid := ksuid.New().String()
	start := time.Now()

	ctx, span := v.tracer.Start(ctx, "passdb.validate",
		trace.PassDBModel.String(v.model),
		trace.PassDBSession.String(guid),
	)

	defer span.End()

	row, found, err := v.findUser(ctx, username)
	if err != nil {
		trace.RecordError(span, err)
		stats.ValidationsCounter.WithLabelValues(v.model, definitions.LabelLookupErr).Inc()

		return nil, v.lookupError(guid, username, err)
	}

	if !found {
		stats.ValidationsCounter.WithLabelValues(v.model, definitions.LabelNotFound).Inc()
		v.logResult(guid, username, definitions.SchemeUnknown, false, false, start)

		return nil, nil
	}

	stored, _ := row.Get(v.conf.GetPasswordColumn())
	if stored == nil || *stored == "" {
		stats.ValidationsCounter.WithLabelValues(v.model, definitions.LabelFailure).Inc()
		v.logResult(guid, username, definitions.SchemeUnknown, true, false, start)

		return nil, nil
	}

	scheme := DetectScheme(*stored)

	stats.SchemeCounter.WithLabelValues(scheme.String()).Inc()
	span.SetAttributes(trace.PassDBScheme.String(scheme.String()))

	var salt *string

	if column := v.conf.GetPasswordSaltColumn(); column != "" {
		salt, _ = row.Get(column)
	}

	matched := false
	verify := verifierFor(scheme)

	v.conf.GetPepper().WithString(func(pepper string) {
		matched, err = verify(password, *stored, salt, pepper)
	})

	if err != nil {
		util.DebugModule(definitions.DbgPassDB,
			definitions.LogKeyGUID, guid,
			definitions.LogKeyModel, v.model,
			definitions.LogKeyScheme, scheme.String(),
			definitions.LogKeyError, err,
		)
	}

	span.SetAttributes(trace.PassDBAuthenticated.Bool(matched))
	v.logResult(guid, username, scheme, true, matched, start)

	if !matched {
		stats.ValidationsCounter.WithLabelValues(v.model, definitions.LabelFailure).Inc()

		return nil, nil
	}

	stats.ValidationsCounter.WithLabelValues(v.model, definitions.LabelSuccess).Inc()

	return v.userData(row, username), nil
}

// LoadUserData returns the user data of username without checking a password. An unknown user yields nil without
// an error.
func (v *Verifier) LoadUserData(ctx context.Context, username string) (*UserData, error) {
	guid := ksuid.New().String()

	ctx, span := v.tracer.Start(ctx, "passdb.load_user_data",
		trace.PassDBModel.String(v.model),
		trace.PassDBSession.String(guid),
	)

	defer span.End()

	row, found, err := v.findUser(ctx, username)
	if err != nil {
		trace.RecordError(span, err)
		stats.UserDataCounter.WithLabelValues(v.model, definitions.LabelLookupErr).Inc()

		return nil, v.lookupError(guid, username, err)
	}

	util.DebugModule(definitions.DbgPassDB,
		definitions.LogKeyGUID, guid,
		definitions.LogKeyModel, v.model,
		definitions.LogKeyUsername, username,
		definitions.LogKeyUserFound, found,
	)

	if !found {
		stats.UserDataCounter.WithLabelValues(v.model, definitions.LabelNotFound).Inc()

		return nil, nil
	}

	stats.UserDataCounter.WithLabelValues(v.model, definitions.LabelSuccess).Inc()

	return v.userData(row, username), nil
}

// Close releases the row store.
func (v *Verifier) Close() error {
	return v.store.Close()
}

func (v *Verifier) findUser(ctx context.Context, username string) (rowstore.Row, bool, error) {
	constraints := append(
		[]rowstore.Constraint{{Column: v.conf.GetUsernameColumn(), Value: username}},
		v.conf.GetConstraints()...,
	)

	return v.store.Find(ctx, rowstore.Query{
		Table:       v.conf.GetTable(),
		Constraints: constraints,
	})
}

func (v *Verifier) userData(row rowstore.Row, username string) *UserData {
	extraAttributes := v.conf.GetExtraAttributes()

	userData := &UserData{
		Username:        username,
		ExtraAttributes: make(map[string]*string, len(extraAttributes)),
	}

	if value, _ := row.Get(v.conf.GetUsernameColumn()); value != nil {
		userData.Username = *value
	}

	for name, column := range extraAttributes {
		value, _ := row.Get(column)

		userData.ExtraAttributes[name] = value
	}

	return userData
}

func (v *Verifier) lookupError(guid string, username string, err error) error {
	level.Error(v.getLogger()).Log(
		definitions.LogKeyGUID, guid,
		definitions.LogKeyModel, v.model,
		definitions.LogKeyUsername, username,
		definitions.LogKeyError, err,
	)

	var detailedError *errors.DetailedError

	if stderrors.As(err, &detailedError) {
		return detailedError.WithGUID(guid).WithModel(v.model)
	}

	return err
}

func (v *Verifier) logResult(guid string, username string, scheme definitions.Scheme, userFound bool, authenticated bool, start time.Time) {
	level.Info(v.getLogger()).Log(
		definitions.LogKeyGUID, guid,
		definitions.LogKeyModel, v.model,
		definitions.LogKeyUsername, username,
		definitions.LogKeyUserFound, userFound,
		definitions.LogKeyScheme, scheme.String(),
		definitions.LogKeyStatus, authenticated,
		definitions.LogKeyLatency, util.FormatDurationMs(time.Since(start)),
		definitions.LogKeyMsg, "Password verification finished",
	)
}

func (v *Verifier) getLogger() *slog.Logger {
	if v.logger != nil {
		return v.logger
	}

	return log.Logger
}
