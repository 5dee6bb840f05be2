package rowstore

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/monitoring/trace"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func newMockStore(t *testing.T, driver definitions.Driver, opts Options) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	opts.Model = "TestUser"

	return NewSQLStore(sqlx.NewDb(db, "sqlmock"), driver, opts), mock
}

func userQuery() Query {
	return Query{
		Table: "users",
		Constraints: []Constraint{
			{Column: "username", Value: "alice"},
			{Column: "active", Value: true},
		},
	}
}

func TestSQLStoreFindBindsValues(t *testing.T) {
	store, mock := newMockStore(t, definitions.DriverPostgres, Options{})

	mock.ExpectQuery(`SELECT * FROM "users" WHERE "username" = $1 AND "active" = $2 LIMIT 1`).
		WithArgs("alice", true).
		WillReturnRows(sqlmock.NewRows([]string{"username", "password", "mail", "uid"}).
			AddRow("alice", []byte("$2a$10$abc"), nil, int64(1000)))

	row, found, err := store.Find(context.Background(), userQuery())

	require.NoError(t, err)
	require.True(t, found)

	username, _ := row.Get("username")
	require.NotNil(t, username)
	assert.Equal(t, "alice", *username)

	password, _ := row.Get("password")
	require.NotNil(t, password)
	assert.Equal(t, "$2a$10$abc", *password)

	mail, found := row.Get("mail")
	assert.True(t, found)
	assert.Nil(t, mail)

	uid, _ := row.Get("uid")
	require.NotNil(t, uid)
	assert.Equal(t, "1000", *uid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreFindNotFound(t *testing.T) {
	store, mock := newMockStore(t, definitions.DriverMySQL, Options{})

	mock.ExpectQuery("SELECT * FROM `users` WHERE `username` = ? AND `active` = ? LIMIT 1").
		WithArgs("alice", true).
		WillReturnRows(sqlmock.NewRows([]string{"username", "password"}))

	row, found, err := store.Find(context.Background(), userQuery())

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, row)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreFindLookupError(t *testing.T) {
	store, mock := newMockStore(t, definitions.DriverMySQL, Options{})
	cause := stderrors.New("connection refused")

	mock.ExpectQuery("SELECT * FROM `users` WHERE `username` = ? AND `active` = ? LIMIT 1").
		WithArgs("alice", true).
		WillReturnError(cause)

	_, found, err := store.Find(context.Background(), userQuery())

	require.Error(t, err)
	assert.False(t, found)
	assert.ErrorIs(t, err, errors.ErrLookup)
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreFindInvalidQuery(t *testing.T) {
	store, _ := newMockStore(t, definitions.DriverMySQL, Options{})

	_, found, err := store.Find(context.Background(), Query{Table: "users`"})

	assert.False(t, found)
	assert.ErrorIs(t, err, errors.ErrLookup)
	assert.ErrorIs(t, err, errors.ErrInvalidIdentifier)
}

func TestSQLStoreFindTimeout(t *testing.T) {
	store, mock := newMockStore(t, definitions.DriverSQLite, Options{LookupTimeout: 20 * time.Millisecond})

	mock.ExpectQuery(`SELECT * FROM "users" WHERE "username" = ? AND "active" = ? LIMIT 1`).
		WithArgs("alice", true).
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("alice"))

	_, found, err := store.Find(context.Background(), userQuery())

	assert.False(t, found)
	assert.ErrorIs(t, err, errors.ErrLookup)
}

func TestSQLStoreFindWaitsForSlot(t *testing.T) {
	store, _ := newMockStore(t, definitions.DriverSQLite, Options{
		LookupTimeout:        20 * time.Millisecond,
		MaxConcurrentLookups: 1,
	})

	require.NotNil(t, store.sem)
	require.True(t, store.sem.TryAcquire(1))

	defer store.sem.Release(1)

	_, found, err := store.Find(context.Background(), userQuery())

	assert.False(t, found)
	assert.ErrorIs(t, err, errors.ErrLookup)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSQLStoreFindRecordsClientSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	store, mock := newMockStore(t, definitions.DriverSQLite, Options{
		Tracer: trace.NewWithProvider(provider, "test"),
	})

	mock.ExpectQuery(`SELECT * FROM "users" WHERE "username" = ? AND "active" = ? LIMIT 1`).
		WithArgs("alice", true).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("alice"))

	_, found, err := store.Find(context.Background(), userQuery())
	require.NoError(t, err)
	require.True(t, found)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "rowstore.find", spans[0].Name())
	assert.Equal(t, oteltrace.SpanKindClient, spans[0].SpanKind())
}

func TestSQLStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.db")

	store, err := Open(Options{DSN: "sqlite://" + path, MaxOpenConns: 1})
	require.NoError(t, err)

	defer func() {
		assert.NoError(t, store.Close())
	}()

	assert.Equal(t, definitions.DriverSQLite, store.Driver())

	_, err = store.db.Exec(`CREATE TABLE users (username TEXT, password TEXT, active INTEGER, mail TEXT)`)
	require.NoError(t, err)

	_, err = store.db.Exec(`INSERT INTO users VALUES ('alice', 'secret', 1, NULL), ('bob', 'other', 0, 'bob@example.com')`)
	require.NoError(t, err)

	row, found, err := store.Find(context.Background(), userQuery())
	require.NoError(t, err)
	require.True(t, found)

	password, _ := row.Get("password")
	require.NotNil(t, password)
	assert.Equal(t, "secret", *password)

	mail, _ := row.Get("mail")
	assert.Nil(t, mail)

	_, found, err = store.Find(context.Background(), Query{
		Table:       "users",
		Constraints: []Constraint{{Column: "username", Value: "bob"}, {Column: "active", Value: true}},
	})
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = store.Find(context.Background(), Query{Table: "missing"})
	assert.ErrorIs(t, err, errors.ErrLookup)
}
