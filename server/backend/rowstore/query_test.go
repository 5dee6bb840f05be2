package rowstore

import (
	"testing"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuild(t *testing.T) {
	query := Query{
		Table:   "auth.users",
		Columns: []string{"username", "password"},
		Constraints: []Constraint{
			{Column: "username", Value: "alice"},
			{Column: "active", Value: true},
		},
	}

	testCases := []struct {
		name   string
		driver definitions.Driver
		want   string
	}{
		{
			name:   "mysql",
			driver: definitions.DriverMySQL,
			want:   "SELECT `username`, `password` FROM `auth`.`users` WHERE `username` = ? AND `active` = ? LIMIT 1",
		},
		{
			name:   "postgres",
			driver: definitions.DriverPostgres,
			want:   `SELECT "username", "password" FROM "auth"."users" WHERE "username" = $1 AND "active" = $2 LIMIT 1`,
		},
		{
			name:   "sqlite",
			driver: definitions.DriverSQLite,
			want:   `SELECT "username", "password" FROM "auth"."users" WHERE "username" = ? AND "active" = ? LIMIT 1`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			statement, args, err := query.Build(tc.driver)

			require.NoError(t, err)
			assert.Equal(t, tc.want, statement)
			assert.Equal(t, []any{"alice", true}, args)
		})
	}
}

func TestQueryBuildSelectsAllWithoutColumns(t *testing.T) {
	statement, args, err := Query{Table: "users"}.Build(definitions.DriverSQLite)

	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" LIMIT 1`, statement)
	assert.Empty(t, args)
}

func TestQueryBuildRejectsInvalidIdentifiers(t *testing.T) {
	queries := []Query{
		{Table: "users; DROP TABLE users"},
		{Table: "users", Columns: []string{"pass`word"}},
		{Table: "users", Constraints: []Constraint{{Column: "name\" OR 1=1 --", Value: "x"}}},
	}

	for _, query := range queries {
		_, _, err := query.Build(definitions.DriverMySQL)

		assert.ErrorIs(t, err, errors.ErrInvalidIdentifier)
	}
}

func TestSortConstraints(t *testing.T) {
	constraints := []Constraint{
		{Column: "username", Value: "alice"},
		{Column: "active", Value: 1},
		{Column: "domain", Value: "example.com"},
	}

	SortConstraints(constraints)

	assert.Equal(t, "active", constraints[0].Column)
	assert.Equal(t, "domain", constraints[1].Column)
	assert.Equal(t, "username", constraints[2].Column)
}

func TestRowGet(t *testing.T) {
	value := "alice"
	row := Row{"UserName": &value, "password": nil}

	got, found := row.Get("username")
	require.True(t, found)
	assert.Equal(t, "alice", *got)

	got, found = row.Get("PASSWORD")
	assert.True(t, found)
	assert.Nil(t, got)

	_, found = row.Get("mail")
	assert.False(t, found)
}
