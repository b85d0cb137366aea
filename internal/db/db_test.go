package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	database, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database.DB, DriverSQLite))
	// a second run is a no-op
	require.NoError(t, RunMigrations(database.DB, DriverSQLite))

	var tables []string
	err = database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_migrations' ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"games", "match_tree", "matches", "players", "tournaments"}, tables)

	var fk int
	require.NoError(t, database.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)

	assert.Error(t, RunMigrations(nil, "mysql"))
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", withForeignKeys(":memory:"))
	assert.Equal(t, "brackets.db?_journal_mode=WAL&_foreign_keys=on", withForeignKeys("brackets.db?_journal_mode=WAL"))
	assert.Equal(t, "x.db?_fk=1", withForeignKeys("x.db?_fk=1"))
}
