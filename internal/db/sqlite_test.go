package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTestSQLite_MigratesSchema(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	for _, table := range []string{"radcheck", "radreply", "radpostauth"} {
		var name string
		err := readDB.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s must exist after migrations", table)
	}

	// The write pool is serialized to one connection.
	assert.Equal(t, 1, writeDB.Stats().MaxOpenConnections)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	writeDB, _ := OpenTestSQLite(t)
	// OpenTestSQLite already migrated; a second run applies nothing.
	require.NoError(t, RunMigrations(writeDB))
}
