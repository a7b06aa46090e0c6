package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "radsync/internal/db"
	"radsync/internal/db/repository"
)

// Opens the store exactly the way Run does, with only the imports the
// binaries link. Catches a missing sqlite3 driver registration that
// test-only imports elsewhere would mask.
func TestStoreOpensWithBinaryImportsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radius.sqlite")

	writeDB, readDB, err := internaldb.OpenSQLitePair(path, 4)
	require.NoError(t, err)
	t.Cleanup(func() {
		writeDB.Close()
		readDB.Close()
	})

	require.NoError(t, internaldb.RunMigrations(writeDB))

	store := repository.NewStore(writeDB, readDB)
	require.NoError(t, store.Ping(context.Background()))
}
