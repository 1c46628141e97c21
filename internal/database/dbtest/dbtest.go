// Package dbtest opens throwaway sqlite-backed gateways for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/database"
)

// New returns a migrated and seeded gateway in t's temp dir. It is closed
// automatically when the test ends.
func New(t *testing.T, observer ...database.OperationObserver) *database.Database {
	t.Helper()

	opts := database.Options{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "catalog_test.db"),
	}
	if len(observer) > 0 {
		opts.Observer = observer[0]
	}

	db, err := database.NewDatabase(opts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
