// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/iliyamo/club-ledger/internal/database"
)

// New returns a fresh database in t.TempDir() with every migration
// applied, including the seeded settings.  It is closed on cleanup.
func New(t testing.TB) *sql.DB {
	t.Helper()
	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "ledger.db"))
	if err := database.Migrate(database.DriverSQLite, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
