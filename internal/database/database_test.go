package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t,
		"app:pw@tcp(db:3306)/club?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		MySQLDSN("app", "pw", "db", "3306", "club"))
	assert.Equal(t,
		"app@tcp(db:3306)/club?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		MySQLDSN("app", "", "db", "3306", "club"))
}

func TestWithParam(t *testing.T) {
	assert.Equal(t, "x?a=1&multiStatements=true", withParam("x?a=1", "multiStatements=true"))
	assert.Equal(t, "x?multiStatements=true", withParam("x", "multiStatements=true"))
	assert.Equal(t, "x?multiStatements=true", withParam("x?multiStatements=true", "multiStatements=true"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "whatever")
	require.Error(t, err)
}

func TestMigrateSQLiteIsIdempotentAndSeeds(t *testing.T) {
	dsn := SQLiteDSN(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, Migrate(DriverSQLite, dsn))
	require.NoError(t, Migrate(DriverSQLite, dsn))

	db, err := Open(DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	var price string
	require.NoError(t, db.QueryRow(`SELECT setting_value FROM settings WHERE setting_key = 'ticket_price_regular'`).Scan(&price))
	assert.Equal(t, "40", price)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMySQLSettingKeysUseBinaryCollation(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations/mysql")
	require.NoError(t, err)

	var last string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			b, err := migrationsFS.ReadFile("migrations/mysql/" + e.Name())
			require.NoError(t, err)
			if strings.Contains(string(b), "setting_key") {
				last = string(b)
			}
		}
	}
	assert.Contains(t, last, "COLLATE utf8mb4_bin")
}
