package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

type DBResult struct {
	DB *sql.DB
}

// SetupDB opens an in-memory sqlite database with `schema` applied. it is
// closed when the test ends.
func SetupDB(t testing.TB, schema string) DBResult {
	t.Helper()

	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every new connection to :memory: is a fresh database.
	sqlite.SetMaxOpenConns(1)
	_, err = sqlite.Exec(schema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		sqlite.Close()
	})

	return DBResult{DB: sqlite}
}
