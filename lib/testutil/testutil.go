package testutil

import (
	"database/sql"
	"testing"

	devenv "github.com/erikbern/conversion/dev/env"

	_ "modernc.org/sqlite"
)

// OpenDB opens a sqlite database with schema applied and closes it when the
// test ends. An empty path opens an in-memory database.
func OpenDB(t testing.TB, schema, path string) *sql.DB {
	t.Helper()

	dbpath := ":memory:"
	if path != "" && path != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(path)
		if err != nil {
			t.Fatal(err)
		}
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	if dbpath == ":memory:" {
		// every connection to :memory: is a separate database
		sqlite.SetMaxOpenConns(1)
	}
	t.Cleanup(func() {
		sqlite.Close()
	})

	_, err = sqlite.Exec(schema)
	if err != nil {
		t.Fatal(err)
	}
	return sqlite
}
