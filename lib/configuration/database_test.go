package configuration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const schema = `create table if not exists example (id integer primary key, name text not null);`

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	db, err := Database{File: path}.OpenDB(schema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("insert into example(name) values (?)", "first")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("select count(*) from example").Scan(&count))
	require.Equal(t, 1, count)
}

func TestOpenMemory(t *testing.T) {
	db, err := Database{File: ":memory:"}.OpenDB(schema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("insert into example(name) values (?)", "first")
	require.NoError(t, err)
}

func TestOpenMissing(t *testing.T) {
	_, err := Database{}.OpenDB(schema)
	require.Error(t, err)
}
