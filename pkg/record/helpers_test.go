package record

import (
	"bytes"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const createSongs = `CREATE TABLE songs (
    id INTEGER PRIMARY KEY,
    name TEXT,
    artist TEXT
);`

// Song is the canonical entity the tests persist.
type Song struct {
	Model
	Name   Value[string] `db:"name"`
	Artist Value[string] `db:"artist"`
}

// openDB opens a private in-memory database pinned to one connection and
// runs the given DDL.
func openDB(t *testing.T, ddl ...string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

// newLoggedStore returns a Store whose debug log is captured in the buffer.
func newLoggedStore(t *testing.T, db *sql.DB) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewStore(db, WithLogger(logger)), &buf
}
