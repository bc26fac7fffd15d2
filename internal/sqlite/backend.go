// Package sqlite implements the SQLite datastore the record mapper runs on.
// It owns the process-wide connection: Attach opens it once, Detach closes
// it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/record/pkg/types"
)

// DBFileName is the database file created under the data directory.
const DBFileName = "record.db"

// Backend implements types.Datastore on a SQLite file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	path     string
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach validates config, creates DataDir if it does not exist, and opens
// the database file inside it. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	// One connection: statements run strictly one after another and
	// last_insert_rowid() always sees the session that inserted.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("open %s: %w", path, err)
	}

	b.db = db
	b.path = path
	b.config = config
	b.attached = true
	return nil
}

// DB returns the shared handle. Returns ErrDetached if not attached.
func (b *Backend) DB() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.db, nil
}

// Path returns the database file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// ExecScript runs a bootstrap script such as table DDL. The script may hold
// several statements separated by semicolons.
func (b *Backend) ExecScript(ctx context.Context, script string) error {
	db, err := b.DB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("%w: %w", types.ErrStatement, err)
	}
	return nil
}

// Detach closes the database. After Detach, DB returns ErrDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.path = ""
	b.attached = false
	return nil
}
