// Package sqlite provides the public API for the SQLite datastore.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/record/internal/sqlite"
	"github.com/mesh-intelligence/record/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".record-db",
//	})
//	defer backend.Detach()
//	db, err := backend.DB()
//	store := record.NewStore(db)
func NewBackend() types.Datastore {
	return sqlite.NewBackend()
}
