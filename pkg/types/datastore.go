package types

import (
	"database/sql"
	"errors"
)

// Datastore owns the process-wide database handle. Callers attach once at
// startup, hand DB to a record.Store, and detach when done.
type Datastore interface {
	// Attach opens the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// DB returns the shared handle. Returns ErrDetached before Attach.
	DB() (*sql.DB, error)

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	Detach() error
}

// Datastore lifecycle errors.
var (
	ErrDetached        = errors.New("datastore is detached")
	ErrAlreadyAttached = errors.New("datastore is already attached")
)
