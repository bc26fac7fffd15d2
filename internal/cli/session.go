package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/record/internal/paths"
	"github.com/mesh-intelligence/record/internal/sqlite"
	"github.com/mesh-intelligence/record/pkg/record"
	"github.com/mesh-intelligence/record/pkg/types"
)

// session is an attached backend plus the Store built on it.
type session struct {
	backend *sqlite.Backend
	store   *record.Store
}

// resolveDataDir applies flag > config.yaml > env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flags.dataDir, settings.dataDir)
}

// openSession attaches the configured backend. The caller must defer
// close.
func openSession(cmd *cobra.Command) (*session, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(types.Config{Backend: settings.backend, DataDir: dataDir}); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	db, err := backend.DB()
	if err != nil {
		backend.Detach()
		return nil, err
	}

	store := record.NewStore(db, record.WithLogger(newLogger(cmd.ErrOrStderr())))
	return &session{backend: backend, store: store}, nil
}

func (s *session) close() {
	_ = s.backend.Detach()
}
