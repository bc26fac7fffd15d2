// Package cli implements the record command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/record/internal/paths"
	"github.com/mesh-intelligence/record/pkg/record"
	"github.com/mesh-intelligence/record/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// settings holds values loaded from config.yaml by PersistentPreRunE.
var settings struct {
	configDir string
	backend   string
	dataDir   string
}

// errUsage marks malformed command arguments.
var errUsage = errors.New("usage")

// NewRootCmd creates the top-level "record" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "record",
		Short:   "Persist and look up rows by convention",
		Long:    "record maps a type name to a table (Song to songs), introspects its\ncolumns, and inserts or looks up rows without hand-written SQL.",
		Version: record.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			v, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			settings.configDir = configDir
			settings.backend = v.GetString(cfgKeyBackend)
			settings.dataDir = v.GetString(cfgKeyDataDir)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.record-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log every statement to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newTableCmd())
	root.AddCommand(newColumnsCmd())
	root.AddCommand(newSaveCmd())
	root.AddCommand(newFindCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "record:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to exitUserError when the caller can fix it by
// changing the command, and exitSysError otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		errors.Is(err, types.ErrUnknownProperty),
		errors.Is(err, types.ErrTypeMismatch),
		errors.Is(err, types.ErrStatement),
		errors.Is(err, types.ErrInvalidPredicate),
		errors.Is(err, types.ErrInvalidIdentifier),
		errors.Is(err, types.ErrInvalidEntity),
		errors.Is(err, types.ErrAlreadyPersisted),
		errors.Is(err, types.ErrTableNotFound):
		return exitUserError
	default:
		return exitSysError
	}
}

// newLogger returns a stderr debug logger with --verbose, else a discard logger.
func newLogger(w io.Writer) *slog.Logger {
	if !flags.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
