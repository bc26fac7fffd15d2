package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize record storage",
		Long:  "Create the configuration and data directories, write config.yaml if missing,\nthen open the database once to create its file.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if err := writeConfigIfMissing(settings.configDir, dataDir); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	s, err := openSession(cmd)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	path := s.backend.Path()
	s.close()

	fmt.Fprintf(cmd.OutOrStdout(), "record initialized: %s\n", path)
	return nil
}
