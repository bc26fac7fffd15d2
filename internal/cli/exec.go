package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newExecCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "exec [sql...]",
		Short: "Run bootstrap SQL such as CREATE TABLE",
		Long: `Exec runs SQL against the database without going through the mapper.
Use it to create the tables entities map to.

Example:
  record exec "CREATE TABLE songs (id INTEGER PRIMARY KEY, name TEXT, artist TEXT)"
  record exec --file schema.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			script := strings.Join(args, ";\n")
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				script = string(data)
			}
			if strings.TrimSpace(script) == "" {
				return fmt.Errorf("%w: exec needs SQL arguments or --file", errUsage)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.backend.ExecScript(cmd.Context(), script); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read SQL from file")
	return cmd
}
