package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/record/pkg/record"
)

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table <Type>",
		Short: "Print the table a type maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := record.TableName(args[0])
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"type": args[0], "table": name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <Type>",
		Short: "Print the introspected columns of a type's table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			cols, err := s.store.ColumnNames(cmd.Context(), record.NewRecord(args[0]))
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), cols)
			}
			for _, c := range cols {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
