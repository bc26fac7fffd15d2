package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/record/pkg/record"
	"github.com/mesh-intelligence/record/pkg/types"
)

func newFindCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "find <Type> [key=value]",
		Short: "Look up rows by one column",
		Long: `Find returns the raw rows of the type's table whose column equals the
value. Only the first key=value pair is used. --name looks up by the name
column.

Example:
  record find Song name=Test
  record find Song --name Test
  record find Song id=1 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := parseAttrs(args[1:])
			if err != nil {
				return err
			}
			byName := cmd.Flags().Changed("name")
			if byName == (len(attrs) > 0) {
				return fmt.Errorf("%w: give either key=value or --name", errUsage)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			entity := record.NewRecord(args[0])
			var rows []types.Row
			if byName {
				rows, err = s.store.FindByName(cmd.Context(), entity, name)
			} else {
				rows, err = s.store.FindBy(cmd.Context(), entity, attrs...)
			}
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), rows, flags.jsonMode)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "look up by the name column")
	return cmd
}
