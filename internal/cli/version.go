package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/record/pkg/record"
)

const modulePath = "github.com/mesh-intelligence/record"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the record version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "record v%s\nmodule: %s\n", record.Version, modulePath)
			return nil
		},
	}
}
