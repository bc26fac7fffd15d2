package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/record/pkg/record"
	"github.com/mesh-intelligence/record/pkg/types"
)

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <Type> key=value...",
		Short: "Insert a row built from key=value pairs",
		Long: `Save constructs an entity of the given type from key=value pairs and
inserts it into the type's table. Every key must be a column of the table.
Columns left out are not written, so their defaults apply; key=null writes
NULL. Values that parse as JSON are used as such, anything else as a string.

Example:
  record save Song name=Test artist=Tester
  record save Song name=Solo`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSave,
	}
}

func runSave(cmd *cobra.Command, args []string) error {
	typeName := args[0]
	attrs, err := parseAttrs(args[1:])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	cols, err := s.store.ColumnNames(ctx, record.NewRecord(typeName))
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("%w: %s", types.ErrTableNotFound, record.TableName(typeName))
	}

	entity := record.NewRecord(typeName, cols...)
	values := make(map[string]any, len(attrs))
	for _, a := range attrs {
		values[a.Key] = a.Value
	}
	if err := record.Bind(entity, values); err != nil {
		return err
	}

	id, err := s.store.Save(ctx, entity)
	if err != nil {
		return err
	}
	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
