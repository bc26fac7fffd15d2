package record

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/record/pkg/types"
)

// tableInfoQuery lists one descriptor per column in declared order. A
// missing table yields no rows.
const tableInfoQuery = "SELECT * FROM pragma_table_info(?) ORDER BY cid"

// Columns introspects table and returns its column names in the order the
// datastore declares them. A table that does not exist has no columns; a
// failed query wraps types.ErrSchema.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	return s.columns(ctx, s.db, newOpID(), table)
}

func (s *Store) columns(ctx context.Context, ex Executor, op, table string) ([]string, error) {
	rows, err := s.query(ctx, ex, op, Statement{SQL: tableInfoQuery, Args: []any{table}})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrSchema, table, err)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		switch n := columnName(r).(type) {
		case string:
			names = append(names, n)
		case []byte:
			names = append(names, string(n))
		}
	}
	return names, nil
}

// columnName extracts the name field of a descriptor; nil when absent.
func columnName(r types.Row) any {
	v, _ := r.Get("name")
	return v
}

// scanRows drains rows into raw tuples and closes them.
func scanRows(rows *sql.Rows) ([]types.Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []types.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = bytes.Clone(b)
			}
		}
		out = append(out, types.Row{Columns: cols, Values: vals})
	}
	return out, rows.Err()
}
