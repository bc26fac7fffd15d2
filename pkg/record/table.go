package record

import (
	"context"

	"github.com/mesh-intelligence/record/pkg/types"
)

// Table is a typed view of a Store for the struct type T.
type Table[T any] struct {
	store *Store
}

// TableOf returns the Table for T.
func TableOf[T any](s *Store) Table[T] {
	return Table[T]{store: s}
}

// New constructs a T from a property/value mapping.
func (t Table[T]) New(values map[string]any) (*T, error) {
	return New[T](values)
}

// TableName returns the table T maps to.
func (t Table[T]) TableName() (string, error) {
	return t.store.TableName((*T)(nil))
}

// ColumnNames introspects the columns of T's table.
func (t Table[T]) ColumnNames(ctx context.Context) ([]string, error) {
	return t.store.ColumnNames(ctx, (*T)(nil))
}

// Save inserts v and assigns its row identifier.
func (t Table[T]) Save(ctx context.Context, v *T) (int64, error) {
	return t.store.Save(ctx, v)
}

// FindBy looks up rows of T's table by one column.
func (t Table[T]) FindBy(ctx context.Context, attrs ...Attr) ([]types.Row, error) {
	return t.store.FindBy(ctx, (*T)(nil), attrs...)
}

// FindByName looks up rows of T's table by name.
func (t Table[T]) FindByName(ctx context.Context, name string) ([]types.Row, error) {
	return t.store.FindByName(ctx, (*T)(nil), name)
}
