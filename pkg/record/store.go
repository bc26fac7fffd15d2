package record

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"

	"github.com/mesh-intelligence/record/pkg/types"
)

// Executor is the datastore capability the mapper consumes. *sql.DB,
// *sql.Conn and *sql.Tx satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// connector hands out a dedicated connection; *sql.DB implements it.
type connector interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Store persists and looks up entities through an Executor. It holds no
// state between calls: every operation introspects the schema afresh.
type Store struct {
	db        Executor
	pluralize func(string) string
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every statement at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithInflector replaces the pluralization used to derive table names.
func WithInflector(pluralize func(string) string) Option {
	return func(s *Store) { s.pluralize = pluralize }
}

// NewStore creates a Store over db.
func NewStore(db Executor, opts ...Option) *Store {
	s := &Store{
		db:        db,
		pluralize: inflection.Plural,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newOpID generates a UUID v7 correlating the statements of one call.
func newOpID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// TableName returns the table an entity maps to. entity may be a nil
// pointer to the struct type: only its type is consulted.
func (s *Store) TableName(entity any) (string, error) {
	if acc, ok := entity.(Accessor); ok {
		if isNilPointer(entity) {
			return "", fmt.Errorf("%w: nil %T has no type name", types.ErrInvalidEntity, entity)
		}
		return tableName(acc.TypeName(), s.pluralize), nil
	}
	rt := reflect.TypeOf(entity)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct || rt.Name() == "" {
		return "", fmt.Errorf("%w: %T is not a named struct", types.ErrInvalidEntity, entity)
	}
	if t, ok := reflect.New(rt).Interface().(Tabler); ok {
		return t.TableName(), nil
	}
	return tableName(rt.Name(), s.pluralize), nil
}

// ColumnNames introspects the columns of the entity's table.
func (s *Store) ColumnNames(ctx context.Context, entity any) ([]string, error) {
	table, err := s.TableName(entity)
	if err != nil {
		return nil, err
	}
	return s.Columns(ctx, table)
}

// Save inserts the entity as a new row and assigns the generated row
// identifier to its id property. Absent properties are left out of the
// insert. An id that is absent, NULL or the zero value of a plain field is
// unset; any other id fails with types.ErrAlreadyPersisted. On failure the
// id stays unset.
func (s *Store) Save(ctx context.Context, entity any) (int64, error) {
	acc, err := accessorFor(entity)
	if err != nil {
		return 0, err
	}
	if !slices.Contains(acc.PropertyNames(), idColumn) {
		return 0, fmt.Errorf("%w: %s has no %q property", types.ErrInvalidEntity, acc.TypeName(), idColumn)
	}
	if id, ok := acc.Property(idColumn); ok && !unsetID(id) {
		return 0, fmt.Errorf("%w: %s id %v", types.ErrAlreadyPersisted, acc.TypeName(), id)
	}
	table, err := s.TableName(entity)
	if err != nil {
		return 0, err
	}

	op := newOpID()
	ex, release, err := s.pin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", types.ErrSchema, table, err)
	}
	defer release()

	columns, err := s.columns(ctx, ex, op, table)
	if err != nil {
		return 0, err
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("%w: %s", types.ErrTableNotFound, table)
	}

	if err := s.exec(ctx, ex, op, InsertStatement(table, insertAttrs(columns, acc))); err != nil {
		return 0, fmt.Errorf("%w: insert into %s: %w", types.ErrStatement, table, err)
	}
	rows, err := s.query(ctx, ex, op, lastInsertIDStatement(table))
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id of %s: %w", types.ErrStatement, table, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no row identifier for %s", types.ErrStatement, table)
	}
	id, err := toInt64(rows[0].At(0))
	if err != nil {
		return 0, fmt.Errorf("%w: row identifier for %s: %w", types.ErrStatement, table, err)
	}
	if err := acc.SetProperties(map[string]any{idColumn: id}); err != nil {
		return 0, err
	}
	return id, nil
}

// FindBy returns the raw rows of the entity's table whose column equals the
// given value. Only the first attribute is honored.
func (s *Store) FindBy(ctx context.Context, entity any, attrs ...Attr) ([]types.Row, error) {
	if len(attrs) == 0 {
		return nil, types.ErrInvalidPredicate
	}
	table, err := s.TableName(entity)
	if err != nil {
		return nil, err
	}
	stmt, err := SelectStatement(table, attrs[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStatement, err)
	}
	rows, err := s.query(ctx, s.db, newOpID(), stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: select from %s: %w", types.ErrStatement, table, err)
	}
	return rows, nil
}

// FindByName is FindBy on the name column.
func (s *Store) FindByName(ctx context.Context, entity any, name string) ([]types.Row, error) {
	return s.FindBy(ctx, entity, Eq("name", name))
}

// pin returns a dedicated connection when the executor pools them, so that
// an insert and its identifier recovery share one session.
func (s *Store) pin(ctx context.Context) (Executor, func(), error) {
	c, ok := s.db.(connector)
	if !ok {
		return s.db, func() {}, nil
	}
	conn, err := c.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, func() { _ = conn.Close() }, nil
}

func (s *Store) exec(ctx context.Context, ex Executor, op string, stmt Statement) error {
	s.logger.DebugContext(ctx, "exec", "op", op, "sql", stmt.SQL, "params", len(stmt.Args))
	_, err := ex.ExecContext(ctx, stmt.SQL, stmt.Args...)
	return err
}

func (s *Store) query(ctx context.Context, ex Executor, op string, stmt Statement) ([]types.Row, error) {
	s.logger.DebugContext(ctx, "query", "op", op, "sql", stmt.SQL, "params", len(stmt.Args))
	rows, err := ex.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// unsetID reports whether a present id still means "not persisted": NULL,
// or the zero value of a plain field.
func unsetID(id any) bool {
	return id == nil || reflect.ValueOf(id).IsZero()
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	}
	return 0, fmt.Errorf("unexpected identifier type %T", v)
}
