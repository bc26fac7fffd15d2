package record

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/record/pkg/types"
)

// Statement is synthesized SQL with its bound parameters.
type Statement struct {
	SQL  string
	Args []any
}

// Attr pairs a column with a value: an insert target or an equality
// predicate.
type Attr struct {
	Key   string
	Value any
}

// Eq returns the predicate key = value.
func Eq(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent leaves plain identifiers bare and double-quotes the rest.
func quoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// InsertStatement builds an insert of attrs into table. Every value is a
// bound parameter; columns and parameters line up positionally. With no
// attrs the row takes its column defaults.
func InsertStatement(table string, attrs []Attr) Statement {
	if len(attrs) == 0 {
		return Statement{SQL: "INSERT INTO " + quoteIdent(table) + " DEFAULT VALUES"}
	}
	cols := make([]string, len(attrs))
	marks := make([]string, len(attrs))
	args := make([]any, len(attrs))
	for i, a := range attrs {
		cols[i] = quoteIdent(a.Key)
		marks[i] = "?"
		args[i] = a.Value
	}
	return Statement{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", ")),
		Args: args,
	}
}

// SelectStatement builds the equality lookup SELECT * FROM table WHERE
// key = ?. The key must be a plain identifier; it is emitted bare so that
// the datastore rejects a column it does not have.
func SelectStatement(table string, attr Attr) (Statement, error) {
	if !plainIdent.MatchString(attr.Key) {
		return Statement{}, fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, attr.Key)
	}
	return Statement{
		SQL:  fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", quoteIdent(table), attr.Key),
		Args: []any{attr.Value},
	}, nil
}

// lastInsertIDStatement recovers the identifier of the row just inserted
// on the current connection.
func lastInsertIDStatement(table string) Statement {
	return Statement{SQL: "SELECT last_insert_rowid() FROM " + quoteIdent(table) + " LIMIT 1"}
}

// insertAttrs pairs each non-id column with the entity's current value in
// one pass, skipping absent properties.
func insertAttrs(columns []string, acc Accessor) []Attr {
	attrs := make([]Attr, 0, len(columns))
	for _, c := range columns {
		if c == idColumn {
			continue
		}
		v, ok := acc.Property(c)
		if !ok {
			continue
		}
		attrs = append(attrs, Attr{Key: c, Value: v})
	}
	return attrs
}
