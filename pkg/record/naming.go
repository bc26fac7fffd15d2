package record

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// Tabler overrides the conventional table name for a struct type.
type Tabler interface {
	TableName() string
}

// TableName derives a table identifier from a type identifier: the name is
// lower-cased and pluralized ("Song" becomes "songs").
func TableName(typeName string) string {
	return tableName(typeName, inflection.Plural)
}

func tableName(typeName string, pluralize func(string) string) string {
	return pluralize(strings.ToLower(typeName))
}
