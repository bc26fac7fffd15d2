package types

// Row is one raw result tuple. Values line up positionally with Columns;
// a NULL column holds nil.
type Row struct {
	Columns []string
	Values  []any
}

// At returns the value at position i, or nil when i is out of range.
func (r Row) At(i int) any {
	if i < 0 || i >= len(r.Values) {
		return nil
	}
	return r.Values[i]
}

// Get returns the value of the named column. The second result is false
// when the row has no such column.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.At(i), true
		}
	}
	return nil, false
}

// Map returns the row keyed by column name.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.At(i)
	}
	return m
}
