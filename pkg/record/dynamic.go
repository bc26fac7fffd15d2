package record

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mesh-intelligence/record/pkg/types"
)

// Record is an entity whose type name and properties are registered at run
// time instead of declared as a Go struct. The id property is always
// declared. Values are stored as given, without conversion.
type Record struct {
	typeName string
	names    []string
	declared map[string]bool
	values   map[string]any // absent properties have no entry
}

// NewRecord registers an entity type named typeName with the given
// properties.
func NewRecord(typeName string, properties ...string) *Record {
	r := &Record{
		typeName: typeName,
		declared: make(map[string]bool),
		values:   make(map[string]any),
	}
	for _, p := range append([]string{idColumn}, properties...) {
		if r.declared[p] {
			continue
		}
		r.declared[p] = true
		r.names = append(r.names, p)
	}
	return r
}

// TypeName implements Accessor.
func (r *Record) TypeName() string { return r.typeName }

// PropertyNames implements Accessor.
func (r *Record) PropertyNames() []string { return slices.Clone(r.names) }

// Property implements Accessor.
func (r *Record) Property(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// SetProperties implements Accessor.
func (r *Record) SetProperties(values map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if !r.declared[name] {
			return fmt.Errorf("%w: %s has no property %q", types.ErrUnknownProperty, r.typeName, name)
		}
	}
	maps.Copy(r.values, values)
	return nil
}

// Unset returns a property to absent.
func (r *Record) Unset(name string) {
	delete(r.values, name)
}

// ID returns the row identifier once the record has been saved.
func (r *Record) ID() (int64, bool) {
	id, ok := r.values[idColumn].(int64)
	return id, ok
}
