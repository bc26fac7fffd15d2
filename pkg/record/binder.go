package record

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/mesh-intelligence/record/pkg/types"
)

// idColumn names the row-identifier column and property.
const idColumn = "id"

// Model carries the row identifier. Embed it in entity structs; ID stays
// absent until Save assigns it.
type Model struct {
	ID Value[int64] `db:"id"`
}

// Accessor is the uniform property protocol the mapper drives by name.
// Struct entities get one from reflection; *Record implements it directly.
type Accessor interface {
	// TypeName is the type identifier the table name derives from.
	TypeName() string

	// PropertyNames lists the declared properties in declaration order.
	PropertyNames() []string

	// Property returns the current value of name. ok is false when the
	// property is absent (never assigned) or not declared; an explicit NULL
	// returns (nil, true).
	Property(name string) (value any, ok bool)

	// SetProperties assigns every entry or none of them.
	SetProperties(values map[string]any) error
}

// New allocates a T and binds values onto it.
func New[T any](values map[string]any) (*T, error) {
	v := new(T)
	if err := Bind(v, values); err != nil {
		return nil, err
	}
	return v, nil
}

// Bind assigns each entry of values to the entity property of that name.
// An unknown name fails with types.ErrUnknownProperty and nothing is
// assigned.
func Bind(entity any, values map[string]any) error {
	acc, err := accessorFor(entity)
	if err != nil {
		return err
	}
	return acc.SetProperties(values)
}

// Read returns the current value of the named property, or (nil, false)
// when it is absent.
func Read(entity any, name string) (any, bool) {
	acc, err := accessorFor(entity)
	if err != nil {
		return nil, false
	}
	return acc.Property(name)
}

// Properties returns the entity's declared property names.
func Properties(entity any) ([]string, error) {
	acc, err := accessorFor(entity)
	if err != nil {
		return nil, err
	}
	return acc.PropertyNames(), nil
}

// accessorFor returns entity itself when it implements Accessor, otherwise
// a reflection accessor over a non-nil pointer to struct.
func accessorFor(entity any) (Accessor, error) {
	if acc, ok := entity.(Accessor); ok {
		if isNilPointer(entity) {
			return nil, fmt.Errorf("%w: nil %T", types.ErrInvalidEntity, entity)
		}
		return acc, nil
	}
	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: want non-nil pointer to struct, got %T", types.ErrInvalidEntity, entity)
	}
	return structAccessor{b: bindingFor(rv.Type().Elem()), root: rv.Elem()}, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// ---------------- Struct accessor tables ----------------

type fieldKind uint8

const (
	kindPlain   fieldKind = iota // always present
	kindPointer                  // absent when nil
	kindValue                    // Value[T], tri-state
)

type field struct {
	name  string
	index []int
	kind  fieldKind
	elem  reflect.Type // the T a value converts to
}

// binding is the accessor table of one struct type, built once.
type binding struct {
	typeName string
	fields   []field
	byName   map[string]int
}

var (
	bindings sync.Map // reflect.Type -> *binding
	slotType = reflect.TypeFor[slot]()
)

func bindingFor(rt reflect.Type) *binding {
	if v, ok := bindings.Load(rt); ok {
		return v.(*binding)
	}
	b := buildBinding(rt)
	v, _ := bindings.LoadOrStore(rt, b)
	return v.(*binding)
}

func buildBinding(rt reflect.Type) *binding {
	b := &binding{typeName: rt.Name(), byName: make(map[string]int)}

	var walk func(t reflect.Type, base []int)
	walk = func(t reflect.Type, base []int) {
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() && !sf.Anonymous {
				continue
			}
			name, omit := parseTag(sf.Tag.Get("db"))
			if omit {
				continue
			}
			ft := sf.Type
			path := append(slices.Clone(base), i)
			kind, elem := classify(ft)

			if sf.Anonymous && kind == kindPlain && name == "" {
				if ft.Kind() == reflect.Struct {
					walk(ft, path)
					continue
				}
			}
			if sf.Anonymous && kind == kindPointer && name == "" && ft.Elem().Kind() == reflect.Struct {
				walk(ft.Elem(), path)
				continue
			}
			if !sf.IsExported() {
				continue
			}
			if name == "" {
				name = snakeCase(sf.Name)
			}
			if _, dup := b.byName[name]; dup {
				continue
			}
			b.byName[name] = len(b.fields)
			b.fields = append(b.fields, field{name: name, index: path, kind: kind, elem: elem})
		}
	}
	walk(rt, nil)
	return b
}

func classify(ft reflect.Type) (fieldKind, reflect.Type) {
	if reflect.PointerTo(ft).Implements(slotType) {
		return kindValue, reflect.New(ft).Interface().(slot).elemType()
	}
	if ft.Kind() == reflect.Pointer {
		return kindPointer, ft.Elem()
	}
	return kindPlain, ft
}

// parseTag supports "-", "col" and "col,opts"; options are ignored.
func parseTag(tag string) (name string, omit bool) {
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

// snakeCase maps Go field names to column names: ArtistName becomes
// artist_name, UserID becomes user_id.
func snakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// fieldByPath walks index from root. With alloc set, nil embedded pointers
// are allocated; without it a nil pointer on the path reports false.
func fieldByPath(root reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	v := root
	for n, i := range index {
		if n > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v, true
}

func (f *field) get(root reflect.Value) (any, bool) {
	fv, ok := fieldByPath(root, f.index, false)
	if !ok {
		return nil, false
	}
	switch f.kind {
	case kindValue:
		return fv.Addr().Interface().(slot).load()
	case kindPointer:
		if fv.IsNil() {
			return nil, false
		}
		return fv.Elem().Interface(), true
	default:
		return fv.Interface(), true
	}
}

// nullable reports whether the field can record an explicit NULL. A plain
// field can only when its zero value is nil.
func (f *field) nullable() bool {
	if f.kind != kindPlain {
		return true
	}
	switch f.elem.Kind() {
	case reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

// set expects x to be nil or the result of convert(x, f.elem).
func (f *field) set(root reflect.Value, x any) {
	fv, _ := fieldByPath(root, f.index, true)
	switch f.kind {
	case kindValue:
		fv.Addr().Interface().(slot).store(x)
	case kindPointer:
		if x == nil {
			fv.SetZero()
			return
		}
		p := reflect.New(f.elem)
		p.Elem().Set(reflect.ValueOf(x))
		fv.Set(p)
	default:
		if x == nil {
			fv.SetZero()
			return
		}
		fv.Set(reflect.ValueOf(x))
	}
}

type structAccessor struct {
	b    *binding
	root reflect.Value
}

func (s structAccessor) TypeName() string { return s.b.typeName }

func (s structAccessor) PropertyNames() []string {
	names := make([]string, len(s.b.fields))
	for i := range s.b.fields {
		names[i] = s.b.fields[i].name
	}
	return names
}

func (s structAccessor) Property(name string) (any, bool) {
	i, ok := s.b.byName[name]
	if !ok {
		return nil, false
	}
	return s.b.fields[i].get(s.root)
}

func (s structAccessor) SetProperties(values map[string]any) error {
	type assignment struct {
		f *field
		v any
	}
	pending := make([]assignment, 0, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		i, ok := s.b.byName[name]
		if !ok {
			return fmt.Errorf("%w: %s has no property %q", types.ErrUnknownProperty, s.b.typeName, name)
		}
		f := &s.b.fields[i]
		if values[name] == nil && !f.nullable() {
			return fmt.Errorf("%w: %s.%s of type %s cannot hold NULL", types.ErrTypeMismatch, s.b.typeName, name, f.elem)
		}
		v, err := convert(values[name], f.elem)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", s.b.typeName, name, err)
		}
		pending = append(pending, assignment{f: f, v: v})
	}
	for _, a := range pending {
		a.f.set(s.root, a.v)
	}
	return nil
}

// ---------------- Value conversion ----------------

// convert returns x as a value of type to, or nil for a nil x. It accepts
// the exact type, []byte for strings, numeric conversions, and named types
// of the same kind.
func convert(x any, to reflect.Type) (any, error) {
	if x == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(x)
	rt := rv.Type()
	switch {
	case rt == to:
		return x, nil
	case to.Kind() == reflect.Interface && rt.Implements(to):
		return x, nil
	case rt == reflect.TypeFor[[]byte]() && to.Kind() == reflect.String:
		return reflect.ValueOf(string(x.([]byte))).Convert(to).Interface(), nil
	case isNumeric(rt.Kind()) && isNumeric(to.Kind()):
		if lossy(rv, to) {
			return nil, fmt.Errorf("%w: %v does not fit %s", types.ErrTypeMismatch, x, to)
		}
		return rv.Convert(to).Interface(), nil
	case isInteger(rt.Kind()) && to.Kind() == reflect.Bool:
		return reflect.ValueOf(rv.Int() != 0).Convert(to).Interface(), nil
	case rt.Kind() == to.Kind() && rt.ConvertibleTo(to):
		return rv.Convert(to).Interface(), nil
	}
	return nil, fmt.Errorf("%w: cannot assign %s to %s", types.ErrTypeMismatch, rt, to)
}

// lossy reports whether converting the number rv to type to would wrap,
// truncate a fraction, or overflow. Float to float only checks range.
func lossy(rv reflect.Value, to reflect.Type) bool {
	target := reflect.Zero(to)
	switch {
	case target.CanInt():
		switch {
		case rv.CanInt():
			return target.OverflowInt(rv.Int())
		case rv.CanUint():
			return rv.Uint() > math.MaxInt64 || target.OverflowInt(int64(rv.Uint()))
		default:
			f := rv.Float()
			return f != math.Trunc(f) || f < -0x1p63 || f >= 0x1p63 || target.OverflowInt(int64(f))
		}
	case target.CanUint():
		switch {
		case rv.CanInt():
			return rv.Int() < 0 || target.OverflowUint(uint64(rv.Int()))
		case rv.CanUint():
			return target.OverflowUint(rv.Uint())
		default:
			f := rv.Float()
			return f != math.Trunc(f) || f < 0 || f >= 0x1p64 || target.OverflowUint(uint64(f))
		}
	default:
		switch {
		case rv.CanInt():
			f := roundTo(float64(rv.Int()), to)
			return f < -0x1p63 || f >= 0x1p63 || int64(f) != rv.Int()
		case rv.CanUint():
			f := roundTo(float64(rv.Uint()), to)
			return f >= 0x1p64 || uint64(f) != rv.Uint()
		default:
			return target.OverflowFloat(rv.Float())
		}
	}
}

// roundTo rounds f to the precision of the float type to.
func roundTo(f float64, to reflect.Type) float64 {
	if to.Kind() == reflect.Float32 {
		return float64(float32(f))
	}
	return f
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
