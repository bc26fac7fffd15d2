package record

import "reflect"

type valueState uint8

const (
	stateAbsent valueState = iota
	stateNull
	statePresent
)

// Value is an entity property that tells "never assigned" apart from an
// explicit NULL. The zero Value is absent.
type Value[T any] struct {
	val   T
	state valueState
}

// Of returns a Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{val: v, state: statePresent}
}

// Null returns a Value explicitly set to NULL.
func Null[T any]() Value[T] {
	return Value[T]{state: stateNull}
}

// Set assigns v.
func (v *Value[T]) Set(x T) {
	v.val = x
	v.state = statePresent
}

// SetNull assigns NULL.
func (v *Value[T]) SetNull() {
	var zero T
	v.val = zero
	v.state = stateNull
}

// Unset returns the Value to absent.
func (v *Value[T]) Unset() {
	var zero T
	v.val = zero
	v.state = stateAbsent
}

// Get returns the held value. ok is false when the Value is absent or NULL.
func (v Value[T]) Get() (T, bool) {
	return v.val, v.state == statePresent
}

// IsAbsent reports whether the Value was never assigned.
func (v Value[T]) IsAbsent() bool { return v.state == stateAbsent }

// IsNull reports whether the Value was explicitly set to NULL.
func (v Value[T]) IsNull() bool { return v.state == stateNull }

// slot is the accessor protocol the binder uses for Value fields.
type slot interface {
	load() (any, bool)
	store(x any)
	elemType() reflect.Type
}

func (v *Value[T]) load() (any, bool) {
	switch v.state {
	case statePresent:
		return v.val, true
	case stateNull:
		return nil, true
	default:
		return nil, false
	}
}

// store expects x to be nil or already converted to T.
func (v *Value[T]) store(x any) {
	if x == nil {
		v.SetNull()
		return
	}
	v.Set(x.(T))
}

func (v *Value[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}
