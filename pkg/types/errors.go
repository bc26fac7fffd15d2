package types

import "errors"

// Mapping errors returned by the record package. Callers test them with
// errors.Is; the underlying driver error, when there is one, is wrapped too.
var (
	ErrSchema          = errors.New("schema introspection failed")
	ErrStatement       = errors.New("statement rejected")
	ErrUnknownProperty = errors.New("unknown property")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrTableNotFound   = errors.New("table not found")
)

// Entity and predicate errors.
var (
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
	ErrInvalidPredicate  = errors.New("predicate must name one attribute")
	ErrAlreadyPersisted  = errors.New("entity already has a row identifier")
)
