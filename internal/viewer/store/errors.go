package store

import "errors"

var (
	// ErrPrimaryNotFound means the primary component or field has no value
	// for the entity at the query time. It is the normal "nothing to draw"
	// outcome, not a failure.
	ErrPrimaryNotFound = errors.New("store: primary not found")

	// ErrObjectNotFound means the legacy store holds no object at the path.
	ErrObjectNotFound = errors.New("store: object not found")

	// ErrComponentType means a stored value has the wrong Go type for its
	// component or field.
	ErrComponentType = errors.New("store: component type mismatch")

	// ErrMalformedComponent means stored data could not be decoded, or a
	// batch is internally inconsistent.
	ErrMalformedComponent = errors.New("store: malformed component data")

	// ErrUnknownComponent means no codec is registered for a component.
	ErrUnknownComponent = errors.New("store: unknown component")
)
