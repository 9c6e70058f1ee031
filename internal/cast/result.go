package cast

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	ErrNotAScalarType = errors.New("input is not a scalar type")
	ErrEmptySequence  = errors.New("input is an empty sequence")
	ErrNoOverload     = errors.New("no overload accepted these arguments")
)

// Status tells a dispatcher what to do after a load attempt.
type Status int

// Load outcomes.
const (
	// NoMatch means the value is not meant for this caster; try the next one.
	NoMatch Status = iota
	// Matched means the value was converted.
	Matched
	// Failed means the value was meant for this caster but is malformed.
	Failed
)

// Result is the outcome of loading a host value.
// For NoMatch, Err optionally explains why, for diagnostics only.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// Match returns a Matched result.
func Match[T any](v T) Result[T] { return Result[T]{Value: v, Status: Matched} }

// Skip returns a NoMatch result with an optional reason.
func Skip[T any](reason error) Result[T] { return Result[T]{Status: NoMatch, Err: reason} }

// Fail returns a Failed result.
func Fail[T any](err error) Result[T] { return Result[T]{Status: Failed, Err: err} }

// Caster converts between host values and native values of type T.
type Caster[T any] interface {
	// Name identifies the native type in diagnostics.
	Name() string
	// Load converts a host value.
	Load(v Value) Result[T]
	// Emit converts a native value to a host value.
	Emit(x T) Value
}

// Loader is a Caster with its native type erased, so that casters of
// different types can be tried in one dispatch.
type Loader interface {
	Name() string
	LoadAny(v Value) Result[any]
}

type erased[T any] struct{ c Caster[T] }

func (e erased[T]) Name() string { return e.c.Name() }

func (e erased[T]) LoadAny(v Value) Result[any] {
	r := e.c.Load(v)
	return Result[any]{Value: r.Value, Status: r.Status, Err: r.Err}
}

// Erase wraps c as a Loader.
func Erase[T any](c Caster[T]) Loader { return erased[T]{c: c} }

// Dispatch tries loaders in order and returns the index and value of the
// first match. A Failed load stops the search and its error is returned.
// When nothing matches, the error wraps ErrNoOverload.
func Dispatch(v Value, loaders ...Loader) (int, any, error) {
	names := make([]string, 0, len(loaders))
	for i, l := range loaders {
		r := l.LoadAny(v)
		switch r.Status {
		case Matched:
			return i, r.Value, nil
		case Failed:
			return i, nil, fmt.Errorf("converting %s to %s: %w", v.Kind(), l.Name(), r.Err)
		}
		names = append(names, l.Name())
	}
	return -1, nil, fmt.Errorf("%w: %s not convertible to any of [%s]", ErrNoOverload, v.Kind(), strings.Join(names, ", "))
}

// Load runs a single caster the way Dispatch would.
func Load[T any](c Caster[T], v Value) (T, error) {
	r := c.Load(v)
	switch r.Status {
	case Matched:
		return r.Value, nil
	case Failed:
		var zero T
		return zero, fmt.Errorf("converting %s to %s: %w", v.Kind(), c.Name(), r.Err)
	default:
		var zero T
		return zero, fmt.Errorf("%w: %s not convertible to %s", ErrNoOverload, v.Kind(), c.Name())
	}
}
