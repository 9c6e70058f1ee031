package image

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrShapeMismatch    = errors.New("tensor shape mismatch")
	ErrDimensionality   = errors.New("dimensionality not supported")
	ErrNotForged        = errors.New("image is not forged")
	ErrProtected        = errors.New("image is protected")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrUnknownDataType  = errors.New("unknown data type")
	ErrUnknownTensorTag = errors.New("unknown tensor shape")
)

// GeometryError describes a failure tied to one axis of an image or buffer.
type GeometryError struct {
	Err     error  // Sentinel the error wraps
	Axis    int    // Offending axis, or -1 when the failure is not axis specific
	Details string // Additional details
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	if e.Axis >= 0 {
		return fmt.Sprintf("%v: axis %d: %s", e.Err, e.Axis, e.Details)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Details)
}

// Unwrap returns the sentinel error.
func (e *GeometryError) Unwrap() error { return e.Err }

func geometryErr(err error, axis int, format string, args ...any) error {
	return &GeometryError{Err: err, Axis: axis, Details: fmt.Sprintf(format, args...)}
}
