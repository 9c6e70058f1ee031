package buffer

import (
	"errors"

	"github.com/born-ml/dipbind/internal/image"
)

// Common errors.
var (
	ErrUnsupportedFormat = errors.New("buffer data type not compatible with class Image")
	ErrMisalignedStride  = errors.New("cannot create image out of an array where strides are not in whole pixels")

	// Re-exported so callers of this package need only one import for errors.Is.
	ErrShapeMismatch  = image.ErrShapeMismatch
	ErrDimensionality = image.ErrDimensionality
)
