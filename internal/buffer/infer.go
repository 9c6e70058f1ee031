package buffer

import (
	"github.com/born-ml/dipbind/internal/image"
)

// InferTensorAxis picks the axis of an image with the given sizes (native
// order) that should become the tensor axis. Only images with more than two
// axes qualify. The candidate is the last axis, or the first one when it is
// strictly smaller; it is chosen when its extent does not exceed the
// conversion threshold.
func (c *Config) InferTensorAxis(sizes []int) (int, bool) {
	if len(sizes) <= 2 {
		return 0, false
	}
	dim := len(sizes) - 1
	if sizes[0] < sizes[dim] {
		dim = 0
	}
	if sizes[dim] <= c.threshold {
		return dim, true
	}
	return 0, false
}

// nativeAxis translates an axis index given in host order, possibly
// negative, to the native order of an image with ndim axes.
func (c *Config) nativeAxis(axis, ndim int) (int, error) {
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		return 0, &image.GeometryError{Err: ErrDimensionality, Axis: axis, Details: "tensor axis out of range"}
	}
	if c.reverse {
		axis = ndim - 1 - axis
	}
	return axis, nil
}
