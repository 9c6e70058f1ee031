package buffer

import (
	"fmt"

	"github.com/born-ml/dipbind/internal/image"
	"github.com/sirupsen/logrus"
)

// ImportOption customizes BufferToImage.
type ImportOption func(*importOptions)

type importOptions struct {
	tensorAxis    int
	hasTensorAxis bool
	inferTensor   bool
}

// WithTensorAxis forces host axis axis (negative counts from the end) to
// become the tensor axis. Tensor inference is skipped.
func WithTensorAxis(axis int) ImportOption {
	return func(o *importOptions) {
		o.tensorAxis = axis
		o.hasTensorAxis = true
	}
}

// WithoutTensorInference keeps every axis spatial.
func WithoutTensorInference() ImportOption {
	return func(o *importOptions) {
		o.inferTensor = false
	}
}

// BufferToImage builds an image that views the memory described by desc.
// No samples are copied: writes through either side are visible to the
// other.
//
// owner, if not nil, is the object keeping the memory alive. Its reference
// count is incremented now and decremented, under c.Lock, once the last
// image viewing the memory is released or collected.
//
// A buffer with an axis of extent 0 yields a raw image that only carries
// the data type; owner is not retained in that case. The resulting image
// is protected so it never reallocates memory it does not own.
func (c *Config) BufferToImage(desc Descriptor, owner Owner, opts ...ImportOption) (*image.Image, error) {
	o := importOptions{inferTensor: true}
	for _, opt := range opts {
		opt(&o)
	}

	dt, err := ParseFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	if desc.ItemSize != dt.Size() {
		return nil, fmt.Errorf("%w: format %q has %d-byte items, buffer reports %d",
			ErrUnsupportedFormat, desc.Format, dt.Size(), desc.ItemSize)
	}

	ndim := len(desc.Shape)
	if len(desc.Strides) != ndim {
		return nil, &image.GeometryError{Err: ErrDimensionality, Axis: -1,
			Details: fmt.Sprintf("buffer has %d extents but %d strides", ndim, len(desc.Strides))}
	}
	empty := false
	for i, sz := range desc.Shape {
		if sz < 0 {
			return nil, &image.GeometryError{Err: ErrDimensionality, Axis: i,
				Details: fmt.Sprintf("negative extent %d", sz)}
		}
		empty = empty || sz == 0
	}
	if empty {
		return image.NewRaw(dt), nil
	}

	sizes := make([]int, ndim)
	strides := make([]int, ndim)
	for i := range ndim {
		sizes[i] = desc.Shape[i]
		s := desc.Strides[i] / desc.ItemSize
		if s*desc.ItemSize != desc.Strides[i] {
			return nil, &image.GeometryError{Err: ErrMisalignedStride, Axis: i,
				Details: fmt.Sprintf("byte stride %d is not a multiple of item size %d", desc.Strides[i], desc.ItemSize)}
		}
		strides[i] = s
	}

	lo, hi := desc.span()
	if desc.Offset+lo < 0 || desc.Offset+hi+desc.ItemSize > len(desc.Mem) {
		return nil, &image.GeometryError{Err: ErrDimensionality, Axis: -1,
			Details: fmt.Sprintf("%s addresses bytes [%d, %d) of a %d-byte block",
				desc, desc.Offset+lo, desc.Offset+hi+desc.ItemSize, len(desc.Mem))}
	}

	c.orderAxes(sizes, strides)

	var seg *image.DataSegment
	if owner != nil {
		seg = image.NewExternalSegment(desc.Mem, Acquire(owner, c.Lock))
	} else {
		seg = image.NewExternalSegment(desc.Mem, nil)
	}
	img, err := image.NewFromSegment(seg, desc.Offset, dt, sizes, strides)
	if err != nil {
		return nil, err
	}

	switch {
	case o.hasTensorAxis:
		axis, err := c.nativeAxis(o.tensorAxis, ndim)
		if err == nil {
			err = img.SpatialToTensor(axis)
		}
		if err != nil {
			img.Release()
			return nil, err
		}
	case o.inferTensor:
		if axis, ok := c.InferTensorAxis(sizes); ok {
			if err := img.SpatialToTensor(axis); err != nil {
				img.Release()
				return nil, err
			}
		}
	}
	img.Protect()

	Logger().WithFields(logrus.Fields{
		"buffer": desc.String(),
		"image":  img.String(),
	}).Debug("Imported buffer")
	return img, nil
}
