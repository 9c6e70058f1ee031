// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dip

import (
	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
)

// Image is a strided, multi-dimensional array of tensor pixels.
type Image = image.Image

// DataType is the element type tag of an image.
type DataType = image.DataType

// Descriptor describes foreign memory in buffer-protocol terms.
type Descriptor = buffer.Descriptor

// Config holds the axis-order and tensor-inference settings.
type Config = buffer.Config

// Owner is a foreign object with its own reference count.
type Owner = buffer.Owner

// HostLock guards the host runtime's reference counts.
type HostLock = buffer.HostLock

// ImportOption customizes FromBuffer.
type ImportOption = buffer.ImportOption

// Sample, Pixel and Range are the values exchanged with casters.
type (
	Sample = image.Sample
	Pixel  = image.Pixel
	Range  = image.Range
)

// Errors returned by the adapter.
var (
	ErrUnsupportedFormat = buffer.ErrUnsupportedFormat
	ErrMisalignedStride  = buffer.ErrMisalignedStride
	ErrShapeMismatch     = image.ErrShapeMismatch
	ErrDimensionality    = image.ErrDimensionality
)

// NewDescriptor describes mem as a C-ordered array.
func NewDescriptor(mem []byte, format string, shape []int) (Descriptor, error) {
	return buffer.NewDescriptor(mem, format, shape)
}

// WithTensorAxis forces a host axis to become the tensor axis.
func WithTensorAxis(axis int) ImportOption { return buffer.WithTensorAxis(axis) }

// WithoutTensorInference keeps every axis spatial.
func WithoutTensorInference() ImportOption { return buffer.WithoutTensorInference() }

// FromBuffer builds an image viewing the memory of desc, using the
// process-wide configuration.
func FromBuffer(desc Descriptor, owner Owner, opts ...ImportOption) (*Image, error) {
	return buffer.Default.BufferToImage(desc, owner, opts...)
}

// ToBuffer describes the memory of img as a buffer, using the process-wide
// configuration.
func ToBuffer(img *Image) Descriptor {
	return buffer.Default.ImageToBuffer(img)
}

// ImageRepr returns the host representation of an image.
func ImageRepr(img *Image) string { return img.String() }

// ReverseDimensions stops the process-wide configuration from reversing
// axis order. Call it at most once, before any conversion.
func ReverseDimensions() { buffer.Default.ReverseDimensions() }

// AreDimensionsReversed reports whether conversions reverse axis order.
func AreDimensionsReversed() bool { return buffer.Default.AreDimensionsReversed() }

// SetTensorConversionThreshold sets the process-wide tensor inference
// threshold.
func SetTensorConversionThreshold(n int) { buffer.Default.SetTensorConversionThreshold(n) }

// TensorConversionThreshold returns the process-wide threshold.
func TensorConversionThreshold() int { return buffer.Default.TensorConversionThreshold() }

// SetHostLock installs the lock held around foreign reference count
// decrements.
func SetHostLock(l HostLock) { buffer.Default.Lock = l }
