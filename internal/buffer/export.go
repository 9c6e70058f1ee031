package buffer

import (
	"github.com/born-ml/dipbind/internal/image"
)

// ImageToBuffer describes the memory of img as a buffer. Nothing is copied;
// the descriptor stays valid only while img is alive and keeps the same
// memory.
//
// A raw image gives a null buffer with a single axis of extent 0. A
// non-scalar image gets one extra trailing axis for its tensor elements.
func (c *Config) ImageToBuffer(img *image.Image) Descriptor {
	dt := img.DataType()
	itemSize := dt.Size()
	desc := Descriptor{
		ItemSize: itemSize,
		Format:   FormatOf(dt),
	}
	if !img.IsForged() {
		desc.Shape = []int{0}
		desc.Strides = []int{itemSize}
		return desc
	}

	sizes := img.Sizes()
	strides := img.Strides()
	for i := range strides {
		strides[i] *= itemSize
	}
	c.orderAxes(sizes, strides)
	if !img.IsScalar() {
		sizes = append(sizes, img.TensorElements())
		strides = append(strides, img.TensorStride()*itemSize)
	}

	desc.Mem = img.Data()
	desc.Offset = img.Origin()
	desc.Shape = sizes
	desc.Strides = strides
	return desc
}
