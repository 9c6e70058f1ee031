package buffer

import (
	"fmt"
	"strings"
)

// Descriptor describes foreign memory the way the buffer protocol does:
// a memory block, the byte offset of the first element inside it, the item
// size, a format code, and per-axis extents and byte strides. Axes are in
// host order (slowest-varying first for C-ordered arrays).
//
// A Descriptor carries no ownership; whoever hands it out must keep the
// memory alive.
type Descriptor struct {
	Mem      []byte // nil for a null buffer
	Offset   int    // byte offset of the first element inside Mem
	ItemSize int
	Format   string
	Shape    []int
	Strides  []int // in bytes, may be negative
}

// NewDescriptor describes mem as a C-ordered (row-major) array of the given
// shape and format.
func NewDescriptor(mem []byte, format string, shape []int) (Descriptor, error) {
	dt, err := ParseFormat(format)
	if err != nil {
		return Descriptor{}, err
	}
	itemSize := dt.Size()
	strides := make([]int, len(shape))
	stride := itemSize
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	if stride > len(mem) {
		return Descriptor{}, fmt.Errorf("%w: shape %v of %q needs %d bytes, memory has %d",
			ErrDimensionality, shape, format, stride, len(mem))
	}
	return Descriptor{
		Mem:      mem,
		ItemSize: itemSize,
		Format:   format,
		Shape:    append([]int(nil), shape...),
		Strides:  strides,
	}, nil
}

// Ndim returns the number of axes.
func (d Descriptor) Ndim() int { return len(d.Shape) }

// IsNull reports whether the descriptor points at no memory.
func (d Descriptor) IsNull() bool { return d.Mem == nil }

// Len returns the number of elements described.
func (d Descriptor) Len() int {
	n := 1
	for _, s := range d.Shape {
		n *= s
	}
	return n
}

// span returns the lowest and highest byte offsets, relative to Offset, of
// any element addressed by the descriptor.
func (d Descriptor) span() (lo, hi int) {
	for i, sz := range d.Shape {
		ext := (sz - 1) * d.Strides[i]
		if ext < 0 {
			lo += ext
		} else {
			hi += ext
		}
	}
	return lo, hi
}

// String formats the descriptor for logs and error messages.
func (d Descriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "buffer(format=%q, itemsize=%d, shape=%v, strides=%v", d.Format, d.ItemSize, d.Shape, d.Strides)
	if d.IsNull() {
		sb.WriteString(", null")
	}
	sb.WriteString(")")
	return sb.String()
}
