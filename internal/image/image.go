package image

import (
	"fmt"
	"slices"
	"strings"
)

// Image is a strided, multi-dimensional array of pixels. Each pixel is a
// tensor of samples; the tensor elements are addressed with their own stride
// and behave as an implicit extra axis.
//
// Sizes and strides are ordered with the fastest-varying axis first. Strides
// are in samples, not bytes, and may be negative or zero.
//
// An Image without a data segment is "raw": it only carries sizes, tensor
// and data type. Images produced from foreign memory are protected, so that
// the memory is never reallocated by the image.
type Image struct {
	dataType     DataType
	sizes        []int
	strides      []int
	tensor       Tensor
	tensorStride int
	segment      *DataSegment
	origin       int // byte offset of the first sample inside the segment
	protected    bool
}

// NewRaw returns an unforged image that only carries a data type.
func NewRaw(dt DataType) *Image {
	return &Image{dataType: dt, tensor: ScalarTensor(), tensorStride: 1}
}

// New allocates a zeroed image with the given sizes, tensor elements per
// pixel and data type. Samples of a pixel are contiguous (tensor stride 1)
// and the first axis varies fastest.
func New(sizes []int, tensorElems int, dt DataType) (*Image, error) {
	if !dt.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDataType, dt)
	}
	if tensorElems < 1 {
		return nil, geometryErr(ErrShapeMismatch, -1, "tensor elements must be positive, got %d", tensorElems)
	}
	for i, sz := range sizes {
		if sz <= 0 {
			return nil, geometryErr(ErrDimensionality, i, "invalid size %d (must be > 0)", sz)
		}
	}
	strides := make([]int, len(sizes))
	n := tensorElems
	for i, sz := range sizes {
		strides[i] = n
		n *= sz
	}
	seg := newDataSegment(n * dt.Size())
	return &Image{
		dataType:     dt,
		sizes:        slices.Clone(sizes),
		strides:      strides,
		tensor:       VectorTensor(tensorElems),
		tensorStride: 1,
		segment:      seg,
	}, nil
}

// NewFromSegment builds a scalar image viewing seg. The origin is a byte
// offset inside the segment; strides are in samples. The segment gains one
// reference, released by Release.
func NewFromSegment(seg *DataSegment, origin int, dt DataType, sizes, strides []int) (*Image, error) {
	if len(sizes) != len(strides) {
		return nil, geometryErr(ErrDimensionality, -1, "got %d sizes but %d strides", len(sizes), len(strides))
	}
	for i, sz := range sizes {
		if sz <= 0 {
			return nil, geometryErr(ErrDimensionality, i, "invalid size %d (must be > 0)", sz)
		}
	}
	seg.addRef()
	return &Image{
		dataType:     dt,
		sizes:        slices.Clone(sizes),
		strides:      slices.Clone(strides),
		tensor:       ScalarTensor(),
		tensorStride: 1,
		segment:      seg,
		origin:       origin,
	}, nil
}

// DataType returns the sample type.
func (img *Image) DataType() DataType { return img.dataType }

// Sizes returns a copy of the image sizes.
func (img *Image) Sizes() []int { return slices.Clone(img.sizes) }

// Strides returns a copy of the image strides, in samples.
func (img *Image) Strides() []int { return slices.Clone(img.strides) }

// Size returns the size along axis dim.
func (img *Image) Size(dim int) int { return img.sizes[dim] }

// Stride returns the stride along axis dim.
func (img *Image) Stride(dim int) int { return img.strides[dim] }

// Dimensionality returns the number of spatial axes.
func (img *Image) Dimensionality() int { return len(img.sizes) }

// NumberOfPixels returns the product of the sizes.
func (img *Image) NumberOfPixels() int {
	n := 1
	for _, sz := range img.sizes {
		n *= sz
	}
	return n
}

// IsForged reports whether the image has memory attached.
func (img *Image) IsForged() bool { return img.segment != nil }

// Tensor returns the tensor shape of the pixels.
func (img *Image) Tensor() Tensor { return img.tensor }

// TensorElements returns the number of samples per pixel.
func (img *Image) TensorElements() int { return img.tensor.Elements() }

// TensorStride returns the stride between samples of a pixel.
func (img *Image) TensorStride() int { return img.tensorStride }

// IsScalar reports whether each pixel holds one sample.
func (img *Image) IsScalar() bool { return img.tensor.IsScalar() }

// Origin returns the byte offset of the first sample inside the data segment.
func (img *Image) Origin() int { return img.origin }

// Segment returns the data segment, or nil for a raw image.
func (img *Image) Segment() *DataSegment { return img.segment }

// Data returns the memory block of the data segment.
func (img *Image) Data() []byte {
	if img.segment == nil {
		return nil
	}
	return img.segment.Bytes()
}

// IsExternal reports whether the image views memory owned by someone else.
func (img *Image) IsExternal() bool { return img.segment != nil && img.segment.IsExternal() }

// ShareCount returns the number of images holding the data segment.
func (img *Image) ShareCount() int {
	if img.segment == nil {
		return 0
	}
	return img.segment.RefCount()
}

// SharesData reports whether img and other view the same data segment.
func (img *Image) SharesData(other *Image) bool {
	return img.segment != nil && img.segment == other.segment
}

// Protect marks the image so that its memory is never reallocated.
func (img *Image) Protect() { img.protected = true }

// IsProtected reports whether Protect was called.
func (img *Image) IsProtected() bool { return img.protected }

// Strip detaches the data segment. Protected images refuse.
func (img *Image) Strip() error {
	if img.protected {
		return ErrProtected
	}
	img.Release()
	return nil
}

// Release drops this image's reference to its data segment. Once the last
// image lets go, external memory is handed back to its owner.
func (img *Image) Release() {
	if img.segment == nil {
		return
	}
	seg := img.segment
	img.segment = nil
	seg.release()
}

// Clone returns a new image header viewing the same data segment.
func (img *Image) Clone() *Image {
	out := *img
	out.sizes = slices.Clone(img.sizes)
	out.strides = slices.Clone(img.strides)
	if out.segment != nil {
		out.segment.addRef()
	}
	return &out
}

// ReverseDimensions reverses the order of the spatial axes. Only metadata
// changes.
func (img *Image) ReverseDimensions() {
	slices.Reverse(img.sizes)
	slices.Reverse(img.strides)
}

// SpatialToTensor turns spatial axis dim of a scalar image into a column
// vector tensor.
func (img *Image) SpatialToTensor(dim int) error {
	if !img.IsScalar() {
		return geometryErr(ErrShapeMismatch, dim, "image already has a %s tensor", img.tensor)
	}
	if dim < 0 || dim >= len(img.sizes) {
		return geometryErr(ErrDimensionality, dim, "image has %d dimensions", len(img.sizes))
	}
	img.tensor = VectorTensor(img.sizes[dim])
	img.tensorStride = img.strides[dim]
	img.sizes = slices.Delete(img.sizes, dim, dim+1)
	img.strides = slices.Delete(img.strides, dim, dim+1)
	return nil
}

// TensorToSpatial turns the tensor into a new spatial axis at position dim.
func (img *Image) TensorToSpatial(dim int) error {
	if dim < 0 || dim > len(img.sizes) {
		return geometryErr(ErrDimensionality, dim, "image has %d dimensions", len(img.sizes))
	}
	img.sizes = slices.Insert(img.sizes, dim, img.tensor.Elements())
	img.strides = slices.Insert(img.strides, dim, img.tensorStride)
	img.tensor = ScalarTensor()
	img.tensorStride = 1
	return nil
}

// ReshapeTensor gives the tensor a rows x cols matrix shape. The number of
// elements must not change.
func (img *Image) ReshapeTensor(rows, cols int) error {
	t, err := img.tensor.Reshape(rows, cols)
	if err != nil {
		return err
	}
	img.tensor = t
	return nil
}

// offset returns the byte offset of tensor element t of the pixel at coords.
func (img *Image) offset(coords []int, t int) (int, error) {
	if img.segment == nil {
		return 0, ErrNotForged
	}
	if len(coords) != len(img.sizes) {
		return 0, geometryErr(ErrDimensionality, -1, "got %d coordinates for a %d-D image", len(coords), len(img.sizes))
	}
	off := t * img.tensorStride
	for i, c := range coords {
		if c < 0 || c >= img.sizes[i] {
			return 0, geometryErr(ErrIndexOutOfRange, i, "coordinate %d outside [0, %d)", c, img.sizes[i])
		}
		off += c * img.strides[i]
	}
	return img.origin + off*img.dataType.Size(), nil
}

// coordinates converts a linear pixel index, first axis fastest, to coordinates.
func (img *Image) coordinates(index int) ([]int, error) {
	if index < 0 || index >= img.NumberOfPixels() {
		return nil, fmt.Errorf("%w: pixel index %d", ErrIndexOutOfRange, index)
	}
	coords := make([]int, len(img.sizes))
	for i, sz := range img.sizes {
		coords[i] = index % sz
		index /= sz
	}
	return coords, nil
}

// At returns the pixel at coords.
func (img *Image) At(coords ...int) (Pixel, error) {
	n := img.TensorElements()
	p := Pixel{dt: img.dataType, tensor: img.tensor, samples: make([]Sample, n)}
	data := img.Data()
	for t := range n {
		off, err := img.offset(coords, t)
		if err != nil {
			return Pixel{}, err
		}
		p.samples[t] = loadSample(data[off:], img.dataType)
	}
	return p, nil
}

// AtIndex returns the pixel at a linear index, first axis fastest.
func (img *Image) AtIndex(index int) (Pixel, error) {
	coords, err := img.coordinates(index)
	if err != nil {
		return Pixel{}, err
	}
	return img.At(coords...)
}

// Set writes p to the pixel at coords, converting samples to the image's
// data type. A scalar pixel is written to every tensor element.
func (img *Image) Set(p Pixel, coords ...int) error {
	n := img.TensorElements()
	if p.TensorElements() != 1 && p.TensorElements() != n {
		return geometryErr(ErrShapeMismatch, -1, "pixel has %d samples, image has %d tensor elements", p.TensorElements(), n)
	}
	data := img.Data()
	for t := range n {
		off, err := img.offset(coords, t)
		if err != nil {
			return err
		}
		s := p.samples[0]
		if p.TensorElements() == n {
			s = p.samples[t]
		}
		storeSample(data[off:], img.dataType, s)
	}
	return nil
}

// SetIndex writes p to the pixel at a linear index, first axis fastest.
func (img *Image) SetIndex(p Pixel, index int) error {
	coords, err := img.coordinates(index)
	if err != nil {
		return err
	}
	return img.Set(p, coords...)
}

// View returns an image viewing the subset of pixels selected by one range
// per axis. The result shares the data segment.
func (img *Image) View(ranges ...Range) (*Image, error) {
	if img.segment == nil {
		return nil, ErrNotForged
	}
	if len(ranges) != len(img.sizes) {
		return nil, geometryErr(ErrDimensionality, -1, "got %d ranges for a %d-D image", len(ranges), len(img.sizes))
	}
	out := img.Clone()
	off := 0
	for i, r := range ranges {
		if err := r.Fix(img.sizes[i]); err != nil {
			out.Release()
			return nil, &GeometryError{Err: ErrIndexOutOfRange, Axis: i, Details: err.Error()}
		}
		off += r.Offset() * img.strides[i]
		out.sizes[i] = r.Size()
		out.strides[i] = img.strides[i] * r.SignedStep()
	}
	out.origin += off * img.dataType.Size()
	return out, nil
}

// String returns a short description of the image.
func (img *Image) String() string {
	if !img.IsForged() {
		return "<Empty image>"
	}
	var sb strings.Builder
	if img.IsScalar() {
		sb.WriteString("<Scalar image")
	} else {
		fmt.Fprintf(&sb, "<Tensor image (%s)", img.tensor)
	}
	fmt.Fprintf(&sb, ", %s", img.dataType)
	if len(img.sizes) == 0 {
		sb.WriteString(", 0D")
	} else {
		fmt.Fprintf(&sb, ", sizes %v", img.sizes)
	}
	sb.WriteString(">")
	return sb.String()
}
