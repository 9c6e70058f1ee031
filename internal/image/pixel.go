package image

import "strings"

// Pixel is a tensor of samples sharing one data type.
type Pixel struct {
	dt      DataType
	tensor  Tensor
	samples []Sample
}

// NewPixel returns a zero-valued column-vector pixel with n samples of type dt.
func NewPixel(dt DataType, n int) Pixel {
	p := Pixel{dt: dt, tensor: VectorTensor(n), samples: make([]Sample, n)}
	zero := Sample{dt: dt}
	for i := range p.samples {
		p.samples[i] = zero
	}
	return p
}

// PixelFromSample returns a scalar pixel holding s.
func PixelFromSample(s Sample) Pixel {
	return Pixel{dt: s.dt, tensor: ScalarTensor(), samples: []Sample{s}}
}

// DataType returns the pixel's data type.
func (p Pixel) DataType() DataType { return p.dt }

// Tensor returns the tensor shape of the pixel.
func (p Pixel) Tensor() Tensor { return p.tensor }

// TensorElements returns the number of samples.
func (p Pixel) TensorElements() int { return len(p.samples) }

// At returns sample i.
func (p Pixel) At(i int) Sample { return p.samples[i] }

// Set stores s at position i, converting it to the pixel's data type.
func (p Pixel) Set(i int, s Sample) { p.samples[i] = s.Convert(p.dt) }

// Samples returns the samples of the pixel.
func (p Pixel) Samples() []Sample { return p.samples }

// String formats the pixel as a bracketed list.
func (p Pixel) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, s := range p.samples {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
