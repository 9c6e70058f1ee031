package cast

import (
	"fmt"

	"github.com/born-ml/dipbind/internal/image"
)

// PixelCaster converts host lists and scalars to pixels.
//
// The kind of the first list element decides the pixel's data type; every
// other element is converted to that type, so [1, 2.7] loads as SINT64
// samples 1 and 2. A scalar loads as a one-sample pixel.
type PixelCaster struct{}

// Name implements Caster.
func (PixelCaster) Name() string { return "Pixel" }

// Load implements Caster.
func (PixelCaster) Load(v Value) Result[image.Pixel] {
	if v.Kind() != KindList {
		s, ok := sampleOf(v)
		if !ok {
			return Skip[image.Pixel](fmt.Errorf("%w: %s", ErrNotAScalarType, v.Kind()))
		}
		return Match(image.PixelFromSample(s))
	}
	items := v.AsList()
	if len(items) == 0 {
		return Skip[image.Pixel](ErrEmptySequence)
	}
	dt, ok := sampleType(items[0].Kind())
	if !ok {
		return Skip[image.Pixel](fmt.Errorf("%w: first element is %s", ErrNotAScalarType, items[0].Kind()))
	}
	p := image.NewPixel(dt, len(items))
	for i, item := range items {
		s, ok := sampleOf(item)
		if !ok {
			return Skip[image.Pixel](fmt.Errorf("%w: element %d is %s", ErrNotAScalarType, i, item.Kind()))
		}
		p.Set(i, s)
	}
	return Match(p)
}

// Emit implements Caster. The result is always a list.
func (PixelCaster) Emit(p image.Pixel) Value {
	var sc SampleCaster
	items := make([]Value, p.TensorElements())
	for i, s := range p.Samples() {
		items[i] = sc.Emit(s)
	}
	return List(items...)
}
