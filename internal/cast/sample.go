package cast

import (
	"fmt"

	"github.com/born-ml/dipbind/internal/image"
)

// SampleCaster converts host scalars to samples of the narrowest type that
// holds them without loss: bool to BIN, int to SINT64, float to DFLOAT and
// complex to DCOMPLEX.
type SampleCaster struct{}

// Name implements Caster.
func (SampleCaster) Name() string { return "Sample" }

// Load implements Caster.
func (SampleCaster) Load(v Value) Result[image.Sample] {
	s, ok := sampleOf(v)
	if !ok {
		return Skip[image.Sample](fmt.Errorf("%w: %s", ErrNotAScalarType, v.Kind()))
	}
	return Match(s)
}

// Emit implements Caster. Binary samples become bool, complex samples
// complex, float samples float and every integer type int.
func (SampleCaster) Emit(s image.Sample) Value {
	dt := s.DataType()
	switch {
	case dt.IsBinary():
		return Bool(s.Bool())
	case dt.IsComplex():
		return Complex(s.Complex128())
	case dt.IsFloat():
		return Float(s.Float64())
	default:
		return Int(s.Int64())
	}
}

func sampleOf(v Value) (image.Sample, bool) {
	switch v.Kind() {
	case KindBool:
		return image.BoolSample(v.AsBool()), true
	case KindInt:
		return image.IntSample(v.AsInt()), true
	case KindFloat:
		return image.FloatSample(v.AsFloat()), true
	case KindComplex:
		return image.ComplexSample(v.AsComplex()), true
	default:
		return image.Sample{}, false
	}
}

// sampleType is the data type a host scalar of kind k loads as.
func sampleType(k Kind) (image.DataType, bool) {
	switch k {
	case KindBool:
		return image.DTBin, true
	case KindInt:
		return image.DTSint64, true
	case KindFloat:
		return image.DTDfloat, true
	case KindComplex:
		return image.DTDcomplex, true
	default:
		return 0, false
	}
}
