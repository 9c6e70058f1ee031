package image

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sample is a single typed sample value.
// Integer and binary values live in ival (unsigned values as their bit
// pattern), real and complex values live in cval.
type Sample struct {
	dt   DataType
	ival int64
	cval complex128
}

// BoolSample returns a DTBin sample.
func BoolSample(v bool) Sample {
	s := Sample{dt: DTBin}
	if v {
		s.ival = 1
	}
	return s
}

// IntSample returns a DTSint64 sample.
func IntSample(v int64) Sample { return Sample{dt: DTSint64, ival: v} }

// UintSample returns a DTUint64 sample.
func UintSample(v uint64) Sample { return Sample{dt: DTUint64, ival: int64(v)} } //nolint:gosec // G115: bit pattern preserved

// FloatSample returns a DTDfloat sample.
func FloatSample(v float64) Sample { return Sample{dt: DTDfloat, cval: complex(v, 0)} }

// ComplexSample returns a DTDcomplex sample.
func ComplexSample(v complex128) Sample { return Sample{dt: DTDcomplex, cval: v} }

// DataType returns the sample's data type.
func (s Sample) DataType() DataType { return s.dt }

// Bool returns the sample as a boolean (non-zero is true).
func (s Sample) Bool() bool {
	switch {
	case s.dt.IsFloat() || s.dt.IsComplex():
		return s.cval != 0
	default:
		return s.ival != 0
	}
}

// Int64 returns the sample as a signed integer, truncating fractions and
// dropping imaginary parts.
func (s Sample) Int64() int64 {
	switch {
	case s.dt.IsFloat() || s.dt.IsComplex():
		return int64(real(s.cval))
	default:
		return s.ival
	}
}

// Uint64 returns the sample as an unsigned integer.
func (s Sample) Uint64() uint64 {
	switch {
	case s.dt.IsFloat() || s.dt.IsComplex():
		r := real(s.cval)
		if r < 0 {
			return 0
		}
		return uint64(r)
	default:
		return uint64(s.ival) //nolint:gosec // G115: bit pattern preserved
	}
}

// Float64 returns the sample as a real value, dropping imaginary parts.
func (s Sample) Float64() float64 {
	switch {
	case s.dt.IsFloat() || s.dt.IsComplex():
		return real(s.cval)
	case s.dt == DTUint64:
		return float64(uint64(s.ival)) //nolint:gosec // G115: bit pattern preserved
	default:
		return float64(s.ival)
	}
}

// Complex128 returns the sample as a complex value.
func (s Sample) Complex128() complex128 {
	if s.dt.IsFloat() || s.dt.IsComplex() {
		return s.cval
	}
	return complex(s.Float64(), 0)
}

// Convert returns the sample cast to dt. Narrowing integer conversions wrap
// the way Go conversions do.
func (s Sample) Convert(dt DataType) Sample {
	out := Sample{dt: dt}
	switch dt {
	case DTBin:
		if s.Bool() {
			out.ival = 1
		}
	case DTUint8:
		out.ival = int64(uint8(s.Uint64OrInt()))
	case DTUint16:
		out.ival = int64(uint16(s.Uint64OrInt()))
	case DTUint32:
		out.ival = int64(uint32(s.Uint64OrInt()))
	case DTUint64:
		out.ival = int64(s.Uint64OrInt()) //nolint:gosec // G115: bit pattern preserved
	case DTSint8:
		out.ival = int64(int8(s.Int64()))
	case DTSint16:
		out.ival = int64(int16(s.Int64()))
	case DTSint32:
		out.ival = int64(int32(s.Int64()))
	case DTSint64:
		out.ival = s.Int64()
	case DTSfloat:
		out.cval = complex(float64(float32(s.Float64())), 0)
	case DTDfloat:
		out.cval = complex(s.Float64(), 0)
	case DTScomplex:
		c := s.Complex128()
		out.cval = complex128(complex64(c))
	case DTDcomplex:
		out.cval = s.Complex128()
	default:
		panic(fmt.Sprintf("unknown data type %d", dt))
	}
	return out
}

// Uint64OrInt returns the integer bit pattern for integer samples and the
// truncated real part for the others. It is the source value for
// conversions into unsigned types.
func (s Sample) Uint64OrInt() uint64 {
	if s.dt.IsFloat() || s.dt.IsComplex() {
		return uint64(int64(real(s.cval))) //nolint:gosec // G115: wraps like a C cast
	}
	return uint64(s.ival) //nolint:gosec // G115: bit pattern preserved
}

// String formats the sample value.
func (s Sample) String() string {
	switch {
	case s.dt.IsBinary():
		return fmt.Sprint(s.Bool())
	case s.dt.IsComplex():
		return fmt.Sprint(s.cval)
	case s.dt.IsFloat():
		return fmt.Sprint(real(s.cval))
	case s.dt.IsUnsigned():
		return fmt.Sprint(s.Uint64())
	default:
		return fmt.Sprint(s.ival)
	}
}

// loadSample decodes one sample of type dt from the start of b.
func loadSample(b []byte, dt DataType) Sample {
	ne := binary.NativeEndian
	s := Sample{dt: dt}
	switch dt {
	case DTBin:
		if b[0] != 0 {
			s.ival = 1
		}
	case DTUint8:
		s.ival = int64(b[0])
	case DTUint16:
		s.ival = int64(ne.Uint16(b))
	case DTUint32:
		s.ival = int64(ne.Uint32(b))
	case DTUint64:
		s.ival = int64(ne.Uint64(b)) //nolint:gosec // G115: bit pattern preserved
	case DTSint8:
		s.ival = int64(int8(b[0]))
	case DTSint16:
		s.ival = int64(int16(ne.Uint16(b))) //nolint:gosec // G115: reinterpretation
	case DTSint32:
		s.ival = int64(int32(ne.Uint32(b))) //nolint:gosec // G115: reinterpretation
	case DTSint64:
		s.ival = int64(ne.Uint64(b)) //nolint:gosec // G115: reinterpretation
	case DTSfloat:
		s.cval = complex(float64(math.Float32frombits(ne.Uint32(b))), 0)
	case DTDfloat:
		s.cval = complex(math.Float64frombits(ne.Uint64(b)), 0)
	case DTScomplex:
		s.cval = complex(
			float64(math.Float32frombits(ne.Uint32(b))),
			float64(math.Float32frombits(ne.Uint32(b[4:]))))
	case DTDcomplex:
		s.cval = complex(math.Float64frombits(ne.Uint64(b)), math.Float64frombits(ne.Uint64(b[8:])))
	default:
		panic(fmt.Sprintf("unknown data type %d", dt))
	}
	return s
}

// storeSample encodes s, converted to dt, at the start of b.
func storeSample(b []byte, dt DataType, s Sample) {
	ne := binary.NativeEndian
	s = s.Convert(dt)
	switch dt {
	case DTBin, DTUint8, DTSint8:
		b[0] = byte(s.ival) //nolint:gosec // G115: already narrowed by Convert
	case DTUint16, DTSint16:
		ne.PutUint16(b, uint16(s.ival)) //nolint:gosec // G115: already narrowed by Convert
	case DTUint32, DTSint32:
		ne.PutUint32(b, uint32(s.ival)) //nolint:gosec // G115: already narrowed by Convert
	case DTUint64, DTSint64:
		ne.PutUint64(b, uint64(s.ival)) //nolint:gosec // G115: bit pattern preserved
	case DTSfloat:
		ne.PutUint32(b, math.Float32bits(float32(real(s.cval))))
	case DTDfloat:
		ne.PutUint64(b, math.Float64bits(real(s.cval)))
	case DTScomplex:
		ne.PutUint32(b, math.Float32bits(float32(real(s.cval))))
		ne.PutUint32(b[4:], math.Float32bits(float32(imag(s.cval))))
	case DTDcomplex:
		ne.PutUint64(b, math.Float64bits(real(s.cval)))
		ne.PutUint64(b[8:], math.Float64bits(imag(s.cval)))
	default:
		panic(fmt.Sprintf("unknown data type %d", dt))
	}
}
