package cast

import (
	"testing"

	"github.com/born-ml/dipbind/internal/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(i int) *int { return &i }

func TestSampleCasterLoad(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		dt   image.DataType
	}{
		{"bool", Bool(true), image.DTBin},
		{"int", Int(-3), image.DTSint64},
		{"float", Float(1.25), image.DTDfloat},
		{"complex", Complex(complex(1, 2)), image.DTDcomplex},
	}
	var sc SampleCaster
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sc.Load(tt.in)
			require.Equal(t, Matched, r.Status)
			assert.Equal(t, tt.dt, r.Value.DataType())
		})
	}

	r := sc.Load(String("x"))
	assert.Equal(t, NoMatch, r.Status)
	assert.ErrorIs(t, r.Err, ErrNotAScalarType)

	r = sc.Load(List(Int(1)))
	assert.Equal(t, NoMatch, r.Status)
}

func TestSampleCasterEmit(t *testing.T) {
	var sc SampleCaster
	assert.Equal(t, Bool(true), sc.Emit(image.BoolSample(true)))
	assert.Equal(t, Int(7), sc.Emit(image.IntSample(7).Convert(image.DTUint16)))
	assert.Equal(t, Float(0.5), sc.Emit(image.FloatSample(0.5).Convert(image.DTSfloat)))
	assert.Equal(t, Complex(complex(1, -1)), sc.Emit(image.ComplexSample(complex(1, -1))))
}

func TestPixelCasterFirstElementDecides(t *testing.T) {
	var pc PixelCaster

	r := pc.Load(List(Int(1), Float(2.7)))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, image.DTSint64, r.Value.DataType())
	assert.Equal(t, 2, r.Value.TensorElements())
	assert.Equal(t, int64(1), r.Value.At(0).Int64())
	assert.Equal(t, int64(2), r.Value.At(1).Int64(), "later elements are truncated")

	r = pc.Load(List(Float(2.7), Int(1)))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, image.DTDfloat, r.Value.DataType())
	assert.InDelta(t, 2.7, r.Value.At(0).Float64(), 0)

	r = pc.Load(List(Bool(false), Int(3)))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, image.DTBin, r.Value.DataType())
	assert.True(t, r.Value.At(1).Bool())
}

func TestPixelCasterEdgeCases(t *testing.T) {
	var pc PixelCaster

	r := pc.Load(List())
	assert.Equal(t, NoMatch, r.Status)
	assert.ErrorIs(t, r.Err, ErrEmptySequence)

	r = pc.Load(List(String("a")))
	assert.Equal(t, NoMatch, r.Status)

	r = pc.Load(List(Int(1), String("a")))
	assert.Equal(t, NoMatch, r.Status)

	r = pc.Load(Float(3))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, 1, r.Value.TensorElements())

	r = pc.Load(None())
	assert.Equal(t, NoMatch, r.Status)
}

func TestPixelCasterEmit(t *testing.T) {
	var pc PixelCaster
	p := image.NewPixel(image.DTUint8, 3)
	p.Set(0, image.IntSample(1))
	p.Set(1, image.IntSample(2))
	p.Set(2, image.IntSample(3))
	assert.Equal(t, List(Int(1), Int(2), Int(3)), pc.Emit(p))

	assert.Equal(t, List(Float(4)), pc.Emit(image.PixelFromSample(image.FloatSample(4))))
}

func TestRangeCaster(t *testing.T) {
	tests := []struct {
		name   string
		in     Value
		want   image.Range
		extent int
		fixed  image.Range
	}{
		{"reversed", SliceOf(Slice{Step: intp(-1)}), image.Range{Start: -1, Stop: 0, Step: 1}, 10, image.Range{Start: 9, Stop: 0, Step: 1}},
		{"stepped", SliceOf(Slice{Start: intp(2), Stop: intp(8), Step: intp(2)}), image.Range{Start: 2, Stop: 8, Step: 2}, 10, image.Range{Start: 2, Stop: 8, Step: 2}},
		{"full", SliceOf(Slice{}), image.Range{Start: 0, Stop: -1, Step: 1}, 5, image.Range{Start: 0, Stop: 4, Step: 1}},
		{"open stop", SliceOf(Slice{Start: intp(3)}), image.Range{Start: 3, Stop: -1, Step: 1}, 5, image.Range{Start: 3, Stop: 4, Step: 1}},
		{"descending from", SliceOf(Slice{Start: intp(6), Step: intp(-2)}), image.Range{Start: 6, Stop: 0, Step: 2}, 10, image.Range{Start: 6, Stop: 0, Step: 2}},
		{"index", Int(4), image.Range{Start: 4, Stop: 4, Step: 1}, 10, image.Range{Start: 4, Stop: 4, Step: 1}},
		{"negative index", Int(-1), image.Range{Start: -1, Stop: -1, Step: 1}, 10, image.Range{Start: 9, Stop: 9, Step: 1}},
	}
	var rc RangeCaster
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rc.Load(tt.in)
			require.Equal(t, Matched, r.Status)
			assert.Equal(t, tt.want, r.Value)

			got := r.Value
			require.NoError(t, got.Fix(tt.extent))
			assert.Equal(t, tt.fixed, got)
		})
	}
}

func TestRangeCasterErrors(t *testing.T) {
	var rc RangeCaster
	r := rc.Load(SliceOf(Slice{Step: intp(0)}))
	assert.Equal(t, Failed, r.Status)
	assert.ErrorIs(t, r.Err, image.ErrIndexOutOfRange)

	r = rc.Load(Float(1))
	assert.Equal(t, NoMatch, r.Status)
}

func TestRangeCasterEmit(t *testing.T) {
	var rc RangeCaster
	v := rc.Emit(image.Range{Start: 1, Stop: 5, Step: 2})
	require.Equal(t, KindSlice, v.Kind())
	assert.Equal(t, "slice(1, 5, 2)", v.String())
}

func TestDataTypeCaster(t *testing.T) {
	var dc DataTypeCaster
	r := dc.Load(String("sfloat"))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, image.DTSfloat, r.Value)

	r = dc.Load(String("quaternion"))
	assert.Equal(t, Failed, r.Status)
	assert.ErrorIs(t, r.Err, image.ErrUnknownDataType)

	r = dc.Load(Int(1))
	assert.Equal(t, NoMatch, r.Status)

	assert.Equal(t, String("UINT16"), dc.Emit(image.DTUint16))
}

func TestTensorShapeCaster(t *testing.T) {
	var tc TensorShapeCaster
	r := tc.Load(String("diagonal matrix"))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, image.DiagonalMatrix, r.Value)

	r = tc.Load(String("blob"))
	assert.Equal(t, Failed, r.Status)

	assert.Equal(t, String("column vector"), tc.Emit(image.ColVector))
}

func TestDimensionArrayCaster(t *testing.T) {
	var dc DimensionArrayCaster
	r := dc.Load(List(Int(3), Int(4)))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, []int{3, 4}, r.Value)

	r = dc.Load(Int(5))
	require.Equal(t, Matched, r.Status)
	assert.Equal(t, []int{5}, r.Value)

	r = dc.Load(List(Int(3), Float(4)))
	assert.Equal(t, NoMatch, r.Status)

	assert.Equal(t, List(Int(1), Int(2)), dc.Emit([]int{1, 2}))
}

func TestDispatch(t *testing.T) {
	loaders := []Loader{Erase[image.Range](RangeCaster{}), Erase[image.Pixel](PixelCaster{})}

	idx, out, err := Dispatch(List(Int(1), Int(2)), loaders...)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.IsType(t, image.Pixel{}, out)

	idx, out, err = Dispatch(Int(3), loaders...)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, image.IndexRange(3), out)

	_, _, err = Dispatch(String("x"), loaders...)
	assert.ErrorIs(t, err, ErrNoOverload)

	// A hard failure stops the search
	idx, _, err = Dispatch(SliceOf(Slice{Step: intp(0)}), loaders...)
	assert.Equal(t, 0, idx)
	assert.ErrorIs(t, err, image.ErrIndexOutOfRange)
	assert.NotErrorIs(t, err, ErrNoOverload)
}

func TestLoad(t *testing.T) {
	s, err := Load[image.Sample](SampleCaster{}, Int(9))
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.Int64())

	_, err = Load[image.Sample](SampleCaster{}, String("9"))
	assert.ErrorIs(t, err, ErrNoOverload)

	_, err = Load[image.DataType](DataTypeCaster{}, String("nope"))
	assert.ErrorIs(t, err, image.ErrUnknownDataType)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "None", None().String())
	assert.Equal(t, "True", Bool(true).String())
	assert.Equal(t, "[1, 2.5]", List(Int(1), Float(2.5)).String())
	assert.Equal(t, "slice(None, 3, None)", SliceOf(Slice{Stop: intp(3)}).String())
	assert.Equal(t, "list", KindList.String())

	d := Dict(Field{"a", Int(1)})
	v, ok := d.Get("a")
	require.True(t, ok)
	assert.Equal(t, Int(1), v)
	_, ok = d.Get("b")
	assert.False(t, ok)
}

func TestDictString(t *testing.T) {
	d := Dict(Field{"name", String("a.tif")}, Field{"sizes", List(Int(2), Int(3))})
	assert.Equal(t, `{"name": "a.tif", "sizes": [2, 3]}`, d.String())
}
