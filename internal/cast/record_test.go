package cast

import (
	"testing"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCasterEmit(t *testing.T) {
	var qc RecordCaster[QuartilesResult]
	assert.Equal(t, "QuartilesResult", qc.Name())

	v := qc.Emit(QuartilesResult{Minimum: 0, LowerQuartile: 1, Median: 2, UpperQuartile: 3, Maximum: 4})
	require.Equal(t, KindRecord, v.Kind())
	assert.Equal(t, "QuartilesResult", v.RecordName())

	names := make([]string, 0, 5)
	for _, f := range v.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"minimum", "lowerQuartile", "median", "upperQuartile", "maximum"}, names)

	median, ok := v.Get("median")
	require.True(t, ok)
	assert.Equal(t, Float(2), median)

	registered, ok := RecordFieldNames("QuartilesResult")
	require.True(t, ok)
	assert.Equal(t, names, registered)

	assert.Equal(t, NoMatch, qc.Load(v).Status)
}

func TestRecordShapesAreFixed(t *testing.T) {
	_, err := NewRecord("testPair", Field{"a", Int(1)}, Field{"b", Int(2)})
	require.NoError(t, err)
	_, err = NewRecord("testPair", Field{"a", Int(3)}, Field{"b", Int(4)})
	require.NoError(t, err)

	_, err = NewRecord("testPair", Field{"b", Int(1)}, Field{"a", Int(2)})
	assert.Error(t, err)
	_, err = NewRecord("testPair", Field{"a", Int(1)})
	assert.Error(t, err)
}

type clashingMinMax struct{}

func (clashingMinMax) RecordName() string { return "MinMaxValues" }

func (clashingMinMax) RecordFields() []Field {
	return []Field{{"maximum", Float(1)}, {"minimum", Float(0)}}
}

func TestRecordCasterEmitPanicsOnShapeClash(t *testing.T) {
	var mc RecordCaster[MinMax]
	mc.Emit(MinMax{})

	var cc RecordCaster[clashingMinMax]
	assert.Panics(t, func() { cc.Emit(clashingMinMax{}) })

	_, err := NewRecord("MinMaxValues", clashingMinMax{}.RecordFields()...)
	assert.Error(t, err)
}

func TestStatisticsRecord(t *testing.T) {
	var sc RecordCaster[StatisticsValues]
	v := sc.Emit(StatisticsValues{Mean: 1.5, Number: 10})
	n, ok := v.Get("number")
	require.True(t, ok)
	assert.Equal(t, Int(10), n)
	assert.Len(t, v.Fields(), 6)

	var mc RecordCaster[MinMax]
	v = mc.Emit(MinMax{Minimum: -1, Maximum: 1})
	assert.Equal(t, "MinMaxValues(minimum=-1, maximum=1)", v.String())
}

func TestFileInformationEmit(t *testing.T) {
	fi := FileInformation{
		Name:           "cells.ics",
		FileType:       "ICS",
		DataType:       image.DTUint16,
		Sizes:          []int{256, 128, 10},
		TensorElements: 1,
		PixelSize:      []float64{0.1, 0.1, 0.5},
		Origin:         []float64{0, 0, 2},
		NumberOfImages: 1,
		History:        []string{"acquired"},
	}

	cfg := buffer.DefaultConfig()
	v := fi.Emit(cfg)
	require.Equal(t, KindDict, v.Kind())
	sizes, ok := v.Get("sizes")
	require.True(t, ok)
	assert.Equal(t, List(Int(256), Int(128), Int(10)), sizes)
	dt, _ := v.Get("dataType")
	assert.Equal(t, String("UINT16"), dt)

	cfg.ReverseDimensions()
	v = fi.Emit(cfg)
	sizes, _ = v.Get("sizes")
	assert.Equal(t, List(Int(10), Int(128), Int(256)), sizes)
	ps, _ := v.Get("pixelSize")
	assert.Equal(t, List(Float(0.5), Float(0.1), Float(0.1)), ps)
	assert.Equal(t, []int{256, 128, 10}, fi.Sizes, "input is not modified")
}
