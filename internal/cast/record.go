package cast

import (
	"fmt"
	"slices"
	"sync"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
)

// Recordable is a fixed-shape result that crosses to the host as a named
// record (a named tuple), with fields in a fixed order.
type Recordable interface {
	RecordName() string
	RecordFields() []Field
}

// recordTypes maps a record name to its field names, so that every record
// with one name has the same shape.
var recordTypes = struct {
	sync.Mutex
	fields map[string][]string
}{fields: make(map[string][]string)}

// NewRecord builds a record value. All records of one name must have the
// same field names in the same order.
func NewRecord(name string, fields ...Field) (Value, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	recordTypes.Lock()
	defer recordTypes.Unlock()
	if known, ok := recordTypes.fields[name]; ok {
		if !slices.Equal(known, names) {
			return Value{}, fmt.Errorf("record %s has fields %v, got %v", name, known, names)
		}
	} else {
		recordTypes.fields[name] = names
	}
	return Value{kind: KindRecord, name: name, fields: fields}, nil
}

// RecordFieldNames returns the field names registered for a record name.
func RecordFieldNames(name string) ([]string, bool) {
	recordTypes.Lock()
	defer recordTypes.Unlock()
	f, ok := recordTypes.fields[name]
	return slices.Clone(f), ok
}

// RecordCaster emits structured results as records. Records only travel
// from native to host; Load never matches.
type RecordCaster[T Recordable] struct{}

// Name implements Caster.
func (RecordCaster[T]) Name() string {
	var zero T
	return zero.RecordName()
}

// Load implements Caster.
func (RecordCaster[T]) Load(Value) Result[T] { return Skip[T](nil) }

// Emit implements Caster. The fields of T must match those registered
// under its record name; a mismatch is a programming error and panics.
// Use NewRecord to get the error instead.
func (RecordCaster[T]) Emit(x T) Value {
	v, err := NewRecord(x.RecordName(), x.RecordFields()...)
	if err != nil {
		panic(err)
	}
	return v
}

// MinMax holds the extremes of an image.
type MinMax struct {
	Minimum float64
	Maximum float64
}

// RecordName implements Recordable.
func (MinMax) RecordName() string { return "MinMaxValues" }

// RecordFields implements Recordable.
func (m MinMax) RecordFields() []Field {
	return []Field{{"minimum", Float(m.Minimum)}, {"maximum", Float(m.Maximum)}}
}

// QuartilesResult holds the quartiles of an image.
type QuartilesResult struct {
	Minimum       float64
	LowerQuartile float64
	Median        float64
	UpperQuartile float64
	Maximum       float64
}

// RecordName implements Recordable.
func (QuartilesResult) RecordName() string { return "QuartilesResult" }

// RecordFields implements Recordable.
func (q QuartilesResult) RecordFields() []Field {
	return []Field{
		{"minimum", Float(q.Minimum)},
		{"lowerQuartile", Float(q.LowerQuartile)},
		{"median", Float(q.Median)},
		{"upperQuartile", Float(q.UpperQuartile)},
		{"maximum", Float(q.Maximum)},
	}
}

// StatisticsValues holds the sample statistics of an image.
type StatisticsValues struct {
	Mean        float64
	StandardDev float64
	Variance    float64
	Skewness    float64
	Kurtosis    float64
	Number      int64
}

// RecordName implements Recordable.
func (StatisticsValues) RecordName() string { return "StatisticsValues" }

// RecordFields implements Recordable.
func (s StatisticsValues) RecordFields() []Field {
	return []Field{
		{"mean", Float(s.Mean)},
		{"standardDev", Float(s.StandardDev)},
		{"variance", Float(s.Variance)},
		{"skewness", Float(s.Skewness)},
		{"kurtosis", Float(s.Kurtosis)},
		{"number", Int(s.Number)},
	}
}

// FileInformation describes an image file. It crosses to the host as a
// dict, one way only.
type FileInformation struct {
	Name            string
	FileType        string
	DataType        image.DataType
	SignificantBits int
	Sizes           []int // native order
	TensorElements  int
	ColorSpace      string
	PixelSize       []float64 // native order
	Origin          []float64 // native order
	NumberOfImages  int
	History         []string
}

// Emit converts fi to a host dict. When cfg no longer reverses axis order,
// host code addresses axes in native order reversed, so sizes, pixel sizes
// and origin are reversed to match.
func (fi FileInformation) Emit(cfg *buffer.Config) Value {
	if cfg == nil {
		cfg = buffer.Default
	}
	sizes := slices.Clone(fi.Sizes)
	pixelSize := slices.Clone(fi.PixelSize)
	origin := slices.Clone(fi.Origin)
	if !cfg.AreDimensionsReversed() {
		slices.Reverse(sizes)
		slices.Reverse(pixelSize)
		slices.Reverse(origin)
	}
	var dims DimensionArrayCaster
	history := make([]Value, len(fi.History))
	for i, h := range fi.History {
		history[i] = String(h)
	}
	return Dict(
		Field{"name", String(fi.Name)},
		Field{"fileType", String(fi.FileType)},
		Field{"dataType", DataTypeCaster{}.Emit(fi.DataType)},
		Field{"significantBits", Int(int64(fi.SignificantBits))},
		Field{"sizes", dims.Emit(sizes)},
		Field{"tensorElements", Int(int64(fi.TensorElements))},
		Field{"colorSpace", String(fi.ColorSpace)},
		Field{"pixelSize", floatList(pixelSize)},
		Field{"origin", floatList(origin)},
		Field{"numberOfImages", Int(int64(fi.NumberOfImages))},
		Field{"history", List(history...)},
	)
}

func floatList(fs []float64) Value {
	items := make([]Value, len(fs))
	for i, f := range fs {
		items[i] = Float(f)
	}
	return List(items...)
}
