package cast

import (
	"fmt"

	"github.com/born-ml/dipbind/internal/image"
)

// DataTypeCaster converts host strings to data types by name.
type DataTypeCaster struct{}

// Name implements Caster.
func (DataTypeCaster) Name() string { return "DataType" }

// Load implements Caster. A string that names no data type is an error,
// not a mismatch.
func (DataTypeCaster) Load(v Value) Result[image.DataType] {
	if v.Kind() != KindString {
		return Skip[image.DataType](nil)
	}
	dt, err := image.ParseDataType(v.AsString())
	if err != nil {
		return Fail[image.DataType](err)
	}
	return Match(dt)
}

// Emit implements Caster.
func (DataTypeCaster) Emit(dt image.DataType) Value { return String(dt.String()) }

// TensorShapeCaster converts host strings to tensor shapes by name.
type TensorShapeCaster struct{}

// Name implements Caster.
func (TensorShapeCaster) Name() string { return "TensorShape" }

// Load implements Caster.
func (TensorShapeCaster) Load(v Value) Result[image.TensorShape] {
	if v.Kind() != KindString {
		return Skip[image.TensorShape](nil)
	}
	s, err := image.ParseTensorShape(v.AsString())
	if err != nil {
		return Fail[image.TensorShape](err)
	}
	return Match(s)
}

// Emit implements Caster.
func (TensorShapeCaster) Emit(s image.TensorShape) Value { return String(s.String()) }

// DimensionArrayCaster converts host lists of integers to integer arrays.
// A bare integer is a one-element array.
type DimensionArrayCaster struct{}

// Name implements Caster.
func (DimensionArrayCaster) Name() string { return "DimensionArray" }

// Load implements Caster.
func (DimensionArrayCaster) Load(v Value) Result[[]int] {
	switch v.Kind() {
	case KindInt:
		return Match([]int{int(v.AsInt())})
	case KindList:
		items := v.AsList()
		out := make([]int, len(items))
		for i, item := range items {
			if item.Kind() != KindInt {
				return Skip[[]int](fmt.Errorf("element %d is %s, not int", i, item.Kind()))
			}
			out[i] = int(item.AsInt())
		}
		return Match(out)
	default:
		return Skip[[]int](nil)
	}
}

// Emit implements Caster.
func (DimensionArrayCaster) Emit(a []int) Value {
	items := make([]Value, len(a))
	for i, x := range a {
		items[i] = Int(int64(x))
	}
	return List(items...)
}
