package cast

import (
	"fmt"

	"github.com/born-ml/dipbind/internal/image"
)

// RangeCaster converts host slices and integers to ranges.
//
// Host slices are half-open, ranges are closed; Stop is carried over as is
// and only the step sign is normalized. With a negative step an absent
// start means the last index and an absent stop the first, and the step
// is negated. With a positive step an absent start means 0 and an absent
// stop the last index. Negative indices count from the end once the range
// is fixed against an axis.
type RangeCaster struct{}

// Name implements Caster.
func (RangeCaster) Name() string { return "Range" }

// Load implements Caster.
func (RangeCaster) Load(v Value) Result[image.Range] {
	switch v.Kind() {
	case KindInt:
		return Match(image.IndexRange(int(v.AsInt())))
	case KindSlice:
	default:
		return Skip[image.Range](fmt.Errorf("%s is not a slice", v.Kind()))
	}
	sl := v.AsSlice()
	step := 1
	if sl.Step != nil {
		step = *sl.Step
	}
	if step == 0 {
		return Fail[image.Range](fmt.Errorf("%w: slice step cannot be zero", image.ErrIndexOutOfRange))
	}
	r := image.Range{Start: 0, Stop: -1, Step: step}
	if step < 0 {
		r.Start, r.Stop, r.Step = -1, 0, -step
	}
	if sl.Start != nil {
		r.Start = *sl.Start
	}
	if sl.Stop != nil {
		r.Stop = *sl.Stop
	}
	return Match(r)
}

// Emit implements Caster.
func (RangeCaster) Emit(r image.Range) Value {
	start, stop, step := r.Start, r.Stop, r.Step
	return SliceOf(Slice{Start: &start, Stop: &stop, Step: &step})
}
