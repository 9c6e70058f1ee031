package image

import "fmt"

// Range selects indices along one axis. Start and Stop are both inclusive and
// may be negative, meaning they count from the end of the axis after Fix.
// Step is always positive; the direction follows from Start and Stop.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// FullRange selects every index of an axis.
func FullRange() Range { return Range{Start: 0, Stop: -1, Step: 1} }

// IndexRange selects the single index i.
func IndexRange(i int) Range { return Range{Start: i, Stop: i, Step: 1} }

// Fix resolves negative indices against extent and validates the range.
func (r *Range) Fix(extent int) error {
	if r.Step <= 0 {
		return fmt.Errorf("%w: range step must be positive, got %d", ErrIndexOutOfRange, r.Step)
	}
	if r.Start < 0 {
		r.Start += extent
	}
	if r.Stop < 0 {
		r.Stop += extent
	}
	if r.Start < 0 || r.Start >= extent || r.Stop < 0 || r.Stop >= extent {
		return fmt.Errorf("%w: range %d:%d:%d on axis of size %d", ErrIndexOutOfRange, r.Start, r.Stop, r.Step, extent)
	}
	return nil
}

// Size returns the number of indices selected by a fixed range.
func (r Range) Size() int {
	if r.Start > r.Stop {
		return 1 + (r.Start-r.Stop)/r.Step
	}
	return 1 + (r.Stop-r.Start)/r.Step
}

// Offset returns the first index of a fixed range.
func (r Range) Offset() int { return r.Start }

// SignedStep returns Step, negated when the range runs backwards.
func (r Range) SignedStep() int {
	if r.Start > r.Stop {
		return -r.Step
	}
	return r.Step
}

// Last returns the last index actually visited by a fixed range.
func (r Range) Last() int { return r.Start + (r.Size()-1)*r.SignedStep() }

// String formats the range as start:stop:step.
func (r Range) String() string { return fmt.Sprintf("%d:%d:%d", r.Start, r.Stop, r.Step) }
