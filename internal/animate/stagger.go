package animate

import "fmt"

// Animation is anything that yields a value for a local frame. Range and
// Spring implement it.
type Animation interface {
	Value(frame int) float64
	// Initial is the value shown before the animation has started.
	Initial() float64
}

// Constant is an Animation that never changes.
type Constant float64

// Value implements Animation.
func (c Constant) Value(int) float64 { return float64(c) }

// Initial implements Animation.
func (c Constant) Initial() float64 { return float64(c) }

// Stagger assigns element i the delay Base + i*Increment.
type Stagger struct {
	Count     int
	Base      int
	Increment int
}

// NewStagger validates the group size.
func NewStagger(count, base, increment int) (Stagger, error) {
	if count < 0 {
		return Stagger{}, fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidStagger, count)
	}
	return Stagger{Count: count, Base: base, Increment: increment}, nil
}

// Delay returns the start offset of element i.
func (s Stagger) Delay(i int) int {
	return s.Base + i*s.Increment
}

// LocalFrame returns frame relative to element i's start. Negative means
// the element has not started yet.
func (s Stagger) LocalFrame(frame, i int) int {
	return frame - s.Delay(i)
}

// started reports whether element i is running at frame.
func (s Stagger) started(frame, i int) bool {
	return s.LocalFrame(frame, i) >= 0
}

// LocalFrames returns the local frame of every element.
func (s Stagger) LocalFrames(frame int) []int {
	out := make([]int, s.Count)
	for i := range out {
		out[i] = s.LocalFrame(frame, i)
	}
	return out
}

// Apply evaluates anim for every element at its own local frame.
// Elements that have not started report anim.Initial().
func (s Stagger) Apply(frame int, anim Animation) []float64 {
	out := make([]float64, s.Count)
	for i := range out {
		out[i] = s.Eval(frame, i, anim)
	}
	return out
}

// Eval evaluates anim for a single element.
func (s Stagger) Eval(frame, i int, anim Animation) float64 {
	if !s.started(frame, i) {
		return anim.Initial()
	}
	return anim.Value(s.LocalFrame(frame, i))
}
