package animate

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Extrapolation decides what a Range returns outside its breakpoints.
type Extrapolation int

const (
	// Extend continues the slope of the outermost segment.
	Extend Extrapolation = iota
	// Clamp holds the outermost output value.
	Clamp
	// Identity returns the input unchanged.
	Identity
)

func (e Extrapolation) String() string {
	switch e {
	case Clamp:
		return "clamp"
	case Identity:
		return "identity"
	default:
		return "extend"
	}
}

// ParseExtrapolation accepts "clamp", "extend" and "identity".
// An empty string means Extend.
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "extend":
		return Extend, nil
	case "clamp":
		return Clamp, nil
	case "identity":
		return Identity, nil
	}
	return Extend, fmt.Errorf("%w: unknown extrapolation %q", ErrInvalidRange, s)
}

// Range maps an input value (usually a frame) onto piecewise-linear
// outputs. A Range is immutable once built.
type Range struct {
	input  []float64
	output []float64
	left   Extrapolation
	right  Extrapolation
	easing Easing
}

// RangeOption customises a Range at construction.
type RangeOption func(*Range)

// WithExtrapolation sets both sides at once.
func WithExtrapolation(e Extrapolation) RangeOption {
	return func(r *Range) {
		r.left = e
		r.right = e
	}
}

// WithLeft sets the policy for inputs before the first breakpoint.
func WithLeft(e Extrapolation) RangeOption {
	return func(r *Range) { r.left = e }
}

// WithRight sets the policy for inputs after the last breakpoint.
func WithRight(e Extrapolation) RangeOption {
	return func(r *Range) { r.right = e }
}

// WithEasing applies fn to the normalized position inside every segment.
func WithEasing(fn Easing) RangeOption {
	return func(r *Range) { r.easing = fn }
}

// NewRange validates and copies the breakpoints and outputs.
func NewRange(input, output []float64, opts ...RangeOption) (Range, error) {
	if err := validateBreakpoints(input, len(output)); err != nil {
		return Range{}, err
	}
	for i, v := range output {
		if math.IsNaN(v) {
			return Range{}, fmt.Errorf("%w: output[%d] is NaN", ErrInvalidRange, i)
		}
	}

	r := Range{
		input:  append([]float64(nil), input...),
		output: append([]float64(nil), output...),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r, nil
}

// MustRange is NewRange for static tables; it panics on invalid input.
func MustRange(input, output []float64, opts ...RangeOption) Range {
	r, err := NewRange(input, output, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Interpolate is the one-shot form of NewRange(...).At(x).
func Interpolate(x float64, input, output []float64, left, right Extrapolation) (float64, error) {
	r, err := NewRange(input, output, WithLeft(left), WithRight(right))
	if err != nil {
		return 0, err
	}
	return r.At(x), nil
}

func validateBreakpoints(input []float64, outputs int) error {
	if len(input) < 2 {
		return fmt.Errorf("%w: need at least 2 breakpoints, got %d", ErrInvalidRange, len(input))
	}
	if len(input) != outputs {
		return fmt.Errorf("%w: %d breakpoints but %d outputs", ErrInvalidRange, len(input), outputs)
	}
	for i, b := range input {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: breakpoint[%d] is not finite", ErrInvalidRange, i)
		}
		if i > 0 && b <= input[i-1] {
			return fmt.Errorf("%w: breakpoints must be strictly increasing (%g after %g)", ErrInvalidRange, b, input[i-1])
		}
	}
	return nil
}

// At evaluates the range. The bracketing segment is found by binary
// search on every call.
func (r Range) At(x float64) float64 {
	n := len(r.input)
	if n == 0 || math.IsNaN(x) {
		return math.NaN()
	}

	switch {
	case x < r.input[0]:
		switch r.left {
		case Clamp:
			return r.output[0]
		case Identity:
			return x
		}
		return r.segment(0, x)
	case x > r.input[n-1]:
		switch r.right {
		case Clamp:
			return r.output[n-1]
		case Identity:
			return x
		}
		return r.segment(n-2, x)
	}

	// smallest i with input[i] >= x
	i := sort.SearchFloat64s(r.input, x)
	if r.input[i] == x {
		return r.output[i]
	}
	return r.segment(i-1, x)
}

// AtFrame is At for integer frames.
func (r Range) AtFrame(frame int) float64 {
	return r.At(float64(frame))
}

// Value implements Animation.
func (r Range) Value(frame int) float64 {
	return r.At(float64(frame))
}

// Initial implements Animation: the value at the first breakpoint.
func (r Range) Initial() float64 {
	if len(r.output) == 0 {
		return 0
	}
	return r.output[0]
}

func (r Range) segment(i int, x float64) float64 {
	t := (x - r.input[i]) / (r.input[i+1] - r.input[i])
	if r.easing != nil {
		t = r.easing(t)
	}
	return lerp(r.output[i], r.output[i+1], t)
}

// Input returns a copy of the breakpoints.
func (r Range) Input() []float64 { return append([]float64(nil), r.input...) }

// Output returns a copy of the output values.
func (r Range) Output() []float64 { return append([]float64(nil), r.output...) }

// Left returns the extrapolation before the first breakpoint.
func (r Range) Left() Extrapolation { return r.left }

// Right returns the extrapolation after the last breakpoint.
func (r Range) Right() Extrapolation { return r.right }

// Eased reports whether a non-linear easing is attached.
func (r Range) Eased() bool { return r.easing != nil }

// lerp is exact at both ends: t=0 yields a, t=1 yields b.
func lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}
