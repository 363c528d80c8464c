package animate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Easing reshapes a normalized position t. Easings map 0 to 0 and 1 to 1
// but may leave [0,1] in between (Back, Elastic).
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// Quad is t².
func Quad(t float64) float64 { return t * t }

// Cubic is t³.
func Cubic(t float64) float64 { return t * t * t }

// Poly returns t^n.
func Poly(n float64) Easing {
	return func(t float64) float64 { return math.Pow(t, n) }
}

// Sin is a quarter cosine wave.
func Sin(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }

// Circle is a quarter circle.
func Circle(t float64) float64 { return 1 - math.Sqrt(1-t*t) }

// Exp is exponential growth, exactly 0 at t=0.
func Exp(t float64) float64 {
	if t == 0 {
		return 0
	}
	return math.Pow(2, 10*(t-1))
}

// Back overshoots below zero before moving forward; s=1.70158 gives ~10%.
func Back(s float64) Easing {
	return func(t float64) float64 { return t * t * ((s+1)*t - s) }
}

// Elastic oscillates; bounciness 1 overshoots slightly, higher values more.
func Elastic(bounciness float64) Easing {
	p := bounciness * math.Pi
	return func(t float64) float64 {
		return 1 - math.Pow(math.Cos(t*math.Pi/2), 3)*math.Cos(t*p)
	}
}

// Bounce is the classic ball bounce.
func Bounce(t float64) float64 {
	switch {
	case t < 1/2.75:
		return 7.5625 * t * t
	case t < 2/2.75:
		t -= 1.5 / 2.75
		return 7.5625*t*t + 0.75
	case t < 2.5/2.75:
		t -= 2.25 / 2.75
		return 7.5625*t*t + 0.9375
	}
	t -= 2.625 / 2.75
	return 7.5625*t*t + 0.984375
}

// In returns fn unchanged; it exists for symmetry with Out and InOut.
func In(fn Easing) Easing { return fn }

// Out mirrors fn in time.
func Out(fn Easing) Easing {
	return func(t float64) float64 { return 1 - fn(1-t) }
}

// InOut runs fn forward for the first half and mirrored for the second.
func InOut(fn Easing) Easing {
	return func(t float64) float64 {
		if t < 0.5 {
			return fn(t*2) / 2
		}
		return 1 - fn((1-t)*2)/2
	}
}

// EaseInOutCubic is the camera default.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Bezier builds a CSS-style cubic-bezier(x1, y1, x2, y2) easing. x1 and
// x2 must lie in [0,1] so that x(t) is monotonic.
func Bezier(x1, y1, x2, y2 float64) (Easing, error) {
	if x1 < 0 || x1 > 1 || x2 < 0 || x2 > 1 {
		return nil, fmt.Errorf("%w: bezier x values must be in [0,1]", ErrInvalidRange)
	}
	if x1 == y1 && x2 == y2 {
		return Linear, nil
	}

	// polynomial coefficients for x(s) and y(s)
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(s float64) float64 { return ((ax*s+bx)*s + cx) * s }
	sampleY := func(s float64) float64 { return ((ay*s+by)*s + cy) * s }
	slopeX := func(s float64) float64 { return (3*ax*s+2*bx)*s + cx }

	solve := func(x float64) float64 {
		s := x
		for i := 0; i < 8; i++ {
			dx := sampleX(s) - x
			if math.Abs(dx) < 1e-7 {
				return s
			}
			d := slopeX(s)
			if math.Abs(d) < 1e-6 {
				break
			}
			s -= dx / d
		}
		lo, hi := 0.0, 1.0
		s = x
		for i := 0; i < 64 && lo < hi; i++ {
			v := sampleX(s)
			if math.Abs(v-x) < 1e-7 {
				return s
			}
			if x > v {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return s
	}

	return func(t float64) float64 {
		if t <= 0 || t >= 1 {
			// endpoints and extrapolated inputs pass straight through
			return t
		}
		return sampleY(solve(t))
	}, nil
}

// Ease is cubic-bezier(0.42, 0, 1, 1).
var Ease = mustBezier(0.42, 0, 1, 1)

func mustBezier(x1, y1, x2, y2 float64) Easing {
	fn, err := Bezier(x1, y1, x2, y2)
	if err != nil {
		panic(err)
	}
	return fn
}

var namedEasings = map[string]Easing{
	"linear":  Linear,
	"ease":    Ease,
	"quad":    Quad,
	"cubic":   Cubic,
	"sin":     Sin,
	"circle":  Circle,
	"exp":     Exp,
	"bounce":  Bounce,
	"back":    Back(1.70158),
	"elastic": Elastic(1),
}

// ParseEasing understands names like "cubic", "out-quad", "in-out-sin",
// "ease-in-out-cubic" and "bezier(0.25,0.1,0.25,1)". The empty string
// means no easing (nil).
func ParseEasing(s string) (Easing, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return nil, nil
	}
	if strings.HasPrefix(name, "bezier(") && strings.HasSuffix(name, ")") {
		parts := strings.Split(name[len("bezier("):len(name)-1], ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w: bezier needs 4 values, got %q", ErrInvalidRange, s)
		}
		var v [4]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bezier value %q: %v", ErrInvalidRange, p, err)
			}
			v[i] = f
		}
		return Bezier(v[0], v[1], v[2], v[3])
	}

	name = strings.TrimPrefix(name, "ease-")
	wrap := In
	switch {
	case strings.HasPrefix(name, "in-out-"):
		wrap, name = InOut, strings.TrimPrefix(name, "in-out-")
	case strings.HasPrefix(name, "out-"):
		wrap, name = Out, strings.TrimPrefix(name, "out-")
	case strings.HasPrefix(name, "in-"):
		name = strings.TrimPrefix(name, "in-")
	}

	fn, ok := namedEasings[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown easing %q", ErrInvalidRange, s)
	}
	return wrap(fn), nil
}
