package animate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasingEndpoints(t *testing.T) {
	easings := map[string]Easing{
		"linear":     Linear,
		"quad":       Quad,
		"cubic":      Cubic,
		"poly4":      Poly(4),
		"sin":        Sin,
		"circle":     Circle,
		"exp":        Exp,
		"bounce":     Bounce,
		"back":       Back(1.70158),
		"elastic":    Elastic(1),
		"ease":       Ease,
		"out-cubic":  Out(Cubic),
		"in-out-sin": InOut(Sin),
		"camera":     EaseInOutCubic,
	}

	for name, fn := range easings {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0, fn(0), 1e-9)
			assert.InDelta(t, 1, fn(1), 1e-9)
		})
	}
}

func TestEaseInOutCubicMatchesCombinator(t *testing.T) {
	combined := InOut(Cubic)
	for _, x := range []float64{0.1, 0.3, 0.5, 0.7, 0.95} {
		assert.InDelta(t, EaseInOutCubic(x), combined(x), 1e-12, "t=%v", x)
	}
}

func TestBezier(t *testing.T) {
	linear, err := Bezier(0.3, 0.3, 0.7, 0.7)
	require.NoError(t, err)
	assert.InDelta(t, 0.42, linear(0.42), 1e-9)

	easeOut, err := Bezier(0, 0, 0.58, 1)
	require.NoError(t, err)
	assert.Greater(t, easeOut(0.5), 0.5)

	_, err = Bezier(-0.1, 0, 1.2, 1)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseEasing(t *testing.T) {
	tests := []struct {
		in    string
		probe float64
		want  float64
	}{
		{"linear", 0.25, 0.25},
		{"quad", 0.5, 0.25},
		{"in-cubic", 0.5, 0.125},
		{"out-quad", 0.5, 0.75},
		{"ease-in-out-cubic", 0.25, EaseInOutCubic(0.25)},
		{"bezier(0.3, 0.3, 0.7, 0.7)", 0.6, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			fn, err := ParseEasing(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, fn(tt.probe), 1e-6)
		})
	}

	fn, err := ParseEasing("")
	require.NoError(t, err)
	assert.Nil(t, fn)

	_, err = ParseEasing("wobble")
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = ParseEasing("bezier(1,2)")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRangeWithEasing(t *testing.T) {
	r := MustRange([]float64{0, 10}, []float64{0, 100}, WithEasing(Quad), WithExtrapolation(Clamp))
	assert.InDelta(t, 25, r.At(5), 1e-9)
	assert.Equal(t, 100.0, r.At(10))
	assert.True(t, r.Eased())
}
