package animate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpringProgressStartsAtZero(t *testing.T) {
	for _, frame := range []int{-30, -1, 0} {
		p, err := SpringProgress(frame, 30, 10, 100, 1)
		require.NoError(t, err)
		assert.Equal(t, 0.0, p, "frame %d", frame)
	}
}

func TestSpringProgressCriticallyDampedSettles(t *testing.T) {
	// ζ = 20 / (2·√(100·1)) = 1
	cfg := SpringConfig{Damping: 20, Stiffness: 100, Mass: 1}
	require.InDelta(t, 1, cfg.DampingRatio(), 1e-12)

	prev := 0.0
	for frame := 1; frame <= 300; frame++ {
		p, err := SpringProgress(frame, 30, cfg.Damping, cfg.Stiffness, cfg.Mass)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, prev-1e-12, "critically damped spring must not move backwards (frame %d)", frame)
		assert.LessOrEqual(t, p, 1+1e-9, "critically damped spring must not overshoot (frame %d)", frame)
		prev = p
	}
	assert.InDelta(t, 1, prev, 1e-6)

	far, err := SpringProgress(100000, 30, cfg.Damping, cfg.Stiffness, cfg.Mass)
	require.NoError(t, err)
	assert.InDelta(t, 1, far, 1e-9)
}

func TestSpringProgressUnderdampedOvershoots(t *testing.T) {
	peak := 0.0
	for frame := 0; frame < 120; frame++ {
		p, err := SpringProgress(frame, 30, 5, 200, 1)
		require.NoError(t, err)
		peak = math.Max(peak, p)
	}
	assert.Greater(t, peak, 1.0)

	settled, err := SpringProgress(600, 30, 5, 200, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1, settled, 1e-3)
}

func TestSpringProgressOverdamped(t *testing.T) {
	p, err := SpringProgress(15, 30, 80, 100, 1)
	require.NoError(t, err)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestSpringProgressIsOrderIndependent(t *testing.T) {
	frames := rand.New(rand.NewSource(3)).Perm(240)

	ascending := make([]float64, len(frames))
	for f := range ascending {
		p, err := SpringProgress(f, 30, 12, 180, 0.8)
		require.NoError(t, err)
		ascending[f] = p
	}

	for _, f := range frames {
		p, err := SpringProgress(f, 30, 12, 180, 0.8)
		require.NoError(t, err)
		assert.Equal(t, ascending[f], p, "frame %d", f)
	}
}

func TestSpringProgressInvalidConfig(t *testing.T) {
	tests := []struct {
		name                     string
		damping, stiffness, mass float64
	}{
		{"zero damping", 0, 100, 1},
		{"negative stiffness", 10, -1, 1},
		{"zero mass", 10, 100, 0},
		{"nan damping", math.NaN(), 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SpringProgress(10, 30, tt.damping, tt.stiffness, tt.mass)
			assert.ErrorIs(t, err, ErrInvalidSpringConfig)
		})
	}

	_, err := SpringProgress(10, 0, 10, 100, 1)
	assert.ErrorIs(t, err, ErrInvalidSpringConfig)
}

func TestSpringFromToDelay(t *testing.T) {
	s, err := NewSpring(SpringConfig{Damping: 20, Stiffness: 100, Mass: 1}, 30,
		SpringFrom(50), SpringTo(0), SpringDelay(10))
	require.NoError(t, err)

	assert.Equal(t, 50.0, s.Value(0))
	assert.Equal(t, 50.0, s.Value(10))
	assert.Equal(t, 50.0, s.Initial())
	assert.InDelta(t, 0, s.Value(400), 1e-6)
}

func TestSpringOvershootClamping(t *testing.T) {
	s, err := NewSpring(SpringConfig{Damping: 5, Stiffness: 200, Mass: 1, OvershootClamping: true}, 30)
	require.NoError(t, err)

	for frame := 0; frame < 120; frame++ {
		assert.LessOrEqual(t, s.Progress(frame), 1.0)
	}
}

func TestSettleFrameAndDuration(t *testing.T) {
	cfg := DefaultSpringConfig
	natural, err := SettleFrame(cfg, 30, DefaultSettleThreshold)
	require.NoError(t, err)
	require.Greater(t, natural, 0)

	for f := natural; f < natural+60; f++ {
		p, err := SpringProgress(f, 30, cfg.Damping, cfg.Stiffness, cfg.Mass)
		require.NoError(t, err)
		assert.Less(t, math.Abs(p-1), DefaultSettleThreshold, "frame %d", f)
	}

	stretched, err := NewSpring(cfg, 30, SpringDuration(natural*2))
	require.NoError(t, err)
	assert.InDelta(t, stretched.Progress(natural*2), 1, DefaultSettleThreshold)

	plain, err := NewSpring(cfg, 30)
	require.NoError(t, err)
	for k := 0; k < natural; k++ {
		assert.Equal(t, plain.Progress(k), stretched.Progress(2*k), "frame %d", k)
	}
}

func TestSpringReverse(t *testing.T) {
	s, err := NewSpring(SpringConfig{Damping: 20, Stiffness: 100, Mass: 1}, 30, SpringReverse(), SpringDuration(40))
	require.NoError(t, err)

	assert.InDelta(t, 1, s.Value(0), DefaultSettleThreshold)
	assert.Equal(t, 0.0, s.Value(40))
}

func TestNewSpringRejectsInvalid(t *testing.T) {
	_, err := NewSpring(SpringConfig{Damping: 10, Stiffness: 100}, 30)
	assert.ErrorIs(t, err, ErrInvalidSpringConfig)

	_, err = NewSpring(DefaultSpringConfig, 30, SpringDuration(-5))
	assert.ErrorIs(t, err, ErrInvalidSpringConfig)
}
