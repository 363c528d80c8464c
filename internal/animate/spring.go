package animate

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// SpringConfig holds the physical parameters of a damped mass-spring.
type SpringConfig struct {
	Damping   float64
	Stiffness float64
	Mass      float64
	// OvershootClamping stops the curve at its target instead of
	// oscillating past it.
	OvershootClamping bool
}

// DefaultSpringConfig matches the defaults the compositions were authored
// against.
var DefaultSpringConfig = SpringConfig{Damping: 10, Stiffness: 100, Mass: 1}

// DefaultSettleThreshold is the distance from the target at which a spring
// counts as settled.
const DefaultSettleThreshold = 0.005

// settle search gives up after this many frames
const maxSettleFrames = 1 << 20

// Validate reports ErrInvalidSpringConfig for non-positive parameters.
func (c SpringConfig) Validate() error {
	if !(c.Damping > 0) || !(c.Stiffness > 0) || !(c.Mass > 0) ||
		math.IsInf(c.Damping, 0) || math.IsInf(c.Stiffness, 0) || math.IsInf(c.Mass, 0) {
		return fmt.Errorf("%w: damping=%g stiffness=%g mass=%g must be positive",
			ErrInvalidSpringConfig, c.Damping, c.Stiffness, c.Mass)
	}
	return nil
}

// DampingRatio is ζ = c / (2·√(k·m)); 1 is critical damping.
func (c SpringConfig) DampingRatio() float64 {
	return c.Damping / (2 * math.Sqrt(c.Stiffness*c.Mass))
}

// AngularFrequency is ω₀ = √(k/m) in radians per second.
func (c SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(c.Stiffness / c.Mass)
}

// SpringProgress returns the position of a spring released at rest from 0
// toward 1 after frame/fps seconds. Frames before the start return 0.
// The result is not clamped.
func SpringProgress(frame, fps int, damping, stiffness, mass float64) (float64, error) {
	cfg := SpringConfig{Damping: damping, Stiffness: stiffness, Mass: mass}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if fps <= 0 {
		return 0, fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidSpringConfig, fps)
	}
	return progressAt(cfg, float64(fps), float64(frame)), nil
}

// progressAt solves the oscillator analytically in a single step of
// frame/fps seconds, so it never depends on earlier frames.
func progressAt(c SpringConfig, fps, frame float64) float64 {
	if frame <= 0 {
		return 0
	}
	s := harmonica.NewSpring(frame/fps, c.AngularFrequency(), c.DampingRatio())
	pos, _ := s.Update(0, 0, 1)
	if c.OvershootClamping && pos > 1 {
		return 1
	}
	return pos
}

// SettleFrame returns the first frame from which the progress stays within
// threshold of 1. A short look-ahead catches springs that swing back out.
func SettleFrame(cfg SpringConfig, fps int, threshold float64) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if fps <= 0 {
		return 0, fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidSpringConfig, fps)
	}
	if threshold <= 0 {
		threshold = DefaultSettleThreshold
	}

	f := float64(fps)
	frame := 0
	for math.Abs(progressAt(cfg, f, float64(frame))-1) >= threshold {
		frame++
		if frame > maxSettleFrames {
			return 0, fmt.Errorf("%w: spring does not settle within %d frames", ErrInvalidSpringConfig, maxSettleFrames)
		}
	}

	settled := frame
	for i := 0; i < 20; i++ {
		frame++
		if math.Abs(progressAt(cfg, f, float64(frame))-1) >= threshold {
			i = 0
			settled = frame + 1
		}
		if frame > maxSettleFrames {
			return 0, fmt.Errorf("%w: spring does not settle within %d frames", ErrInvalidSpringConfig, maxSettleFrames)
		}
	}
	return settled, nil
}

// Spring is a full spring descriptor: a curve from From to To that starts
// at Delay and may be stretched to settle at a fixed frame count.
type Spring struct {
	cfg      SpringConfig
	fps      float64
	from     float64
	to       float64
	delay    int
	duration int
	reverse  bool
	// frames of natural motion per output frame, 1 unless stretched
	stretch float64
	natural int
}

// SpringOption customises a Spring at construction.
type SpringOption func(*Spring)

// SpringFrom sets the start value (default 0).
func SpringFrom(v float64) SpringOption { return func(s *Spring) { s.from = v } }

// SpringTo sets the target value (default 1).
func SpringTo(v float64) SpringOption { return func(s *Spring) { s.to = v } }

// SpringDelay shifts the start of the motion by n frames.
func SpringDelay(n int) SpringOption { return func(s *Spring) { s.delay = n } }

// SpringDuration stretches the curve so it settles after n frames.
func SpringDuration(n int) SpringOption { return func(s *Spring) { s.duration = n } }

// SpringReverse plays the curve backwards from To to From.
func SpringReverse() SpringOption { return func(s *Spring) { s.reverse = true } }

// NewSpring validates cfg and fps. The settle frame is measured up front
// when a duration or reverse playback needs it.
func NewSpring(cfg SpringConfig, fps int, opts ...SpringOption) (Spring, error) {
	if err := cfg.Validate(); err != nil {
		return Spring{}, err
	}
	if fps <= 0 {
		return Spring{}, fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidSpringConfig, fps)
	}

	s := Spring{cfg: cfg, fps: float64(fps), to: 1, stretch: 1}
	for _, opt := range opts {
		opt(&s)
	}
	if s.duration < 0 {
		return Spring{}, fmt.Errorf("%w: duration must not be negative, got %d", ErrInvalidSpringConfig, s.duration)
	}

	if s.duration > 0 || s.reverse {
		natural, err := SettleFrame(cfg, fps, DefaultSettleThreshold)
		if err != nil {
			return Spring{}, err
		}
		s.natural = natural
		if s.duration > 0 && natural > 0 {
			s.stretch = float64(natural) / float64(s.duration)
		}
	}
	return s, nil
}

// Config returns the physical parameters.
func (s Spring) Config() SpringConfig { return s.cfg }

// Progress is the normalized position at frame, before mapping to
// From/To.
func (s Spring) Progress(frame int) float64 {
	local := float64(frame - s.delay)
	if s.reverse {
		end := float64(s.natural)
		if s.duration > 0 {
			end = float64(s.duration)
		}
		local = end - local
	}
	return progressAt(s.cfg, s.fps, local*s.stretch)
}

// Value implements Animation.
func (s Spring) Value(frame int) float64 {
	return lerp(s.from, s.to, s.Progress(frame))
}

// Initial implements Animation: the value on the first active frame.
func (s Spring) Initial() float64 {
	return s.Value(s.delay)
}
