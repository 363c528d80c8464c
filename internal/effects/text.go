package effects

import (
	"fmt"
	"math"

	"github.com/ivlev/motion2video/internal/animate"
)

// BlurEffect fades each unit in from a blurred, lowered position.
type BlurEffect struct {
	stagger animate.Stagger
	spring  animate.Spring
	blur    animate.Range
	lift    animate.Range
}

// NewBlur uses a spring with damping 20 and stiffness 100 per unit.
func NewBlur(o Options) (*BlurEffect, error) {
	sp, err := animate.NewSpring(animate.SpringConfig{Damping: 20, Stiffness: 100, Mass: 1}, o.FPS)
	if err != nil {
		return nil, fmt.Errorf("blur: %w", err)
	}
	return &BlurEffect{
		stagger: animate.Stagger{Base: o.Delay, Increment: o.Stagger},
		spring:  sp,
		blur:    animate.MustRange([]float64{0, 1}, []float64{10, 0}),
		lift:    animate.MustRange([]float64{0, 1}, []float64{20, 0}),
	}, nil
}

// Name implements Effect.
func (e *BlurEffect) Name() string { return "blur" }

// Apply implements Effect.
func (e *BlurEffect) Apply(units []string, frame int) Result {
	runs := make([]Run, len(units))
	for i, u := range units {
		p := math.Max(0, e.stagger.Eval(frame, i, e.spring))
		runs[i] = Run{
			Text:    u,
			Opacity: animate.Clamp01(p),
			DY:      e.lift.At(p),
			Scale:   1,
			Blur:    math.Max(0, e.blur.At(p)),
		}
	}
	return Result{Runs: runs, Opacity: 1, Scale: 1}
}

// SplitEffect flies letters in from a direction while they scale up and
// straighten.
type SplitEffect struct {
	stagger   animate.Stagger
	spring    animate.Spring
	direction string
	scale     animate.Range
}

const splitDistance = 50

var splitDirections = []string{"up", "down", "left", "right"}

// NewSplit accepts the directions up, down, left, right and random.
func NewSplit(o Options) (*SplitEffect, error) {
	dir := o.Direction
	if dir == "" {
		dir = "up"
	}
	switch dir {
	case "up", "down", "left", "right", "random":
	default:
		return nil, fmt.Errorf("split: unknown direction %q", o.Direction)
	}

	sp, err := animate.NewSpring(animate.SpringConfig{Damping: 15, Stiffness: 100, Mass: 0.5}, o.FPS)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	return &SplitEffect{
		stagger:   animate.Stagger{Base: o.Delay, Increment: o.Stagger},
		spring:    sp,
		direction: dir,
		scale:     animate.MustRange([]float64{0, 1}, []float64{0.5, 1}),
	}, nil
}

// Name implements Effect.
func (e *SplitEffect) Name() string { return "split" }

// Apply implements Effect.
func (e *SplitEffect) Apply(units []string, frame int) Result {
	runs := make([]Run, len(units))
	for i, u := range units {
		p := animate.Clamp01(e.stagger.Eval(frame, i, e.spring))
		seed := animate.Random(float64(i))

		dir := e.direction
		if dir == "random" {
			dir = splitDirections[int(seed*4)%4]
		}

		run := Run{
			Text:     u,
			Opacity:  p,
			Scale:    e.scale.At(p),
			Rotation: (seed - 0.5) * 30 * (1 - p),
		}
		away := splitDistance * (1 - p)
		switch dir {
		case "up":
			run.DY = away
		case "down":
			run.DY = -away
		case "left":
			run.DX = away
		case "right":
			run.DX = -away
		}
		runs[i] = run
	}
	return Result{Runs: runs, Opacity: 1, Scale: 1}
}

// GradientEffect scrolls a colour gradient through the text while it
// fades and scales in.
type GradientEffect struct {
	delay   int
	speed   float64
	opacity animate.Range
	scale   animate.Range
}

// NewGradient defaults to a speed of 0.5 percent per frame.
func NewGradient(o Options) *GradientEffect {
	speed := o.Speed
	if speed <= 0 {
		speed = 0.5
	}
	return &GradientEffect{
		delay:   o.Delay,
		speed:   speed,
		opacity: animate.MustRange([]float64{0, 20}, []float64{0, 1}, animate.WithRight(animate.Clamp)),
		scale:   animate.MustRange([]float64{0, 20}, []float64{0.95, 1}, animate.WithRight(animate.Clamp)),
	}
}

// Name implements Effect.
func (e *GradientEffect) Name() string { return "gradient" }

// Apply implements Effect.
func (e *GradientEffect) Apply(units []string, frame int) Result {
	f := max(0, frame-e.delay)
	offset := math.Mod(float64(f)*e.speed, 100) / 100
	return Result{
		Runs:    (&DefaultEffect{}).Apply(units, frame).Runs,
		Opacity: e.opacity.AtFrame(f),
		Scale:   e.scale.AtFrame(f),
		Paint:   offset,
	}
}

// ShinyEffect sweeps a highlight band across the text.
type ShinyEffect struct {
	delay    int
	period   float64
	loop     bool
	position animate.Range
	opacity  animate.Range
}

// NewShiny sweeps once every 60/speed frames.
func NewShiny(o Options) *ShinyEffect {
	speed := o.Speed
	if speed <= 0 {
		speed = 1
	}
	return &ShinyEffect{
		delay:    o.Delay,
		period:   60 / speed,
		loop:     !o.NoLoop,
		position: animate.MustRange([]float64{0, 1}, []float64{-1, 2}),
		opacity:  animate.MustRange([]float64{0, 15}, []float64{0, 1}, animate.WithRight(animate.Clamp)),
	}
}

// Name implements Effect.
func (e *ShinyEffect) Name() string { return "shiny" }

// Apply implements Effect.
func (e *ShinyEffect) Apply(units []string, frame int) Result {
	f := float64(max(0, frame-e.delay))
	var progress float64
	if e.loop {
		progress = math.Mod(f, e.period) / e.period
	} else {
		progress = math.Min(f/e.period, 1)
	}
	return Result{
		Runs:    (&DefaultEffect{}).Apply(units, frame).Runs,
		Opacity: e.opacity.At(f),
		Scale:   1,
		Paint:   e.position.At(progress),
	}
}

// RotatingEffect cycles through its units one at a time, sliding the
// outgoing word away while the next one slides in.
type RotatingEffect struct {
	delay int
	hold  int
	sign  float64

	fadeIn   animate.Range
	outY     animate.Range
	outAlpha animate.Range
	inY      animate.Range
	inAlpha  animate.Range
}

// rotatingTransition is the length of the hand-over at the end of each hold.
const rotatingTransition = 15

// NewRotating defaults to two seconds per word.
func NewRotating(o Options) (*RotatingEffect, error) {
	hold := o.Hold
	if hold <= 0 {
		hold = 2 * max(o.FPS, 1)
	}
	if hold <= rotatingTransition {
		return nil, fmt.Errorf("rotating: hold must exceed %d frames, got %d", rotatingTransition, hold)
	}

	sign := 1.0
	switch o.Direction {
	case "", "up":
	case "down":
		sign = -1
	default:
		return nil, fmt.Errorf("rotating: unknown direction %q", o.Direction)
	}

	clamp := animate.WithExtrapolation(animate.Clamp)
	return &RotatingEffect{
		delay:    o.Delay,
		hold:     hold,
		sign:     sign,
		fadeIn:   animate.MustRange([]float64{0, 15}, []float64{0, 1}, animate.WithRight(animate.Clamp)),
		outY:     animate.MustRange([]float64{0, 1}, []float64{0, -40 * sign}, clamp),
		outAlpha: animate.MustRange([]float64{0, 0.5}, []float64{1, 0}, animate.WithRight(animate.Clamp)),
		inY:      animate.MustRange([]float64{0, 1}, []float64{40 * sign, 0}, clamp),
		inAlpha:  animate.MustRange([]float64{0.5, 1}, []float64{0, 1}, animate.WithLeft(animate.Clamp)),
	}, nil
}

// Name implements Effect.
func (e *RotatingEffect) Name() string { return "rotating" }

// Apply implements Effect.
func (e *RotatingEffect) Apply(words []string, frame int) Result {
	if len(words) == 0 {
		return Result{Opacity: 1, Scale: 1}
	}
	f := max(0, frame-e.delay)
	cycle := f % (e.hold * len(words))
	current := cycle / e.hold
	next := (current + 1) % len(words)
	local := cycle % e.hold

	var t float64
	if local > e.hold-rotatingTransition {
		t = float64(local-(e.hold-rotatingTransition)) / rotatingTransition
	}

	runs := []Run{{
		Text:    words[current],
		Opacity: e.outAlpha.At(t),
		DY:      e.outY.At(t),
		Scale:   1,
	}}
	if t > 0 {
		runs = append(runs, Run{
			Text:    words[next],
			Opacity: e.inAlpha.At(t),
			DY:      e.inY.At(t),
			Scale:   1,
			Overlay: true,
		})
	}
	return Result{Runs: runs, Opacity: e.fadeIn.AtFrame(f), Scale: 1}
}
