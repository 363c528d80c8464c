package effects

import (
	"math"

	"github.com/ivlev/motion2video/internal/animate"
)

// StackItem is one labelled bar of a layer stack.
type StackItem struct {
	Label     string
	Color     animate.RGBA
	Highlight bool
}

// Bar is the state of one stack item at a frame. Progress runs 0..1 as
// the bar grows to full width.
type Bar struct {
	Index        int
	Progress     float64
	Width        float64
	LabelOpacity float64
	// Glow is non-zero for highlighted bars past half their reveal.
	Glow float64
}

// Signal is a pulse travelling down the stack. Position is 0 at the top
// bar and 1 at the bottom.
type Signal struct {
	Position float64
	Opacity  float64
}

// Stack reveals its items one after another, each growing from the left.
type Stack struct {
	Items   []StackItem
	Width   float64
	stagger animate.Stagger
	reveal  animate.Range
	label   animate.Range
	fps     int
}

// stackExtra is the additional width of highlighted bars.
const stackExtra = 40

// NewStack staggers items by increment frames; each takes 20 frames to
// reveal.
func NewStack(items []StackItem, width float64, increment, fps int) (Stack, error) {
	st, err := animate.NewStagger(len(items), 0, increment)
	if err != nil {
		return Stack{}, err
	}
	clamp := animate.WithExtrapolation(animate.Clamp)
	return Stack{
		Items:   items,
		Width:   width,
		stagger: st,
		reveal:  animate.MustRange([]float64{0, 20}, []float64{0, 1}, clamp),
		label:   animate.MustRange([]float64{0.5, 1}, []float64{0, 1}, clamp),
		fps:     max(fps, 1),
	}, nil
}

// Bars returns the visible bars at frame.
func (s Stack) Bars(frame int) []Bar {
	seconds := animate.Seconds(frame, s.fps)
	var out []Bar
	for i, local := range s.stagger.LocalFrames(frame) {
		if local < 0 {
			continue
		}
		p := s.reveal.AtFrame(local)
		if p <= 0 {
			continue
		}
		it := s.Items[i]
		b := Bar{Index: i, Progress: p, Width: s.Width * p}
		if it.Highlight {
			b.Width += stackExtra * p
			if p > 0.5 {
				b.Glow = 0.5 + math.Sin(seconds*4)*0.3
			}
		}
		if p > 0.5 {
			b.LabelOpacity = s.label.At(p)
		}
		out = append(out, b)
	}
	return out
}

// Signals returns the pulses visible at frame. They start once the
// stack is mostly revealed.
func (s Stack) Signals(frame int) []Signal {
	if frame <= 80 {
		return nil
	}
	seconds := animate.Seconds(frame, s.fps)
	var out []Signal
	for k := 0; k < 3; k++ {
		t := math.Mod(seconds-2.5+float64(k)*0.5, 3)
		if t < 0 || t > 2 {
			continue
		}
		out = append(out, Signal{Position: t / 2, Opacity: math.Sin(t * math.Pi / 2)})
	}
	return out
}
