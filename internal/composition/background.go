package composition

import (
	"fmt"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/effects"
)

// ParticlesLayer is the drifting particle background with an optional
// pulsing central glow.
type ParticlesLayer struct {
	base
	field     effects.ParticleField
	secondary animate.RGBA
	glow      bool
}

// NewParticles seeds count particles over a width x height canvas.
func NewParticles(id string, count int, width, height float64, primary, secondary animate.RGBA, glow bool, props Properties) (*ParticlesLayer, error) {
	if count < 0 {
		return nil, fmt.Errorf("particle count must not be negative, got %d", count)
	}
	return &ParticlesLayer{
		base:      base{id: id, props: props},
		field:     effects.NewParticleField(count, width, height, primary, secondary),
		secondary: secondary,
		glow:      glow,
	}, nil
}

// Kind implements Layer.
func (l *ParticlesLayer) Kind() Kind { return KindParticles }

// Emit implements Layer.
func (l *ParticlesLayer) Emit(f Frame, out []Node) []Node {
	v := l.props.At(f.Local, centred(f))
	if v.Opacity <= 0 {
		return out
	}
	dx := v.X - float64(f.Width)/2
	dy := v.Y - float64(f.Height)/2

	for _, d := range l.field.At(f.Local) {
		if d.Opacity <= 0 {
			continue
		}
		out = append(out, Node{
			Kind:    NodeCircle,
			Layer:   l.id,
			X:       d.X + dx,
			Y:       d.Y + dy,
			Opacity: d.Opacity * v.Opacity,
			Scale:   v.Scale,
			Color:   d.Color,
			Radius:  d.Radius,
		})
	}

	if l.glow {
		out = append(out, Node{
			Kind:    NodeGlow,
			Layer:   l.id,
			X:       v.X,
			Y:       v.Y,
			Opacity: v.Opacity,
			Scale:   v.Scale,
			Color:   l.secondary.WithAlpha(0x15 / 255.0),
			Radius:  400 * effects.GlowPulse(f.Local),
		})
	}
	return out
}

// StackLayer is the staggered bar stack: one labelled rounded bar per
// item, an optional glow on highlighted items and pulses running down
// the side.
type StackLayer struct {
	base
	stack      effects.Stack
	items      []effects.StackItem
	width      float64
	barHeight  float64
	gap        float64
	fontSize   float64
	signal     animate.RGBA
	showSignal bool
}

// StackOptions configures a StackLayer.
type StackOptions struct {
	ID         string
	Items      []effects.StackItem
	Width      float64
	BarHeight  float64
	Gap        float64
	FontSize   float64
	Increment  int
	Signal     animate.RGBA
	ShowSignal bool
	Props      Properties
}

// NewStack fills in the geometry of the original layer diagram for zero
// values.
func NewStack(o StackOptions, fps int) (*StackLayer, error) {
	if o.Width <= 0 {
		o.Width = 500
	}
	if o.BarHeight <= 0 {
		o.BarHeight = 45
	}
	if o.Gap < 0 {
		return nil, fmt.Errorf("stack gap must not be negative, got %g", o.Gap)
	}
	if o.FontSize <= 0 {
		o.FontSize = 14
	}
	st, err := effects.NewStack(o.Items, o.Width, o.Increment, fps)
	if err != nil {
		return nil, err
	}
	return &StackLayer{
		base:       base{id: o.ID, props: o.Props},
		stack:      st,
		items:      o.Items,
		width:      o.Width,
		barHeight:  o.BarHeight,
		gap:        o.Gap,
		fontSize:   o.FontSize,
		signal:     o.Signal,
		showSignal: o.ShowSignal,
	}, nil
}

// Kind implements Layer.
func (l *StackLayer) Kind() Kind { return KindStack }

// Emit implements Layer.
func (l *StackLayer) Emit(f Frame, out []Node) []Node {
	v := l.props.At(f.Local, centred(f))
	if v.Opacity <= 0 {
		return out
	}

	pitch := l.barHeight + l.gap
	total := float64(len(l.items)) * pitch
	startX := v.X - l.width/2
	startY := v.Y - total/2

	for _, b := range l.stack.Bars(f.Local) {
		it := l.items[b.Index]
		cy := startY + float64(b.Index)*pitch + l.barHeight/2

		if b.Glow > 0 {
			out = append(out, Node{
				Kind:    NodeGlow,
				Layer:   l.id,
				X:       v.X,
				Y:       cy,
				Opacity: v.Opacity,
				Scale:   1,
				Color:   it.Color.WithAlpha(b.Glow * 60 / 255),
				Radius:  l.width * 0.6,
			})
		}

		extra := b.Width - l.width*b.Progress
		left := startX - extra/2
		out = append(out, Node{
			Kind:    NodeRect,
			Layer:   l.id,
			X:       left + b.Width/2,
			Y:       cy,
			Width:   b.Width,
			Height:  l.barHeight,
			Opacity: v.Opacity,
			Scale:   1,
			Color:   it.Color,
			Paint: Paint{
				Kind:   PaintGradient,
				Colors: []animate.RGBA{it.Color, it.Color.WithAlpha(0xcc / 255.0)},
				Span:   1,
			},
			Radius: 10,
		})

		if b.LabelOpacity > 0 && it.Label != "" {
			size := l.fontSize
			if it.Highlight {
				size += 2
			}
			white := animate.MustColor("#ffffff")
			out = append(out, Node{
				Kind:     NodeText,
				Layer:    l.id,
				X:        v.X,
				Y:        cy,
				Opacity:  v.Opacity * b.LabelOpacity,
				Scale:    1,
				Color:    white,
				Paint:    Paint{Kind: PaintSolid, Colors: []animate.RGBA{white}},
				Text:     it.Label,
				Runs:     []effects.Run{{Text: it.Label, Opacity: 1, Scale: 1}},
				FontSize: size,
				Bold:     it.Highlight,
			})
		}
	}

	if l.showSignal {
		for _, s := range l.stack.Signals(f.Local) {
			out = append(out, Node{
				Kind:    NodeCircle,
				Layer:   l.id,
				X:       startX - 30,
				Y:       startY + s.Position*total,
				Opacity: v.Opacity * s.Opacity,
				Scale:   1,
				Color:   l.signal,
				Radius:  6,
			})
		}
	}
	return out
}
