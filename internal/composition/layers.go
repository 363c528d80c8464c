package composition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/effects"
)

// Font selects the face of a text node.
type Font struct {
	Size float64
	Bold bool
}

// DefaultFont is used when a layer gives no size.
var DefaultFont = Font{Size: 48}

// DefaultGradient is the colour cycle of gradient text.
var DefaultGradient = []animate.RGBA{
	animate.MustColor("#00e5ff"),
	animate.MustColor("#a855f7"),
	animate.MustColor("#ec4899"),
	animate.MustColor("#00e5ff"),
}

// centred places layers in the middle of the canvas unless animated
// elsewhere.
func centred(f Frame) Values {
	return Values{Opacity: 1, Scale: 1, X: float64(f.Width) / 2, Y: float64(f.Height) / 2}
}

type base struct {
	id    string
	props Properties
}

func (b base) ID() string { return b.id }

// TextOptions configures a TextLayer.
type TextOptions struct {
	ID     string
	Text   string
	Words  []string
	By     effects.SplitBy
	Effect effects.Effect
	Font   Font
	Color  animate.RGBA
	// Colors are the gradient stops for "gradient" and the shine colour
	// for "shiny".
	Colors []animate.RGBA
	Props  Properties
}

// TextLayer draws a line of text through a text effect.
type TextLayer struct {
	base
	units  []string
	effect effects.Effect
	font   Font
	color  animate.RGBA
	paint  Paint
}

// NewText splits the text once; rotating effects take Words as units.
func NewText(o TextOptions) (*TextLayer, error) {
	if o.Effect == nil {
		o.Effect = &effects.DefaultEffect{}
	}
	units := o.Words
	if len(units) == 0 {
		units = effects.Split(o.Text, o.By)
	}
	if len(units) == 0 {
		return nil, errors.New("text is empty")
	}
	if o.Font.Size <= 0 {
		o.Font.Size = DefaultFont.Size
	}

	paint := Paint{Kind: PaintSolid, Colors: []animate.RGBA{o.Color}}
	switch o.Effect.Name() {
	case "gradient":
		colors := o.Colors
		if len(colors) == 0 {
			colors = DefaultGradient
		}
		if len(colors) < 2 {
			return nil, fmt.Errorf("gradient needs at least two colors, got %d", len(colors))
		}
		paint = Paint{Kind: PaintGradient, Colors: colors, Span: 0.5}
	case "shiny":
		shine := animate.MustColor("#00e5ff")
		if len(o.Colors) > 0 {
			shine = o.Colors[0]
		}
		paint = Paint{Kind: PaintShine, Colors: []animate.RGBA{o.Color, shine}}
	}

	return &TextLayer{
		base:   base{id: o.ID, props: o.Props},
		units:  units,
		effect: o.Effect,
		font:   o.Font,
		color:  o.Color,
		paint:  paint,
	}, nil
}

// Kind implements Layer.
func (l *TextLayer) Kind() Kind { return KindText }

// Emit implements Layer.
func (l *TextLayer) Emit(f Frame, out []Node) []Node {
	v := l.props.At(f.Local, centred(f))
	res := l.effect.Apply(l.units, f.Local)

	paint := l.paint
	if paint.Kind != PaintSolid {
		paint.Offset = res.Paint
	}

	var sb strings.Builder
	for _, r := range res.Runs {
		if !r.Overlay {
			sb.WriteString(r.Text)
		}
	}

	n := Node{
		Kind:     NodeText,
		Layer:    l.id,
		X:        v.X,
		Y:        v.Y,
		Opacity:  v.Opacity * res.Opacity,
		Scale:    v.Scale * res.Scale,
		Rotation: v.Rotation,
		Blur:     v.Blur,
		Color:    l.color,
		Paint:    paint,
		Text:     sb.String(),
		Runs:     res.Runs,
		FontSize: l.font.Size,
		Bold:     l.font.Bold,
	}
	if !n.Visible() {
		return out
	}
	return append(out, n)
}

// RectLayer is a rounded rectangle with a solid or left-to-right
// gradient fill.
type RectLayer struct {
	base
	width, height float64
	radius        float64
	paint         Paint
}

// NewRect uses the first colour as a solid fill, or all of them as a
// gradient.
func NewRect(id string, width, height, radius float64, colors []animate.RGBA, props Properties) (*RectLayer, error) {
	if len(colors) == 0 {
		return nil, errors.New("rect needs a color")
	}
	if radius < 0 {
		return nil, fmt.Errorf("rect radius must not be negative, got %g", radius)
	}
	paint := Paint{Kind: PaintSolid, Colors: colors}
	if len(colors) > 1 {
		paint = Paint{Kind: PaintGradient, Colors: colors, Span: 1}
	}
	return &RectLayer{base: base{id: id, props: props}, width: width, height: height, radius: radius, paint: paint}, nil
}

// Kind implements Layer.
func (l *RectLayer) Kind() Kind { return KindRect }

// Emit implements Layer.
func (l *RectLayer) Emit(f Frame, out []Node) []Node {
	def := centred(f)
	def.Width, def.Height = l.width, l.height
	v := l.props.At(f.Local, def)

	n := Node{
		Kind:     NodeRect,
		Layer:    l.id,
		X:        v.X,
		Y:        v.Y,
		Width:    v.Width,
		Height:   v.Height,
		Opacity:  v.Opacity,
		Scale:    v.Scale,
		Rotation: v.Rotation,
		Blur:     v.Blur,
		Color:    l.paint.Colors[0],
		Paint:    l.paint,
		Radius:   l.radius,
	}
	if !n.Visible() || n.Width <= 0 || n.Height <= 0 {
		return out
	}
	return append(out, n)
}

// RingLayer is a circle outline, or a disc when stroke is zero.
type RingLayer struct {
	base
	radius float64
	stroke float64
	color  animate.RGBA
}

// NewRing validates the geometry.
func NewRing(id string, radius, stroke float64, color animate.RGBA, props Properties) (*RingLayer, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("ring radius must be positive, got %g", radius)
	}
	if stroke < 0 || stroke > radius {
		return nil, fmt.Errorf("ring stroke must be within [0, %g], got %g", radius, stroke)
	}
	return &RingLayer{base: base{id: id, props: props}, radius: radius, stroke: stroke, color: color}, nil
}

// Kind implements Layer.
func (l *RingLayer) Kind() Kind { return KindRing }

// Emit implements Layer.
func (l *RingLayer) Emit(f Frame, out []Node) []Node {
	v := l.props.At(f.Local, centred(f))
	n := Node{
		Kind:    NodeCircle,
		Layer:   l.id,
		X:       v.X,
		Y:       v.Y,
		Opacity: v.Opacity,
		Scale:   v.Scale,
		Blur:    v.Blur,
		Color:   l.color,
		Radius:  l.radius,
		Stroke:  l.stroke,
	}
	if !n.Visible() {
		return out
	}
	return append(out, n)
}

// CounterLayer prints the animated "value" property through a format
// verb, e.g. "%.0f%%".
type CounterLayer struct {
	base
	format string
	font   Font
	color  animate.RGBA
}

// NewCounter checks that format consumes exactly one number.
func NewCounter(id, format string, font Font, color animate.RGBA, props Properties) (*CounterLayer, error) {
	if format == "" {
		format = "%.0f"
	}
	if s := fmt.Sprintf(format, 1.0); strings.Contains(s, "%!") {
		return nil, fmt.Errorf("counter format %q: %s", format, s)
	}
	if props.Value == nil {
		return nil, errors.New("counter needs a value property")
	}
	if font.Size <= 0 {
		font.Size = DefaultFont.Size
	}
	return &CounterLayer{base: base{id: id, props: props}, format: format, font: font, color: color}, nil
}

// Kind implements Layer.
func (l *CounterLayer) Kind() Kind { return KindCounter }

// Emit implements Layer.
func (l *CounterLayer) Emit(f Frame, out []Node) []Node {
	v := l.props.At(f.Local, centred(f))
	text := fmt.Sprintf(l.format, v.Value)
	n := Node{
		Kind:     NodeText,
		Layer:    l.id,
		X:        v.X,
		Y:        v.Y,
		Opacity:  v.Opacity,
		Scale:    v.Scale,
		Rotation: v.Rotation,
		Blur:     v.Blur,
		Color:    l.color,
		Paint:    Paint{Kind: PaintSolid, Colors: []animate.RGBA{l.color}},
		Text:     text,
		Runs:     []effects.Run{{Text: text, Opacity: 1, Scale: 1}},
		FontSize: l.font.Size,
		Bold:     l.font.Bold,
	}
	if !n.Visible() {
		return out
	}
	return append(out, n)
}

// QRLayer draws a QR code for a URL or any other payload.
type QRLayer struct {
	base
	content string
	size    float64
	color   animate.RGBA
}

// NewQR requires content and a positive size.
func NewQR(id, content string, size float64, color animate.RGBA, props Properties) (*QRLayer, error) {
	if content == "" {
		return nil, errors.New("qr content is empty")
	}
	if size <= 0 {
		return nil, fmt.Errorf("qr size must be positive, got %g", size)
	}
	return &QRLayer{base: base{id: id, props: props}, content: content, size: size, color: color}, nil
}

// Kind implements Layer.
func (l *QRLayer) Kind() Kind { return KindQR }

// Emit implements Layer.
func (l *QRLayer) Emit(f Frame, out []Node) []Node {
	v := l.props.At(f.Local, centred(f))
	n := Node{
		Kind:     NodeQR,
		Layer:    l.id,
		X:        v.X,
		Y:        v.Y,
		Width:    l.size,
		Height:   l.size,
		Opacity:  v.Opacity,
		Scale:    v.Scale,
		Rotation: v.Rotation,
		Color:    l.color,
		Text:     l.content,
	}
	if !n.Visible() {
		return out
	}
	return append(out, n)
}
