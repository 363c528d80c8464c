package composition

import (
	"errors"
	"fmt"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/captions"
	"github.com/ivlev/motion2video/internal/effects"
)

// ImageLayer shows a loaded asset, a raster image or a PDF page, fitted
// into its box and optionally moved by a camera.
type ImageLayer struct {
	base
	asset         string
	width, height float64
	camera        Camera
}

// NewImage refers to an asset by key; assets are loaded before the
// first frame is evaluated. A zero size fills the canvas.
func NewImage(id, asset string, width, height float64, camera Camera, props Properties) (*ImageLayer, error) {
	if asset == "" {
		return nil, errors.New("image asset is empty")
	}
	return &ImageLayer{base: base{id: id, props: props}, asset: asset, width: width, height: height, camera: camera}, nil
}

// Asset is the key the layer draws.
func (l *ImageLayer) Asset() string { return l.asset }

// Kind implements Layer.
func (l *ImageLayer) Kind() Kind { return KindImage }

// Emit implements Layer.
func (l *ImageLayer) Emit(f Frame, out []Node) []Node {
	def := centred(f)
	def.Width, def.Height = l.width, l.height
	if def.Width <= 0 || def.Height <= 0 {
		def.Width, def.Height = float64(f.Width), float64(f.Height)
	}
	v := l.props.At(f.Local, def)

	n := Node{
		Kind:     NodeImage,
		Layer:    l.id,
		X:        v.X,
		Y:        v.Y,
		Width:    v.Width,
		Height:   v.Height,
		Opacity:  v.Opacity,
		Scale:    v.Scale,
		Rotation: v.Rotation,
		Asset:    l.asset,
		Camera:   l.camera.At(f.Local),
	}
	if !n.Visible() {
		return out
	}
	return append(out, n)
}

// CaptionsLayer draws the composition's caption track at the global
// frame, on a translucent band near the bottom of the canvas.
type CaptionsLayer struct {
	base
	track *captions.Track
	font  Font
	color animate.RGBA
	band  animate.RGBA
}

// NewCaptions needs the track the composition exports.
func NewCaptions(id string, track *captions.Track, font Font, color, band animate.RGBA, props Properties) (*CaptionsLayer, error) {
	if track == nil {
		return nil, errors.New("captions layer needs a caption track")
	}
	if font.Size <= 0 {
		font.Size = 36
	}
	return &CaptionsLayer{base: base{id: id, props: props}, track: track, font: font, color: color, band: band}, nil
}

// Kind implements Layer.
func (l *CaptionsLayer) Kind() Kind { return KindCaptions }

// Emit implements Layer.
func (l *CaptionsLayer) Emit(f Frame, out []Node) []Node {
	line, alpha, ok := l.track.Active(f.Global)
	if !ok || alpha <= 0 {
		return out
	}
	def := centred(f)
	def.Y = float64(f.Height) - 2.5*l.font.Size
	v := l.props.At(f.Local, def)
	op := v.Opacity * alpha
	if op <= 0 {
		return out
	}

	if l.band.A > 0 {
		out = append(out, Node{
			Kind:    NodeRect,
			Layer:   l.id,
			X:       v.X,
			Y:       v.Y,
			Width:   float64(f.Width) * 0.8,
			Height:  l.font.Size * 2,
			Opacity: op,
			Scale:   1,
			Color:   l.band,
			Paint:   Paint{Kind: PaintSolid, Colors: []animate.RGBA{l.band}},
			Radius:  l.font.Size / 2,
		})
	}
	return append(out, Node{
		Kind:     NodeText,
		Layer:    l.id,
		X:        v.X,
		Y:        v.Y,
		Opacity:  op,
		Scale:    v.Scale,
		Color:    l.color,
		Paint:    Paint{Kind: PaintSolid, Colors: []animate.RGBA{l.color}},
		Text:     line.Text,
		Runs:     []effects.Run{{Text: line.Text, Opacity: 1, Scale: 1}},
		FontSize: l.font.Size,
		Bold:     l.font.Bold,
	})
}

// SlidesLayer shows a sequence of assets, each for hold frames, with a
// cross-fade of fade frames between neighbours. Every slide shares the
// camera, evaluated at the slide's own local frame.
type SlidesLayer struct {
	base
	slides   []*ImageLayer
	timeline animate.Timeline
	fadeIn   animate.Range
	fade     int
}

// NewSlides lays the assets out back to back.
func NewSlides(id string, assets []string, hold, fade int, width, height float64, camera Camera, props Properties) (*SlidesLayer, error) {
	if len(assets) == 0 {
		return nil, errors.New("slides need at least one asset")
	}
	if fade < 0 || fade >= hold {
		return nil, fmt.Errorf("slide fade must be within [0, %d), got %d", hold, fade)
	}

	items := make([]animate.SeriesItem, len(assets))
	slides := make([]*ImageLayer, len(assets))
	for i, a := range assets {
		img, err := NewImage(fmt.Sprintf("%s[%d]", id, i), a, width, height, camera, Properties{})
		if err != nil {
			return nil, err
		}
		slides[i] = img
		items[i] = animate.SeriesItem{ID: a, Duration: hold}
		if i > 0 {
			items[i].Offset = -fade
		}
	}
	windows, err := animate.Series(items...)
	if err != nil {
		return nil, err
	}
	tl, err := animate.NewTimeline(windows...)
	if err != nil {
		return nil, err
	}

	l := &SlidesLayer{base: base{id: id, props: props}, slides: slides, timeline: tl, fade: fade}
	if fade > 0 {
		l.fadeIn = animate.MustRange([]float64{0, float64(fade)}, []float64{0, 1}, animate.WithExtrapolation(animate.Clamp))
	}
	return l, nil
}

// Assets lists the keys of every slide.
func (l *SlidesLayer) Assets() []string {
	out := make([]string, len(l.slides))
	for i, s := range l.slides {
		out[i] = s.asset
	}
	return out
}

// Duration is the number of frames until the last slide ends.
func (l *SlidesLayer) Duration() int { return l.timeline.End() }

// Kind implements Layer.
func (l *SlidesLayer) Kind() Kind { return KindSlides }

// Emit implements Layer.
func (l *SlidesLayer) Emit(f Frame, out []Node) []Node {
	v := l.props.At(f.Local, centred(f))
	for _, a := range l.timeline.Active(f.Local) {
		sf := f
		sf.Local = a.Local
		start := len(out)
		out = l.slides[a.Index].Emit(sf, out)
		for i := start; i < len(out); i++ {
			out[i].Layer = l.id
			out[i].X += v.X - float64(f.Width)/2
			out[i].Y += v.Y - float64(f.Height)/2
			out[i].Opacity *= v.Opacity
			out[i].Scale *= v.Scale
			if l.fade > 0 && a.Index > 0 {
				out[i].Opacity *= l.fadeIn.AtFrame(a.Local)
			}
		}
	}
	return out
}
