// Package composition is the runtime model of a video: scenes bound to
// sequence windows, each holding animated layers. Evaluate turns a frame
// number into the list of nodes to draw, with no state carried between
// frames.
package composition

import (
	"errors"
	"fmt"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/captions"
)

// ErrFrameOutOfRange is returned by Evaluate for frames outside
// [0, Duration).
var ErrFrameOutOfRange = errors.New("frame out of range")

// Frame is the time context handed to a layer.
type Frame struct {
	Local  int
	Global int
	FPS    int
	Width  int
	Height int
}

// Kind names a layer type.
type Kind string

const (
	KindText      Kind = "text"
	KindRect      Kind = "rect"
	KindRing      Kind = "ring"
	KindParticles Kind = "particles"
	KindStack     Kind = "stack"
	KindCounter   Kind = "counter"
	KindImage     Kind = "image"
	KindQR        Kind = "qr"
	KindCaptions  Kind = "captions"
	KindSlides    Kind = "slides"
)

// Layer produces nodes for a frame. Implementations must not mutate
// themselves in Emit.
type Layer interface {
	ID() string
	Kind() Kind
	Emit(f Frame, out []Node) []Node
}

// Scene is a group of layers shown inside a window.
type Scene struct {
	ID     string
	Window animate.Window
	Layers []Layer
}

// Audio is the soundtrack muxed into the video.
type Audio struct {
	Path    string
	Volume  float64
	FadeIn  int
	FadeOut int
}

// Envelope is the volume over the composition's frames. Fades that
// meet or overlap become a single peak where the two ramps cross.
func (a Audio) Envelope(duration int) animate.Range {
	vol := a.Volume
	end := float64(max(duration, 1))
	fi, fo := float64(max(a.FadeIn, 0)), float64(max(a.FadeOut, 0))
	clamp := animate.WithExtrapolation(animate.Clamp)

	if fi > 0 && fo > 0 && fi+fo >= end {
		peak := end * fi / (fi + fo)
		return animate.MustRange([]float64{0, peak, end}, []float64{0, vol * peak / fi, 0}, clamp)
	}

	in, out := []float64{0}, []float64{vol}
	if fi > 0 {
		in, out = []float64{0, fi}, []float64{0, vol}
	}
	switch {
	case fo > 0:
		start := end - fo
		if start <= in[len(in)-1] {
			// fade-out alone covers the whole track
			in, out = in[:0], out[:0]
		}
		in, out = append(in, start, end), append(out, vol, 0)
	case end > in[len(in)-1]:
		in, out = append(in, end), append(out, vol)
	}
	return animate.MustRange(in, out, clamp)
}

// Composition is a validated, immutable video description.
type Composition struct {
	ID         string
	FPS        int
	Width      int
	Height     int
	Duration   int
	Background animate.RGBA
	Audio      *Audio
	Captions   *captions.Track

	scenes   []Scene
	timeline animate.Timeline
}

// Option customises a Composition.
type Option func(*Composition)

// WithAudio attaches a soundtrack.
func WithAudio(a Audio) Option { return func(c *Composition) { c.Audio = &a } }

// WithCaptions attaches a caption track.
func WithCaptions(t *captions.Track) Option { return func(c *Composition) { c.Captions = t } }

// WithBackground sets the clear colour.
func WithBackground(bg animate.RGBA) Option { return func(c *Composition) { c.Background = bg } }

// New validates the video settings and every scene window.
func New(id string, fps, width, height, duration int, scenes []Scene, opts ...Option) (*Composition, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("composition %q: fps must be positive, got %d", id, fps)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("composition %q: invalid size %dx%d", id, width, height)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("composition %q: %w: duration must be positive, got %d", id, animate.ErrInvalidWindow, duration)
	}

	windows := make([]animate.Window, len(scenes))
	for i, s := range scenes {
		windows[i] = s.Window
	}
	tl, err := animate.NewTimeline(windows...)
	if err != nil {
		return nil, fmt.Errorf("composition %q: %w", id, err)
	}

	c := &Composition{
		ID:         id,
		FPS:        fps,
		Width:      width,
		Height:     height,
		Duration:   duration,
		Background: animate.MustColor("#000000"),
		scenes:     append([]Scene(nil), scenes...),
		timeline:   tl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Scenes returns the scenes in declaration order.
func (c *Composition) Scenes() []Scene { return append([]Scene(nil), c.scenes...) }

// Active lists the scenes visible at frame with their local frames.
func (c *Composition) Active(frame int) []animate.Activation {
	return c.timeline.Active(frame)
}

// Seconds is the running time of the composition.
func (c *Composition) Seconds() float64 {
	return animate.Seconds(c.Duration, c.FPS)
}

// FrameState is everything needed to draw one frame.
type FrameState struct {
	Composition string
	Frame       int
	Width       int
	Height      int
	Background  animate.RGBA
	Active      []animate.Activation
	Nodes       []Node
}

// Evaluate resolves every active layer at frame. Scenes are drawn in
// declaration order so later scenes cover earlier ones.
func (c *Composition) Evaluate(frame int) (FrameState, error) {
	if frame < 0 || frame >= c.Duration {
		return FrameState{}, fmt.Errorf("composition %q: %w: %d not in [0, %d)", c.ID, ErrFrameOutOfRange, frame, c.Duration)
	}

	st := FrameState{
		Composition: c.ID,
		Frame:       frame,
		Width:       c.Width,
		Height:      c.Height,
		Background:  c.Background,
		Active:      c.timeline.Active(frame),
	}
	for _, a := range st.Active {
		scene := c.scenes[a.Index]
		f := Frame{Local: a.Local, Global: frame, FPS: c.FPS, Width: c.Width, Height: c.Height}
		start := len(st.Nodes)
		for _, l := range scene.Layers {
			st.Nodes = l.Emit(f, st.Nodes)
		}
		for i := start; i < len(st.Nodes); i++ {
			st.Nodes[i].Scene = scene.ID
		}
	}
	return st, nil
}

// Assets lists every asset key an image or slides layer draws, in
// first-use order.
func (c *Composition) Assets() []string {
	seen := map[string]bool{}
	var out []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, s := range c.scenes {
		for _, l := range s.Layers {
			switch l := l.(type) {
			case *ImageLayer:
				add(l.Asset())
			case *SlidesLayer:
				for _, k := range l.Assets() {
					add(k)
				}
			}
		}
	}
	return out
}
