package composition

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/captions"
	"github.com/ivlev/motion2video/internal/effects"
)

func mustText(t *testing.T, id, text, effect string, props Properties) *TextLayer {
	t.Helper()
	eff, err := effects.New(effect, effects.Options{FPS: 30, Stagger: effects.DefaultStagger(effect)})
	require.NoError(t, err)
	l, err := NewText(TextOptions{
		ID:     id,
		Text:   text,
		By:     effects.DefaultSplit(effect),
		Effect: eff,
		Color:  animate.MustColor("#ffffff"),
		Props:  props,
	})
	require.NoError(t, err)
	return l
}

func demo(t *testing.T) *Composition {
	t.Helper()
	fade := animate.MustRange([]float64{0, 30}, []float64{0, 1}, animate.WithExtrapolation(animate.Clamp))
	rise, err := animate.NewSpring(animate.SpringConfig{Damping: 20, Stiffness: 80, Mass: 1}, 30,
		animate.SpringFrom(600), animate.SpringTo(540))
	require.NoError(t, err)

	bg, err := NewParticles("dots", 40, 1920, 1080,
		animate.MustColor("#00e5ff"), animate.MustColor("#a855f7"), true, Properties{})
	require.NoError(t, err)
	title := mustText(t, "title", "Neural interfaces", "blur", Properties{Opacity: fade, Y: rise})
	counter, err := NewCounter("count", "%.0f%%", Font{Size: 64, Bold: true}, animate.MustColor("#00e5ff"),
		Properties{Value: animate.MustRange([]float64{0, 60}, []float64{0, 100}, animate.WithExtrapolation(animate.Clamp))})
	require.NoError(t, err)

	c, err := New("demo", 30, 1920, 1080, 150, []Scene{
		{ID: "background", Window: animate.Window{ID: "background", Start: 0, Duration: 150}, Layers: []Layer{bg}},
		{ID: "title", Window: animate.Window{ID: "title", Start: 0, Duration: 90}, Layers: []Layer{title}},
		{ID: "stats", Window: animate.Window{ID: "stats", Start: 90, Duration: 60}, Layers: []Layer{counter}},
	})
	require.NoError(t, err)
	return c
}

func TestNewValidates(t *testing.T) {
	_, err := New("bad", 0, 100, 100, 10, nil)
	assert.Error(t, err)

	_, err = New("bad", 30, 0, 100, 10, nil)
	assert.Error(t, err)

	_, err = New("bad", 30, 100, 100, 0, nil)
	assert.True(t, errors.Is(err, animate.ErrInvalidWindow))

	_, err = New("bad", 30, 100, 100, 10, []Scene{{ID: "empty", Window: animate.Window{ID: "empty", Duration: 0}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, animate.ErrInvalidWindow))
	assert.Contains(t, err.Error(), `composition "bad"`)
}

func TestEvaluateFrameOutOfRange(t *testing.T) {
	c := demo(t)
	for _, frame := range []int{-1, 150, 1000} {
		_, err := c.Evaluate(frame)
		assert.True(t, errors.Is(err, ErrFrameOutOfRange), "frame %d", frame)
	}
}

func TestEvaluateLayering(t *testing.T) {
	c := demo(t)

	st, err := c.Evaluate(45)
	require.NoError(t, err)
	require.Len(t, st.Active, 2)
	assert.Equal(t, "background", st.Active[0].Window.ID)
	assert.Equal(t, "title", st.Active[1].Window.ID)

	require.NotEmpty(t, st.Nodes)
	last := st.Nodes[len(st.Nodes)-1]
	assert.Equal(t, "title", last.Scene)
	assert.Equal(t, NodeText, last.Kind)
	assert.Equal(t, "Neural interfaces", last.Text)
	for _, n := range st.Nodes[:len(st.Nodes)-1] {
		assert.Equal(t, "background", n.Scene)
	}

	st, err = c.Evaluate(120)
	require.NoError(t, err)
	require.Len(t, st.Active, 2)
	assert.Equal(t, "stats", st.Active[1].Window.ID)
	assert.Equal(t, 30, st.Active[1].Local)
	last = st.Nodes[len(st.Nodes)-1]
	assert.Equal(t, "50%", last.Text)
}

func TestEvaluateIsPure(t *testing.T) {
	c := demo(t)

	want := make([]FrameState, c.Duration)
	for f := 0; f < c.Duration; f++ {
		st, err := c.Evaluate(f)
		require.NoError(t, err)
		want[f] = st
	}

	order := rand.New(rand.NewSource(7)).Perm(c.Duration)
	got := make([]FrameState, c.Duration)
	var wg sync.WaitGroup
	for _, f := range order {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			st, err := c.Evaluate(f)
			assert.NoError(t, err)
			got[f] = st
		}(f)
	}
	wg.Wait()

	for f := 0; f < c.Duration; f++ {
		require.Equal(t, want[f], got[f], "frame %d", f)
	}
}

func TestNestedScene(t *testing.T) {
	parent := animate.Window{ID: "act", Start: 100, Duration: 50}
	child, ok := parent.Nest(animate.Window{ID: "beat", Start: 40, Duration: 30})
	require.True(t, ok)

	ring, err := NewRing("ring", 50, 4, animate.MustColor("#ffffff"), Properties{})
	require.NoError(t, err)
	c, err := New("nested", 30, 640, 360, 200, []Scene{{ID: "beat", Window: child, Layers: []Layer{ring}}})
	require.NoError(t, err)

	st, err := c.Evaluate(140)
	require.NoError(t, err)
	require.Len(t, st.Active, 1)
	assert.Equal(t, 0, st.Active[0].Local)

	st, err = c.Evaluate(149)
	require.NoError(t, err)
	assert.Len(t, st.Active, 1)

	st, err = c.Evaluate(150)
	require.NoError(t, err)
	assert.Empty(t, st.Active)
	assert.Empty(t, st.Nodes)
}

func TestTextLayerNodes(t *testing.T) {
	fade := animate.MustRange([]float64{0, 10}, []float64{0, 1}, animate.WithExtrapolation(animate.Clamp))
	l := mustText(t, "t", "Hi there", "none", Properties{Opacity: fade})
	f := Frame{FPS: 30, Width: 200, Height: 100}

	assert.Empty(t, l.Emit(f, nil), "fully transparent text is dropped")

	f.Local = 5
	nodes := l.Emit(f, nil)
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeText, nodes[0].Kind)
	assert.InDelta(t, 0.5, nodes[0].Opacity, 1e-9)
	assert.Equal(t, 100.0, nodes[0].X)
	assert.Equal(t, 50.0, nodes[0].Y)
	assert.Equal(t, PaintSolid, nodes[0].Paint.Kind)

	_, err := NewText(TextOptions{ID: "empty"})
	assert.Error(t, err)
}

func TestGradientTextPaint(t *testing.T) {
	l := mustText(t, "g", "Cognitive", "gradient", Properties{})
	nodes := l.Emit(Frame{Local: 40, FPS: 30, Width: 100, Height: 100}, nil)
	require.Len(t, nodes, 1)
	assert.Equal(t, PaintGradient, nodes[0].Paint.Kind)
	assert.Equal(t, DefaultGradient, nodes[0].Paint.Colors)
	assert.InDelta(t, 0.2, nodes[0].Paint.Offset, 1e-9)
}

func TestRotatingTextOverlay(t *testing.T) {
	eff, err := effects.New("rotating", effects.Options{FPS: 30, Hold: 60})
	require.NoError(t, err)
	l, err := NewText(TextOptions{ID: "r", Words: []string{"Secure", "Private"}, Effect: eff})
	require.NoError(t, err)

	nodes := l.Emit(Frame{Local: 55, FPS: 30, Width: 100, Height: 100}, nil)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Secure", nodes[0].Text, "overlay runs are not part of the base text")
	assert.Len(t, nodes[0].Runs, 2)
}

func TestCounterFormat(t *testing.T) {
	value := Properties{Value: animate.Constant(42)}

	_, err := NewCounter("c", "%d items", DefaultFont, animate.RGBA{}, value)
	assert.Error(t, err)

	_, err = NewCounter("c", "%.1f", DefaultFont, animate.RGBA{}, Properties{})
	assert.Error(t, err)

	l, err := NewCounter("c", "", DefaultFont, animate.MustColor("#ffffff"), value)
	require.NoError(t, err)
	nodes := l.Emit(Frame{Width: 10, Height: 10}, nil)
	require.Len(t, nodes, 1)
	assert.Equal(t, "42", nodes[0].Text)
}

func TestRectAndRingValidation(t *testing.T) {
	_, err := NewRect("r", 10, 10, 0, nil, Properties{})
	assert.Error(t, err)
	_, err = NewRect("r", 10, 10, -1, []animate.RGBA{animate.MustColor("#fff")}, Properties{})
	assert.Error(t, err)

	r, err := NewRect("r", 10, 10, 2, []animate.RGBA{animate.MustColor("#000"), animate.MustColor("#fff")}, Properties{})
	require.NoError(t, err)
	nodes := r.Emit(Frame{Width: 20, Height: 20}, nil)
	require.Len(t, nodes, 1)
	assert.Equal(t, PaintGradient, nodes[0].Paint.Kind)

	zero, err := NewRect("z", 0, 10, 0, []animate.RGBA{animate.MustColor("#fff")}, Properties{})
	require.NoError(t, err)
	assert.Empty(t, zero.Emit(Frame{Width: 20, Height: 20}, nil))

	_, err = NewRing("o", 0, 0, animate.RGBA{}, Properties{})
	assert.Error(t, err)
	_, err = NewRing("o", 10, 11, animate.RGBA{}, Properties{})
	assert.Error(t, err)
}

func TestStackLayer(t *testing.T) {
	items := []effects.StackItem{
		{Label: "L1 Physical", Color: animate.MustColor("#1e3a5f")},
		{Label: "L8 Neural Gateway", Color: animate.MustColor("#00e5ff"), Highlight: true},
		{Label: "L14 Identity", Color: animate.MustColor("#a855f7")},
	}
	l, err := NewStack(StackOptions{ID: "stack", Items: items, Increment: 5, Signal: animate.MustColor("#00e5ff"), ShowSignal: true}, 30)
	require.NoError(t, err)

	f := Frame{FPS: 30, Width: 1920, Height: 1080}
	assert.Empty(t, l.Emit(f, nil))

	f.Local = 90
	nodes := l.Emit(f, nil)
	var rects, labels, signals, glows int
	for _, n := range nodes {
		switch n.Kind {
		case NodeRect:
			rects++
		case NodeText:
			labels++
			if n.Text == "L8 Neural Gateway" {
				assert.True(t, n.Bold)
			}
		case NodeCircle:
			signals++
		case NodeGlow:
			glows++
		}
	}
	assert.Equal(t, 3, rects)
	assert.Equal(t, 3, labels)
	assert.Equal(t, 3, signals)
	assert.Equal(t, 1, glows)

	_, err = NewStack(StackOptions{Items: items, Gap: -1}, 30)
	assert.Error(t, err)
}

func TestParticlesLayer(t *testing.T) {
	l, err := NewParticles("p", 10, 400, 300, animate.MustColor("#00e5ff"), animate.MustColor("#a855f7"), true, Properties{})
	require.NoError(t, err)

	f := Frame{Local: 60, FPS: 30, Width: 400, Height: 300}
	nodes := l.Emit(f, nil)
	require.NotEmpty(t, nodes)
	assert.Equal(t, NodeGlow, nodes[len(nodes)-1].Kind)
	assert.Equal(t, nodes, l.Emit(f, nil))

	_, err = NewParticles("p", -1, 400, 300, animate.RGBA{}, animate.RGBA{}, false, Properties{})
	assert.Error(t, err)
}

func TestImageLayerCamera(t *testing.T) {
	cam, err := NewCamera([]Keyframe{
		{Frame: 0, Rect: Rect{X: 0, Y: 0, W: 100, H: 100}, Zoom: 1},
		{Frame: 30, Rect: Rect{X: 100, Y: 100, W: 100, H: 100}, Zoom: 2},
	})
	require.NoError(t, err)
	l, err := NewImage("slide", "deck.pdf#1", 0, 0, cam, Properties{})
	require.NoError(t, err)

	nodes := l.Emit(Frame{Local: 15, Width: 640, Height: 360}, nil)
	require.Len(t, nodes, 1)
	n := nodes[0]
	assert.Equal(t, NodeImage, n.Kind)
	assert.Equal(t, "deck.pdf#1", n.Asset)
	assert.Equal(t, 640.0, n.Width)
	assert.True(t, n.Camera.Set)
	assert.InDelta(t, 100, n.Camera.X, 1e-9)
	assert.InDelta(t, 1.5, n.Camera.Zoom, 1e-9)

	n = l.Emit(Frame{Local: 90, Width: 640, Height: 360}, nil)[0]
	assert.InDelta(t, 150, n.Camera.X, 1e-9)
	assert.InDelta(t, 2, n.Camera.Zoom, 1e-9)

	_, err = NewImage("x", "", 0, 0, Camera{}, Properties{})
	assert.Error(t, err)
}

func TestCameraValidation(t *testing.T) {
	_, err := NewCamera([]Keyframe{{Frame: 0, Zoom: 0}})
	assert.Error(t, err)

	_, err = NewCamera([]Keyframe{{Frame: 10, Zoom: 1}, {Frame: 5, Zoom: 1}})
	assert.True(t, errors.Is(err, animate.ErrInvalidRange))

	still, err := NewCamera([]Keyframe{{Frame: 0, Rect: Rect{W: 10, H: 20}, Zoom: 3}})
	require.NoError(t, err)
	assert.Equal(t, CameraState{X: 5, Y: 10, Zoom: 3, Set: true}, still.At(500))

	assert.False(t, Camera{}.At(0).Set)
}

func TestCaptionsLayer(t *testing.T) {
	tr, err := captions.NewTrack([]captions.Line{{Text: "Your thoughts.", Start: 10, End: 70}})
	require.NoError(t, err)
	l, err := NewCaptions("cc", tr, Font{}, animate.MustColor("#ffffff"), animate.MustColor("#000000aa"), Properties{})
	require.NoError(t, err)

	assert.Empty(t, l.Emit(Frame{Global: 5, Width: 1000, Height: 500}, nil))

	nodes := l.Emit(Frame{Local: 0, Global: 40, Width: 1000, Height: 500}, nil)
	require.Len(t, nodes, 2)
	assert.Equal(t, NodeRect, nodes[0].Kind)
	assert.Equal(t, 800.0, nodes[0].Width)
	assert.Equal(t, "Your thoughts.", nodes[1].Text)
	assert.Equal(t, 1.0, nodes[1].Opacity)
	assert.Equal(t, 500-2.5*36, nodes[1].Y)

	_, err = NewCaptions("cc", nil, Font{}, animate.RGBA{}, animate.RGBA{}, Properties{})
	assert.Error(t, err)
}

func TestAudioEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		audio Audio
		at    map[int]float64
	}{
		{"flat", Audio{Volume: 0.8}, map[int]float64{0: 0.8, 150: 0.8, 300: 0.8}},
		{"fade in", Audio{Volume: 1, FadeIn: 30}, map[int]float64{0: 0, 15: 0.5, 30: 1, 300: 1}},
		{"fade out", Audio{Volume: 1, FadeOut: 30}, map[int]float64{0: 1, 270: 1, 285: 0.5, 300: 0}},
		{"both", Audio{Volume: 0.5, FadeIn: 30, FadeOut: 30}, map[int]float64{0: 0, 30: 0.5, 150: 0.5, 300: 0}},
		{"fades meet", Audio{Volume: 1, FadeIn: 100, FadeOut: 200}, map[int]float64{0: 0, 50: 0.5, 100: 1, 200: 0.5, 300: 0}},
		{"fades overlap", Audio{Volume: 1, FadeIn: 200, FadeOut: 200}, map[int]float64{0: 0, 75: 0.375, 150: 0.75, 225: 0.375, 300: 0}},
		{"long fade in", Audio{Volume: 1, FadeIn: 600}, map[int]float64{0: 0, 300: 0.5}},
		{"long fade out", Audio{Volume: 1, FadeOut: 600}, map[int]float64{0: 0.5, 150: 0.25, 300: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.audio.Envelope(300)
			for frame, want := range tt.at {
				assert.InDelta(t, want, env.AtFrame(frame), 1e-9, "frame %d", frame)
			}
		})
	}
}

func TestPropertiesSet(t *testing.T) {
	var p Properties
	assert.True(t, p.Set("rotation", animate.Constant(45)))
	assert.False(t, p.Set("colour", animate.Constant(1)))
	v := p.At(0, Values{Opacity: 1, Scale: 1})
	assert.Equal(t, 45.0, v.Rotation)
	assert.Equal(t, 1.0, v.Opacity)
}

func TestSlidesLayer(t *testing.T) {
	l, err := NewSlides("deck", []string{"deck.pdf#1", "deck.pdf#2", "deck.pdf#3"}, 30, 10, 0, 0, Camera{}, Properties{})
	require.NoError(t, err)
	assert.Equal(t, 70, l.Duration())

	f := Frame{Local: 25, Width: 640, Height: 360}
	nodes := l.Emit(f, nil)
	require.Len(t, nodes, 2)
	assert.Equal(t, "deck.pdf#1", nodes[0].Asset)
	assert.Equal(t, 1.0, nodes[0].Opacity)
	assert.Equal(t, "deck.pdf#2", nodes[1].Asset)
	assert.InDelta(t, 0.5, nodes[1].Opacity, 1e-9)
	assert.Equal(t, "deck", nodes[1].Layer)

	f.Local = 45
	nodes = l.Emit(f, nil)
	require.Len(t, nodes, 2)
	assert.Equal(t, "deck.pdf#3", nodes[1].Asset)

	c, err := New("slides", 30, 640, 360, 70, []Scene{{ID: "s", Window: animate.Window{ID: "s", Duration: 70}, Layers: []Layer{l, l}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"deck.pdf#1", "deck.pdf#2", "deck.pdf#3"}, c.Assets())

	_, err = NewSlides("deck", nil, 30, 0, 0, 0, Camera{}, Properties{})
	assert.Error(t, err)
	_, err = NewSlides("deck", []string{"a.png"}, 30, 30, 0, 0, Camera{}, Properties{})
	assert.Error(t, err)
}
