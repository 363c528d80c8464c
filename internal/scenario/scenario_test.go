package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/effects"
)

const layersCanvas = `
version: "1.0"
theme:
  colors: {dark: "#0a0e17", accent: "#00e5ff", purple: "#a855f7"}
compositions:
  - id: LayersCanvas
    fps: 30
    width: 1920
    height: 1080
    duration: 300
    background: $dark
    audio: {path: audio/voiceover.mp3, fade_in: 30, fade_out: 30}
    captions:
      - {text: "ONI defines fourteen layers", start: 0, end: 90}
    scenes:
      - id: stack
        from: 0
        duration: 300
        layers:
          - kind: particles
            count: 20
            glow: true
            color: $accent
            colors: [$purple]
          - kind: text
            id: title
            text: "14-Layer Security Model"
            effect: blur
            stagger: {by: word, delay: 0, increment: 10}
            font: {size: 48, bold: true}
            color: "#ffffff"
            props:
              y: {range: {input: [0, 30], output: [110, 60], right: clamp}}
              opacity: {spring: {damping: 20, stiffness: 80}}
          - kind: stack
            increment: 5
            show_signal: true
            items:
              - {label: "L1 Physical", color: "#1e3a5f"}
              - {label: "L8 Neural Gateway", color: $accent, highlight: true}
          - kind: captions
        scenes:
          - id: stat
            from: 200
            duration: 200
            layers:
              - kind: counter
                format: "%.0f%%"
                props:
                  value: {range: {input: [0, 60], output: [0, 100], extrapolate: clamp, easing: out-cubic}}
                  opacity: 1
  - id: Outro
    fps: 30
    width: 1280
    height: 720
    layout: series
    scenes:
      - {id: a, duration: 60, layers: [{kind: qr, content: "https://example.com"}]}
      - {id: b, from: -10, duration: 60, layers: [{kind: ring, radius: 40, stroke: 4}]}
`

func TestParseAndBuild(t *testing.T) {
	doc, err := Parse([]byte(layersCanvas))
	require.NoError(t, err)
	assert.Equal(t, []string{"LayersCanvas", "Outro"}, doc.IDs())

	comps, err := Build(doc, nil)
	require.NoError(t, err)
	require.Len(t, comps, 2)

	c := comps[0]
	assert.Equal(t, "#0a0e17", c.Background.Hex())
	require.NotNil(t, c.Audio)
	assert.Equal(t, 1.0, c.Audio.Volume)
	require.NotNil(t, c.Captions)

	scenes := c.Scenes()
	require.Len(t, scenes, 2)
	assert.Equal(t, "stack/stat", scenes[1].ID)
	assert.Equal(t, 200, scenes[1].Window.Start)
	assert.Equal(t, 100, scenes[1].Window.Duration, "nested scene is clipped to its parent")

	st, err := c.Evaluate(230)
	require.NoError(t, err)
	last := st.Nodes[len(st.Nodes)-1]
	assert.Equal(t, "stack/stat", last.Scene)
	assert.Equal(t, composition.NodeText, last.Kind)
	assert.Equal(t, "88%", last.Text)

	outro := comps[1]
	assert.Equal(t, 110, outro.Duration)
	assert.Equal(t, 50, outro.Scenes()[1].Window.Start)
}

func TestBuildOne(t *testing.T) {
	doc, err := Parse([]byte(layersCanvas))
	require.NoError(t, err)

	c, err := BuildOne(doc, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "LayersCanvas", c.ID)

	_, err = BuildOne(doc, "Missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownComposition))
	assert.Contains(t, err.Error(), "LayersCanvas, Outro")
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		layer  string
		target error
		msg    string
	}{
		{"unknown kind", `{kind: hologram}`, ErrUnknownLayerKind, `layer 1`},
		{"unknown effect", `{kind: text, text: hi, effect: wobble}`, effects.ErrUnknownEffect, ""},
		{"bad range", `{kind: rect, width: 10, height: 10, props: {x: {range: {input: [10, 5], output: [0, 1]}}}}`, animate.ErrInvalidRange, `property "x"`},
		{"bad spring", `{kind: ring, radius: 5, props: {scale: {spring: {mass: -1}}}}`, animate.ErrInvalidSpringConfig, ""},
		{"zero spring", `{kind: rect, width: 10, height: 10, props: {opacity: {spring: {damping: 0, stiffness: 0, mass: 0}}}}`, animate.ErrInvalidSpringConfig, `property "opacity"`},
		{"zero damping", `{kind: ring, radius: 5, props: {scale: {spring: {damping: 0}}}}`, animate.ErrInvalidSpringConfig, "damping=0"},
		{"unknown property", `{kind: ring, radius: 5, props: {tilt: 3}}`, ErrUnknownProperty, ""},
		{"theme color", `{kind: ring, radius: 5, color: $missing}`, animate.ErrInvalidColor, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `
compositions:
  - id: Broken
    fps: 30
    width: 100
    height: 100
    duration: 10
    scenes:
      - id: only
        from: 0
        duration: 10
        layers: [` + tt.layer + `]
`
			doc, err := Parse([]byte(src))
			require.NoError(t, err)
			_, err = Build(doc, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), err.Error())
			assert.Contains(t, err.Error(), `composition "Broken": scene "only"`)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestInvalidWindow(t *testing.T) {
	doc := &Document{Compositions: []CompositionDoc{{
		ID: "NoScenes", FPS: 30, Width: 10, Height: 10,
		Scenes: []SceneDoc{{ID: "zero", Duration: 0}},
	}}}
	_, err := Build(doc, nil)
	assert.True(t, errors.Is(err, animate.ErrInvalidWindow))
	assert.Contains(t, err.Error(), `composition "NoScenes"`)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("compositions:\n  - id: x\n    fsp: 30\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("version: \"1.0\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("compositions:\n  - id: x\n    scenes:\n      - id: s\n        layers:\n          - kind: ring\n            props: {x: [1, 2]}\n"))
	assert.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(layersCanvas))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "roundtrip.yaml")
	require.NoError(t, Write(doc, path))

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	props := back.Compositions[0].Scenes[0].Scenes[0].Layers[0].Props
	require.NotNil(t, props["opacity"].Const)
	assert.Equal(t, 1.0, *props["opacity"].Const)
}

func TestPropDocAnimation(t *testing.T) {
	to := 200.0
	tests := []struct {
		name string
		prop PropDoc
		at   map[int]float64
	}{
		{"constant", Constant(0.25), map[int]float64{0: 0.25, 1000: 0.25}},
		{"range extends", PropDoc{Range: &RangeDoc{Input: []float64{0, 10}, Output: []float64{0, 1}}}, map[int]float64{20: 2, -10: -1}},
		{"range clamps right", PropDoc{Range: &RangeDoc{Input: []float64{0, 10}, Output: []float64{0, 1}, Right: "clamp"}}, map[int]float64{20: 1, -10: -1}},
		{"spring waits for delay", PropDoc{Spring: &SpringDoc{From: 100, To: &to, Delay: 15}}, map[int]float64{0: 100, 15: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tt.prop.Animation(30)
			require.NoError(t, err)
			for frame, want := range tt.at {
				assert.InDelta(t, want, a.Value(frame), 1e-9, "frame %d", frame)
			}
		})
	}

	_, err := PropDoc{}.Animation(30)
	assert.Error(t, err)
	_, err = PropDoc{Const: new(float64), Range: &RangeDoc{}}.Animation(30)
	assert.Error(t, err)
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	_, err := FindLatest(dir)
	assert.Error(t, err)

	older := filepath.Join(dir, "a.yaml")
	newer := filepath.Join(dir, "nested", "b.yml")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(newer), 0o755))
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	latest, err := FindLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, latest)
}

func TestStarterBuilds(t *testing.T) {
	doc := Starter("Hello", 30, 1280, 720)
	path := filepath.Join(t.TempDir(), "starter.yaml")
	require.NoError(t, Write(doc, path))

	read, err := Read(path)
	require.NoError(t, err)
	c, err := BuildOne(read, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "Hello", c.ID)
	assert.Equal(t, 255, c.Duration, "intro 120 + stats 90 overlapping 15 + outro 60")
	assert.Equal(t, 105, c.Scenes()[1].Window.Start)

	st, err := c.Evaluate(180)
	require.NoError(t, err)
	require.Len(t, st.Active, 1)
	require.NotEmpty(t, st.Nodes)
	assert.Equal(t, "100%", st.Nodes[0].Text)
}

func TestBundledCompositionsBuild(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "compositions", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			doc, err := Read(f)
			require.NoError(t, err)
			_, err = Build(doc, nil)
			require.NoError(t, err)
		})
	}
}

func TestOniDemoTimeline(t *testing.T) {
	doc, err := Read(filepath.Join("..", "..", "compositions", "oni-demo.yaml"))
	require.NoError(t, err)
	c, err := BuildOne(doc, "OniDemo", nil)
	require.NoError(t, err)
	assert.Equal(t, 6450, c.Duration)

	ids := func(frame int) []string {
		var out []string
		for _, a := range c.Active(frame) {
			out = append(out, a.Window.ID)
		}
		return out
	}
	assert.Contains(t, ids(1500), "layers")
	assert.Contains(t, ids(3600), "tara/features")
	assert.NotContains(t, ids(3400), "tara/features")

	st, err := c.Evaluate(5600)
	require.NoError(t, err)
	var caption string
	for _, n := range st.Nodes {
		if n.Layer == "captions" {
			caption = n.Text
		}
	}
	assert.Equal(t, "pip install oni-framework", caption)
}
