// Package scenario reads and writes YAML composition files and compiles
// them into runtime compositions.
package scenario

import (
	"github.com/ivlev/motion2video/internal/composition"
)

// Document is a composition file.
type Document struct {
	Version      string           `yaml:"version"`
	Theme        Theme            `yaml:"theme,omitempty"`
	Compositions []CompositionDoc `yaml:"compositions"`
}

// Theme holds named colours, referenced elsewhere as "$name".
type Theme struct {
	Colors map[string]string `yaml:"colors,omitempty"`
}

// CompositionDoc describes one video.
type CompositionDoc struct {
	ID       string `yaml:"id"`
	FPS      int    `yaml:"fps"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Duration int    `yaml:"duration,omitempty"` // frames; defaults to the end of the last scene
	// Layout "series" places scenes back to back and reads From as an
	// offset from the end of the previous scene.
	Layout     string       `yaml:"layout,omitempty"`
	Background string       `yaml:"background,omitempty"`
	Audio      *AudioDoc    `yaml:"audio,omitempty"`
	Captions   []CaptionDoc `yaml:"captions,omitempty"`
	Scenes     []SceneDoc   `yaml:"scenes"`
}

// AudioDoc is the soundtrack. A zero volume means full volume.
type AudioDoc struct {
	Path    string  `yaml:"path"`
	Volume  float64 `yaml:"volume,omitempty"`
	FadeIn  int     `yaml:"fade_in,omitempty"`
	FadeOut int     `yaml:"fade_out,omitempty"`
}

// CaptionDoc is one script line on [Start, End).
type CaptionDoc struct {
	Text  string `yaml:"text"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	Scene string `yaml:"scene,omitempty"`
}

// SceneDoc is a window of layers. Nested scenes are declared in the
// parent's local frames and clipped to it.
type SceneDoc struct {
	ID       string     `yaml:"id"`
	From     int        `yaml:"from"`
	Duration int        `yaml:"duration"`
	Layers   []LayerDoc `yaml:"layers,omitempty"`
	Scenes   []SceneDoc `yaml:"scenes,omitempty"`
}

// LayerDoc is a layer of any kind; each kind reads the fields it needs.
type LayerDoc struct {
	Kind string `yaml:"kind"`
	ID   string `yaml:"id,omitempty"`

	// text, counter
	Text      string      `yaml:"text,omitempty"`
	Words     []string    `yaml:"words,omitempty"`
	Effect    string      `yaml:"effect,omitempty"`
	Direction string      `yaml:"direction,omitempty"`
	Stagger   *StaggerDoc `yaml:"stagger,omitempty"`
	Speed     float64     `yaml:"speed,omitempty"`
	Hold      int         `yaml:"hold,omitempty"`
	Loop      *bool       `yaml:"loop,omitempty"`
	Font      FontDoc     `yaml:"font,omitempty"`
	Format    string      `yaml:"format,omitempty"`

	Color  string   `yaml:"color,omitempty"`
	Colors []string `yaml:"colors,omitempty"`

	// rect, ring, image, stack
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
	Stroke float64 `yaml:"stroke,omitempty"`

	// particles
	Count int  `yaml:"count,omitempty"`
	Glow  bool `yaml:"glow,omitempty"`

	// stack
	Items      []StackItemDoc `yaml:"items,omitempty"`
	Increment  int            `yaml:"increment,omitempty"`
	BarHeight  float64        `yaml:"bar_height,omitempty"`
	Gap        float64        `yaml:"gap,omitempty"`
	Signal     string         `yaml:"signal,omitempty"`
	ShowSignal bool           `yaml:"show_signal,omitempty"`

	// image, slides
	Path   string        `yaml:"path,omitempty"`
	Page   int           `yaml:"page,omitempty"`
	Fade   int           `yaml:"fade,omitempty"`
	Camera []KeyframeDoc `yaml:"camera,omitempty"`

	// qr
	Content string  `yaml:"content,omitempty"`
	Size    float64 `yaml:"size,omitempty"`

	// captions band colour
	Band string `yaml:"band,omitempty"`

	Props map[string]PropDoc `yaml:"props,omitempty"`
}

// StaggerDoc spreads a text effect over its units. A nil Increment uses
// the effect's default.
type StaggerDoc struct {
	By        string `yaml:"by,omitempty"`
	Delay     int    `yaml:"delay,omitempty"`
	Increment *int   `yaml:"increment,omitempty"`
}

// FontDoc selects size and weight.
type FontDoc struct {
	Size float64 `yaml:"size,omitempty"`
	Bold bool    `yaml:"bold,omitempty"`
}

// StackItemDoc is one bar of a stack layer.
type StackItemDoc struct {
	Label     string `yaml:"label"`
	Color     string `yaml:"color"`
	Highlight bool   `yaml:"highlight,omitempty"`
}

// KeyframeDoc is a camera position. Time is in seconds and wins over
// Frame when set.
type KeyframeDoc struct {
	Frame int              `yaml:"frame,omitempty"`
	Time  float64          `yaml:"time,omitempty"`
	Focus string           `yaml:"focus,omitempty"`
	Rect  composition.Rect `yaml:"rect"`
	Zoom  float64          `yaml:"zoom"`
}

// Find returns the composition with the given id.
func (d *Document) Find(id string) (*CompositionDoc, bool) {
	for i := range d.Compositions {
		if d.Compositions[i].ID == id {
			return &d.Compositions[i], true
		}
	}
	return nil, false
}

// IDs lists the composition ids in file order.
func (d *Document) IDs() []string {
	out := make([]string, len(d.Compositions))
	for i, c := range d.Compositions {
		out[i] = c.ID
	}
	return out
}
