package scenario

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/captions"
	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/effects"
	"github.com/ivlev/motion2video/internal/source"
)

var (
	// ErrUnknownComposition is returned when no composition has the
	// requested id.
	ErrUnknownComposition = errors.New("unknown composition")
	// ErrUnknownLayerKind is returned for a layer kind the builder does
	// not know.
	ErrUnknownLayerKind = errors.New("unknown layer kind")
	// ErrUnknownProperty is returned for an animated property name no
	// layer has.
	ErrUnknownProperty = errors.New("unknown property")
)

// Resolver locates the files a document refers to.
type Resolver interface {
	// Path makes a file path usable from the working directory.
	Path(p string) string
	// Expand lists the asset keys behind a glob pattern or PDF.
	Expand(pattern string) ([]string, error)
}

// literal uses paths as written and expands nothing.
type literal struct{}

func (literal) Path(p string) string { return p }

func (literal) Expand(pattern string) ([]string, error) { return []string{pattern}, nil }

// Build compiles every composition in the document. A nil resolver
// takes paths literally.
func Build(doc *Document, r Resolver) ([]*composition.Composition, error) {
	seen := map[string]bool{}
	out := make([]*composition.Composition, 0, len(doc.Compositions))
	for i := range doc.Compositions {
		cd := &doc.Compositions[i]
		if seen[cd.ID] {
			return nil, fmt.Errorf("composition %q: defined twice", cd.ID)
		}
		seen[cd.ID] = true
		c, err := buildComposition(doc.Theme, cd, r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// BuildOne compiles the composition with the given id. An empty id
// selects the first composition.
func BuildOne(doc *Document, id string, r Resolver) (*composition.Composition, error) {
	if id == "" && len(doc.Compositions) > 0 {
		id = doc.Compositions[0].ID
	}
	cd, ok := doc.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownComposition, id, strings.Join(doc.IDs(), ", "))
	}
	return buildComposition(doc.Theme, cd, r)
}

type builder struct {
	theme  Theme
	doc    *CompositionDoc
	r      Resolver
	track  *captions.Track
	width  float64
	height float64
}

func buildComposition(theme Theme, cd *CompositionDoc, r Resolver) (*composition.Composition, error) {
	if r == nil {
		r = literal{}
	}
	if cd.ID == "" {
		return nil, errors.New("composition without id")
	}
	if cd.FPS <= 0 {
		return nil, fmt.Errorf("composition %q: fps must be positive, got %d", cd.ID, cd.FPS)
	}
	b := &builder{theme: theme, doc: cd, r: r, width: float64(cd.Width), height: float64(cd.Height)}

	var opts []composition.Option
	if cd.Background != "" {
		bg, err := b.color(cd.Background, "")
		if err != nil {
			return nil, fmt.Errorf("composition %q: background: %w", cd.ID, err)
		}
		opts = append(opts, composition.WithBackground(bg))
	}
	if cd.Audio != nil {
		a, err := b.audio(*cd.Audio)
		if err != nil {
			return nil, fmt.Errorf("composition %q: audio: %w", cd.ID, err)
		}
		opts = append(opts, composition.WithAudio(a))
	}
	if len(cd.Captions) > 0 {
		lines := make([]captions.Line, len(cd.Captions))
		for i, c := range cd.Captions {
			lines[i] = captions.Line{Text: c.Text, Start: c.Start, End: c.End, Scene: c.Scene}
		}
		track, err := captions.NewTrack(lines)
		if err != nil {
			return nil, fmt.Errorf("composition %q: captions: %w", cd.ID, err)
		}
		b.track = track
		opts = append(opts, composition.WithCaptions(track))
	}

	windows, err := b.windows(cd.Scenes)
	if err != nil {
		return nil, fmt.Errorf("composition %q: %w", cd.ID, err)
	}
	var scenes []composition.Scene
	for i, sd := range cd.Scenes {
		scenes, err = b.scene(scenes, sd, windows[i], sd.ID)
		if err != nil {
			return nil, fmt.Errorf("composition %q: %w", cd.ID, err)
		}
	}

	duration := cd.Duration
	if duration == 0 {
		for _, s := range scenes {
			duration = max(duration, s.Window.End())
		}
	}
	return composition.New(cd.ID, cd.FPS, cd.Width, cd.Height, duration, scenes, opts...)
}

// windows places the top-level scenes, either at their From frame or
// back to back.
func (b *builder) windows(docs []SceneDoc) ([]animate.Window, error) {
	if b.doc.Layout == "series" {
		items := make([]animate.SeriesItem, len(docs))
		for i, sd := range docs {
			items[i] = animate.SeriesItem{ID: sd.ID, Duration: sd.Duration, Offset: sd.From}
		}
		return animate.Series(items...)
	}
	if b.doc.Layout != "" {
		return nil, fmt.Errorf("unknown layout %q", b.doc.Layout)
	}
	out := make([]animate.Window, len(docs))
	for i, sd := range docs {
		w, err := animate.NewWindow(sd.ID, sd.From, sd.Duration)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", sd.ID, err)
		}
		out[i] = w
	}
	return out, nil
}

// scene appends sd and then its nested scenes, depth first, so children
// draw over their parent.
func (b *builder) scene(out []composition.Scene, sd SceneDoc, w animate.Window, path string) ([]composition.Scene, error) {
	layers := make([]composition.Layer, 0, len(sd.Layers))
	for i, ld := range sd.Layers {
		l, err := b.layer(ld, i)
		if err != nil {
			return nil, fmt.Errorf("scene %q: layer %d: %w", path, i+1, err)
		}
		layers = append(layers, l)
	}
	w.ID = path
	out = append(out, composition.Scene{ID: path, Window: w, Layers: layers})

	for _, child := range sd.Scenes {
		cw, err := animate.NewWindow(child.ID, child.From, child.Duration)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", path+"/"+child.ID, err)
		}
		nested, ok := w.Nest(cw)
		if !ok {
			log.Printf("[!] scene %q lies outside %q and is never shown", child.ID, path)
			continue
		}
		if out, err = b.scene(out, child, nested, path+"/"+child.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *builder) layer(ld LayerDoc, index int) (composition.Layer, error) {
	id := ld.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d", ld.Kind, index+1)
	}
	props, err := b.props(ld.Props)
	if err != nil {
		return nil, err
	}
	font := composition.Font{Size: ld.Font.Size, Bold: ld.Font.Bold}
	fps := b.doc.FPS

	switch composition.Kind(ld.Kind) {
	case composition.KindText:
		return b.text(id, ld, font, props)

	case composition.KindRect:
		colors, err := b.colors(ld.Colors)
		if err != nil {
			return nil, err
		}
		if len(colors) == 0 {
			c, err := b.color(ld.Color, "#ffffff")
			if err != nil {
				return nil, err
			}
			colors = []animate.RGBA{c}
		}
		return composition.NewRect(id, ld.Width, ld.Height, ld.Radius, colors, props)

	case composition.KindRing:
		c, err := b.color(ld.Color, "#00e5ff")
		if err != nil {
			return nil, err
		}
		return composition.NewRing(id, ld.Radius, ld.Stroke, c, props)

	case composition.KindParticles:
		primary, err := b.color(ld.Color, "#00e5ff")
		if err != nil {
			return nil, err
		}
		secondary := animate.MustColor("#a855f7")
		if len(ld.Colors) > 0 {
			if secondary, err = b.color(ld.Colors[0], ""); err != nil {
				return nil, err
			}
		}
		count := ld.Count
		if count == 0 {
			count = 50
		}
		return composition.NewParticles(id, count, b.width, b.height, primary, secondary, ld.Glow, props)

	case composition.KindStack:
		items := make([]effects.StackItem, len(ld.Items))
		for i, it := range ld.Items {
			c, err := b.color(it.Color, "#00e5ff")
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			items[i] = effects.StackItem{Label: it.Label, Color: c, Highlight: it.Highlight}
		}
		signal, err := b.color(ld.Signal, "#00e5ff")
		if err != nil {
			return nil, err
		}
		return composition.NewStack(composition.StackOptions{
			ID:         id,
			Items:      items,
			Width:      ld.Width,
			BarHeight:  ld.BarHeight,
			Gap:        ld.Gap,
			FontSize:   ld.Font.Size,
			Increment:  ld.Increment,
			Signal:     signal,
			ShowSignal: ld.ShowSignal,
			Props:      props,
		}, fps)

	case composition.KindCounter:
		c, err := b.color(ld.Color, "#ffffff")
		if err != nil {
			return nil, err
		}
		return composition.NewCounter(id, ld.Format, font, c, props)

	case composition.KindImage:
		if ld.Path == "" {
			return nil, errors.New("image needs a path")
		}
		cam, err := b.camera(ld.Camera)
		if err != nil {
			return nil, err
		}
		return composition.NewImage(id, source.Key(b.r.Path(ld.Path), ld.Page), ld.Width, ld.Height, cam, props)

	case composition.KindSlides:
		if ld.Path == "" {
			return nil, errors.New("slides need a path")
		}
		keys, err := b.r.Expand(ld.Path)
		if err != nil {
			return nil, err
		}
		cam, err := b.camera(ld.Camera)
		if err != nil {
			return nil, err
		}
		hold := ld.Hold
		if hold == 0 {
			hold = 3 * fps
		}
		return composition.NewSlides(id, keys, hold, ld.Fade, ld.Width, ld.Height, cam, props)

	case composition.KindQR:
		c, err := b.color(ld.Color, "#000000")
		if err != nil {
			return nil, err
		}
		size := ld.Size
		if size == 0 {
			size = 200
		}
		return composition.NewQR(id, ld.Content, size, c, props)

	case composition.KindCaptions:
		if b.track == nil {
			return nil, errors.New("captions layer in a composition without captions")
		}
		c, err := b.color(ld.Color, "#ffffff")
		if err != nil {
			return nil, err
		}
		band, err := b.color(ld.Band, "#000000aa")
		if err != nil {
			return nil, err
		}
		return composition.NewCaptions(id, b.track, font, c, band, props)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLayerKind, ld.Kind)
}

func (b *builder) text(id string, ld LayerDoc, font composition.Font, props composition.Properties) (composition.Layer, error) {
	name := ld.Effect
	var st StaggerDoc
	if ld.Stagger != nil {
		st = *ld.Stagger
	}
	by, err := effects.ParseSplitBy(st.By, effects.DefaultSplit(name))
	if err != nil {
		return nil, err
	}
	increment := effects.DefaultStagger(name)
	if st.Increment != nil {
		increment = *st.Increment
	}
	eff, err := effects.New(name, effects.Options{
		FPS:       b.doc.FPS,
		Delay:     st.Delay,
		Stagger:   increment,
		Direction: ld.Direction,
		Speed:     ld.Speed,
		Hold:      ld.Hold,
		NoLoop:    ld.Loop != nil && !*ld.Loop,
	})
	if err != nil {
		return nil, err
	}
	c, err := b.color(ld.Color, "#ffffff")
	if err != nil {
		return nil, err
	}
	colors, err := b.colors(ld.Colors)
	if err != nil {
		return nil, err
	}
	return composition.NewText(composition.TextOptions{
		ID:     id,
		Text:   ld.Text,
		Words:  ld.Words,
		By:     by,
		Effect: eff,
		Font:   font,
		Color:  c,
		Colors: colors,
		Props:  props,
	})
}

func (b *builder) props(docs map[string]PropDoc) (composition.Properties, error) {
	var p composition.Properties
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a, err := docs[name].Animation(b.doc.FPS)
		if err != nil {
			return p, fmt.Errorf("property %q: %w", name, err)
		}
		if !p.Set(name, a) {
			return p, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
		}
	}
	return p, nil
}

func (b *builder) camera(docs []KeyframeDoc) (composition.Camera, error) {
	kfs := make([]composition.Keyframe, len(docs))
	for i, d := range docs {
		frame := d.Frame
		if d.Time > 0 {
			frame = animate.FrameAt(d.Time, b.doc.FPS)
		}
		zoom := d.Zoom
		if zoom == 0 {
			zoom = 1
		}
		kfs[i] = composition.Keyframe{Frame: frame, Focus: d.Focus, Rect: d.Rect, Zoom: zoom}
	}
	return composition.NewCamera(kfs)
}

func (b *builder) audio(d AudioDoc) (composition.Audio, error) {
	if d.Path == "" {
		return composition.Audio{}, errors.New("path is empty")
	}
	if d.Volume < 0 || d.FadeIn < 0 || d.FadeOut < 0 {
		return composition.Audio{}, errors.New("volume and fades must not be negative")
	}
	vol := d.Volume
	if vol == 0 {
		vol = 1
	}
	return composition.Audio{Path: b.r.Path(d.Path), Volume: vol, FadeIn: d.FadeIn, FadeOut: d.FadeOut}, nil
}

// color resolves "$name" against the theme and parses the result. An
// empty string selects def.
func (b *builder) color(s, def string) (animate.RGBA, error) {
	if s == "" {
		s = def
	}
	if name, ok := strings.CutPrefix(s, "$"); ok {
		v, found := b.theme.Colors[name]
		if !found {
			return animate.RGBA{}, fmt.Errorf("%w: theme has no color %q", animate.ErrInvalidColor, name)
		}
		s = v
	}
	return animate.ParseColor(s)
}

func (b *builder) colors(in []string) ([]animate.RGBA, error) {
	out := make([]animate.RGBA, 0, len(in))
	for _, s := range in {
		c, err := b.color(s, "")
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
