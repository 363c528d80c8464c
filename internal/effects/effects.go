// Package effects holds the text and background effects used by
// composition layers. Every effect is built once with its timing options
// and then evaluated as a pure function of the layer-local frame.
package effects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// ErrUnknownEffect is returned by New for names it does not know.
var ErrUnknownEffect = errors.New("unknown effect")

// Run is one independently animated piece of a text line.
type Run struct {
	Text     string
	Opacity  float64
	DX, DY   float64
	Scale    float64
	Rotation float64 // degrees
	Blur     float64
	// Overlay runs are drawn at the origin of the previous run and do not
	// advance the layout.
	Overlay bool
}

func neutral(text string) Run {
	return Run{Text: text, Opacity: 1, Scale: 1}
}

// Result is the evaluated state of a text effect at one frame.
type Result struct {
	Runs []Run
	// Opacity and Scale apply to the whole line.
	Opacity float64
	Scale   float64
	// Paint is the gradient offset for "gradient" and the shine position
	// for "shiny", both in text widths. Unused by other effects.
	Paint float64
}

// Effect evaluates a split text at a layer-local frame.
type Effect interface {
	Name() string
	Apply(units []string, frame int) Result
}

// SplitBy selects how text is broken into animated units.
type SplitBy string

const (
	ByLetter SplitBy = "letter"
	ByWord   SplitBy = "word"
	ByLine   SplitBy = "line"
)

// Split breaks text into grapheme clusters or words. Words keep their
// trailing space so that the runs lay out back to back.
func Split(text string, by SplitBy) []string {
	switch by {
	case ByLetter:
		var out []string
		g := uniseg.NewGraphemes(text)
		for g.Next() {
			out = append(out, g.Str())
		}
		return out
	case ByWord:
		fields := strings.Fields(text)
		for i := 0; i < len(fields)-1; i++ {
			fields[i] += " "
		}
		return fields
	default:
		if text == "" {
			return nil
		}
		return []string{text}
	}
}

// ParseSplitBy accepts "letter", "word", "line" and the empty string.
func ParseSplitBy(s string, def SplitBy) (SplitBy, error) {
	switch SplitBy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case ByLetter:
		return ByLetter, nil
	case ByWord:
		return ByWord, nil
	case ByLine:
		return ByLine, nil
	}
	return "", fmt.Errorf("split by %q: expected letter, word or line", s)
}

// Options configures a text effect. Zero values select the defaults of
// each effect except Stagger, which callers resolve with DefaultStagger.
type Options struct {
	FPS       int
	Delay     int
	Stagger   int
	Direction string
	Speed     float64
	// Hold is the number of frames each word stays up in "rotating".
	Hold   int
	NoLoop bool
}

// DefaultStagger is the frame gap between units when none is given.
func DefaultStagger(name string) int {
	switch name {
	case "blur":
		return 3
	case "split":
		return 2
	}
	return 0
}

// DefaultSplit is the unit an effect animates unless told otherwise.
func DefaultSplit(name string) SplitBy {
	switch name {
	case "blur", "split":
		return ByLetter
	case "rotating":
		return ByWord
	}
	return ByLine
}

// New builds the named effect.
func New(name string, o Options) (Effect, error) {
	switch name {
	case "", "none":
		return &DefaultEffect{}, nil
	case "blur":
		return NewBlur(o)
	case "split":
		return NewSplit(o)
	case "gradient":
		return NewGradient(o), nil
	case "shiny":
		return NewShiny(o), nil
	case "rotating":
		return NewRotating(o)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
}

// DefaultEffect draws every unit as is; the layer properties carry all
// the motion.
type DefaultEffect struct{}

// Name implements Effect.
func (e *DefaultEffect) Name() string { return "none" }

// Apply implements Effect.
func (e *DefaultEffect) Apply(units []string, _ int) Result {
	runs := make([]Run, len(units))
	for i, u := range units {
		runs[i] = neutral(u)
	}
	return Result{Runs: runs, Opacity: 1, Scale: 1}
}
