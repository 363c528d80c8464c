// Package director plans camera paths over still pages: it finds content
// blocks and visits them in reading order, starting and ending on the
// whole page.
package director

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/scenario"
)

// ErrNoBlocks is returned when there is nothing to visit.
var ErrNoBlocks = errors.New("no blocks detected")

// rowTolerance is how far apart two block tops may be and still read as
// one row.
const rowTolerance = 20

type Director struct {
	Width, Height int // page size in source pixels

	Intro, Outro       int // frames on the full page
	MinDwell, MaxDwell int // frames per block
	MaxBlocks          int
	MaxZoom            float64
	Padding            float64 // share of the viewport a block may fill
}

func NewDirector(width, height, fps int) *Director {
	return &Director{
		Width:     width,
		Height:    height,
		Intro:     fps,
		Outro:     fps,
		MinDwell:  fps,
		MaxDwell:  3 * fps,
		MaxBlocks: 6,
		MaxZoom:   3,
		Padding:   0.9,
	}
}

// Plan returns camera keyframes for an image layer shown for duration
// frames. Frames are layer-local.
func (d *Director) Plan(blocks []Block, duration int) ([]scenario.KeyframeDoc, error) {
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", duration)
	}
	blocks = d.pick(blocks)
	dwell := d.dwell(duration, len(blocks))
	intro := max(1, d.Intro)

	full := composition.Rect{W: d.Width, H: d.Height}
	out := make([]scenario.KeyframeDoc, 0, len(blocks)+2)
	out = append(out, scenario.KeyframeDoc{Frame: 0, Focus: "full_view", Rect: full, Zoom: 1})
	frame := intro
	for i, b := range blocks {
		out = append(out, scenario.KeyframeDoc{
			Frame: frame,
			Focus: fmt.Sprintf("region_%d", i+1),
			Rect:  composition.Rect{X: b.Rect.Min.X, Y: b.Rect.Min.Y, W: b.Rect.Dx(), H: b.Rect.Dy()},
			Zoom:  d.zoom(b),
		})
		frame += dwell
	}
	out = append(out, scenario.KeyframeDoc{Frame: frame, Focus: "full_view", Rect: full, Zoom: 1})
	return out, nil
}

// pick keeps the MaxBlocks largest blocks in reading order: top to
// bottom, then left to right within a row.
func (d *Director) pick(blocks []Block) []Block {
	out := append([]Block(nil), blocks...)
	if d.MaxBlocks > 0 && len(out) > d.MaxBlocks {
		sort.SliceStable(out, func(i, j int) bool { return area(out[i]) > area(out[j]) })
		out = out[:d.MaxBlocks]
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Rect.Min, out[j].Rect.Min
		if dy := a.Y - b.Y; dy > rowTolerance || dy < -rowTolerance {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

func (d *Director) dwell(duration, n int) int {
	avail := duration - d.Intro - d.Outro
	if avail <= 0 {
		avail = duration
	}
	dwell := avail / n
	if dwell < d.MinDwell {
		dwell = d.MinDwell
	}
	if d.MaxDwell > 0 && dwell > d.MaxDwell {
		dwell = d.MaxDwell
	}
	return max(1, dwell)
}

// zoom fits the block into Padding of the page, between 1 and MaxZoom.
func (d *Director) zoom(b Block) float64 {
	bw, bh := float64(b.Rect.Dx()), float64(b.Rect.Dy())
	if bw == 0 || bh == 0 {
		return 1
	}
	z := d.Padding * math.Min(float64(d.Width)/bw, float64(d.Height)/bh)
	return math.Max(1, math.Min(d.MaxZoom, z))
}

func area(b Block) int { return b.Rect.Dx() * b.Rect.Dy() }
