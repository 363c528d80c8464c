package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/composition"
)

// shineHalfWidth is the half width of the highlight band of shine paint,
// as a fraction of the node width.
const shineHalfWidth = 0.15

// paintAt samples a paint at u in [0,1] across the node.
func paintAt(p composition.Paint, base animate.RGBA, u float64) animate.RGBA {
	switch p.Kind {
	case composition.PaintGradient:
		if len(p.Colors) == 0 {
			return base
		}
		if len(p.Colors) == 1 {
			return p.Colors[0]
		}
		t := p.Offset + p.Span*u
		t -= math.Floor(t)
		pos := t * float64(len(p.Colors)-1)
		i := min(int(pos), len(p.Colors)-2)
		return animate.MixColors(p.Colors[i], p.Colors[i+1], pos-float64(i))
	case composition.PaintShine:
		if len(p.Colors) < 2 {
			return base
		}
		w := math.Max(0, 1-math.Abs(u-p.Offset)/shineHalfWidth)
		return animate.MixColors(p.Colors[0], p.Colors[1], w)
	}
	if len(p.Colors) > 0 {
		return p.Colors[0]
	}
	return base
}

// solid reports whether the paint is a single colour.
func solid(p composition.Paint) bool {
	return p.Kind == "" || p.Kind == composition.PaintSolid
}

// everywhere is the bounds of the infinite source images below.
var everywhere = image.Rect(-1<<24, -1<<24, 1<<24, 1<<24)

// linearPaint is a paint stretched along the segment from (x0, y0)
// covering length pixels in direction (ux, uy).
type linearPaint struct {
	paint   composition.Paint
	base    animate.RGBA
	opacity float64

	x0, y0 float64
	ux, uy float64
	length float64
}

func (g *linearPaint) ColorModel() color.Model { return color.NRGBAModel }

func (g *linearPaint) Bounds() image.Rectangle { return everywhere }

func (g *linearPaint) At(x, y int) color.Color {
	px, py := float64(x)+0.5-g.x0, float64(y)+0.5-g.y0
	u := animate.Clamp01((px*g.ux + py*g.uy) / g.length)
	return paintAt(g.paint, g.base, u).WithAlpha(g.opacity).NRGBA()
}

// radialGlow fades c from its centre to transparent at radius.
type radialGlow struct {
	cx, cy float64
	radius float64
	c      color.NRGBA
}

func (g *radialGlow) ColorModel() color.Model { return color.NRGBAModel }

func (g *radialGlow) Bounds() image.Rectangle { return everywhere }

func (g *radialGlow) At(x, y int) color.Color {
	dx, dy := float64(x)+0.5-g.cx, float64(y)+0.5-g.cy
	d := math.Sqrt(dx*dx+dy*dy) / g.radius
	if d >= 1 {
		return color.NRGBA{}
	}
	f := (1 - d) * (1 - d)
	c := g.c
	c.A = uint8(math.Round(float64(c.A) * f))
	return c
}
