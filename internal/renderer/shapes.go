package renderer

import (
	"image"
	"image/draw"
	"math"

	"github.com/ivlev/motion2video/internal/composition"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

type point struct{ x, y float64 }

// frame maps node-local coordinates, centred on the node, to canvas
// pixels.
type frame struct {
	cx, cy   float64
	cos, sin float64
	scale    float64
}

func nodeFrame(n composition.Node) frame {
	rad := n.Rotation * math.Pi / 180
	return frame{cx: n.X, cy: n.Y, cos: math.Cos(rad), sin: math.Sin(rad), scale: n.Scale}
}

func (f frame) apply(x, y float64) point {
	x, y = x*f.scale, y*f.scale
	return point{f.cx + x*f.cos - y*f.sin, f.cy + x*f.sin + y*f.cos}
}

// path collects a contour in canvas pixels and its bounding box.
type path struct {
	ops        []op
	minX, minY float64
	maxX, maxY float64
}

type op struct {
	kind byte // 'M', 'L', 'C', 'Z'
	pts  [3]point
}

func newPath() *path {
	return &path{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
}

func (p *path) grow(pts ...point) {
	for _, q := range pts {
		p.minX, p.maxX = math.Min(p.minX, q.x), math.Max(p.maxX, q.x)
		p.minY, p.maxY = math.Min(p.minY, q.y), math.Max(p.maxY, q.y)
	}
}

func (p *path) moveTo(a point) {
	p.grow(a)
	p.ops = append(p.ops, op{kind: 'M', pts: [3]point{a}})
}

func (p *path) lineTo(a point) {
	p.grow(a)
	p.ops = append(p.ops, op{kind: 'L', pts: [3]point{a}})
}

func (p *path) cubeTo(a, b, c point) {
	p.grow(a, b, c)
	p.ops = append(p.ops, op{kind: 'C', pts: [3]point{a, b, c}})
}

func (p *path) close() { p.ops = append(p.ops, op{kind: 'Z'}) }

// bounds is the pixel box covering the path, clipped to clip.
func (p *path) bounds(clip image.Rectangle) image.Rectangle {
	if len(p.ops) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(int(math.Floor(p.minX)), int(math.Floor(p.minY)), int(math.Ceil(p.maxX)), int(math.Ceil(p.maxY)))
	return r.Intersect(clip)
}

// fill rasterizes the path into dst with src. The rasterizer only
// covers the path's bounding box.
func (r *Renderer) fill(dst *image.RGBA, p *path, src image.Image) {
	box := p.bounds(dst.Bounds())
	if box.Empty() {
		return
	}
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	r.raster.Reset(box.Dx(), box.Dy())
	r.raster.DrawOp = draw.Over
	for _, o := range p.ops {
		a, b, c := o.pts[0], o.pts[1], o.pts[2]
		switch o.kind {
		case 'M':
			r.raster.MoveTo(float32(a.x)-ox, float32(a.y)-oy)
		case 'L':
			r.raster.LineTo(float32(a.x)-ox, float32(a.y)-oy)
		case 'C':
			r.raster.CubeTo(float32(a.x)-ox, float32(a.y)-oy, float32(b.x)-ox, float32(b.y)-oy, float32(c.x)-ox, float32(c.y)-oy)
		case 'Z':
			r.raster.ClosePath()
		}
	}
	r.raster.Draw(dst, box, src, box.Min)
}

// roundedRect traces a w x h rectangle centred on the node with corner
// radius rad, clockwise.
func roundedRect(p *path, f frame, w, h, rad float64) {
	rad = math.Min(rad, math.Min(w, h)/2)
	x0, y0, x1, y1 := -w/2, -h/2, w/2, h/2
	k := rad * (1 - kappa)
	if rad <= 0 {
		p.moveTo(f.apply(x0, y0))
		p.lineTo(f.apply(x1, y0))
		p.lineTo(f.apply(x1, y1))
		p.lineTo(f.apply(x0, y1))
		p.close()
		return
	}
	p.moveTo(f.apply(x0+rad, y0))
	p.lineTo(f.apply(x1-rad, y0))
	p.cubeTo(f.apply(x1-k, y0), f.apply(x1, y0+k), f.apply(x1, y0+rad))
	p.lineTo(f.apply(x1, y1-rad))
	p.cubeTo(f.apply(x1, y1-k), f.apply(x1-k, y1), f.apply(x1-rad, y1))
	p.lineTo(f.apply(x0+rad, y1))
	p.cubeTo(f.apply(x0+k, y1), f.apply(x0, y1-k), f.apply(x0, y1-rad))
	p.lineTo(f.apply(x0, y0+rad))
	p.cubeTo(f.apply(x0, y0+k), f.apply(x0+k, y0), f.apply(x0+rad, y0))
	p.close()
}

// circle traces a circle of radius rad around the node centre. Reverse
// winding cuts a hole when drawn after an outer circle.
func circle(p *path, f frame, rad float64, reverse bool) {
	c := rad * kappa
	sy := 1.0
	if reverse {
		sy = -1
	}
	pt := func(x, y float64) point { return f.apply(x, y*sy) }
	p.moveTo(pt(rad, 0))
	p.cubeTo(pt(rad, c), pt(c, rad), pt(0, rad))
	p.cubeTo(pt(-c, rad), pt(-rad, c), pt(-rad, 0))
	p.cubeTo(pt(-rad, -c), pt(-c, -rad), pt(0, -rad))
	p.cubeTo(pt(c, -rad), pt(rad, -c), pt(rad, 0))
	p.close()
}

func (r *Renderer) drawRect(dst *image.RGBA, n composition.Node) {
	f := nodeFrame(n)
	p := newPath()
	roundedRect(p, f, n.Width, n.Height, n.Radius)

	var src image.Image
	if solid(n.Paint) {
		src = image.NewUniform(paintAt(n.Paint, n.Color, 0).WithAlpha(n.Opacity).NRGBA())
	} else {
		left := f.apply(-n.Width/2, 0)
		src = &linearPaint{
			paint:   n.Paint,
			base:    n.Color,
			opacity: n.Opacity,
			x0:      left.x,
			y0:      left.y,
			ux:      f.cos,
			uy:      f.sin,
			length:  math.Max(n.Width*math.Abs(n.Scale), 1),
		}
	}
	r.fill(dst, p, src)
}

func (r *Renderer) drawCircle(dst *image.RGBA, n composition.Node) {
	if n.Radius <= 0 {
		return
	}
	f := nodeFrame(n)
	p := newPath()
	circle(p, f, n.Radius, false)
	if n.Stroke > 0 && n.Stroke < n.Radius {
		circle(p, f, n.Radius-n.Stroke, true)
	}
	r.fill(dst, p, image.NewUniform(n.Color.WithAlpha(n.Opacity).NRGBA()))
}

func (r *Renderer) drawGlow(dst *image.RGBA, n composition.Node) {
	rad := n.Radius * math.Abs(n.Scale)
	if rad <= 0 {
		return
	}
	box := image.Rect(int(n.X-rad), int(n.Y-rad), int(math.Ceil(n.X+rad)), int(math.Ceil(n.Y+rad))).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}
	src := &radialGlow{cx: n.X, cy: n.Y, radius: rad, c: n.Color.WithAlpha(n.Opacity).NRGBA()}
	draw.Draw(dst, box, src, box.Min, draw.Over)
}
