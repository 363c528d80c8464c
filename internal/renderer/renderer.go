// Package renderer draws evaluated frames into RGBA images. A Renderer
// holds per-goroutine state (font faces, rasterizer, QR cache), so each
// worker owns one; the loaded assets are shared read-only.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/source"
)

// Renderer draws FrameStates. It is not safe for concurrent use.
type Renderer struct {
	assets source.Assets
	faces  map[faceKey]font.Face
	qr     map[string]image.Image
	raster *vector.Rasterizer
}

// New prepares a renderer drawing images from assets.
func New(assets source.Assets) (*Renderer, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	return &Renderer{
		assets: assets,
		faces:  map[faceKey]font.Face{},
		qr:     map[string]image.Image{},
		raster: vector.NewRasterizer(0, 0),
	}, nil
}

// Render clears dst to the background and draws every node in order.
// dst must match the frame size.
func (r *Renderer) Render(st composition.FrameState, dst *image.RGBA) error {
	if b := dst.Bounds(); b.Min != (image.Point{}) || b.Dx() != st.Width || b.Dy() != st.Height {
		return fmt.Errorf("canvas %v does not match frame %dx%d", b, st.Width, st.Height)
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(st.Background.NRGBA()), image.Point{}, draw.Src)

	for i, n := range st.Nodes {
		if !n.Visible() {
			continue
		}
		var err error
		switch n.Kind {
		case composition.NodeText:
			err = r.drawText(dst, n)
		case composition.NodeRect:
			r.drawRect(dst, n)
		case composition.NodeCircle:
			r.drawCircle(dst, n)
		case composition.NodeGlow:
			r.drawGlow(dst, n)
		case composition.NodeImage:
			err = r.drawImage(dst, n)
		case composition.NodeQR:
			err = r.drawQR(dst, n)
		default:
			err = fmt.Errorf("unknown node kind %q", n.Kind)
		}
		if err != nil {
			return fmt.Errorf("frame %d: node %d (%s %s/%s): %w", st.Frame, i, n.Kind, n.Scene, n.Layer, err)
		}
	}
	return nil
}

// Close releases the font faces.
func (r *Renderer) Close() error {
	for k, f := range r.faces {
		f.Close()
		delete(r.faces, k)
	}
	return nil
}

// drawImage fits the asset into the node box. Without a camera the
// asset centre sits at the node centre; with one, the camera focus does,
// magnified by its zoom. Pixels outside the box are clipped.
func (r *Renderer) drawImage(dst *image.RGBA, n composition.Node) error {
	src, ok := r.assets[n.Asset]
	if !ok {
		return fmt.Errorf("asset %q not loaded", n.Asset)
	}
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw == 0 || sh == 0 || n.Width <= 0 || n.Height <= 0 {
		return nil
	}

	fit := math.Min(n.Width/sw, n.Height/sh)
	fx, fy, zoom := sw/2, sh/2, 1.0
	if n.Camera.Set {
		fx, fy, zoom = n.Camera.X, n.Camera.Y, n.Camera.Zoom
	}
	s := fit * zoom * n.Scale

	w, h := n.Width*math.Abs(n.Scale), n.Height*math.Abs(n.Scale)
	box := image.Rect(int(math.Round(n.X-w/2)), int(math.Round(n.Y-h/2)), int(math.Round(n.X+w/2)), int(math.Round(n.Y+h/2)))
	clip, ok := dst.SubImage(box.Intersect(dst.Bounds())).(*image.RGBA)
	if !ok || clip.Bounds().Empty() {
		return nil
	}

	aff := placement(s, n.Rotation, float64(sb.Min.X)+fx, float64(sb.Min.Y)+fy, n.X, n.Y)
	xdraw.BiLinear.Transform(clip, aff, src, sb, draw.Over, opacityMask(n.Opacity))
	return nil
}

// drawQR draws a QR code n.Width pixels wide in the node colour on white.
func (r *Renderer) drawQR(dst *image.RGBA, n composition.Node) error {
	size := int(math.Round(n.Width))
	if size <= 0 {
		return nil
	}
	key := fmt.Sprintf("%s|%d|%s", n.Text, size, n.Color.Hex())
	img, ok := r.qr[key]
	if !ok {
		q, err := qrcode.New(n.Text, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("qr code: %w", err)
		}
		q.ForegroundColor = n.Color.NRGBA()
		q.BackgroundColor = color.White
		img = q.Image(size)
		r.qr[key] = img
	}

	b := img.Bounds()
	cx, cy := float64(b.Min.X)+float64(b.Dx())/2, float64(b.Min.Y)+float64(b.Dy())/2
	aff := placement(n.Scale, n.Rotation, cx, cy, n.X, n.Y)
	xdraw.NearestNeighbor.Transform(dst, aff, img, b, draw.Over, opacityMask(n.Opacity))
	return nil
}

// placement maps source point (sx, sy) to canvas point (x, y), scaling
// by s and rotating clockwise by deg degrees around it.
func placement(s, deg, sx, sy, x, y float64) f64.Aff3 {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	a, b := s*cos, -s*sin
	d, e := s*sin, s*cos
	return f64.Aff3{
		a, b, x - a*sx - b*sy,
		d, e, y - d*sx - e*sy,
	}
}

func opacityMask(op float64) *xdraw.Options {
	if op >= 1 {
		return nil
	}
	return &xdraw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(math.Round(math.Max(op, 0) * 0xffff))})}
}
