package renderer

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/motion2video/internal/composition"
)

// Parsed fonts are shared; faces are not safe for concurrent use and
// live in each Renderer.
var (
	fontsOnce   sync.Once
	fontRegular *opentype.Font
	fontBold    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if fontRegular, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		fontBold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

type faceKey struct {
	size float64
	bold bool
}

func (r *Renderer) face(size float64, bold bool) (font.Face, error) {
	k := faceKey{size: math.Round(size*2) / 2, bold: bold}
	if f, ok := r.faces[k]; ok {
		return f, nil
	}
	fnt := fontRegular
	if bold {
		fnt = fontBold
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: k.size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("font face %gpt: %w", k.size, err)
	}
	r.faces[k] = f
	return f, nil
}

// Measure returns the advance width of text and the height of its line
// box at size.
func (r *Renderer) Measure(text string, size float64, bold bool) (float64, float64, error) {
	face, err := r.face(size, bold)
	if err != nil {
		return 0, 0, err
	}
	m := face.Metrics()
	return fixedToFloat(font.MeasureString(face, text)), fixedToFloat(m.Ascent + m.Descent), nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// drawText lays the runs out on one line centred on the node. Each run
// is drawn into its own tile, blurred, coloured and then placed with an
// affine transform carrying the run's offset, scale and rotation on top
// of the node's. Overlay runs are centred on the line and do not
// advance it.
func (r *Renderer) drawText(dst *image.RGBA, n composition.Node) error {
	if n.FontSize <= 0 || len(n.Runs) == 0 {
		return nil
	}
	face, err := r.face(n.FontSize, n.Bold)
	if err != nil {
		return err
	}
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	advances := make([]float64, len(n.Runs))
	starts := make([]float64, len(n.Runs))
	total := 0.0
	for i, run := range n.Runs {
		advances[i] = fixedToFloat(font.MeasureString(face, run.Text))
		if !run.Overlay {
			starts[i] = total
			total += advances[i]
		}
	}
	for i, run := range n.Runs {
		if run.Overlay {
			starts[i] = (total - advances[i]) / 2
		}
	}
	span := math.Max(total, 1)
	nf := nodeFrame(n)

	for i, run := range n.Runs {
		alpha := n.Opacity * run.Opacity
		s := n.Scale * run.Scale
		if alpha <= 0 || s == 0 || strings.TrimSpace(run.Text) == "" {
			continue
		}

		blur := math.Max(0, run.Blur+n.Blur)
		pad := int(math.Ceil(blur*2)) + 2
		tw := int(math.Ceil(advances[i])) + 2*pad
		th := ascent + descent + 2*pad

		mask := image.NewAlpha(image.Rect(0, 0, tw, th))
		d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face, Dot: fixed.P(pad, pad+ascent)}
		d.DrawString(run.Text)
		boxBlur(mask, blur)

		tile := colorize(mask, n, alpha, starts[i]-float64(pad), span)

		lx := starts[i] + advances[i]/2 - total/2 + run.DX
		ly := run.DY
		center := nf.apply(lx, ly)

		cx, cy := float64(tw)/2, float64(th)/2
		aff := placement(s, n.Rotation+run.Rotation, cx, cy, center.x, center.y)
		xdraw.BiLinear.Transform(dst, aff, tile, tile.Bounds(), draw.Over, nil)
	}
	return nil
}

// colorize turns a coverage mask into a straight-alpha tile filled with
// the node paint. Column x of the tile sits at x0+x on a line span
// pixels wide.
func colorize(mask *image.Alpha, n composition.Node, opacity, x0, span float64) *image.NRGBA {
	b := mask.Bounds()
	tile := image.NewNRGBA(b)
	w := b.Dx()

	cols := make([][4]uint8, w)
	if solid(n.Paint) {
		c := paintAt(n.Paint, n.Color, 0).WithAlpha(opacity).NRGBA()
		for x := range cols {
			cols[x] = [4]uint8{c.R, c.G, c.B, c.A}
		}
	} else {
		for x := range cols {
			u := (x0 + float64(x) + 0.5) / span
			c := paintAt(n.Paint, n.Color, u).WithAlpha(opacity).NRGBA()
			cols[x] = [4]uint8{c.R, c.G, c.B, c.A}
		}
	}

	for y := 0; y < b.Dy(); y++ {
		mrow := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		trow := tile.Pix[y*tile.Stride : y*tile.Stride+4*w]
		for x, cov := range mrow {
			if cov == 0 {
				continue
			}
			c := cols[x]
			trow[4*x+0] = c[0]
			trow[4*x+1] = c[1]
			trow[4*x+2] = c[2]
			trow[4*x+3] = uint8((uint32(c[3])*uint32(cov) + 127) / 255)
		}
	}
	return tile
}

// boxBlur approximates a gaussian of the given radius with two box
// passes in each direction. The mask must start at the origin.
func boxBlur(m *image.Alpha, radius float64) {
	r := int(math.Round(radius / 2))
	if r <= 0 {
		return
	}
	w, h := m.Rect.Dx(), m.Rect.Dy()
	tmp := make([]uint8, len(m.Pix))
	for pass := 0; pass < 2; pass++ {
		blur1D(m.Pix, tmp, h, w, m.Stride, 1, r)
		blur1D(tmp, m.Pix, w, h, 1, m.Stride, r)
	}
}

// blur1D runs a moving average of width 2r+1 along lines of length
// samples, treating samples outside the line as zero.
func blur1D(src, dst []uint8, lines, length, lineStep, step, r int) {
	win := 2*r + 1
	for l := 0; l < lines; l++ {
		base := l * lineStep
		sum := 0
		for k := 0; k <= r && k < length; k++ {
			sum += int(src[base+k*step])
		}
		for i := 0; i < length; i++ {
			dst[base+i*step] = uint8(sum / win)
			if j := i + r + 1; j < length {
				sum += int(src[base+j*step])
			}
			if j := i - r; j >= 0 {
				sum -= int(src[base+j*step])
			}
		}
	}
}
