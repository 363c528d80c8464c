package director

import (
	"fmt"
	"image"
	"image/draw"
	"math"
)

// Block is a region of interest on a page, in source pixels.
type Block struct {
	Rect image.Rectangle
	// Score is the share of edge pixels inside Rect.
	Score float64
}

// Detector finds regions worth pointing the camera at.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// NewDetector returns the detector for variant. Only "contrast" exists.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	}
	return nil, fmt.Errorf("unknown detector %q", variant)
}

// ContrastDetector thresholds a Sobel gradient, dilates it to merge
// nearby glyphs into blocks and returns the bounding boxes of the
// connected components.
type ContrastDetector struct {
	MinArea   int     // px²
	Threshold float64 // gradient magnitude
	Dilate    int     // kernel radius
	Passes    int
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{MinArea: 500, Threshold: 30, Dilate: 2, Passes: 2}
}

func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Rect, img, b.Min, draw.Src)

	edges := sobel(gray, d.Threshold)
	mask := edges
	for i := 0; i < d.Passes; i++ {
		mask = dilate(mask, d.Dilate)
	}

	var out []Block
	for _, r := range components(mask) {
		if r.Dx()*r.Dy() < d.MinArea {
			continue
		}
		out = append(out, Block{Rect: r.Add(b.Min), Score: density(edges, r)})
	}
	return out, nil
}

func sobel(g *image.Gray, threshold float64) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := image.NewGray(g.Rect)
	at := func(x, y int) float64 { return float64(g.Pix[y*g.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) - 2*at(x-1, y) + 2*at(x+1, y) - at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) + at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if math.Hypot(gx, gy) > threshold {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// dilate grows set pixels by r in every direction, as two separable
// passes over rows and columns.
func dilate(m *image.Gray, r int) *image.Gray {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	rows := image.NewGray(m.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Pix[y*m.Stride+x] == 0 {
				continue
			}
			for dx := max(0, x-r); dx <= min(w-1, x+r); dx++ {
				rows.Pix[y*rows.Stride+dx] = 255
			}
		}
	}
	out := image.NewGray(m.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if rows.Pix[y*rows.Stride+x] == 0 {
				continue
			}
			for dy := max(0, y-r); dy <= min(h-1, y+r); dy++ {
				out.Pix[dy*out.Stride+x] = 255
			}
		}
	}
	return out
}

// components returns the bounding box of every 4-connected set region.
func components(m *image.Gray) []image.Rectangle {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	seen := make([]bool, w*h)
	var (
		out   []image.Rectangle
		stack []image.Point
	)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if seen[y*w+x] || m.Pix[y*m.Stride+x] == 0 {
				continue
			}
			r := image.Rect(x, y, x+1, y+1)
			stack = append(stack[:0], image.Pt(x, y))
			seen[y*w+x] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				for _, n := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
					if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
						continue
					}
					i := n.Y*w + n.X
					if !seen[i] && m.Pix[n.Y*m.Stride+n.X] != 0 {
						seen[i] = true
						stack = append(stack, n)
					}
				}
			}
			out = append(out, r)
		}
	}
	return out
}

func density(edges *image.Gray, r image.Rectangle) float64 {
	set := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges.Pix[y*edges.Stride+x] != 0 {
				set++
			}
		}
	}
	return float64(set) / float64(r.Dx()*r.Dy())
}
