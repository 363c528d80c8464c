package animate

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a colour with straight (non-premultiplied) alpha in [0,1].
type RGBA struct {
	colorful.Color
	A float64
}

// Transparent is fully transparent black.
var Transparent = RGBA{}

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa and "transparent".
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "transparent") {
		return Transparent, nil
	}

	alpha := 1.0
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGBA{Color: c, A: alpha}, nil
}

// MustColor is ParseColor for literals; it panics on invalid input.
func MustColor(s string) RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha returns c with alpha scaled by a.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = clamp01(c.A * a)
	return c
}

// NRGBA converts to the standard library colour type.
func (c RGBA) NRGBA() color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(c.A) * 255))}
}

// Hex formats as #rrggbb, or #rrggbbaa when not opaque.
func (c RGBA) Hex() string {
	h := c.Clamped().Hex()
	if c.A >= 1 {
		return h
	}
	return fmt.Sprintf("%s%02x", h, uint8(math.Round(clamp01(c.A)*255)))
}

// MixColors blends channel-wise in sRGB space, alpha included.
func MixColors(a, b RGBA, t float64) RGBA {
	return RGBA{Color: a.Color.BlendRgb(b.Color, t), A: lerp(a.A, b.A, t)}
}

// ColorRange maps breakpoints onto colours. Inputs outside the
// breakpoints always clamp.
type ColorRange struct {
	input  []float64
	colors []RGBA
}

// NewColorRange validates breakpoints and parses every colour.
func NewColorRange(input []float64, colors []string) (ColorRange, error) {
	if err := validateBreakpoints(input, len(colors)); err != nil {
		return ColorRange{}, err
	}
	parsed := make([]RGBA, len(colors))
	for i, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return ColorRange{}, err
		}
		parsed[i] = c
	}
	return ColorRange{input: append([]float64(nil), input...), colors: parsed}, nil
}

// At evaluates the colour at x.
func (r ColorRange) At(x float64) RGBA {
	n := len(r.input)
	if n == 0 {
		return Transparent
	}
	if math.IsNaN(x) || x <= r.input[0] {
		return r.colors[0]
	}
	if x >= r.input[n-1] {
		return r.colors[n-1]
	}
	i := sort.SearchFloat64s(r.input, x)
	if r.input[i] == x {
		return r.colors[i]
	}
	t := (x - r.input[i-1]) / (r.input[i] - r.input[i-1])
	return MixColors(r.colors[i-1], r.colors[i], t)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
