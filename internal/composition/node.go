package composition

import (
	"github.com/ivlev/motion2video/internal/animate"
	"github.com/ivlev/motion2video/internal/effects"
)

// NodeKind is the drawing primitive a Node maps to.
type NodeKind string

const (
	NodeText   NodeKind = "text"
	NodeRect   NodeKind = "rect"
	NodeCircle NodeKind = "circle"
	NodeGlow   NodeKind = "glow"
	NodeImage  NodeKind = "image"
	NodeQR     NodeKind = "qr"
)

// PaintKind selects how a text or rect node is filled.
type PaintKind string

const (
	PaintSolid    PaintKind = "solid"
	PaintGradient PaintKind = "gradient"
	PaintShine    PaintKind = "shine"
)

// Paint is a node fill. A gradient spreads Colors evenly over [0,1] and
// samples it at Offset + Span*u for u running 0..1 across the node,
// wrapping past 1. Shine uses Colors[0] as the base and Colors[1] as the
// highlight centred at u = Offset.
type Paint struct {
	Kind   PaintKind
	Colors []animate.RGBA
	Offset float64
	Span   float64
}

// Node is one visual element with every attribute resolved for a frame.
// X and Y are the centre of the node in canvas pixels.
type Node struct {
	Kind  NodeKind
	Scene string
	Layer string

	X, Y          float64
	Width, Height float64
	Opacity       float64
	Scale         float64
	Rotation      float64 // degrees, clockwise
	Blur          float64

	Color animate.RGBA
	Paint Paint

	// text
	Text     string
	Runs     []effects.Run
	FontSize float64
	Bold     bool

	// rect corner radius, circle radius and glow radius
	Radius float64
	// circle outline width; zero fills the disc
	Stroke float64

	// image asset key
	Asset  string
	Camera CameraState
}

// Visible reports whether drawing the node can change any pixel.
func (n Node) Visible() bool {
	return n.Opacity > 0 && n.Scale != 0
}
