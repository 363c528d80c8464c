package composition

import "github.com/ivlev/motion2video/internal/animate"

// Properties are the animated attributes shared by every layer. A nil
// entry keeps the layer default.
type Properties struct {
	Opacity  animate.Animation
	X        animate.Animation
	Y        animate.Animation
	Scale    animate.Animation
	Rotation animate.Animation
	Blur     animate.Animation
	Width    animate.Animation
	Height   animate.Animation
	Value    animate.Animation
}

// Values are Properties evaluated at one frame.
type Values struct {
	Opacity  float64
	X        float64
	Y        float64
	Scale    float64
	Rotation float64
	Blur     float64
	Width    float64
	Height   float64
	Value    float64
}

// Set assigns the named property. It reports false for unknown names.
func (p *Properties) Set(name string, a animate.Animation) bool {
	switch name {
	case "opacity":
		p.Opacity = a
	case "x":
		p.X = a
	case "y":
		p.Y = a
	case "scale":
		p.Scale = a
	case "rotation":
		p.Rotation = a
	case "blur":
		p.Blur = a
	case "width":
		p.Width = a
	case "height":
		p.Height = a
	case "value":
		p.Value = a
	default:
		return false
	}
	return true
}

// At evaluates every property at frame, falling back to def.
func (p Properties) At(frame int, def Values) Values {
	return Values{
		Opacity:  eval(p.Opacity, frame, def.Opacity),
		X:        eval(p.X, frame, def.X),
		Y:        eval(p.Y, frame, def.Y),
		Scale:    eval(p.Scale, frame, def.Scale),
		Rotation: eval(p.Rotation, frame, def.Rotation),
		Blur:     eval(p.Blur, frame, def.Blur),
		Width:    eval(p.Width, frame, def.Width),
		Height:   eval(p.Height, frame, def.Height),
		Value:    eval(p.Value, frame, def.Value),
	}
}

func eval(a animate.Animation, frame int, def float64) float64 {
	if a == nil {
		return def
	}
	return a.Value(frame)
}
