package composition

import (
	"fmt"

	"github.com/ivlev/motion2video/internal/animate"
)

// Rect is a region of an image layer's source, in source pixels.
type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Center returns the middle of the rectangle.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// Keyframe pins the camera on a region at a layer-local frame.
type Keyframe struct {
	Frame int
	Focus string
	Rect  Rect
	Zoom  float64
}

// CameraState is the camera at one frame. X and Y are the focus point in
// source pixels; Set is false for layers without a camera, which show
// the whole source.
type CameraState struct {
	X, Y float64
	Zoom float64
	Set  bool
}

// Camera eases between keyframes with easeInOutCubic and holds the first
// and last keyframe outside them.
type Camera struct {
	x, y, zoom animate.Range
	still      CameraState
	moving     bool
}

// NewCamera validates that keyframe frames strictly increase and zoom is
// positive.
func NewCamera(keyframes []Keyframe) (Camera, error) {
	if len(keyframes) == 0 {
		return Camera{}, nil
	}
	for i, kf := range keyframes {
		if kf.Zoom <= 0 {
			return Camera{}, fmt.Errorf("keyframe %d: zoom must be positive, got %g", i, kf.Zoom)
		}
	}
	if len(keyframes) == 1 {
		x, y := keyframes[0].Rect.Center()
		return Camera{still: CameraState{X: x, Y: y, Zoom: keyframes[0].Zoom, Set: true}}, nil
	}

	n := len(keyframes)
	frames := make([]float64, n)
	xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, kf := range keyframes {
		frames[i] = float64(kf.Frame)
		xs[i], ys[i] = kf.Rect.Center()
		zs[i] = kf.Zoom
	}

	opts := []animate.RangeOption{
		animate.WithExtrapolation(animate.Clamp),
		animate.WithEasing(animate.EaseInOutCubic),
	}
	x, err := animate.NewRange(frames, xs, opts...)
	if err != nil {
		return Camera{}, fmt.Errorf("camera keyframes: %w", err)
	}
	y, _ := animate.NewRange(frames, ys, opts...)
	zoom, _ := animate.NewRange(frames, zs, opts...)
	return Camera{x: x, y: y, zoom: zoom, moving: true}, nil
}

// At returns the camera state at a layer-local frame.
func (c Camera) At(frame int) CameraState {
	if !c.moving {
		return c.still
	}
	return CameraState{
		X:    c.x.AtFrame(frame),
		Y:    c.y.AtFrame(frame),
		Zoom: c.zoom.AtFrame(frame),
		Set:  true,
	}
}
