// Package animate evaluates frame-based animation descriptors: range
// interpolation, easing, spring physics, stagger offsets and sequence
// windows. Every evaluation is a pure function of the frame number, so
// frames can be computed in any order and from any goroutine.
package animate

import "errors"

var (
	// ErrInvalidRange is returned for malformed breakpoints or outputs.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidSpringConfig is returned for non-positive physical parameters.
	ErrInvalidSpringConfig = errors.New("invalid spring config")
	// ErrInvalidWindow is returned for windows with a non-positive duration.
	ErrInvalidWindow = errors.New("invalid window")
	// ErrInvalidStagger is returned for stagger groups with a negative count.
	ErrInvalidStagger = errors.New("invalid stagger")
	// ErrInvalidColor is returned when a colour string cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")
)
