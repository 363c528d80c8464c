package scenario

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/motion2video/internal/animate"
)

// PropDoc is an animated property: a bare number, a range or a spring.
//
//	opacity: 0.5
//	y: {range: {input: [0, 30], output: [110, 60], right: clamp}}
//	scale: {spring: {damping: 12, from: 0.8, to: 1, delay: 10}}
type PropDoc struct {
	Const  *float64   `yaml:"-"`
	Range  *RangeDoc  `yaml:"range,omitempty"`
	Spring *SpringDoc `yaml:"spring,omitempty"`
}

// RangeDoc is an interpolation range. Extrapolate sets both sides; Left
// and Right override it.
type RangeDoc struct {
	Input       []float64 `yaml:"input"`
	Output      []float64 `yaml:"output"`
	Easing      string    `yaml:"easing,omitempty"`
	Extrapolate string    `yaml:"extrapolate,omitempty"`
	Left        string    `yaml:"left,omitempty"`
	Right       string    `yaml:"right,omitempty"`
}

// SpringDoc is a spring descriptor. Omitted physical parameters take the
// defaults (damping 10, stiffness 100, mass 1); explicit values must be
// positive. A nil To means 1.
type SpringDoc struct {
	Damping           *float64 `yaml:"damping,omitempty"`
	Stiffness         *float64 `yaml:"stiffness,omitempty"`
	Mass              *float64 `yaml:"mass,omitempty"`
	OvershootClamping bool     `yaml:"overshoot_clamping,omitempty"`
	From              float64  `yaml:"from,omitempty"`
	To                *float64 `yaml:"to,omitempty"`
	Delay             int      `yaml:"delay,omitempty"`
	Duration          int      `yaml:"duration,omitempty"`
	Reverse           bool     `yaml:"reverse,omitempty"`
}

// Constant builds a PropDoc holding v.
func Constant(v float64) PropDoc { return PropDoc{Const: &v} }

// UnmarshalYAML accepts a scalar or a mapping.
func (p *PropDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: property must be a number, range or spring: %w", n.Line, err)
		}
		*p = PropDoc{Const: &v}
		return nil
	}
	type plain PropDoc
	var out plain
	if err := n.Decode(&out); err != nil {
		return err
	}
	*p = PropDoc(out)
	return nil
}

// MarshalYAML writes constants back as bare numbers.
func (p PropDoc) MarshalYAML() (any, error) {
	if p.Const != nil {
		return *p.Const, nil
	}
	type plain PropDoc
	return plain(p), nil
}

// Animation compiles the property for a composition running at fps.
func (p PropDoc) Animation(fps int) (animate.Animation, error) {
	set := 0
	for _, ok := range []bool{p.Const != nil, p.Range != nil, p.Spring != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("property needs exactly one of a number, range or spring")
	}

	switch {
	case p.Const != nil:
		return animate.Constant(*p.Const), nil
	case p.Range != nil:
		return p.Range.build()
	}
	return p.Spring.build(fps)
}

func (r RangeDoc) build() (animate.Range, error) {
	both, err := animate.ParseExtrapolation(r.Extrapolate)
	if err != nil {
		return animate.Range{}, err
	}
	left, right := both, both
	if r.Left != "" {
		if left, err = animate.ParseExtrapolation(r.Left); err != nil {
			return animate.Range{}, err
		}
	}
	if r.Right != "" {
		if right, err = animate.ParseExtrapolation(r.Right); err != nil {
			return animate.Range{}, err
		}
	}
	easing, err := animate.ParseEasing(r.Easing)
	if err != nil {
		return animate.Range{}, err
	}
	opts := []animate.RangeOption{animate.WithLeft(left), animate.WithRight(right)}
	if easing != nil {
		opts = append(opts, animate.WithEasing(easing))
	}
	return animate.NewRange(r.Input, r.Output, opts...)
}

func (s SpringDoc) build(fps int) (animate.Spring, error) {
	cfg := animate.DefaultSpringConfig
	if s.Damping != nil {
		cfg.Damping = *s.Damping
	}
	if s.Stiffness != nil {
		cfg.Stiffness = *s.Stiffness
	}
	if s.Mass != nil {
		cfg.Mass = *s.Mass
	}
	cfg.OvershootClamping = s.OvershootClamping

	opts := []animate.SpringOption{animate.SpringFrom(s.From), animate.SpringDelay(s.Delay), animate.SpringDuration(s.Duration)}
	if s.To != nil {
		opts = append(opts, animate.SpringTo(*s.To))
	}
	if s.Reverse {
		opts = append(opts, animate.SpringReverse())
	}
	return animate.NewSpring(cfg, fps, opts...)
}
