package effects

import (
	"math"

	"github.com/ivlev/motion2video/internal/animate"
)

// Dot is one particle at a given frame.
type Dot struct {
	X, Y    float64
	Radius  float64
	Color   animate.RGBA
	Opacity float64
}

type particle struct {
	x, y    float64
	size    float64
	speed   float64
	color   animate.RGBA
	opacity float64
}

// ParticleField is a set of drifting, twinkling particles. Placement is
// seeded by particle index so every frame sees the same field.
type ParticleField struct {
	particles []particle
	height    float64
	fadeIn    animate.Range
}

// NewParticleField spreads count particles over a width x height area.
// Every third particle takes the primary colour.
func NewParticleField(count int, width, height float64, primary, secondary animate.RGBA) ParticleField {
	ps := make([]particle, count)
	for i := range ps {
		fi := float64(i)
		c := secondary
		if i%3 == 0 {
			c = primary
		}
		ps[i] = particle{
			x:       animate.RandomBetween(fi*1.1, 0, width),
			y:       animate.RandomBetween(fi*2.2, 0, height),
			size:    animate.RandomBetween(fi*3.3, 1, 4),
			speed:   animate.RandomBetween(fi*4.4, 0.3, 1),
			color:   c,
			opacity: animate.RandomBetween(fi*5.5, 0.3, 0.8),
		}
	}
	return ParticleField{
		particles: ps,
		height:    height,
		fadeIn:    animate.MustRange([]float64{0, 30}, []float64{0, 1}, animate.WithRight(animate.Clamp)),
	}
}

// Len is the number of particles.
func (f ParticleField) Len() int { return len(f.particles) }

// At returns every particle at frame. Particles drift upwards and wrap
// around the bottom edge.
func (f ParticleField) At(frame int) []Dot {
	fade := f.fadeIn.AtFrame(frame)
	fr := float64(frame)
	out := make([]Dot, len(f.particles))
	for i, p := range f.particles {
		y := p.y
		if f.height > 0 {
			y = math.Mod(p.y-math.Mod(fr*p.speed, f.height)+f.height, f.height)
		}
		twinkle := 0.5 + math.Sin(fr*0.1+float64(i)*0.5)*0.5
		out[i] = Dot{
			X:       p.x,
			Y:       y,
			Radius:  p.size,
			Color:   p.color,
			Opacity: p.opacity * twinkle * fade,
		}
	}
	return out
}

// GlowPulse is the slow breathing factor of the central glow.
func GlowPulse(frame int) float64 {
	return 0.7 + math.Sin(float64(frame)*0.03)*0.3
}
