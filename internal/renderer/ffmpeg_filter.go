package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/motion2video/internal/animate"
)

// easedSamples is the number of linear pieces an eased segment is split
// into when compiled to an expression.
const easedSamples = 16

// RangeExpr compiles a range into an FFmpeg expression of variable v
// built from nested if(lt(...)) terms. Eased segments are approximated
// by easedSamples linear pieces each.
func RangeExpr(r animate.Range, v string) string {
	in, out := r.Input(), r.Output()
	if len(in) < 2 {
		return "0"
	}
	if r.Eased() {
		in, out = sampleEased(r, in)
	}
	n := len(in)

	var b strings.Builder
	closing := 0
	fmt.Fprintf(&b, "if(lt(%s,%s),%s,", v, num(in[0]), edgeExpr(r.Left(), v, in[0], out[0], in[1], out[1]))
	closing++
	for i := 0; i < n-1; i++ {
		cmp := "lt"
		if i == n-2 {
			cmp = "lte"
		}
		fmt.Fprintf(&b, "if(%s(%s,%s),%s,", cmp, v, num(in[i+1]), lerpExpr(v, in[i], out[i], in[i+1], out[i+1]))
		closing++
	}
	b.WriteString(edgeExpr(r.Right(), v, in[n-1], out[n-1], in[n-2], out[n-2]))
	b.WriteString(strings.Repeat(")", closing))
	return b.String()
}

// sampleEased replaces every eased segment with linear pieces.
func sampleEased(r animate.Range, in []float64) ([]float64, []float64) {
	xs := make([]float64, 0, (len(in)-1)*easedSamples+1)
	for i := 0; i < len(in)-1; i++ {
		step := (in[i+1] - in[i]) / easedSamples
		for k := 0; k < easedSamples; k++ {
			xs = append(xs, in[i]+float64(k)*step)
		}
	}
	xs = append(xs, in[len(in)-1])
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = r.At(x)
	}
	return xs, ys
}

// edgeExpr extends the range past breakpoint bx using the segment to
// the neighbouring breakpoint bn.
func edgeExpr(e animate.Extrapolation, v string, bx, ox, bn, on float64) string {
	switch e {
	case animate.Clamp:
		return num(ox)
	case animate.Identity:
		return v
	}
	return lerpExpr(v, bx, ox, bn, on)
}

func lerpExpr(v string, b0, o0, b1, o1 float64) string {
	if o0 == o1 {
		return num(o0)
	}
	slope := (o1 - o0) / (b1 - b0)
	return fmt.Sprintf("(%s+(%s-%s)*%s)", num(o0), v, num(b0), num(slope))
}

// num formats without exponents; negative numbers are parenthesized so
// they can follow an operator.
func num(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if x < 0 {
		return "(" + s + ")"
	}
	return s
}

// VolumeFilter is an FFmpeg volume filter following an envelope given
// in frames at fps.
func VolumeFilter(envelope animate.Range, fps int) (string, error) {
	in, out := envelope.Input(), envelope.Output()
	if fps <= 0 {
		return "", fmt.Errorf("fps must be positive, got %d", fps)
	}
	for i := range in {
		in[i] /= float64(fps)
	}
	seconds, err := animate.NewRange(in, out, animate.WithLeft(envelope.Left()), animate.WithRight(envelope.Right()))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("volume='%s':eval=frame", RangeExpr(seconds, "t")), nil
}
