package animate

import "math"

// Random is a stable pseudo-random value in [0,1) derived only from seed.
// The same seed gives the same value on every frame and every worker.
func Random(seed float64) float64 {
	x := math.Sin(seed*9999) * 10000
	return x - math.Floor(x)
}

// RandomBetween scales Random into [lo, hi).
func RandomBetween(seed, lo, hi float64) float64 {
	return lo + Random(seed)*(hi-lo)
}

// Clamp01 limits v to [0,1], e.g. for opacity driven by an overshooting
// spring.
func Clamp01(v float64) float64 { return clamp01(v) }

// Seconds converts a frame index to seconds at fps.
func Seconds(frame, fps int) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frame) / float64(fps)
}

// FrameAt converts seconds to the nearest frame at fps.
func FrameAt(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}
