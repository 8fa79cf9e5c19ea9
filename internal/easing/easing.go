// Package easing provides the interpolation curves used by the settle tween.
package easing

// Curve maps normalized progress t in [0,1] to eased progress in [0,1].
// Inputs outside the range are clamped by the animator before evaluation.
type Curve func(t float64) float64

// Linear is constant-rate interpolation.
func Linear(t float64) float64 { return t }

// OutQuad decelerates toward the end of the animation. This is the curve
// the pitch settle uses: fast initial correction, gentle landing.
func OutQuad(t float64) float64 { return t * (2 - t) }

// InOutQuad accelerates through the first half and decelerates through the
// second.
func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// OutCubic decelerates more sharply than OutQuad.
func OutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

// Clamp01 clamps t to [0,1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
