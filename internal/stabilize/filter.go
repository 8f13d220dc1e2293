// Package stabilize provides the temporal stabilization primitives that turn
// noisy per-frame measurements into stable discrete signals: an adaptive
// low-pass filter, a categorical hysteresis classifier, and a hysteretic
// zone mapper with K-frame confirmation.
package stabilize

import "math"

// Default One-Euro parameters, tuned for a ~30 FPS hand landmark stream.
const (
	DefaultFrequency = 30.0
	DefaultMinCutoff = 1.0
	DefaultBeta      = 0.025
	DefaultDCutoff   = 1.4
)

// OneEuro is an adaptive one-dimensional low-pass filter. The effective
// cutoff frequency grows with the estimated signal derivative, so fast
// motion is tracked with low lag while jitter on a nearly static signal
// is suppressed.
//
// The first call to Filter returns its input unmodified and seeds the
// internal state. OneEuro is not safe for concurrent use.
type OneEuro struct {
	freq      float64
	minCutoff float64
	beta      float64
	dCutoff   float64

	xPrev  float64
	dxPrev float64
	primed bool
}

// NewOneEuro creates a filter with the given nominal sampling frequency,
// minimum cutoff, derivative gain and derivative cutoff. Non-positive
// parameters fall back to the package defaults.
func NewOneEuro(freq, minCutoff, beta, dCutoff float64) *OneEuro {
	if freq <= 0 {
		freq = DefaultFrequency
	}
	if minCutoff <= 0 {
		minCutoff = DefaultMinCutoff
	}
	if beta <= 0 {
		beta = DefaultBeta
	}
	if dCutoff <= 0 {
		dCutoff = DefaultDCutoff
	}
	return &OneEuro{freq: freq, minCutoff: minCutoff, beta: beta, dCutoff: dCutoff}
}

// DefaultOneEuro creates a filter with the package default parameters.
func DefaultOneEuro() *OneEuro {
	return NewOneEuro(DefaultFrequency, DefaultMinCutoff, DefaultBeta, DefaultDCutoff)
}

// alpha converts a cutoff frequency into an exponential smoothing factor
// at the filter's nominal sampling rate.
func (f *OneEuro) alpha(cutoff float64) float64 {
	tau := 1.0 / (2.0 * math.Pi * cutoff)
	te := 1.0 / f.freq
	return 1.0 / (1.0 + tau/te)
}

// Filter feeds one sample and returns the filtered value.
func (f *OneEuro) Filter(x float64) float64 {
	if !f.primed {
		f.xPrev = x
		f.dxPrev = 0
		f.primed = true
		return x
	}

	dx := (x - f.xPrev) * f.freq
	aD := f.alpha(f.dCutoff)
	dxHat := aD*dx + (1-aD)*f.dxPrev

	cutoff := f.minCutoff + f.beta*math.Abs(dxHat)
	a := f.alpha(cutoff)
	xHat := a*x + (1-a)*f.xPrev

	f.xPrev = xHat
	f.dxPrev = dxHat
	return xHat
}

// Reset discards the filter state. The next Filter call passes its input
// through unchanged, as on a freshly constructed filter.
func (f *OneEuro) Reset() {
	f.xPrev = 0
	f.dxPrev = 0
	f.primed = false
}
