// Package filter implements the FIR, IIR and impulse-response-convolution
// filter families of node/filter, all sharing the BUFFER_MONO_DYNAMIC input
// / BUFFER_MONO output contract.
package filter

import "math"

// besselI0 evaluates the zeroth-order modified Bessel function of the first
// kind via its power series, used by the Kaiser window.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 50; k++ {
		term *= (halfX / float64(k))
		sum += term * term
		if term*term < 1e-16*sum {
			break
		}
	}
	return sum
}

// kaiserWindow returns the beta-parameterized Kaiser window of length n.
func kaiserWindow(n int, beta float64) []float64 {
	w := make([]float64, n)
	denom := besselI0(beta)
	m := float64(n - 1)
	for i := 0; i < n; i++ {
		r := 2*float64(i)/m - 1
		arg := beta * math.Sqrt(1-r*r)
		w[i] = besselI0(arg) / denom
	}
	return w
}

// Mode is the FIR/IIR filter family.
type Mode uint8

const (
	LowPass Mode = iota
	HighPass
	BandPass
	BandStop
)

// tapCount implements the "ceil(3.1/delta) rounded up to even" rule, where
// delta is the normalized transition-band width (deltaFrequency/sampleRate).
// The even result is the filter order; designFIR builds order+1 taps so the
// response is centred on a whole tap.
func tapCount(deltaFrequency float64, sampleRate int) int {
	delta := deltaFrequency / float64(sampleRate)
	n := int(math.Ceil(3.1 / delta))
	if n%2 != 0 {
		n++
	}
	return n
}

// sinc is the normalized sinc function sin(pi x)/(pi x), with sinc(0)=1.
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// designFIR builds a Kaiser-windowed-sinc FIR tap set for the given mode.
// edge is the cutoff (LPF/HPF) or band center (BPF/BSF) in Hz; bandwidth is
// only consulted for BPF/BSF.
func designFIR(mode Mode, edge, bandwidth float64, deltaFrequency float64, sampleRate int) []float64 {
	n := tapCount(deltaFrequency, sampleRate) + 1
	taps := make([]float64, n)
	win := kaiserWindow(n, 6.76) // beta=6.76: ~70dB stopband attenuation
	m := float64(n-1) / 2
	fc := edge / float64(sampleRate)

	switch mode {
	case LowPass:
		for i := 0; i < n; i++ {
			x := float64(i) - m
			taps[i] = 2 * fc * sinc(2*fc*x) * win[i]
		}
	case HighPass:
		for i := 0; i < n; i++ {
			x := float64(i) - m
			lp := 2 * fc * sinc(2*fc*x)
			delta := 0.0
			if x == 0 {
				delta = 1
			}
			taps[i] = (delta - lp) * win[i]
		}
	case BandPass:
		lo := (edge - bandwidth/2) / float64(sampleRate)
		hi := (edge + bandwidth/2) / float64(sampleRate)
		for i := 0; i < n; i++ {
			x := float64(i) - m
			taps[i] = (2*hi*sinc(2*hi*x) - 2*lo*sinc(2*lo*x)) * win[i]
		}
	case BandStop:
		lo := (edge - bandwidth/2) / float64(sampleRate)
		hi := (edge + bandwidth/2) / float64(sampleRate)
		for i := 0; i < n; i++ {
			x := float64(i) - m
			bp := 2*hi*sinc(2*hi*x) - 2*lo*sinc(2*lo*x)
			delta := 0.0
			if x == 0 {
				delta = 1
			}
			taps[i] = (delta - bp) * win[i]
		}
	}
	return taps
}
