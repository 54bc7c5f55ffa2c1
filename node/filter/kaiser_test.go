package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBesselI0AtZero(t *testing.T) {
	require.InDelta(t, 1.0, besselI0(0), 1e-9)
}

func TestKaiserWindowEndpointsSymmetric(t *testing.T) {
	w := kaiserWindow(9, 6.76)
	require.Len(t, w, 9)
	require.InDelta(t, w[0], w[len(w)-1], 1e-9)
	// the window peaks at its center.
	mid := w[4]
	for _, v := range w {
		require.LessOrEqual(t, v, mid+1e-9)
	}
}

func TestTapCountRoundsUpToEven(t *testing.T) {
	n := tapCount(1000, 44100)
	require.Equal(t, 0, n%2)
	require.GreaterOrEqual(t, float64(n), 3.1/(1000.0/44100.0))
}

func TestSincAtZeroIsOne(t *testing.T) {
	require.Equal(t, 1.0, sinc(0))
	require.InDelta(t, 0, sinc(1), 1e-9)
}

func TestDesignFIRLowPassDCGainNearUnity(t *testing.T) {
	taps := designFIR(LowPass, 1000, 0, 200, 8000)
	sum := 0.0
	for _, c := range taps {
		sum += c
	}
	require.InDelta(t, 1.0, sum, 0.05)
}

func TestDesignFIRHighPassRejectsDC(t *testing.T) {
	taps := designFIR(HighPass, 1000, 0, 200, 8000)
	sum := 0.0
	for _, c := range taps {
		sum += c
	}
	require.InDelta(t, 0.0, sum, 0.05)
}

func TestDesignFIRSymmetric(t *testing.T) {
	taps := designFIR(LowPass, 500, 0, 100, 8000)
	n := len(taps)
	for i := 0; i < n/2; i++ {
		require.InDelta(t, taps[i], taps[n-1-i], 1e-9)
	}
}
