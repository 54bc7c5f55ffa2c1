package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

func sineSamples(n int, freq float64, sampleRate int) []sample.Uniform {
	out := make([]sample.Uniform, n)
	for i := range out {
		out[i] = sample.Uniform(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}

func TestIIREmitsOneHopPerFullWindow(t *testing.T) {
	f := NewIIRLowPass(2000, 0.707, 44100)
	up := wireMonoDynamicInput(f.Control().Inputs["in"])
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: sineSamples(iirWindow, 200, 44100), SampleRate: 44100}))

	require.NoError(t, f.TryProcess(&node.CommonInput{}))
	out := f.Control().Outputs["out"].Output().(pin.MonoPayload)
	require.Len(t, out.Samples, iirHop)
	for _, s := range out.Samples {
		require.False(t, math.IsNaN(float64(s)))
	}
}

func TestIIRProducesASecondHopOnceEnoughNewDataArrives(t *testing.T) {
	f := NewIIRLowPass(2000, 0.707, 44100)
	in := f.Control().Inputs["in"]
	up := wireMonoDynamicInput(in)
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: sineSamples(iirWindow, 200, 44100), SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{}))
	require.Equal(t, iirHop, f.consumed)

	require.NoError(t, up.Insert(pin.MonoPayload{Samples: sineSamples(iirHop, 200, 44100), SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{}))
	out := f.Control().Outputs["out"].Output().(pin.MonoPayload)
	require.Len(t, out.Samples, iirHop)
	require.Equal(t, 2*iirHop, f.consumed)
}

func TestIIRFinishesWhenNoMoreFullWindowAvailable(t *testing.T) {
	f := NewIIRLowPass(2000, 0.707, 44100)
	up := wireMonoDynamicInput(f.Control().Inputs["in"])
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: sineSamples(iirWindow, 200, 44100), SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))
	require.True(t, f.IsFinished())
}
