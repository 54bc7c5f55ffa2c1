package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

func wirePhantomMonoInput(in *pin.Pin) *pin.Pin {
	up := pin.NewOutput("up", pin.BufferMono)
	up.Link(in)
	in.Link(up)
	return up
}

func TestWaveSumAveragesConnectedInputs(t *testing.T) {
	w := NewWaveSum(3)
	in0 := wirePhantomMonoInput(w.Control().Inputs["in0"])
	in1 := wirePhantomMonoInput(w.Control().Inputs["in1"])
	// in2 left unconnected: wave-sum only averages over linked inputs.

	require.NoError(t, in0.Insert(pin.MonoPayload{Samples: []sample.Uniform{1, 1}, SampleRate: 44100}))
	require.NoError(t, in1.Insert(pin.MonoPayload{Samples: []sample.Uniform{3, 3}, SampleRate: 44100}))
	require.NoError(t, w.TryProcess(&node.CommonInput{}))

	out := w.Control().Outputs["out"].Output().(pin.MonoPayload)
	require.Equal(t, []sample.Uniform{2, 2}, out.Samples)
}

func TestWaveSumRejectsMismatchedSampleRates(t *testing.T) {
	// Strict mode (the debug-build default) turns this runtime anomaly into
	// a panic rather than a returned error; see xerr.Handle.
	w := NewWaveSum(2)
	in0 := wirePhantomMonoInput(w.Control().Inputs["in0"])
	in1 := wirePhantomMonoInput(w.Control().Inputs["in1"])

	require.NoError(t, in0.Insert(pin.MonoPayload{Samples: []sample.Uniform{1}, SampleRate: 44100}))
	require.NoError(t, in1.Insert(pin.MonoPayload{Samples: []sample.Uniform{1}, SampleRate: 48000}))
	require.Panics(t, func() {
		_ = w.TryProcess(&node.CommonInput{})
	})
}

func TestWaveSumClampsInputCountToRange(t *testing.T) {
	w := NewWaveSum(0)
	require.Len(t, w.Control().Inputs, 1)

	w = NewWaveSum(maxWaveSumInputs + 5)
	require.Len(t, w.Control().Inputs, maxWaveSumInputs)
}

func TestWaveSumFinishesWhenChildrenFinishedAndNoInput(t *testing.T) {
	w := NewWaveSum(2)
	require.NoError(t, w.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))
	require.True(t, w.IsFinished())
}
