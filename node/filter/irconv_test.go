package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

func TestIRConvWithIdentityImpulseResponsePassesThrough(t *testing.T) {
	f := NewIRConv([]sample.Uniform{1}, 44100)
	up := wireMonoDynamicInput(f.Control().Inputs["in"])
	in := []sample.Uniform{0.1, 0.2, -0.3, 0.4}
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: in, SampleRate: 44100}))

	require.NoError(t, f.TryProcess(&node.CommonInput{}))
	out := f.Control().Outputs["out"].Output().(pin.MonoPayload)
	require.Equal(t, in, out.Samples)
}

func TestIRConvAppliesMultiTapImpulseResponse(t *testing.T) {
	// ir selects the sample two steps ahead of the window start.
	f := NewIRConv([]sample.Uniform{0, 0, 1}, 44100)
	up := wireMonoDynamicInput(f.Control().Inputs["in"])
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: []sample.Uniform{1, 2, 3, 4, 5}, SampleRate: 44100}))

	require.NoError(t, f.TryProcess(&node.CommonInput{}))
	out := f.Control().Outputs["out"].Output().(pin.MonoPayload)
	require.Equal(t, []sample.Uniform{3, 4, 5}, out.Samples)
}

func TestIRConvFinishesWhenNoMoreFullWindowAvailable(t *testing.T) {
	f := NewIRConv([]sample.Uniform{1}, 44100)
	up := wireMonoDynamicInput(f.Control().Inputs["in"])
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: []sample.Uniform{1, 2, 3}, SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))
	require.True(t, f.IsFinished())
}
