package mix

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

func TestStereoPairsAndAppliesGain(t *testing.T) {
	s := NewStereo(1.0, 0.5)
	leftOut := pin.NewOutput("l", pin.BufferMono)
	rightOut := pin.NewOutput("r", pin.BufferMono)
	leftOut.Link(s.Control().Inputs["left"])
	s.Control().Inputs["left"].Link(leftOut)
	rightOut.Link(s.Control().Inputs["right"])
	s.Control().Inputs["right"].Link(rightOut)

	require.NoError(t, leftOut.Insert(pin.MonoPayload{Samples: []sample.Uniform{1, 1}, SampleRate: 44100}))
	require.NoError(t, rightOut.Insert(pin.MonoPayload{Samples: []sample.Uniform{2, 2}, SampleRate: 44100}))

	require.NoError(t, s.TryProcess(&node.CommonInput{}))

	out := s.Control().Outputs["out"].Output().(pin.StereoPayload)
	require.Equal(t, []sample.Uniform{1, 1}, out.Left)
	require.Equal(t, []sample.Uniform{1, 1}, out.Right)
	require.Equal(t, 44100, out.SampleRate)
}

func TestSeparatorPadsShorterChannel(t *testing.T) {
	s := NewSeparator()
	in := pin.NewOutput("in", pin.BufferStereo)
	in.Link(s.Control().Inputs["in"])
	s.Control().Inputs["in"].Link(in)

	require.NoError(t, in.Insert(pin.StereoPayload{
		Left:       []sample.Uniform{1, 2, 3},
		Right:      []sample.Uniform{1},
		SampleRate: 48000,
	}))
	require.NoError(t, s.TryProcess(&node.CommonInput{}))

	left := s.Control().Outputs["left"].Output().(pin.MonoPayload)
	right := s.Control().Outputs["right"].Output().(pin.MonoPayload)
	require.Len(t, left.Samples, 3)
	require.Len(t, right.Samples, 3)
	require.Equal(t, sample.Uniform(1), right.Samples[0])
	require.Equal(t, sample.Uniform(0), right.Samples[1])
}

func TestStereoFinishesWhenChildrenFinishedAndNoMoreInput(t *testing.T) {
	s := NewStereo(1, 1)
	require.NoError(t, s.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))
	require.True(t, s.IsFinished())
}
