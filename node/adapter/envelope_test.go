package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

func TestEnvelopeStageValueAtInterpolatesLinearly(t *testing.T) {
	s := envelopeStage{samples: 10, from: 0, to: 1, exponent: 1}
	require.InDelta(t, 0.5, s.valueAt(5), 1e-9)
	require.InDelta(t, 0, s.valueAt(0), 1e-9)
}

func TestEnvelopeADShapesInputAndFinishes(t *testing.T) {
	e := NewEnvelopeAD(0.5, 1, 0.5, 1, 2) // 1 sample attack, 1 sample decay at sampleRate=2
	upstream := pin.NewOutput("up", pin.BufferMono)
	in := e.Control().Inputs["in"]
	upstream.Link(in)
	in.Link(upstream)

	ones := make([]sample.Uniform, 2)
	for i := range ones {
		ones[i] = 1
	}
	require.NoError(t, upstream.Insert(pin.MonoPayload{Samples: ones, SampleRate: 2}))
	require.NoError(t, e.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))

	out := e.Control().Outputs["out"].Output().(pin.MonoPayload)
	require.Len(t, out.Samples, 2)
	require.True(t, e.IsFinished())
}
