package pin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/sample"
)

func TestCompatible(t *testing.T) {
	require.True(t, Compatible(BufferMono, BufferMono|BufferStereo))
	require.False(t, Compatible(BufferMono, BufferStereo))
	require.True(t, Compatible(Start, Start))
}

func TestInsertOnInputPinErrors(t *testing.T) {
	in := NewInput("in", BufferMono, KindMonoDynamic)
	err := in.Insert(MonoPayload{})
	require.Error(t, err)
}

func TestInsertCategoryMismatch(t *testing.T) {
	out := NewOutput("out", BufferMono)
	err := out.Insert(StereoPayload{})
	require.Error(t, err)
}

func TestMonoDynamicRoundTrip(t *testing.T) {
	out := NewOutput("out", BufferMono)
	in := NewInput("in", BufferMono, KindMonoDynamic)
	out.Link(in)
	in.Link(out)

	require.NoError(t, out.Insert(MonoPayload{Samples: []sample.Uniform{1, 2, 3}, SampleRate: 44100}))
	require.True(t, in.UpdateRequested())
	require.NoError(t, in.ProcessInput())
	require.False(t, in.UpdateRequested())

	view := in.Dynamic()
	require.Equal(t, 3, view.Frames())
	rate, set := in.SampleRate()
	require.True(t, set)
	require.Equal(t, 44100, rate)
}

func TestStereoPhantomRoundTrip(t *testing.T) {
	out := NewOutput("out", BufferStereo)
	in := NewInput("in", BufferStereo, KindStereoPhantom)
	out.Link(in)
	in.Link(out)

	left := []sample.Uniform{0.1, 0.2}
	right := []sample.Uniform{-0.1, -0.2}
	require.NoError(t, out.Insert(StereoPayload{Left: left, Right: right, SampleRate: 48000}))
	require.NoError(t, in.ProcessInput())

	view := in.PhantomStereo()
	require.Equal(t, left, view.Left)
	require.Equal(t, right, view.Right)
}

func TestProcessInputRequiresSingleLink(t *testing.T) {
	in := NewInput("in", BufferMono, KindMonoDynamic)
	err := in.ProcessInput()
	require.Error(t, err)
	var ra *RuntimeAnomaly
	require.ErrorAs(t, err, &ra)
}

func TestEmptyContainerIgnoresPayload(t *testing.T) {
	out := NewOutput("out", Dummy)
	in := NewInput("in", Dummy, KindEmpty)
	out.Link(in)
	in.Link(out)
	require.NoError(t, out.Insert(DummyPayload{}))
	require.NoError(t, in.ProcessInput())
}

func TestPolymorphicSinkResolvesAndResets(t *testing.T) {
	out := NewOutput("mono-out", BufferMono)
	stereoOut := NewOutput("stereo-out", BufferStereo)
	in := NewInput("sink", BufferMono|BufferStereo|Text, KindOutputLog)
	out.Link(in)
	in.Link(out)

	require.NoError(t, out.Insert(MonoPayload{Samples: []sample.Uniform{1, 2}}))
	in.linked = []*Pin{out}
	require.NoError(t, in.ProcessInput())
	require.Equal(t, BufferMono, in.ResolvedCategory())

	in.linked = []*Pin{stereoOut}
	require.NoError(t, stereoOut.Insert(StereoPayload{Left: []sample.Uniform{1}, Right: []sample.Uniform{1}}))
	require.NoError(t, in.ProcessInput())
	require.Equal(t, BufferStereo, in.ResolvedCategory())
}
