package emitter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

type fakeWavReader struct {
	monoChunks  [][]sample.Uniform
	leftChunks  [][]sample.Uniform
	rightChunks [][]sample.Uniform
	sampleRate  int
	closed      bool
}

func (f *fakeWavReader) ReadMono(n int) ([]sample.Uniform, int, bool, error) {
	if len(f.monoChunks) == 0 {
		return nil, f.sampleRate, true, nil
	}
	chunk := f.monoChunks[0]
	f.monoChunks = f.monoChunks[1:]
	return chunk, f.sampleRate, len(f.monoChunks) == 0, nil
}

func (f *fakeWavReader) ReadStereo(n int) ([]sample.Uniform, []sample.Uniform, int, bool, error) {
	if len(f.leftChunks) == 0 {
		return nil, nil, f.sampleRate, true, nil
	}
	l, r := f.leftChunks[0], f.rightChunks[0]
	f.leftChunks = f.leftChunks[1:]
	f.rightChunks = f.rightChunks[1:]
	return l, r, f.sampleRate, len(f.leftChunks) == 0, nil
}

func (f *fakeWavReader) Close() error {
	f.closed = true
	return nil
}

func TestWavMonoEmitsChunksAndFinishesAtEOF(t *testing.T) {
	r := &fakeWavReader{
		monoChunks: [][]sample.Uniform{{1, 2}, {3, 4}},
		sampleRate: 44100,
	}
	w := NewWavMono(r)

	require.NoError(t, w.TryProcess(&node.CommonInput{RequiredChannelSamples: 2}))
	require.False(t, w.IsFinished())
	out := w.Control().Outputs["out"].Output().(pin.MonoPayload)
	require.Equal(t, []sample.Uniform{1, 2}, out.Samples)

	require.NoError(t, w.TryProcess(&node.CommonInput{RequiredChannelSamples: 2}))
	require.True(t, w.IsFinished())
	require.True(t, r.closed)
}

func TestWavStereoEmitsChunksAndFinishesAtEOF(t *testing.T) {
	r := &fakeWavReader{
		leftChunks:  [][]sample.Uniform{{1}, {2}},
		rightChunks: [][]sample.Uniform{{-1}, {-2}},
		sampleRate:  48000,
	}
	w := NewWavStereo(r)

	require.NoError(t, w.TryProcess(&node.CommonInput{RequiredChannelSamples: 1}))
	require.False(t, w.IsFinished())

	require.NoError(t, w.TryProcess(&node.CommonInput{RequiredChannelSamples: 1}))
	require.True(t, w.IsFinished())
	out := w.Control().Outputs["out"].Output().(pin.StereoPayload)
	require.Equal(t, []sample.Uniform{2}, out.Left)
	require.Equal(t, []sample.Uniform{-2}, out.Right)
}

func TestWavMonoEmptyFileFinishesImmediately(t *testing.T) {
	r := &fakeWavReader{sampleRate: 44100}
	w := NewWavMono(r)
	require.NoError(t, w.TryProcess(&node.CommonInput{RequiredChannelSamples: 4}))
	require.True(t, w.IsFinished())
}
