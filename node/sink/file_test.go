package sink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

type fakeWavWriter struct {
	monoSamples  []sample.Uniform
	monoRate     int
	left, right  []sample.Uniform
	stereoRate   int
	wroteStereo  bool
	closeCalls   int
}

func (f *fakeWavWriter) WriteMono(samples []sample.Uniform, sampleRate int) error {
	f.monoSamples = samples
	f.monoRate = sampleRate
	return nil
}

func (f *fakeWavWriter) WriteStereo(left, right []sample.Uniform, sampleRate int) error {
	f.left = left
	f.right = right
	f.stereoRate = sampleRate
	f.wroteStereo = true
	return nil
}

func (f *fakeWavWriter) Close() error {
	f.closeCalls++
	return nil
}

type fakeResampleService struct{}

func (fakeResampleService) Resample(fromFs, toFs int, highQuality bool, in []sample.Uniform, startPhase float64) ([]sample.Uniform, float64, int) {
	out := make([]sample.Uniform, len(in))
	copy(out, in)
	return out, startPhase, len(in)
}

func wireSinkInput(in *pin.Pin, category pin.Category) *pin.Pin {
	up := pin.NewOutput("up", category)
	up.Link(in)
	in.Link(up)
	return up
}

func TestFileAccumulatesMonoAndFlushesOnFinish(t *testing.T) {
	w := &fakeWavWriter{}
	f := NewFile(w, nil, 0)
	up := wireSinkInput(f.Control().Inputs["in"], pin.BufferMono)
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: []sample.Uniform{1, 2}, SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{}))
	require.Equal(t, node.Playing, f.Control().State)

	require.NoError(t, up.Insert(pin.MonoPayload{Samples: []sample.Uniform{3}, SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))

	require.True(t, f.IsFinished())
	require.Equal(t, []sample.Uniform{1, 2, 3}, w.monoSamples)
	require.Equal(t, 44100, w.monoRate)
	require.False(t, w.wroteStereo)
}

func TestFileAccumulatesStereoAndFlushesOnFinish(t *testing.T) {
	w := &fakeWavWriter{}
	f := NewFile(w, nil, 0)
	up := wireSinkInput(f.Control().Inputs["in"], pin.BufferStereo)
	require.NoError(t, up.Insert(pin.StereoPayload{Left: []sample.Uniform{1}, Right: []sample.Uniform{-1}, SampleRate: 48000}))
	require.NoError(t, f.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))

	require.True(t, f.IsFinished())
	require.True(t, w.wroteStereo)
	require.Equal(t, []sample.Uniform{1}, w.left)
	require.Equal(t, []sample.Uniform{-1}, w.right)
	require.Equal(t, 48000, w.stereoRate)
}

func TestFileResamplesToOutputRateOnFlush(t *testing.T) {
	w := &fakeWavWriter{}
	f := NewFile(w, fakeResampleService{}, 48000)
	up := wireSinkInput(f.Control().Inputs["in"], pin.BufferMono)
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: []sample.Uniform{1, 2}, SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))

	require.Equal(t, 48000, w.monoRate)
	require.Equal(t, []sample.Uniform{1, 2}, w.monoSamples)
}

func TestFileFinalizesOnlyOnce(t *testing.T) {
	w := &fakeWavWriter{}
	f := NewFile(w, nil, 0)
	up := wireSinkInput(f.Control().Inputs["in"], pin.BufferMono)
	require.NoError(t, up.Insert(pin.MonoPayload{Samples: []sample.Uniform{1}, SampleRate: 44100}))
	require.NoError(t, f.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))
	require.NoError(t, f.TryProcess(&node.CommonInput{ChildrenStates: []bool{true}}))
	require.Equal(t, []sample.Uniform{1}, w.monoSamples)
}
