package emitter

import (
	"io"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// wavReader is the capability emitter needs from package wavfile, declared
// here (rather than importing wavfile directly) for the same reason
// node/services.go declares node.FileService: one less import-cycle risk
// between the node tree and its external collaborators.
type wavReader interface {
	ReadMono(n int) (samples []sample.Uniform, sampleRate int, eof bool, err error)
	ReadStereo(n int) (left, right []sample.Uniform, sampleRate int, eof bool, err error)
	Close() error
}

// WavMono emits a mono WAV file's contents, one RequiredChannelSamples block
// per tick, until EOF.
type WavMono struct {
	ctl *node.Control
	r   wavReader
}

// NewWavMono wraps an already-opened wavReader (package wavfile's
// Reader satisfies this) as an emitter.
func NewWavMono(r wavReader) *WavMono {
	out := pin.NewOutput("out", pin.BufferMono)
	return &WavMono{
		ctl: node.NewControl(node.SpecEmitterWavMono, node.Normal, nil, map[string]*pin.Pin{"out": out}),
		r:   r,
	}
}

func (w *WavMono) Control() *node.Control { return w.ctl }
func (w *WavMono) IsFinished() bool       { return w.ctl.State == node.Finished }
func (w *WavMono) CanProcess() bool       { return true }

func (w *WavMono) TryProcess(in *node.CommonInput) error {
	c := w.ctl
	c.ElapsedTime = in.ElapsedTime
	if c.State == node.Finished {
		return nil
	}
	samples, rate, eof, err := w.r.ReadMono(in.RequiredChannelSamples)
	if err != nil && err != io.EOF {
		return err
	}
	if c.State == node.Stopped && len(samples) > 0 {
		c.SetState(node.Playing)
	}
	if len(samples) > 0 {
		if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: samples, SampleRate: rate}); err != nil {
			return err
		}
	}
	if eof {
		w.r.Close()
		c.SetState(node.Finished)
	}
	return nil
}

// WavStereo emits a stereo WAV file's contents, one block per tick.
type WavStereo struct {
	ctl *node.Control
	r   wavReader
}

// NewWavStereo wraps an already-opened stereo wavReader as an emitter.
func NewWavStereo(r wavReader) *WavStereo {
	out := pin.NewOutput("out", pin.BufferStereo)
	return &WavStereo{
		ctl: node.NewControl(node.SpecEmitterWavStereo, node.Normal, nil, map[string]*pin.Pin{"out": out}),
		r:   r,
	}
}

func (w *WavStereo) Control() *node.Control { return w.ctl }
func (w *WavStereo) IsFinished() bool       { return w.ctl.State == node.Finished }
func (w *WavStereo) CanProcess() bool       { return true }

func (w *WavStereo) TryProcess(in *node.CommonInput) error {
	c := w.ctl
	c.ElapsedTime = in.ElapsedTime
	if c.State == node.Finished {
		return nil
	}
	left, right, rate, eof, err := w.r.ReadStereo(in.RequiredChannelSamples)
	if err != nil && err != io.EOF {
		return err
	}
	if c.State == node.Stopped && len(left) > 0 {
		c.SetState(node.Playing)
	}
	if len(left) > 0 {
		if err := c.Outputs["out"].Insert(pin.StereoPayload{Left: left, Right: right, SampleRate: rate}); err != nil {
			return err
		}
	}
	if eof {
		w.r.Close()
		c.SetState(node.Finished)
	}
	return nil
}
