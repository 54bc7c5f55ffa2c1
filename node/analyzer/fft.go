package analyzer

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
)

// FFT is DFT's fast-transform sibling, built on go-dsp's FFTReal.
type FFT struct {
	ctl        *node.Control
	level      int
	overlap    bool
	sampleRate int
}

// NewFFT constructs an FFT analyzer.
func NewFFT(level int, overlap bool) *FFT {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.Frequency)
	return &FFT{
		ctl: node.NewControl(node.SpecAnalyzeFFT, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		level:   level,
		overlap: overlap,
	}
}

func (f *FFT) Control() *node.Control { return f.ctl }
func (f *FFT) IsFinished() bool       { return f.ctl.State == node.Finished }
func (f *FFT) CanProcess() bool       { return true }

func (f *FFT) TryProcess(in *node.CommonInput) error {
	c := f.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	if rate, ok := c.Inputs["in"].SampleRate(); ok {
		f.sampleRate = rate
	}
	view := c.Inputs["in"].Dynamic()

	if view.Frames() >= f.level {
		window := view.Peek(f.level)
		samples := make([]float64, f.level)
		for i, s := range window {
			samples[i] = float64(s)
		}
		spectrum := fft.FFTReal(samples)
		bins := make([]pin.FrequencyBin, f.level)
		for k, v := range spectrum {
			re, im := real(v), imag(v)
			bins[k] = pin.FrequencyBin{
				Frequency: float64(k) * float64(f.sampleRate) / float64(f.level),
				Magnitude: math.Hypot(re, im) / float64(f.level),
				Phase:     math.Atan2(im, re),
			}
		}
		fresh := f.level
		if f.overlap {
			fresh = f.level / 2
		}
		view.Drain(fresh)
		if c.State == node.Stopped {
			c.SetState(node.Playing)
		}
		if err := c.Outputs["out"].Insert(pin.FrequencyPayload{
			Bins: bins, AnalyzedLength: f.level, Overlap: f.overlap, SampleRate: f.sampleRate,
		}); err != nil {
			return err
		}
	}
	if in.AllChildrenFinished() && view.Frames() < f.level {
		c.SetState(node.Finished)
	}
	return nil
}
