// Package analyzer implements the DFT, FFT and LUFS analysis nodes: each
// accumulates a BUFFER_MONO_DYNAMIC input until at least `level` samples are
// available, then emits one FREQUENCY frame per ready window.
package analyzer

import (
	"math"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
)

// DFT accumulates to `level` samples and emits one FrequencyPayload per
// window via direct O(N^2) summation, kept distinct from FFT per the node
// catalog's listing of analyze-dft and analyze-fft as separate types.
type DFT struct {
	ctl        *node.Control
	level      int
	overlap    bool
	sampleRate int
}

// NewDFT constructs a direct-summation DFT analyzer.
func NewDFT(level int, overlap bool) *DFT {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.Frequency)
	return &DFT{
		ctl: node.NewControl(node.SpecAnalyzeDFT, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		level:   level,
		overlap: overlap,
	}
}

func (d *DFT) Control() *node.Control { return d.ctl }
func (d *DFT) IsFinished() bool       { return d.ctl.State == node.Finished }
func (d *DFT) CanProcess() bool       { return true }

func (d *DFT) TryProcess(in *node.CommonInput) error {
	c := d.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	if rate, ok := c.Inputs["in"].SampleRate(); ok {
		d.sampleRate = rate
	}
	view := c.Inputs["in"].Dynamic()

	if view.Frames() >= d.level {
		window := view.Peek(d.level)
		bins := make([]pin.FrequencyBin, d.level)
		for k := 0; k < d.level; k++ {
			var re, im float64
			for t, s := range window {
				angle := -2 * math.Pi * float64(k) * float64(t) / float64(d.level)
				re += float64(s) * math.Cos(angle)
				im += float64(s) * math.Sin(angle)
			}
			bins[k] = pin.FrequencyBin{
				Frequency: float64(k) * float64(d.sampleRate) / float64(d.level),
				Magnitude: math.Hypot(re, im) / float64(d.level),
				Phase:     math.Atan2(im, re),
			}
		}
		fresh := d.level
		if d.overlap {
			fresh = d.level / 2
		}
		view.Drain(fresh)
		if c.State == node.Stopped {
			c.SetState(node.Playing)
		}
		if err := c.Outputs["out"].Insert(pin.FrequencyPayload{
			Bins: bins, AnalyzedLength: d.level, Overlap: d.overlap, SampleRate: d.sampleRate,
		}); err != nil {
			return err
		}
	}
	if in.AllChildrenFinished() && view.Frames() < d.level {
		c.SetState(node.Finished)
	}
	return nil
}
