package filter

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// fifoHighWater, cursorDrainAt and drainMargin implement the "buffer_len >= 4096 and
// next_start_i >= 2048, drain leaving a 96-sample margin" rule verbatim.
const (
	fifoHighWater = 4096
	cursorDrainAt = 2048
	drainMargin   = 96
)

// FIR applies a Kaiser-windowed-sinc FIR filter in direct convolution form
// over an accumulated FIFO, with the cursor/drain bookkeeping spec.md's
// buffering contract demands.
type FIR struct {
	ctl  *node.Control
	taps []float64

	acc      []sample.Uniform
	nextStartI int
	sampleRate int
}

// NewFIR constructs a FIR filter node. edge/bandwidth are in Hz; bandwidth
// is only meaningful for BandPass/BandStop modes.
func NewFIR(mode Mode, edge, bandwidth, deltaFrequency float64, sampleRate int) *FIR {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.BufferMono)
	return &FIR{
		ctl: node.NewControl(node.SpecFilterFIR, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		taps:       designFIR(mode, edge, bandwidth, deltaFrequency, sampleRate),
		sampleRate: sampleRate,
	}
}

func (f *FIR) Control() *node.Control { return f.ctl }
func (f *FIR) IsFinished() bool       { return f.ctl.State == node.Finished }
func (f *FIR) CanProcess() bool       { return true }

func (f *FIR) TryProcess(in *node.CommonInput) error {
	c := f.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	view := c.Inputs["in"].Dynamic()
	f.acc = append(f.acc, view.Drain(view.Frames())...)
	if rate, ok := c.Inputs["in"].SampleRate(); ok {
		f.sampleRate = rate
	}

	n := len(f.taps)
	produced := make([]sample.Uniform, 0)
	for f.nextStartI+n <= len(f.acc) {
		var sum float64
		for k, tap := range f.taps {
			sum += tap * float64(f.acc[f.nextStartI+k])
		}
		produced = append(produced, sample.Uniform(sum))
		f.nextStartI++
	}

	if c.State == node.Stopped && len(produced) > 0 {
		c.SetState(node.Playing)
	}
	if len(produced) > 0 {
		if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: produced, SampleRate: f.sampleRate}); err != nil {
			return err
		}
	}

	if len(f.acc) >= fifoHighWater && f.nextStartI >= cursorDrainAt {
		drop := f.nextStartI - drainMargin
		if drop > 0 {
			f.acc = append(f.acc[:0], f.acc[drop:]...)
			f.nextStartI -= drop
		}
	}

	if in.AllChildrenFinished() && f.nextStartI+n > len(f.acc) {
		c.SetState(node.Finished)
	}
	return nil
}
