package filter

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// IRConv convolves its input against a fixed impulse response, loaded ahead
// of time through the same WAV reader WavMono uses. The impulse response
// itself is supplied at construction (the caller — graph.Builder's factory
// — loads it with wavfile.OpenReader, the same reader WavMono is handed
// already opened).
type IRConv struct {
	ctl *node.Control
	ir  []sample.Uniform

	acc        []sample.Uniform
	nextStartI int
	sampleRate int
}

// NewIRConv constructs an impulse-response convolution filter node.
func NewIRConv(ir []sample.Uniform, sampleRate int) *IRConv {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.BufferMono)
	return &IRConv{
		ctl: node.NewControl(node.SpecFilterIRConv, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		ir:         ir,
		sampleRate: sampleRate,
	}
}

func (f *IRConv) Control() *node.Control { return f.ctl }
func (f *IRConv) IsFinished() bool       { return f.ctl.State == node.Finished }
func (f *IRConv) CanProcess() bool       { return true }

func (f *IRConv) TryProcess(in *node.CommonInput) error {
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

	n := len(f.ir)
	var produced []sample.Uniform
	for f.nextStartI+n <= len(f.acc) {
		var sum float64
		for k, tap := range f.ir {
			sum += float64(tap) * float64(f.acc[f.nextStartI+k])
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

	// drop-when-window-closed: once every predecessor has finished and no
	// more full windows can be formed, this node is done too.
	if in.AllChildrenFinished() && f.nextStartI+n > len(f.acc) {
		c.SetState(node.Finished)
	}
	return nil
}
