package adapter

import (
	"math"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// Delay holds a BUFFER_MONO_DYNAMIC input in a ring buffer sized to
// ceil(seconds*sample_rate), emitting zero-filled silence until the ring
// has filled once, then emitting the delayed samples.
type Delay struct {
	ctl *node.Control

	ring       []sample.Uniform
	writeIx    int
	filled     int
	sampleRate int
}

// NewDelay constructs a delay adapter holding seconds worth of audio at
// sampleRate.
func NewDelay(seconds float64, sampleRate int) *Delay {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.BufferMono)
	size := int(math.Ceil(seconds * float64(sampleRate)))
	if size < 1 {
		size = 1
	}
	return &Delay{
		ctl: node.NewControl(node.SpecAdapterDelay, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		ring:       make([]sample.Uniform, size),
		sampleRate: sampleRate,
	}
}

func (d *Delay) Control() *node.Control { return d.ctl }
func (d *Delay) IsFinished() bool       { return d.ctl.State == node.Finished }
func (d *Delay) CanProcess() bool       { return true }

func (d *Delay) TryProcess(in *node.CommonInput) error {
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
	fresh := view.Drain(view.Frames())
	if len(fresh) == 0 {
		if in.AllChildrenFinished() && d.filled >= len(d.ring) {
			c.SetState(node.Finished)
		}
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	out := make([]sample.Uniform, len(fresh))
	size := len(d.ring)
	for i, s := range fresh {
		out[i] = d.ring[d.writeIx]
		d.ring[d.writeIx] = s
		d.writeIx = (d.writeIx + 1) % size
		if d.filled < size {
			d.filled++
		}
	}
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: out, SampleRate: d.sampleRate}); err != nil {
		return err
	}
	if in.AllChildrenFinished() && d.filled >= len(d.ring) {
		c.SetState(node.Finished)
	}
	return nil
}
