// Package mix implements the mix-stereo and mix-separator node types: pairing
// two mono phantom streams into one stereo stream, and the reverse split.
package mix

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// Stereo pairs a left and right BUFFER_MONO_PHANTOM input into one
// BUFFER_STEREO output, applying a configurable per-channel gain.
type Stereo struct {
	ctl              *node.Control
	leftGain, rightGain float64
	sampleRate       int
}

// NewStereo constructs a stereo-pairing mix node.
func NewStereo(leftGain, rightGain float64) *Stereo {
	left := pin.NewInput("left", pin.BufferMono, pin.KindMonoPhantom)
	right := pin.NewInput("right", pin.BufferMono, pin.KindMonoPhantom)
	out := pin.NewOutput("out", pin.BufferStereo)
	return &Stereo{
		ctl: node.NewControl(node.SpecMixStereo, node.Normal,
			map[string]*pin.Pin{"left": left, "right": right}, map[string]*pin.Pin{"out": out}),
		leftGain:  leftGain,
		rightGain: rightGain,
	}
}

func (s *Stereo) Control() *node.Control { return s.ctl }
func (s *Stereo) IsFinished() bool       { return s.ctl.State == node.Finished }
func (s *Stereo) CanProcess() bool       { return true }

func (s *Stereo) TryProcess(in *node.CommonInput) error {
	c := s.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	left := c.Inputs["left"].PhantomMono()
	right := c.Inputs["right"].PhantomMono()
	if rate, ok := c.Inputs["left"].SampleRate(); ok {
		s.sampleRate = rate
	}
	n := longer(len(left), len(right))
	if n == 0 {
		if in.AllChildrenFinished() {
			c.SetState(node.Finished)
		}
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	outL := make([]sample.Uniform, n)
	outR := make([]sample.Uniform, n)
	for i := 0; i < n; i++ {
		if i < len(left) {
			outL[i] = left[i] * sample.Uniform(s.leftGain)
		}
		if i < len(right) {
			outR[i] = right[i] * sample.Uniform(s.rightGain)
		}
	}
	if err := c.Outputs["out"].Insert(pin.StereoPayload{Left: outL, Right: outR, SampleRate: s.sampleRate}); err != nil {
		return err
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}

func longer(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Separator splits a BUFFER_STEREO_PHANTOM input into two mono outputs,
// zero-padding the shorter channel to the longer's length when they differ
// (spec.md's stated resolution: "pad shorter to longer with silence").
type Separator struct {
	ctl        *node.Control
	sampleRate int
}

// NewSeparator constructs a stereo-to-mono separator node.
func NewSeparator() *Separator {
	in := pin.NewInput("in", pin.BufferStereo, pin.KindStereoPhantom)
	left := pin.NewOutput("left", pin.BufferMono)
	right := pin.NewOutput("right", pin.BufferMono)
	return &Separator{
		ctl: node.NewControl(node.SpecMixSeparator, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"left": left, "right": right}),
	}
}

func (s *Separator) Control() *node.Control { return s.ctl }
func (s *Separator) IsFinished() bool       { return s.ctl.State == node.Finished }
func (s *Separator) CanProcess() bool       { return true }

func (s *Separator) TryProcess(in *node.CommonInput) error {
	c := s.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	stereo := c.Inputs["in"].PhantomStereo()
	if rate, ok := c.Inputs["in"].SampleRate(); ok {
		s.sampleRate = rate
	}
	n := longer(len(stereo.Left), len(stereo.Right))
	if n == 0 {
		if in.AllChildrenFinished() {
			c.SetState(node.Finished)
		}
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	outL := make([]sample.Uniform, n)
	outR := make([]sample.Uniform, n)
	copy(outL, stereo.Left)
	copy(outR, stereo.Right)
	if err := c.Outputs["left"].Insert(pin.MonoPayload{Samples: outL, SampleRate: s.sampleRate}); err != nil {
		return err
	}
	if err := c.Outputs["right"].Insert(pin.MonoPayload{Samples: outR, SampleRate: s.sampleRate}); err != nil {
		return err
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
