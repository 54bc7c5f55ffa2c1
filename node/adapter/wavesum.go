package adapter

import (
	"fmt"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
	"zikichombo.org/noisegraph/xerr"
)

// maxWaveSumInputs bounds the number of phantom mono inputs WaveSum accepts.
const maxWaveSumInputs = 10

// WaveSum arithmetic-means up to 10 BUFFER_MONO_PHANTOM inputs, enforcing
// that every connected input reports the same sample rate. Also the
// implementation backing mix.MonoSum, per spec.md's "Mono-sum adapter"
// heading being the same node under a different catalog entry.
type WaveSum struct {
	ctl        *node.Control
	inputNames []string
	sampleRate int
}

// NewWaveSum constructs a WaveSum adapter with n phantom mono inputs named
// in0..in{n-1}. n must be in [1, 10].
func NewWaveSum(n int) *WaveSum {
	if n < 1 {
		n = 1
	}
	if n > maxWaveSumInputs {
		n = maxWaveSumInputs
	}
	inputs := make(map[string]*pin.Pin, n)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("in%d", i)
		inputs[name] = pin.NewInput(name, pin.BufferMono, pin.KindMonoPhantom)
		names[i] = name
	}
	out := pin.NewOutput("out", pin.BufferMono)
	return &WaveSum{
		ctl:        node.NewControl(node.SpecAdapterWaveSum, node.Normal, inputs, map[string]*pin.Pin{"out": out}),
		inputNames: names,
	}
}

func (w *WaveSum) Control() *node.Control { return w.ctl }
func (w *WaveSum) IsFinished() bool       { return w.ctl.State == node.Finished }
func (w *WaveSum) CanProcess() bool       { return true }

func (w *WaveSum) TryProcess(in *node.CommonInput) error {
	c := w.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}

	var views [][]sample.Uniform
	length := -1
	for _, name := range w.inputNames {
		p := c.Inputs[name]
		if len(p.Linked()) == 0 {
			continue
		}
		samples := p.PhantomMono()
		if rate, ok := p.SampleRate(); ok {
			if w.sampleRate != 0 && rate != w.sampleRate {
				return xerr.Handle(xerr.NewRuntimeAnomaly(string(c.Specifier), "wave-sum input %q sample rate %d != %d", name, rate, w.sampleRate))
			}
			w.sampleRate = rate
		}
		views = append(views, samples)
		if length == -1 || len(samples) < length {
			length = len(samples)
		}
	}
	if length <= 0 || len(views) == 0 {
		if in.AllChildrenFinished() {
			c.SetState(node.Finished)
		}
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	out := make([]sample.Uniform, length)
	for i := 0; i < length; i++ {
		var sum float64
		for _, v := range views {
			sum += float64(v[i])
		}
		out[i] = sample.Uniform(sum / float64(len(views)))
	}
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: out, SampleRate: w.sampleRate}); err != nil {
		return err
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
