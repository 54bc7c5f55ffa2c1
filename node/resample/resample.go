// Package resample implements the "resample" adapter node: a thin wrapper
// exposing (from_fs, to_fs, high_quality) as constructor parameters over the
// shared resample.Resampler, reached through the node.ResampleService
// capability handed to every node whose Specifier.SystemNeeds() includes
// node.ResampleService.
package resample

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// Adapter resamples its BUFFER_MONO_DYNAMIC input from fromFs to toFs.
type Adapter struct {
	ctl *node.Control
	svc node.ResampleService

	fromFs, toFs int
	highQuality  bool
	phase        float64
	pending      []sample.Uniform // undigested tail carried from the previous tick
}

// New constructs a resample adapter node bound to svc (the graph-wide
// resample service resolved by graph.Builder from SystemCategory.ResampleService).
func New(svc node.ResampleService, fromFs, toFs int, highQuality bool) *Adapter {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.BufferMono)
	return &Adapter{
		ctl: node.NewControl(node.SpecResample, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		svc:         svc,
		fromFs:      fromFs,
		toFs:        toFs,
		highQuality: highQuality,
	}
}

func (a *Adapter) Control() *node.Control { return a.ctl }
func (a *Adapter) IsFinished() bool       { return a.ctl.State == node.Finished }
func (a *Adapter) CanProcess() bool       { return true }

func (a *Adapter) TryProcess(in *node.CommonInput) error {
	c := a.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	view := c.Inputs["in"].Dynamic()
	a.pending = append(a.pending, view.Drain(view.Frames())...)
	var out []sample.Uniform
	if len(a.pending) > 0 {
		var consumed int
		out, a.phase, consumed = a.svc.Resample(a.fromFs, a.toFs, a.highQuality, a.pending, a.phase)
		if consumed > 0 {
			a.pending = append([]sample.Uniform(nil), a.pending[consumed:]...)
		}
	}
	if c.State == node.Stopped && len(out) > 0 {
		c.SetState(node.Playing)
	}
	if len(out) > 0 {
		if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: out, SampleRate: a.toFs}); err != nil {
			return err
		}
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
