// Package special implements the two pseudo-node types that exist purely
// to drive and debug the graph: the canonical _start_pin root and the
// _dummy passthrough used by graph-validation tests.
package special

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
)

// StartPin is the canonical root. It has no inputs and a single Start
// output that fires update_requested on its sinks once per tick. It is
// never Finished: the scheduler's termination predicate only examines
// terminal (no-next) nodes, and _start_pin always has at least one
// successor by construction (validation step 5 requires it be referenced).
type StartPin struct {
	ctl *node.Control
}

// New creates a _start_pin processor.
func New() *StartPin {
	out := pin.NewOutput("out", pin.Start)
	outputs := map[string]*pin.Pin{"out": out}
	return &StartPin{ctl: node.NewControl(node.SpecStartPin, node.Normal, nil, outputs)}
}

func (s *StartPin) Control() *node.Control { return s.ctl }
func (s *StartPin) IsFinished() bool       { return false }
func (s *StartPin) CanProcess() bool       { return true }

func (s *StartPin) TryProcess(in *node.CommonInput) error {
	c := s.ctl
	c.ElapsedTime = in.ElapsedTime
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	return c.Outputs["out"].Insert(pin.StartPayload{})
}

// Dummy is a no-op passthrough node used as a graph-author debugging aid
// and in validation tests: it accepts only the Start category on its input
// (KindEmpty containers only ever expect a StartPayload) so it can be wired
// directly to _start_pin, and emits a Dummy-category output that carries no
// data of its own.
type Dummy struct {
	ctl *node.Control
}

// NewDummy creates a _dummy processor.
func NewDummy() *Dummy {
	in := pin.NewInput("in", pin.Start, pin.KindEmpty)
	out := pin.NewOutput("out", pin.Dummy)
	inputs := map[string]*pin.Pin{"in": in}
	outputs := map[string]*pin.Pin{"out": out}
	return &Dummy{ctl: node.NewControl(node.SpecDummy, node.Normal, inputs, outputs)}
}

func (d *Dummy) Control() *node.Control { return d.ctl }
func (d *Dummy) IsFinished() bool       { return d.ctl.State == node.Finished }
func (d *Dummy) CanProcess() bool       { return true }

func (d *Dummy) TryProcess(in *node.CommonInput) error {
	c := d.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	if err := c.Outputs["out"].Insert(pin.DummyPayload{}); err != nil {
		return err
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
