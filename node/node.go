// Package node implements the per-node control block and lifecycle contract
// (C3): every processor in the engine embeds a Control and implements
// Processor, whose TryProcess method drives input consumption, one-shot
// initialization, output production, and the Stopped->Playing->Finished
// state machine.
package node

import (
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
	"zikichombo.org/noisegraph/xerr"
)

// State is a node's lifecycle state. Transitions are strictly monotonic:
// Stopped -> Playing -> Finished.
type State uint8

const (
	Stopped State = iota
	Playing
	Finished
)

// TickMode is the timing regime a graph runs under.
type TickMode uint8

const (
	Offline TickMode = iota
	Realtime
)

// ProcessCategory is the process-start-group category bit a node belongs
// to. Groups are processed in ascending bit order within a tick.
type ProcessCategory uint8

const (
	Normal ProcessCategory = 1 << iota
	BusMasterOutput
)

// SystemCategory is the bitset of external services a node type requires.
type SystemCategory uint8

const (
	SystemNone SystemCategory = 0
)

const (
	AudioDevice SystemCategory = 1 << iota
	FileIO
	ResampleService
)

// Specifier is a closed enumeration of the node type catalog (spec.md §6).
type Specifier string

// Control is the per-node control block shared by every Processor
// implementation (the Go analogue of ProcessControlItem).
type Control struct {
	Specifier   Specifier
	State       State
	ElapsedTime float64
	Inputs      map[string]*pin.Pin
	Outputs     map[string]*pin.Pin
	Timer       sample.SampleTimer
	Category    ProcessCategory
}

// NewControl creates a Control in the Stopped state with the given pin sets.
func NewControl(spec Specifier, category ProcessCategory, inputs, outputs map[string]*pin.Pin) *Control {
	return &Control{
		Specifier: spec,
		State:     Stopped,
		Inputs:    inputs,
		Outputs:   outputs,
		Category:  category,
	}
}

// IsState reports whether the control block is in the given state.
func (c *Control) IsState(s State) bool { return c.State == s }

// SetState transitions the control block. Transitions are expected to be
// monotonic; callers (node implementations) are responsible for never
// regressing state.
func (c *Control) SetState(s State) { c.State = s }

// AllInputsReady reports whether every connected input pin has
// UpdateRequested set (the default readiness predicate of §4.1).
func (c *Control) AllInputsReady() bool {
	if len(c.Inputs) == 0 {
		return true
	}
	for _, p := range c.Inputs {
		if len(p.Linked()) == 0 {
			continue
		}
		if !p.UpdateRequested() {
			return false
		}
	}
	return true
}

// ProcessInputPins drives ProcessInput on every input pin whose
// UpdateRequested is set, then clears the flags. A pin.RuntimeAnomaly
// surfacing from the container model is re-raised as an xerr.RuntimeAnomaly
// tagged with this node's specifier and routed through xerr.Handle, so a
// graph-author bug at the pin layer is subject to the same Strict policy as
// one raised directly by a node implementation. Pins that did not receive a
// fresh publish this tick have their phantom view cleared, so a node reading
// through PhantomMono/PhantomStereo/PhantomFrequency sees "nothing arrived"
// rather than last tick's frame replayed indefinitely.
func (c *Control) ProcessInputPins() error {
	for _, p := range c.Inputs {
		if p.UpdateRequested() {
			if err := p.ProcessInput(); err != nil {
				if ra, ok := err.(*pin.RuntimeAnomaly); ok {
					return xerr.Handle(xerr.NewRuntimeAnomaly(string(c.Specifier), "%s", ra.Msg))
				}
				return err
			}
		} else {
			p.ClearStalePhantom()
		}
	}
	return nil
}

// IsOutputConnected reports whether the named output pin feeds anything.
func (c *Control) IsOutputConnected(name string) bool {
	p, ok := c.Outputs[name]
	if !ok {
		return false
	}
	return len(p.Linked()) > 0
}

// CommonInput is the per-tick input shared by every node's TryProcess call.
type CommonInput struct {
	TimeTickMode           TickMode
	ElapsedTime            float64
	FrameTime              float64
	Category               ProcessCategory
	RequiredChannelSamples int
	ChildrenStates         []bool
	ProcessCounter         uint64
}

// AllChildrenFinished reports whether every predecessor recorded in the
// common input has finished (an empty list counts as finished).
func (in *CommonInput) AllChildrenFinished() bool {
	for _, v := range in.ChildrenStates {
		if !v {
			return false
		}
	}
	return true
}

// Processor is the interface every node type implements.
type Processor interface {
	// IsFinished reports whether the node has produced its last output and
	// will never produce more.
	IsFinished() bool
	// CanProcess reports whether the node is able to run at all (distinct
	// from per-tick readiness, which TryProcess itself checks via its
	// input pins).
	CanProcess() bool
	// Control returns the node's shared control block.
	Control() *Control
	// TryProcess implements the six-step contract of §4.2.
	TryProcess(in *CommonInput) error
}
