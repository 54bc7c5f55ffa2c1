package pin

import (
	"fmt"

	"zikichombo.org/noisegraph/sample"
)

// Pin is one named input or output port on a node. Cross-node edges are
// expressed as plain (non-owning) pointers between Pins: each node uniquely
// owns its own Pin values, and an edge is just a slice entry pointing at a
// Pin owned by some other node. Since the whole graph is built once and run
// single-threaded, this requires no locking.
type Pin struct {
	Name       string
	Categories Category // declared accepted set (input) or single bit (output)
	IsOutput   bool

	updateRequested bool
	linked          []*Pin // for output: downstream inputs; for input: the single upstream output

	// output state
	outCategory Category
	outPayload  Payload

	// input state
	kind ContainerKind
	c    *container
}

// NewOutput creates an output pin publishing exactly one category.
func NewOutput(name string, category Category) *Pin {
	return &Pin{Name: name, Categories: category, IsOutput: true}
}

// NewInput creates an input pin accepting the given category mask, backed
// by the given declared container kind.
func NewInput(name string, categories Category, kind ContainerKind) *Pin {
	return &Pin{Name: name, Categories: categories, IsOutput: false, kind: kind}
}

// Link records that p feeds (or is fed by) other. Both directions are
// recorded by the caller (graph.Builder), mirroring the teacher's
// link_pin_output_to_input / link_pin_input_to_output pairing.
func (p *Pin) Link(other *Pin) {
	p.linked = append(p.linked, other)
}

// Linked returns the pins connected to p.
func (p *Pin) Linked() []*Pin {
	return p.linked
}

// UpdateRequested reports whether an upstream publish has occurred since
// the last ProcessInput on this (input) pin.
func (p *Pin) UpdateRequested() bool {
	return p.updateRequested
}

// Insert publishes payload on an output pin (§4.1 "Publish operation").
func (p *Pin) Insert(payload Payload) error {
	if !p.IsOutput {
		return fmt.Errorf("pin %q: Insert called on an input pin", p.Name)
	}
	cat := payload.Category()
	if cat&p.Categories == 0 {
		return fmt.Errorf("pin %q: payload category %v not in declared %v", p.Name, cat, p.Categories)
	}
	if p.outPayload != nil && p.outCategory != cat {
		p.outPayload = nil
	}
	p.outCategory = cat
	p.outPayload = payload
	for _, linked := range p.linked {
		linked.updateRequested = true
	}
	return nil
}

// Output returns the most recently inserted payload on an output pin.
func (p *Pin) Output() Payload {
	return p.outPayload
}

// ensureContainer lazily initializes the input container from its declared
// kind on first use.
func (p *Pin) ensureContainer() {
	if p.c == nil {
		p.c = newContainer(p.kind)
	}
}

// ProcessInput implements the consume operation (§4.1): it asserts exactly
// one linked upstream output pin, dispatches on container kind, and clears
// updateRequested.
func (p *Pin) ProcessInput() error {
	if p.IsOutput {
		return fmt.Errorf("pin %q: ProcessInput called on an output pin", p.Name)
	}
	if p.kind == KindEmpty {
		p.updateRequested = false
		return nil
	}
	if len(p.linked) != 1 {
		return anomaly("input pin %q must have exactly one linked output, has %d", p.Name, len(p.linked))
	}
	p.ensureContainer()
	upstream := p.linked[0]
	payload := upstream.outPayload
	if payload == nil {
		p.updateRequested = false
		return nil
	}
	if err := p.c.consume(payload); err != nil {
		return err
	}
	p.updateRequested = false
	return nil
}

// Dynamic returns the mono FIFO backing a BUFFER_MONO_DYNAMIC container.
func (p *Pin) Dynamic() *DynamicMonoView {
	p.ensureContainer()
	return &DynamicMonoView{c: p.c}
}

// StereoDynamic returns the stereo FIFO backing a BUFFER_STEREO_DYNAMIC
// container.
func (p *Pin) StereoDynamic() *DynamicStereoView {
	p.ensureContainer()
	return &DynamicStereoView{c: p.c}
}

// PhantomMono returns this tick's read-through mono view, or nil if none
// has been published yet this tick.
func (p *Pin) PhantomMono() []sample.Uniform {
	p.ensureContainer()
	return p.c.phantomMono
}

// PhantomStereo returns this tick's read-through stereo view.
func (p *Pin) PhantomStereo() StereoView {
	p.ensureContainer()
	return p.c.phantomStereo
}

// PhantomFrequency returns this tick's read-through frequency frame, and
// whether one has been published yet.
func (p *Pin) PhantomFrequency() (FrequencyPayload, bool) {
	p.ensureContainer()
	return p.c.phantomFreq, p.c.phantomFreqSet
}

// ClearStalePhantom resets a phantom-kind input's read-through view when
// the upstream output did not publish this tick. Phantom views otherwise
// keep last tick's payload around indefinitely (ProcessInput only runs when
// UpdateRequested is set), which would make a node fed purely through a
// phantom container see the same stale frame forever and never notice its
// upstream has gone quiet. Dynamic, text and polymorphic containers already
// self-clear via Drain, so this is a no-op for every other kind.
func (p *Pin) ClearStalePhantom() {
	if p.c == nil {
		return
	}
	switch p.c.kind {
	case KindMonoPhantom:
		p.c.phantomMono = nil
	case KindStereoPhantom:
		p.c.phantomStereo = StereoView{}
	case KindFrequencyPhantom:
		p.c.phantomFreq = FrequencyPayload{}
		p.c.phantomFreqSet = false
	}
}

// TextLines returns the accumulated text lines of a TEXT_DYNAMIC container.
func (p *Pin) TextLines() []string {
	p.ensureContainer()
	return p.c.lines
}

// SampleRate returns the sample rate observed by a dynamic/phantom mono or
// stereo container, and whether one has been observed yet.
func (p *Pin) SampleRate() (int, bool) {
	p.ensureContainer()
	return p.c.sampleRate, p.c.rateSet
}

// ResolvedCategory returns the category a polymorphic sink has retyped
// itself to, or 0 if it has not received a payload yet.
func (p *Pin) ResolvedCategory() Category {
	p.ensureContainer()
	return p.c.resolved
}

// DynamicMonoView exposes the accumulate/drain operations of a
// BUFFER_MONO_DYNAMIC (or a polymorphic sink hosting mono) container.
type DynamicMonoView struct{ c *container }

func (v *DynamicMonoView) Frames() int               { return v.c.mono.Frames() }
func (v *DynamicMonoView) Peek(n int) []sample.Uniform { return v.c.mono.Peek(n) }
func (v *DynamicMonoView) Drain(n int) []sample.Uniform { return v.c.mono.Drain(n) }
func (v *DynamicMonoView) All() []sample.Uniform       { return v.c.mono.Data }

// DynamicStereoView exposes the accumulate/drain operations of a
// BUFFER_STEREO_DYNAMIC container.
type DynamicStereoView struct{ c *container }

func (v *DynamicStereoView) Frames() int {
	l, r := v.c.stereo.Left.Frames(), v.c.stereo.Right.Frames()
	if l < r {
		return l
	}
	return r
}
func (v *DynamicStereoView) DrainLeft(n int) []sample.Uniform  { return v.c.stereo.Left.Drain(n) }
func (v *DynamicStereoView) DrainRight(n int) []sample.Uniform { return v.c.stereo.Right.Drain(n) }
