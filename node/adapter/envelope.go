// Package adapter implements the envelope, mixing, dynamics and delay
// adapter nodes of node/adapter: stateless-per-sample shapers and
// multi-input combiners over BUFFER_MONO_DYNAMIC/PHANTOM streams.
package adapter

import (
	"math"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// envelopeStage is one segment of an envelope's piecewise curve: it runs
// for `samples` samples, moving the multiplier from `from` to `to` with the
// given curve exponent (1 = linear, >1 = convex, <1 = concave).
type envelopeStage struct {
	samples int
	from, to float64
	exponent float64
}

func (s envelopeStage) valueAt(i int) float64 {
	if s.samples == 0 {
		return s.to
	}
	frac := float64(i) / float64(s.samples)
	shaped := math.Pow(frac, s.exponent)
	return s.from + (s.to-s.from)*shaped
}

// Envelope applies a multi-stage attack/decay[/sustain/release] amplitude
// envelope to its mono input, advancing one sample per stage boundary.
type Envelope struct {
	ctl *node.Control

	stages  []envelopeStage
	elapsed int // samples consumed in the current stage
	stageIx int

	sampleRate int
}

func newEnvelope(spec node.Specifier, stages []envelopeStage) *Envelope {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.BufferMono)
	return &Envelope{
		ctl: node.NewControl(spec, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		stages: stages,
	}
}

// NewEnvelopeAD constructs an attack/decay envelope: attackSeconds from 0 to
// 1 with attackCurve exponent, then decaySeconds from 1 to 0 with decayCurve.
func NewEnvelopeAD(attackSeconds, attackCurve, decaySeconds, decayCurve float64, sampleRate int) *Envelope {
	stages := []envelopeStage{
		{samples: int(attackSeconds * float64(sampleRate)), from: 0, to: 1, exponent: attackCurve},
		{samples: int(decaySeconds * float64(sampleRate)), from: 1, to: 0, exponent: decayCurve},
	}
	e := newEnvelope(node.SpecAdapterEnvelopeAD, stages)
	e.sampleRate = sampleRate
	return e
}

// NewEnvelopeADSR constructs a full attack/decay/sustain/release envelope.
// The sustain stage holds sustainLevel for sustainSeconds before releasing.
func NewEnvelopeADSR(attackSeconds, attackCurve, decaySeconds, decayCurve, sustainLevel, sustainSeconds, releaseSeconds, releaseCurve float64, sampleRate int) *Envelope {
	stages := []envelopeStage{
		{samples: int(attackSeconds * float64(sampleRate)), from: 0, to: 1, exponent: attackCurve},
		{samples: int(decaySeconds * float64(sampleRate)), from: 1, to: sustainLevel, exponent: decayCurve},
		{samples: int(sustainSeconds * float64(sampleRate)), from: sustainLevel, to: sustainLevel, exponent: 1},
		{samples: int(releaseSeconds * float64(sampleRate)), from: sustainLevel, to: 0, exponent: releaseCurve},
	}
	e := newEnvelope(node.SpecAdapterEnvelopeADSR, stages)
	e.sampleRate = sampleRate
	return e
}

func (e *Envelope) Control() *node.Control { return e.ctl }
func (e *Envelope) IsFinished() bool       { return e.ctl.State == node.Finished }
func (e *Envelope) CanProcess() bool       { return true }

func (e *Envelope) multiplierNext() float64 {
	for e.stageIx < len(e.stages) && e.elapsed >= e.stages[e.stageIx].samples {
		e.stageIx++
		e.elapsed = 0
	}
	if e.stageIx >= len(e.stages) {
		return 0
	}
	v := e.stages[e.stageIx].valueAt(e.elapsed)
	e.elapsed++
	return v
}

func (e *Envelope) TryProcess(in *node.CommonInput) error {
	c := e.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	if rate, ok := c.Inputs["in"].SampleRate(); ok {
		e.sampleRate = rate
	}
	view := c.Inputs["in"].Dynamic()
	fresh := view.Drain(view.Frames())
	if len(fresh) == 0 {
		if in.AllChildrenFinished() {
			c.SetState(node.Finished)
		}
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	out := make([]sample.Uniform, len(fresh))
	for i, s := range fresh {
		out[i] = sample.Uniform(float64(s) * e.multiplierNext())
	}
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: out, SampleRate: e.sampleRate}); err != nil {
		return err
	}
	for e.stageIx < len(e.stages) && e.elapsed >= e.stages[e.stageIx].samples {
		e.stageIx++
		e.elapsed = 0
	}
	if e.stageIx >= len(e.stages) && in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
