package adapter

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// hermiteKnee blends linearly below threshold-kneeWidth/2, applies the
// ratio's slope above threshold+kneeWidth/2, and cubic-Hermite-interpolates
// the two slopes across the knee, all in the dB domain.
func hermiteKnee(inputDB, thresholdDB, kneeWidth, ratio float64) float64 {
	half := kneeWidth / 2
	switch {
	case inputDB <= thresholdDB-half:
		return inputDB
	case inputDB >= thresholdDB+half:
		return thresholdDB + (inputDB-thresholdDB)/ratio
	default:
		// Cubic Hermite between the two slopes (1 and 1/ratio) over the
		// knee span, matching value and derivative at both knee edges.
		x := (inputDB - (thresholdDB - half)) / kneeWidth
		slopeBelow := 1.0
		slopeAbove := 1.0 / ratio
		yBelow := thresholdDB - half
		yAbove := thresholdDB + half*slopeAbove
		h00 := 2*x*x*x - 3*x*x + 1
		h10 := x*x*x - 2*x*x + x
		h01 := -2*x*x*x + 3*x*x
		h11 := x*x*x - x*x
		return h00*yBelow + h10*kneeWidth*slopeBelow + h01*yAbove + h11*kneeWidth*slopeAbove
	}
}

// Dynamics is the shared implementation of Compressor and Limiter: both
// map input level to output level via the dB-domain knee curve above, the
// only difference being the ratio and knee each constructor passes (a
// Limiter is a Compressor with a fixed 20:1 ratio and a 0.5 dB knee).
type Dynamics struct {
	ctl *node.Control

	thresholdDB float64
	ratio       float64
	kneeWidth   float64
	attackCoef  float64
	releaseCoef float64

	envelopeDB float64
	sampleRate int
}

func newDynamics(spec node.Specifier, thresholdDB, ratio, kneeWidth, attackSeconds, releaseSeconds float64, sampleRate int) *Dynamics {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.BufferMono)
	attackCoef := 0.0
	if attackSeconds > 0 {
		attackCoef = timeConstant(attackSeconds, sampleRate)
	}
	releaseCoef := 0.0
	if releaseSeconds > 0 {
		releaseCoef = timeConstant(releaseSeconds, sampleRate)
	}
	return &Dynamics{
		ctl: node.NewControl(spec, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		thresholdDB: thresholdDB,
		ratio:       ratio,
		kneeWidth:   kneeWidth,
		attackCoef:  attackCoef,
		releaseCoef: releaseCoef,
		sampleRate:  sampleRate,
		envelopeDB:  -120,
	}
}

func timeConstant(seconds float64, sampleRate int) float64 {
	if seconds <= 0 {
		return 0
	}
	return 1 - 1/(seconds*float64(sampleRate))
}

// NewCompressor constructs a dB-domain compressor with a soft knee.
func NewCompressor(thresholdDB, ratio, kneeWidth, attackSeconds, releaseSeconds float64, sampleRate int) *Dynamics {
	return newDynamics(node.SpecAdapterCompressor, thresholdDB, ratio, kneeWidth, attackSeconds, releaseSeconds, sampleRate)
}

// NewLimiter constructs a brick-wall-style limiter: a Compressor with a very
// high ratio and a narrow knee, per the limiter's conventional relationship
// to the general compressor curve.
func NewLimiter(thresholdDB, attackSeconds, releaseSeconds float64, sampleRate int) *Dynamics {
	return newDynamics(node.SpecAdapterLimiter, thresholdDB, 20.0, 0.5, attackSeconds, releaseSeconds, sampleRate)
}

func (d *Dynamics) Control() *node.Control { return d.ctl }
func (d *Dynamics) IsFinished() bool       { return d.ctl.State == node.Finished }
func (d *Dynamics) CanProcess() bool       { return true }

func (d *Dynamics) TryProcess(in *node.CommonInput) error {
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
		inDB := s.DB()
		if inDB > d.envelopeDB {
			d.envelopeDB = d.attackCoef*d.envelopeDB + (1-d.attackCoef)*inDB
		} else {
			d.envelopeDB = d.releaseCoef*d.envelopeDB + (1-d.releaseCoef)*inDB
		}
		outDB := hermiteKnee(d.envelopeDB, d.thresholdDB, d.kneeWidth, d.ratio)
		gainDB := outDB - d.envelopeDB
		gain := sample.FromDB(gainDB)
		out[i] = s * gain
	}
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: out, SampleRate: d.sampleRate}); err != nil {
		return err
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
