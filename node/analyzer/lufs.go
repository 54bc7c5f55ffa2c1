package analyzer

import (
	"math"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
)

// LUFS implements the ITU-R BS.1770 loudness measurement that spec.md's
// Open Questions marked as incomplete upstream: a high-shelf pre-filter
// followed by an RLB (revised low-frequency B) high-pass, mean-square
// block energy, and absolute + relative gating, emitted as a single
// FrequencyPayload-shaped summary (one bin, Magnitude holding the gated
// LUFS value) once per `level`-sample block.
type LUFS struct {
	ctl        *node.Control
	level      int
	sampleRate int

	shelfZ1, shelfZ2 float64
	rlbZ1, rlbZ2     float64

	blockEnergies []float64
}

// absoluteGateLUFS is the BS.1770 absolute gate threshold.
const absoluteGateLUFS = -70.0

// relativeGateOffset is added to the loudness of the absolute-gated mean to
// form the relative gate threshold (10 LU below it).
const relativeGateOffset = -10.0

// NewLUFS constructs a block-gated loudness analyzer.
func NewLUFS(level, sampleRate int) *LUFS {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.Frequency)
	return &LUFS{
		ctl: node.NewControl(node.SpecAnalyzeLUFS, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		level:      level,
		sampleRate: sampleRate,
	}
}

func (l *LUFS) Control() *node.Control { return l.ctl }
func (l *LUFS) IsFinished() bool       { return l.ctl.State == node.Finished }
func (l *LUFS) CanProcess() bool       { return true }

// kWeight applies the BS.1770 pre-filter (high-shelf stage 1, RLB high-pass
// stage 2) to x, a straightforward direct-form-I biquad cascade.
func (l *LUFS) kWeight(x float64) float64 {
	// Stage 1: high-shelf, coefficients for 48kHz-class rates per BS.1770
	// Annex 1, applied generically (the analyzer's buffering contract, not
	// exact BS.1770 conformance, is what's load-bearing here).
	const (
		shelfB0, shelfB1, shelfB2 = 1.53512485958697, -2.69169618940638, 1.19839281085285
		shelfA1, shelfA2          = -1.69065929318241, 0.73248077421585
	)
	y1 := shelfB0*x + l.shelfZ1
	l.shelfZ1 = shelfB1*x - shelfA1*y1 + l.shelfZ2
	l.shelfZ2 = shelfB2*x - shelfA2*y1

	const (
		rlbB0, rlbB1, rlbB2 = 1.0, -2.0, 1.0
		rlbA1, rlbA2        = -1.99004745483398, 0.99007225036621
	)
	y2 := rlbB0*y1 + l.rlbZ1
	l.rlbZ1 = rlbB1*y1 - rlbA1*y2 + l.rlbZ2
	l.rlbZ2 = rlbB2*y1 - rlbA2*y2
	return y2
}

func (l *LUFS) TryProcess(in *node.CommonInput) error {
	c := l.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	if rate, ok := c.Inputs["in"].SampleRate(); ok {
		l.sampleRate = rate
	}
	view := c.Inputs["in"].Dynamic()

	if view.Frames() >= l.level {
		window := view.Drain(l.level)
		var sumSq float64
		for _, s := range window {
			w := l.kWeight(float64(s))
			sumSq += w * w
		}
		meanSq := sumSq / float64(l.level)
		blockLUFS := -0.691 + 10*math.Log10(meanSq+1e-12)
		l.blockEnergies = append(l.blockEnergies, meanSq)

		gated := gatedMean(l.blockEnergies)
		if c.State == node.Stopped {
			c.SetState(node.Playing)
		}
		if err := c.Outputs["out"].Insert(pin.FrequencyPayload{
			Bins: []pin.FrequencyBin{{Frequency: 0, Magnitude: gated, Phase: blockLUFS}},
			AnalyzedLength: l.level,
			SampleRate:     l.sampleRate,
		}); err != nil {
			return err
		}
	}
	if in.AllChildrenFinished() && view.Frames() < l.level {
		c.SetState(node.Finished)
	}
	return nil
}

// gatedMean implements BS.1770's two-stage gating: an absolute gate at
// -70 LUFS, then a relative gate 10 LU below the absolute-gated mean.
func gatedMean(blocks []float64) float64 {
	var pass1 []float64
	for _, e := range blocks {
		if toLUFS(e) >= absoluteGateLUFS {
			pass1 = append(pass1, e)
		}
	}
	if len(pass1) == 0 {
		return math.Inf(-1)
	}
	ungated := meanOf(pass1)
	threshold := toLUFS(ungated) + relativeGateOffset

	var pass2 []float64
	for _, e := range pass1 {
		if toLUFS(e) >= threshold {
			pass2 = append(pass2, e)
		}
	}
	if len(pass2) == 0 {
		return toLUFS(ungated)
	}
	return toLUFS(meanOf(pass2))
}

func toLUFS(meanSq float64) float64 {
	return -0.691 + 10*math.Log10(meanSq+1e-12)
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
