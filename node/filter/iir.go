package filter

import (
	"math"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

const (
	iirWindow = 2048
	iirHop    = iirWindow / 2 // 50% overlap
)

// biquad holds RBJ cookbook coefficients for one second-order section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
}

// designBiquad derives LPF/HPF/BPF/BSF coefficients from edge frequency,
// quality factor Q, and sample rate, per the RBJ Audio EQ Cookbook formulas.
func designBiquad(mode Mode, edge, q float64, sampleRate int) biquad {
	w0 := 2 * math.Pi * edge / float64(sampleRate)
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch mode {
	case LowPass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case HighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BandStop:
		b0 = 1
		b1 = -2 * cosW0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	}
	return biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

func (bq biquad) apply(x []float64) []float64 {
	y := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, xn := range x {
		yn := bq.b0*xn + bq.b1*x1 + bq.b2*x2 - bq.a1*y1 - bq.a2*y2
		y[i] = yn
		x2, x1 = x1, xn
		y2, y1 = y1, yn
	}
	return y
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// IIR applies a 2nd-order biquad in overlapping windows: each window is
// filtered and Hann-weighted, the non-overlapped hop is emitted per tick,
// and the overlap tail is mixed into the next window per spec.md's
// overlap-add buffering contract.
type IIR struct {
	ctl  *node.Control
	bq   biquad
	win  []float64

	acc        []sample.Uniform
	consumed   int // samples already folded into a completed window
	tail       []float64 // pending overlap-add tail from the previous window
	sampleRate int
}

func newIIR(spec node.Specifier, mode Mode, edge, q float64, sampleRate int) *IIR {
	in := pin.NewInput("in", pin.BufferMono, pin.KindMonoDynamic)
	out := pin.NewOutput("out", pin.BufferMono)
	return &IIR{
		ctl: node.NewControl(spec, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		bq:         designBiquad(mode, edge, q, sampleRate),
		win:        hann(iirWindow),
		tail:       make([]float64, iirHop),
		sampleRate: sampleRate,
	}
}

// NewIIRLowPass constructs a biquad low-pass filter node.
func NewIIRLowPass(edge, q float64, sampleRate int) *IIR {
	return newIIR(node.SpecFilterIIRLPF, LowPass, edge, q, sampleRate)
}

// NewIIRHighPass constructs a biquad high-pass filter node.
func NewIIRHighPass(edge, q float64, sampleRate int) *IIR {
	return newIIR(node.SpecFilterIIRHPF, HighPass, edge, q, sampleRate)
}

// NewIIRBandPass constructs a biquad band-pass filter node.
func NewIIRBandPass(edge, q float64, sampleRate int) *IIR {
	return newIIR(node.SpecFilterIIRBPF, BandPass, edge, q, sampleRate)
}

// NewIIRBandStop constructs a biquad band-stop filter node.
func NewIIRBandStop(edge, q float64, sampleRate int) *IIR {
	return newIIR(node.SpecFilterIIRBSF, BandStop, edge, q, sampleRate)
}

func (f *IIR) Control() *node.Control { return f.ctl }
func (f *IIR) IsFinished() bool       { return f.ctl.State == node.Finished }
func (f *IIR) CanProcess() bool       { return true }

func (f *IIR) TryProcess(in *node.CommonInput) error {
	c := f.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	view := c.Inputs["in"].Dynamic()
	f.acc = append(f.acc, view.Drain(view.Frames())...)
	if rate, ok := c.Inputs["in"].SampleRate(); ok {
		f.sampleRate = rate
	}

	var produced []sample.Uniform
	for f.consumed+iirWindow <= len(f.acc) {
		window := make([]float64, iirWindow)
		for i := range window {
			window[i] = float64(f.acc[f.consumed+i])
		}
		filtered := f.bq.apply(window)
		for i := range filtered {
			filtered[i] *= f.win[i]
		}
		emitted := make([]sample.Uniform, iirHop)
		for i := 0; i < iirHop; i++ {
			emitted[i] = sample.Uniform(filtered[i] + f.tail[i])
		}
		newTail := make([]float64, iirHop)
		copy(newTail, filtered[iirHop:])
		f.tail = newTail
		produced = append(produced, emitted...)
		f.consumed += iirHop
	}

	if c.State == node.Stopped && len(produced) > 0 {
		c.SetState(node.Playing)
	}
	if len(produced) > 0 {
		if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: produced, SampleRate: f.sampleRate}); err != nil {
			return err
		}
	}
	if in.AllChildrenFinished() && f.consumed+iirWindow > len(f.acc) {
		c.SetState(node.Finished)
	}
	return nil
}
