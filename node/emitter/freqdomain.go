package emitter

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// IDFT consumes one FrequencyPayload per tick and emits the direct-summation
// inverse DFT of its bins as a mono block. Kept as an O(N^2) direct sum
// rather than a packaged IFFT, matching the node catalog's choice to specify
// IDFT and IFFT as distinct emitter types.
type IDFT struct {
	ctl     *node.Control
	overlap bool
}

// NewIDFT creates an inverse-DFT emitter. overlap, if true, sets each
// published block's SampleOffset to half its length so a downstream mixer
// can cross-fade consecutive frames.
func NewIDFT(overlap bool) *IDFT {
	in := pin.NewInput("in", pin.Frequency, pin.KindFrequencyPhantom)
	out := pin.NewOutput("out", pin.BufferMono)
	return &IDFT{
		ctl: node.NewControl(node.SpecEmitterIDFT, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		overlap: overlap,
	}
}

func (e *IDFT) Control() *node.Control { return e.ctl }
func (e *IDFT) IsFinished() bool       { return e.ctl.State == node.Finished }
func (e *IDFT) CanProcess() bool       { return true }

func (e *IDFT) TryProcess(in *node.CommonInput) error {
	c := e.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	freq, ok := c.Inputs["in"].PhantomFrequency()
	if !ok {
		if in.AllChildrenFinished() {
			c.SetState(node.Finished)
		}
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	n := len(freq.Bins)
	out := make([]sample.Uniform, n)
	for t := 0; t < n; t++ {
		var sum float64
		for k, b := range freq.Bins {
			phase := 2 * math.Pi * float64(k) * float64(t) / float64(n)
			sum += b.Magnitude * math.Cos(phase+b.Phase)
		}
		out[t] = sample.Uniform(sum / float64(n))
	}
	offset := 0
	if e.overlap {
		offset = n / 2
	}
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: out, SampleRate: freq.SampleRate, SampleOffset: offset}); err != nil {
		return err
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}

// IFFT is IDFT's fast-transform sibling, built on github.com/mjibson/go-dsp's
// radix-2 FFT.
type IFFT struct {
	ctl     *node.Control
	overlap bool
}

// NewIFFT creates an inverse-FFT emitter.
func NewIFFT(overlap bool) *IFFT {
	in := pin.NewInput("in", pin.Frequency, pin.KindFrequencyPhantom)
	out := pin.NewOutput("out", pin.BufferMono)
	return &IFFT{
		ctl: node.NewControl(node.SpecEmitterIFFT, node.Normal,
			map[string]*pin.Pin{"in": in}, map[string]*pin.Pin{"out": out}),
		overlap: overlap,
	}
}

func (e *IFFT) Control() *node.Control { return e.ctl }
func (e *IFFT) IsFinished() bool       { return e.ctl.State == node.Finished }
func (e *IFFT) CanProcess() bool       { return true }

func (e *IFFT) TryProcess(in *node.CommonInput) error {
	c := e.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	freq, ok := c.Inputs["in"].PhantomFrequency()
	if !ok {
		if in.AllChildrenFinished() {
			c.SetState(node.Finished)
		}
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	n := len(freq.Bins)
	spectrum := make([]complex128, n)
	for k, b := range freq.Bins {
		spectrum[k] = cmplx.Rect(b.Magnitude, b.Phase)
	}
	timeDomain := fft.IFFT(spectrum)
	out := make([]sample.Uniform, n)
	for i, v := range timeDomain {
		out[i] = sample.Uniform(real(v))
	}
	offset := 0
	if e.overlap {
		offset = n / 2
	}
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: out, SampleRate: freq.SampleRate, SampleOffset: offset}); err != nil {
		return err
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
