// Package emitter implements the node/emitter family: the generator
// processors here declare no input pins and one BufferMono or BufferStereo
// output, producing RequiredChannelSamples fresh samples each tick until
// their own finish condition fires.
package emitter

import (
	"math"
	"math/rand"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// waveform computes one cycle-relative sample given phase in [0, 1).
type waveform func(phase float64) sample.Uniform

func sineWave(phase float64) sample.Uniform {
	return sample.Uniform(math.Sin(2 * math.Pi * phase))
}

func sawWave(phase float64) sample.Uniform {
	return sample.Uniform(2*phase - 1)
}

func triangleWave(phase float64) sample.Uniform {
	if phase < 0.5 {
		return sample.Uniform(4*phase - 1)
	}
	return sample.Uniform(3 - 4*phase)
}

// squareWave returns a duty-cycle closure: dutyCycle is the fraction of the
// period spent at +1.
func squareWave(dutyCycle float64) waveform {
	return func(phase float64) sample.Uniform {
		if phase < dutyCycle {
			return 1
		}
		return -1
	}
}

// Oscillator drives Sine, Saw, Triangle and Square: a fixed-frequency
// periodic waveform, optionally range-bounded in sample count.
type Oscillator struct {
	ctl *node.Control

	wave       waveform
	frequency  float64
	sampleRate int
	phase      float64

	length      int // total samples to emit, 0 == unbounded
	emitted     int
}

func newOscillator(spec node.Specifier, wave waveform, frequency float64, sampleRate int, lengthSeconds float64) *Oscillator {
	out := pin.NewOutput("out", pin.BufferMono)
	outputs := map[string]*pin.Pin{"out": out}
	o := &Oscillator{
		ctl:        node.NewControl(spec, spec.DefaultProcessCategory(), nil, outputs),
		wave:       wave,
		frequency:  frequency,
		sampleRate: sampleRate,
	}
	if lengthSeconds > 0 {
		o.length = int(math.Round(lengthSeconds * float64(sampleRate)))
	}
	return o
}

// NewSine creates a sine oscillator. lengthSeconds of 0 means unbounded.
func NewSine(frequency float64, sampleRate int, lengthSeconds float64) *Oscillator {
	return newOscillator(node.SpecEmitterSine, sineWave, frequency, sampleRate, lengthSeconds)
}

// NewSaw creates a sawtooth oscillator.
func NewSaw(frequency float64, sampleRate int, lengthSeconds float64) *Oscillator {
	return newOscillator(node.SpecEmitterSaw, sawWave, frequency, sampleRate, lengthSeconds)
}

// NewTriangle creates a triangle oscillator.
func NewTriangle(frequency float64, sampleRate int, lengthSeconds float64) *Oscillator {
	return newOscillator(node.SpecEmitterTriangle, triangleWave, frequency, sampleRate, lengthSeconds)
}

// NewSquare creates a square oscillator with the given duty cycle in (0, 1).
func NewSquare(frequency float64, sampleRate int, lengthSeconds, dutyCycle float64) *Oscillator {
	return newOscillator(node.SpecEmitterSquare, squareWave(dutyCycle), frequency, sampleRate, lengthSeconds)
}

func (o *Oscillator) Control() *node.Control { return o.ctl }
func (o *Oscillator) IsFinished() bool       { return o.ctl.State == node.Finished }
func (o *Oscillator) CanProcess() bool       { return true }

func (o *Oscillator) TryProcess(in *node.CommonInput) error {
	c := o.ctl
	c.ElapsedTime = in.ElapsedTime
	if c.State == node.Finished {
		return nil
	}
	n := in.RequiredChannelSamples
	if o.length > 0 && o.emitted+n > o.length {
		n = o.length - o.emitted
	}
	if n <= 0 {
		c.SetState(node.Finished)
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	samples := make([]sample.Uniform, n)
	step := o.frequency / float64(o.sampleRate)
	for i := 0; i < n; i++ {
		samples[i] = o.wave(o.phase)
		o.phase += step
		if o.phase >= 1 {
			o.phase -= math.Floor(o.phase)
		}
	}
	o.emitted += n
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: samples, SampleRate: o.sampleRate}); err != nil {
		return err
	}
	if o.length > 0 && o.emitted >= o.length {
		c.SetState(node.Finished)
	}
	return nil
}

// WhiteNoise emits uniform random samples in [-1, 1].
type WhiteNoise struct {
	ctl        *node.Control
	sampleRate int
	length     int
	emitted    int
	rng        *rand.Rand
}

// NewWhiteNoise creates a white-noise emitter seeded from seed.
func NewWhiteNoise(sampleRate int, lengthSeconds float64, seed int64) *WhiteNoise {
	out := pin.NewOutput("out", pin.BufferMono)
	w := &WhiteNoise{
		ctl:        node.NewControl(node.SpecEmitterWhiteNoise, node.Normal, nil, map[string]*pin.Pin{"out": out}),
		sampleRate: sampleRate,
		rng:        rand.New(rand.NewSource(seed)),
	}
	if lengthSeconds > 0 {
		w.length = int(math.Round(lengthSeconds * float64(sampleRate)))
	}
	return w
}

func (w *WhiteNoise) Control() *node.Control { return w.ctl }
func (w *WhiteNoise) IsFinished() bool       { return w.ctl.State == node.Finished }
func (w *WhiteNoise) CanProcess() bool       { return true }

func (w *WhiteNoise) TryProcess(in *node.CommonInput) error {
	c := w.ctl
	c.ElapsedTime = in.ElapsedTime
	if c.State == node.Finished {
		return nil
	}
	n := in.RequiredChannelSamples
	if w.length > 0 && w.emitted+n > w.length {
		n = w.length - w.emitted
	}
	if n <= 0 {
		c.SetState(node.Finished)
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	samples := make([]sample.Uniform, n)
	for i := range samples {
		samples[i] = sample.Uniform(w.rng.Float64()*2 - 1)
	}
	w.emitted += n
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: samples, SampleRate: w.sampleRate}); err != nil {
		return err
	}
	if w.length > 0 && w.emitted >= w.length {
		c.SetState(node.Finished)
	}
	return nil
}

// PinkNoise emits approximately 1/f noise via the Voss-McCartney algorithm:
// octaveCount independent white-noise generators, each updated at half the
// rate of the last, summed and scaled.
type PinkNoise struct {
	ctl        *node.Control
	sampleRate int
	length     int
	emitted    int
	rng        *rand.Rand

	rows    []float64
	counter uint64
	runningSum float64
}

// NewPinkNoise creates a Voss-McCartney pink-noise emitter with the given
// number of octave rows (5 is a common, inexpensive choice).
func NewPinkNoise(sampleRate int, lengthSeconds float64, seed int64, octaveCount int) *PinkNoise {
	if octaveCount <= 0 {
		octaveCount = 5
	}
	out := pin.NewOutput("out", pin.BufferMono)
	p := &PinkNoise{
		ctl:        node.NewControl(node.SpecEmitterPinkNoise, node.Normal, nil, map[string]*pin.Pin{"out": out}),
		sampleRate: sampleRate,
		rng:        rand.New(rand.NewSource(seed)),
		rows:       make([]float64, octaveCount),
	}
	if lengthSeconds > 0 {
		p.length = int(math.Round(lengthSeconds * float64(sampleRate)))
	}
	return p
}

func (p *PinkNoise) next() sample.Uniform {
	p.counter++
	last := p.counter - 1
	for i := range p.rows {
		if last&(1<<uint(i)) != 0 {
			break
		}
		p.runningSum -= p.rows[i]
		p.rows[i] = p.rng.Float64()*2 - 1
		p.runningSum += p.rows[i]
	}
	scale := 1.0 / float64(len(p.rows)+1)
	white := p.rng.Float64()*2 - 1
	return sample.Uniform((p.runningSum + white) * scale)
}

func (p *PinkNoise) Control() *node.Control { return p.ctl }
func (p *PinkNoise) IsFinished() bool       { return p.ctl.State == node.Finished }
func (p *PinkNoise) CanProcess() bool       { return true }

func (p *PinkNoise) TryProcess(in *node.CommonInput) error {
	c := p.ctl
	c.ElapsedTime = in.ElapsedTime
	if c.State == node.Finished {
		return nil
	}
	n := in.RequiredChannelSamples
	if p.length > 0 && p.emitted+n > p.length {
		n = p.length - p.emitted
	}
	if n <= 0 {
		c.SetState(node.Finished)
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	samples := make([]sample.Uniform, n)
	for i := range samples {
		samples[i] = p.next()
	}
	p.emitted += n
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: samples, SampleRate: p.sampleRate}); err != nil {
		return err
	}
	if p.length > 0 && p.emitted >= p.length {
		c.SetState(node.Finished)
	}
	return nil
}

// SineSweep emits a log-frequency chirp from startFreq to endFreq over
// durationSeconds.
type SineSweep struct {
	ctl        *node.Control
	sampleRate int
	length     int
	emitted    int
	startFreq  float64
	logRatio   float64
	phase      float64
}

// NewSineSweep creates a logarithmic sine sweep emitter.
func NewSineSweep(startFreq, endFreq float64, sampleRate int, durationSeconds float64) *SineSweep {
	out := pin.NewOutput("out", pin.BufferMono)
	return &SineSweep{
		ctl:        node.NewControl(node.SpecEmitterSineSweep, node.Normal, nil, map[string]*pin.Pin{"out": out}),
		sampleRate: sampleRate,
		length:     int(math.Round(durationSeconds * float64(sampleRate))),
		startFreq:  startFreq,
		logRatio:   math.Log(endFreq / startFreq),
	}
}

func (s *SineSweep) Control() *node.Control { return s.ctl }
func (s *SineSweep) IsFinished() bool       { return s.ctl.State == node.Finished }
func (s *SineSweep) CanProcess() bool       { return true }

func (s *SineSweep) TryProcess(in *node.CommonInput) error {
	c := s.ctl
	c.ElapsedTime = in.ElapsedTime
	if c.State == node.Finished {
		return nil
	}
	n := in.RequiredChannelSamples
	if s.emitted+n > s.length {
		n = s.length - s.emitted
	}
	if n <= 0 {
		c.SetState(node.Finished)
		return nil
	}
	if c.State == node.Stopped {
		c.SetState(node.Playing)
	}
	samples := make([]sample.Uniform, n)
	total := float64(s.length)
	for i := 0; i < n; i++ {
		frac := float64(s.emitted+i) / total
		instFreq := s.startFreq * math.Exp(s.logRatio*frac)
		// phase accumulator integrates instantaneous frequency directly,
		// avoiding the closed-form log-sweep phase expression's precision
		// loss near t=0.
		s.phase += instFreq / float64(s.sampleRate)
		if s.phase >= 1 {
			s.phase -= math.Floor(s.phase)
		}
		samples[i] = sample.Uniform(math.Sin(2 * math.Pi * s.phase))
	}
	s.emitted += n
	if err := c.Outputs["out"].Insert(pin.MonoPayload{Samples: samples, SampleRate: s.sampleRate}); err != nil {
		return err
	}
	if s.emitted >= s.length {
		c.SetState(node.Finished)
	}
	return nil
}
