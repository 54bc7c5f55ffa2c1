package pin

import (
	"fmt"

	"zikichombo.org/noisegraph/sample"
)

// ContainerKind is the accumulation strategy of an input pin.
type ContainerKind uint8

const (
	// KindUninitialized is the zero value; consume rejects it as an
	// unsupported kind, so every input pin is created with a real kind.
	KindUninitialized ContainerKind = iota
	KindEmpty
	KindMonoPhantom
	KindStereoPhantom
	KindMonoDynamic
	KindStereoDynamic
	KindFrequencyPhantom
	KindTextDynamic
	KindOutputFile
	KindOutputDevice
	KindOutputLog
)

// polymorphic reports whether a kind retypes itself to match the first
// upstream category it observes ("first-write wins" per the container
// model's polymorphic-sink rule).
func (k ContainerKind) polymorphic() bool {
	switch k {
	case KindOutputFile, KindOutputDevice, KindOutputLog:
		return true
	default:
		return false
	}
}

// container holds the accumulated/ phantom state of one input pin.
type container struct {
	kind ContainerKind

	// dynamic mono/stereo FIFO state
	mono       sample.Buffer
	stereo     sample.StereoBuffer
	sampleRate int
	rateSet    bool

	// phantom read-through view, valid only during the tick it was set
	phantomMono    []sample.Uniform
	phantomStereo  StereoView
	phantomFreq    FrequencyPayload
	phantomFreqSet bool

	// text accumulation
	lines []string

	// resolved polymorphic category, once known
	resolved Category
}

// StereoView is a read-only phantom view of one tick's stereo payload.
type StereoView struct {
	Left, Right []sample.Uniform
}

func newContainer(kind ContainerKind) *container {
	return &container{kind: kind}
}

// RuntimeAnomaly is returned for violations that spec.md classifies as
// "runtime anomaly": a graph-author bug surfacing inside TryProcess.
type RuntimeAnomaly struct {
	Msg string
}

func (e *RuntimeAnomaly) Error() string { return e.Msg }

func anomaly(format string, args ...interface{}) error {
	return &RuntimeAnomaly{Msg: fmt.Sprintf(format, args...)}
}

// consume dispatches on the container's kind exactly as the consume
// operation in the container model specifies.
func (c *container) consume(p Payload) error {
	switch c.kind {
	case KindEmpty:
		if _, ok := p.(StartPayload); !ok {
			return anomaly("empty container received non-start payload %T", p)
		}
		return nil
	case KindMonoPhantom:
		mp, ok := p.(MonoPayload)
		if !ok {
			return anomaly("mono phantom container received %T", p)
		}
		c.phantomMono = mp.Samples
		return nil
	case KindStereoPhantom:
		sp, ok := p.(StereoPayload)
		if !ok {
			return anomaly("stereo phantom container received %T", p)
		}
		c.phantomStereo = StereoView{Left: sp.Left, Right: sp.Right}
		return nil
	case KindMonoDynamic:
		mp, ok := p.(MonoPayload)
		if !ok {
			return anomaly("mono dynamic container received %T", p)
		}
		return c.appendMono(mp)
	case KindStereoDynamic:
		sp, ok := p.(StereoPayload)
		if !ok {
			return anomaly("stereo dynamic container received %T", p)
		}
		return c.appendStereo(sp)
	case KindFrequencyPhantom:
		fp, ok := p.(FrequencyPayload)
		if !ok {
			return anomaly("frequency phantom container received %T", p)
		}
		c.phantomFreq = fp
		c.phantomFreqSet = true
		return nil
	case KindTextDynamic:
		tp, ok := p.(TextPayload)
		if !ok {
			return anomaly("text dynamic container received %T", p)
		}
		c.lines = append(c.lines, tp.Line)
		return nil
	case KindOutputFile, KindOutputDevice, KindOutputLog:
		return c.consumePolymorphic(p)
	default:
		return anomaly("unsupported container kind %v", c.kind)
	}
}

func (c *container) appendMono(mp MonoPayload) error {
	if c.rateSet && c.sampleRate != mp.SampleRate && mp.SampleRate != 0 {
		return anomaly("sample rate mismatch: container has %d, got %d", c.sampleRate, mp.SampleRate)
	}
	if mp.SampleRate != 0 {
		c.sampleRate = mp.SampleRate
		c.rateSet = true
	}
	c.mono.Append(mp.Samples)
	return nil
}

func (c *container) appendStereo(sp StereoPayload) error {
	if c.rateSet && c.sampleRate != sp.SampleRate && sp.SampleRate != 0 {
		return anomaly("sample rate mismatch: container has %d, got %d", c.sampleRate, sp.SampleRate)
	}
	if sp.SampleRate != 0 {
		c.sampleRate = sp.SampleRate
		c.rateSet = true
	}
	c.stereo.Left.Append(sp.Left)
	c.stereo.Right.Append(sp.Right)
	return nil
}

// consumePolymorphic implements the OUTPUT_FILE/OUTPUT_DEVICE/OUTPUT_LOG
// "first-write wins, reset-on-category-change" rule.
func (c *container) consumePolymorphic(p Payload) error {
	cat := p.Category()
	if c.resolved == 0 {
		c.resolved = cat
	} else if c.resolved != cat {
		// category changed: reset the hosted state and retype.
		c.resolved = cat
		c.mono = sample.Buffer{}
		c.stereo = StereoBuffer{}
		c.lines = nil
		c.rateSet = false
	}
	switch cat {
	case BufferMono:
		return c.appendMono(p.(MonoPayload))
	case BufferStereo:
		return c.appendStereo(p.(StereoPayload))
	case Text:
		c.lines = append(c.lines, p.(TextPayload).Line)
		return nil
	default:
		return anomaly("output sink cannot host category %v", cat)
	}
}

// StereoBuffer aliases sample.StereoBuffer for readability within this file.
type StereoBuffer = sample.StereoBuffer
