package pin

import "zikichombo.org/noisegraph/sample"

// Payload is the value published through an output pin.
type Payload interface {
	// Category reports the single pin category this payload carries.
	Category() Category
}

// StartPayload marks a _start_pin firing; it carries no data.
type StartPayload struct{}

func (StartPayload) Category() Category { return Start }

// MonoPayload carries one tick's worth of mono samples.
type MonoPayload struct {
	Samples    []sample.Uniform
	SampleRate int
	// SampleOffset lets overlap-aware consumers (e.g. IFFT emitters feeding
	// a cross-fading mixer) know how far into the block the non-overlapped
	// region starts.
	SampleOffset int
}

func (MonoPayload) Category() Category { return BufferMono }

// StereoPayload carries one tick's worth of stereo samples.
type StereoPayload struct {
	Left, Right []sample.Uniform
	SampleRate  int
}

func (StereoPayload) Category() Category { return BufferStereo }

// TextPayload carries a single line of text.
type TextPayload struct {
	Line string
}

func (TextPayload) Category() Category { return Text }

// FrequencyBin is one bin of a frequency-domain analysis frame.
type FrequencyBin struct {
	Frequency float64
	Magnitude float64
	Phase     float64
}

// FrequencyPayload carries one analysis frame (a single spectrum snapshot).
type FrequencyPayload struct {
	Bins           []FrequencyBin
	AnalyzedLength int
	Overlap        bool
	SampleRate     int
}

func (FrequencyPayload) Category() Category { return Frequency }

// DummyPayload is the payload of the _dummy debugging node.
type DummyPayload struct{}

func (DummyPayload) Category() Category { return Dummy }
