package node

import "zikichombo.org/noisegraph/sample"

// AudioDeviceProxy is the capability a node needs from the realtime audio
// device service (backed by audiodevice.Proxy). Declaring it here, rather
// than importing the audiodevice package, keeps node constructors free of a
// dependency on any one concrete service implementation — each processor
// captures only the weak handles its SystemNeeds() bitset declares, per the
// "system_accessor" design note.
type AudioDeviceProxy interface {
	AvailableSendCounts() int
	SendSampleBuffer(required int, channels [][]float32) error
}

// FileService opens file handles for emitter/sink nodes that need disk I/O.
type FileService interface {
	Open(path string, write bool) (FileHandle, error)
}

// FileHandle is a reference-counted, uniquely-owned file descriptor.
type FileHandle interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	Clone() FileHandle
}

// ResampleService resolves a (from, to, quality) key to a shared,
// immutable coefficient table and applies it. consumed reports how many
// leading samples of in were used up producing out and nextPhase; any
// remainder (in[consumed:]) didn't yet span enough samples to anchor a
// window and must be kept and re-submitted by the caller, not discarded.
type ResampleService interface {
	Resample(fromFs, toFs int, highQuality bool, in []sample.Uniform, startPhase float64) (out []sample.Uniform, nextPhase float64, consumed int)
}

// Services bundles the external service handles available at node
// construction time (spec.md §9's system_accessor). Any field may be nil if
// the graph never asked for that SystemCategory.
type Services struct {
	AudioDevice AudioDeviceProxy
	Files       FileService
	Resample    ResampleService
}
