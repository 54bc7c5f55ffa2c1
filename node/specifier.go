package node

// The closed set of node type specifiers from spec.md §6. Adding one
// requires an engine code change (a new case in graph.Builder's factory
// table and a pin-declaration entry in the owning node package).
const (
	SpecStartPin Specifier = "_start_pin"
	SpecDummy    Specifier = "_dummy"

	SpecEmitterPinkNoise  Specifier = "emitter-pinknoise"
	SpecEmitterWhiteNoise Specifier = "emitter-whitenoise"
	SpecEmitterSine       Specifier = "emitter-sine"
	SpecEmitterSaw        Specifier = "emitter-saw"
	SpecEmitterTriangle   Specifier = "emitter-triangle"
	SpecEmitterSquare     Specifier = "emitter-square"
	SpecEmitterIDFT       Specifier = "emitter-idft"
	SpecEmitterIFFT       Specifier = "emitter-ifft"
	SpecEmitterWavMono    Specifier = "emitter-wav-mono"
	SpecEmitterWavStereo  Specifier = "emitter-wav-stereo"
	SpecEmitterSineSweep  Specifier = "emitter-sine-sweep"

	SpecAnalyzeDFT  Specifier = "analyze-dft"
	SpecAnalyzeFFT  Specifier = "analyze-fft"
	SpecAnalyzeLUFS Specifier = "analyze-lufs"

	SpecAdapterEnvelopeAD   Specifier = "adapter-envelope-ad"
	SpecAdapterEnvelopeADSR Specifier = "adapter-envelope-adsr"
	SpecAdapterWaveSum      Specifier = "adapter-wave-sum"
	SpecAdapterCompressor   Specifier = "adapter-compressor"
	SpecAdapterLimiter      Specifier = "adapter-limiter"
	SpecAdapterDelay        Specifier = "adapter-delay"
	SpecResample            Specifier = "resample"

	SpecFilterFIR     Specifier = "filter-fir"
	SpecFilterIIRLPF  Specifier = "filter-iir-lpf"
	SpecFilterIIRHPF  Specifier = "filter-iir-hpf"
	SpecFilterIIRBPF  Specifier = "filter-iir-bpf"
	SpecFilterIIRBSF  Specifier = "filter-iir-bsf"
	SpecFilterIRConv  Specifier = "filter-irconv"

	SpecMixStereo     Specifier = "mix-stereo"
	SpecMixSeparator  Specifier = "mix-separator"

	SpecOutputFile   Specifier = "output-file"
	SpecOutputLog    Specifier = "output-log"
	SpecOutputDevice Specifier = "output-device"
)

// tickSupport records each specifier's declared
// time-tick support (§4.2 "Time-tick category declaration"), consulted by
// graph validation step 7.
var tickSupport = map[Specifier]TickMode{
	SpecOutputDevice: Realtime,
}

// SupportsTick reports whether spec supports the given tick mode. A
// specifier absent from tickSupport supports both modes.
func (s Specifier) SupportsTick(mode TickMode) bool {
	only, restricted := tickSupport[s]
	if !restricted {
		return true
	}
	return only == mode
}

// systemNeeds records each specifier's required external services (§4.2
// "System-category declaration").
var systemNeeds = map[Specifier]SystemCategory{
	SpecOutputDevice:     AudioDevice,
	SpecEmitterWavMono:   FileIO,
	SpecEmitterWavStereo: FileIO,
	SpecFilterIRConv:     FileIO,
	SpecOutputFile:       FileIO,
	SpecResample:         ResampleService,
}

// SystemNeeds returns the system services specifier s requires.
func (s Specifier) SystemNeeds() SystemCategory {
	return systemNeeds[s]
}

// processCategoryTable records each specifier's process-start group. Every
// specifier not listed here runs in the Normal group; only sinks that feed
// the audio device participate in BusMasterOutput, since that group must
// run after Normal within a tick to consume what Normal just produced.
var processCategoryTable = map[Specifier]ProcessCategory{
	SpecOutputDevice: BusMasterOutput,
}

// DefaultProcessCategory returns the process-start group specifier s runs
// in absent an explicit per-node override.
func (s Specifier) DefaultProcessCategory() ProcessCategory {
	if c, ok := processCategoryTable[s]; ok {
		return c
	}
	return Normal
}
