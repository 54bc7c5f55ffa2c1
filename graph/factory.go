package graph

import (
	"io"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/node/adapter"
	"zikichombo.org/noisegraph/node/analyzer"
	"zikichombo.org/noisegraph/node/emitter"
	"zikichombo.org/noisegraph/node/filter"
	"zikichombo.org/noisegraph/node/mix"
	resampleadapter "zikichombo.org/noisegraph/node/resample"
	"zikichombo.org/noisegraph/node/sink"
	"zikichombo.org/noisegraph/node/special"
	"zikichombo.org/noisegraph/sample"
	"zikichombo.org/noisegraph/wavfile"
	"zikichombo.org/noisegraph/xerr"
)

// instantiate builds the node.Processor for one Metadata entry, the graph
// builder's factory table (build step 1). name is used only for error
// messages, since InitError names the offending node.
func instantiate(name string, m node.Metadata, setting node.Setting, services node.Services) (node.Processor, error) {
	sr := setting.SampleRate
	switch m.Type {
	case node.SpecStartPin:
		return special.New(), nil
	case node.SpecDummy:
		return special.NewDummy(), nil

	case node.SpecEmitterSine:
		return emitter.NewSine(m.Float("frequency", 440), sr, m.Float("length", 0)), nil
	case node.SpecEmitterSaw:
		return emitter.NewSaw(m.Float("frequency", 440), sr, m.Float("length", 0)), nil
	case node.SpecEmitterTriangle:
		return emitter.NewTriangle(m.Float("frequency", 440), sr, m.Float("length", 0)), nil
	case node.SpecEmitterSquare:
		return emitter.NewSquare(m.Float("frequency", 440), sr, m.Float("length", 0), m.Float("duty_cycle", 0.5)), nil
	case node.SpecEmitterWhiteNoise:
		return emitter.NewWhiteNoise(sr, m.Float("length", 0), int64(m.Int("seed", 1))), nil
	case node.SpecEmitterPinkNoise:
		return emitter.NewPinkNoise(sr, m.Float("length", 0), int64(m.Int("seed", 1)), m.Int("octaves", 5)), nil
	case node.SpecEmitterSineSweep:
		return emitter.NewSineSweep(m.Float("start_frequency", 20), m.Float("end_frequency", 20000), sr, m.Float("duration", 1)), nil
	case node.SpecEmitterIDFT:
		return emitter.NewIDFT(m.Bool("overlap", false)), nil
	case node.SpecEmitterIFFT:
		return emitter.NewIFFT(m.Bool("overlap", false)), nil
	case node.SpecEmitterWavMono:
		r, err := wavfile.OpenReader(m.String("path", ""))
		if err != nil {
			return nil, xerr.NewInitError(name, "open wav: %v", err)
		}
		return emitter.NewWavMono(r), nil
	case node.SpecEmitterWavStereo:
		r, err := wavfile.OpenReader(m.String("path", ""))
		if err != nil {
			return nil, xerr.NewInitError(name, "open wav: %v", err)
		}
		return emitter.NewWavStereo(r), nil

	case node.SpecAnalyzeDFT:
		return analyzer.NewDFT(m.Int("level", 1024), m.Bool("overlap", false)), nil
	case node.SpecAnalyzeFFT:
		return analyzer.NewFFT(m.Int("level", 1024), m.Bool("overlap", false)), nil
	case node.SpecAnalyzeLUFS:
		return analyzer.NewLUFS(m.Int("level", 4800), sr), nil

	case node.SpecAdapterEnvelopeAD:
		return adapter.NewEnvelopeAD(
			m.Float("attack_seconds", 0.01), m.Float("attack_curve", 1),
			m.Float("decay_seconds", 0.1), m.Float("decay_curve", 1), sr), nil
	case node.SpecAdapterEnvelopeADSR:
		return adapter.NewEnvelopeADSR(
			m.Float("attack_seconds", 0.01), m.Float("attack_curve", 1),
			m.Float("decay_seconds", 0.1), m.Float("decay_curve", 1),
			m.Float("sustain_level", 0.7), m.Float("sustain_seconds", 0.5),
			m.Float("release_seconds", 0.2), m.Float("release_curve", 1), sr), nil
	case node.SpecAdapterWaveSum:
		return adapter.NewWaveSum(m.Int("input_count", 2)), nil
	case node.SpecAdapterCompressor:
		return adapter.NewCompressor(
			m.Float("threshold_db", -18), m.Float("ratio", 4), m.Float("knee_width", 6),
			m.Float("attack_seconds", 0.005), m.Float("release_seconds", 0.1), sr), nil
	case node.SpecAdapterLimiter:
		return adapter.NewLimiter(m.Float("threshold_db", -1), m.Float("attack_seconds", 0.001), m.Float("release_seconds", 0.05), sr), nil
	case node.SpecAdapterDelay:
		return adapter.NewDelay(m.Float("seconds", 0.3), sr), nil
	case node.SpecResample:
		if services.Resample == nil {
			return nil, xerr.NewInitError(name, "resample requires a resample service")
		}
		return resampleadapter.New(services.Resample, m.Int("from_fs", sr), m.Int("to_fs", sr), m.Bool("high_quality", false)), nil

	case node.SpecFilterFIR:
		return filter.NewFIR(filterMode(m.String("mode", "lpf")), m.Float("edge", 1000), m.Float("bandwidth", 500), m.Float("delta", 500), sr), nil
	case node.SpecFilterIIRLPF:
		return filter.NewIIRLowPass(m.Float("edge", 1000), m.Float("q", 0.707), sr), nil
	case node.SpecFilterIIRHPF:
		return filter.NewIIRHighPass(m.Float("edge", 1000), m.Float("q", 0.707), sr), nil
	case node.SpecFilterIIRBPF:
		return filter.NewIIRBandPass(m.Float("edge", 1000), m.Float("q", 0.707), sr), nil
	case node.SpecFilterIIRBSF:
		return filter.NewIIRBandStop(m.Float("edge", 1000), m.Float("q", 0.707), sr), nil
	case node.SpecFilterIRConv:
		ir, irRate, err := loadImpulseResponse(m.String("ir_path", ""))
		if err != nil {
			return nil, xerr.NewInitError(name, "load impulse response: %v", err)
		}
		_ = irRate
		return filter.NewIRConv(ir, sr), nil

	case node.SpecMixStereo:
		return mix.NewStereo(m.Float("left_gain", 1), m.Float("right_gain", 1)), nil
	case node.SpecMixSeparator:
		return mix.NewSeparator(), nil

	case node.SpecOutputFile:
		channels := 1
		if m.Bool("stereo", false) {
			channels = 2
		}
		w, err := wavfile.CreateWriter(m.String("path", "out.wav"), m.Int("sample_rate", sr), channels)
		if err != nil {
			return nil, xerr.NewInitError(name, "create wav: %v", err)
		}
		return sink.NewFile(w, services.Resample, m.Int("sample_rate", sr)), nil
	case node.SpecOutputDevice:
		if services.AudioDevice == nil {
			return nil, xerr.NewInitError(name, "output-device requires an audio device service")
		}
		return sink.NewDevice(services.AudioDevice, setting.Channels), nil
	case node.SpecOutputLog:
		return sink.NewLog(loggerFor(name), m.Int("capacity", 0)), nil
	}
	return nil, xerr.NewInitError(name, "unknown node type %q", m.Type)
}

// loadImpulseResponse reads an entire mono WAV file into memory up front,
// since IRConv's taps are fixed for the life of the node.
func loadImpulseResponse(path string) ([]sample.Uniform, int, error) {
	r, err := wavfile.OpenReader(path)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()
	var all []sample.Uniform
	rate := 0
	for {
		chunk, sr, eof, err := r.ReadMono(4096)
		if err != nil && err != io.EOF {
			return nil, 0, err
		}
		rate = sr
		all = append(all, chunk...)
		if eof {
			break
		}
	}
	return all, rate, nil
}

func filterMode(s string) filter.Mode {
	switch s {
	case "hpf":
		return filter.HighPass
	case "bpf":
		return filter.BandPass
	case "bef", "bsf":
		return filter.BandStop
	default:
		return filter.LowPass
	}
}
