// Package resample implements the polyphase Kaiser-windowed-sinc resampler
// shared by node/resample's adapter wrapper and node/sink.File's
// output-rate conversion. The filter table for a given (fromFs, toFs,
// highQuality) triple is built once and cached, since it depends only on
// the ratio and quality tier, not on any one stream's data.
package resample

import (
	"math"
	"sync"

	"zikichombo.org/noisegraph/sample"
)

// npc is the number of samples per zero crossing in the prototype lowpass
// filter, matching the polyphase design's NPC=4096 constant.
const npc = 4096

// quality ladder: tap half-widths in zero-crossings, taken from the
// go-audio-resampler project's low/high quality presets.
const (
	tapsLow  = 11
	tapsHigh = 35
)

// besselI0 evaluates the zeroth-order modified Bessel function of the first
// kind via its power series.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 50; k++ {
		term *= (halfX / float64(k))
		sum += term * term
		if term*term < 1e-16*sum {
			break
		}
	}
	return sum
}

// table is the precomputed, immutable prototype lowpass filter shared by
// every resampler instance with the same cache key.
type table struct {
	coeffs    []float64 // length (2*halfTaps+1)*npc, indexed [crossing*npc+phase]
	halfTaps  int
	cutoff    float64 // normalized cutoff, in cycles per input sample
}

func buildTable(cutoff float64, halfTaps int) *table {
	n := (2*halfTaps + 1) * npc
	coeffs := make([]float64, n)
	beta := 7.857 // Kaiser beta for ~80dB stopband, fixed per quality tier
	denom := besselI0(beta)
	span := float64(halfTaps)
	for i := 0; i < n; i++ {
		// x is the tap's offset from the center, in samples, over the
		// continuous NPC-subdivided grid.
		x := float64(i)/float64(npc) - span
		var s float64
		if x == 0 {
			s = 2 * cutoff
		} else {
			s = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		r := x / span
		win := besselI0(beta*math.Sqrt(1-r*r)) / denom
		coeffs[i] = s * win
	}
	return &table{coeffs: coeffs, halfTaps: halfTaps, cutoff: cutoff}
}

type cacheKey struct {
	fromFs, toFs int
	highQuality  bool
}

var cache sync.Map // cacheKey -> *table

func tableFor(fromFs, toFs int, highQuality bool) *table {
	key := cacheKey{fromFs, toFs, highQuality}
	if v, ok := cache.Load(key); ok {
		return v.(*table)
	}
	cutoff := 0.5
	if toFs < fromFs {
		// downsampling: cutoff tracks the lower output rate to avoid aliasing.
		cutoff = 0.5 * float64(toFs) / float64(fromFs)
	}
	halfTaps := tapsLow
	if highQuality {
		halfTaps = tapsHigh
	}
	t := buildTable(cutoff, halfTaps)
	// copy-on-miss: a concurrent builder's result is fine to discard if
	// another goroutine won the race, since the table is pure function of
	// the key.
	actual, _ := cache.LoadOrStore(key, t)
	return actual.(*table)
}

// Resampler is a stateful polyphase resampler for one (fromFs, toFs,
// highQuality) stream; it shares its coefficient table with every other
// Resampler built for the same parameters.
type Resampler struct {
	t       *table
	fromFs  int
	toFs    int
}

// New constructs a Resampler, fetching or building its shared filter table.
func New(fromFs, toFs int, highQuality bool) *Resampler {
	return &Resampler{t: tableFor(fromFs, toFs, highQuality), fromFs: fromFs, toFs: toFs}
}

// Resample implements node.ResampleService. startPhase carries the
// fractional output-sample phase across calls so that streaming callers
// (node/resample's adapter, node/sink.File) produce a continuous output
// stream across ticks. consumed reports how many leading samples of in were
// fully folded into the returned output and its carried phase — samples
// from consumed onward didn't yet have enough trailing context to form a
// window and must be re-submitted, prepended to the next call's in, rather
// than discarded.
func (r *Resampler) Resample(fromFs, toFs int, highQuality bool, in []sample.Uniform, startPhase float64) (out []sample.Uniform, nextPhase float64, consumed int) {
	if fromFs != r.fromFs || toFs != r.toFs {
		r.t = tableFor(fromFs, toFs, highQuality)
		r.fromFs, r.toFs = fromFs, toFs
	}
	if fromFs == toFs {
		return append([]sample.Uniform(nil), in...), startPhase, len(in)
	}
	ratio := float64(toFs) / float64(fromFs)
	if ratio >= 1 {
		return r.interpolate(in, ratio, startPhase)
	}
	return r.decimate(in, ratio, startPhase)
}

// interpolate implements process_filter_up: the output rate exceeds the
// input rate, so each output sample draws from a fractional position
// between input samples using the polyphase table directly (no additional
// decimation stage). The trailing samples too close to the end of in to
// anchor a full window are left unconsumed for the caller to retry once
// more input arrives.
func (r *Resampler) interpolate(in []sample.Uniform, ratio, phase float64) (out []sample.Uniform, nextPhase float64, consumed int) {
	step := 1.0 / ratio
	pos := phase
	for {
		center := pos
		left := int(math.Floor(center))
		if left+r.t.halfTaps >= len(in) {
			break
		}
		frac := center - float64(left)
		out = append(out, sample.Uniform(r.convolveAt(in, left, frac)))
		pos += step
	}
	if len(out) > 0 {
		consumed = int(math.Floor(phase + step*float64(len(out))))
		if consumed > len(in) {
			consumed = len(in)
		}
	}
	nextPhase = phase + step*float64(len(out)) - float64(consumed)
	return out, nextPhase, consumed
}

// decimate implements process_filter_down: the output rate is lower than
// the input rate, so the prototype cutoff was already scaled down in
// tableFor and each output sample is one lowpassed, subsampled position.
func (r *Resampler) decimate(in []sample.Uniform, ratio, phase float64) ([]sample.Uniform, float64, int) {
	return r.interpolate(in, ratio, phase)
}

// convolveAt evaluates the polyphase filter centered between in[left] and
// in[left+1], selecting the NPC-subdivided phase nearest frac.
func (r *Resampler) convolveAt(in []sample.Uniform, left int, frac float64) float64 {
	phaseIdx := int(frac * npc)
	var sum float64
	for k := -r.t.halfTaps; k <= r.t.halfTaps; k++ {
		idx := left + k
		if idx < 0 || idx >= len(in) {
			continue
		}
		coeffIdx := (k+r.t.halfTaps)*npc + phaseIdx
		if coeffIdx < 0 || coeffIdx >= len(r.t.coeffs) {
			continue
		}
		sum += float64(in[idx]) * r.t.coeffs[coeffIdx]
	}
	return sum
}
