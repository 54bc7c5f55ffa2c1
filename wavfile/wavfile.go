// Package wavfile wraps github.com/go-audio/wav and github.com/go-audio/audio
// to satisfy the reader/writer capabilities node/emitter.WavMono/WavStereo
// and node/sink.File need, translating between the engine's sample.Uniform
// representation and go-audio's int-PCM buffers.
package wavfile

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"zikichombo.org/noisegraph/sample"
)

// Reader streams a WAV file's frames as sample.Uniform blocks.
type Reader struct {
	f      *os.File
	dec    *wav.Decoder
	format *audio.Format
}

// OpenReader opens path for reading and decodes its WAV header.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, io.ErrUnexpectedEOF
	}
	dec.ReadInfo()
	return &Reader{f: f, dec: dec, format: dec.Format()}, nil
}

// ReadMono reads up to n frames, downmixing if the underlying file is
// multi-channel.
func (r *Reader) ReadMono(n int) ([]sample.Uniform, int, bool, error) {
	buf := &audio.IntBuffer{Format: r.format, Data: make([]int, n*r.format.NumChannels)}
	read, err := r.dec.PCMBuffer(buf)
	if err != nil && err != io.EOF {
		return nil, r.format.SampleRate, false, err
	}
	frames := read / r.format.NumChannels
	out := make([]sample.Uniform, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < r.format.NumChannels; ch++ {
			sum += float64(fromBitDepth(buf.Data[i*r.format.NumChannels+ch], r.dec.BitDepth))
		}
		out[i] = sample.Uniform(sum / float64(r.format.NumChannels))
	}
	eof := read < len(buf.Data)
	return out, r.format.SampleRate, eof, nil
}

// ReadStereo reads up to n frames as separate left/right channels.
func (r *Reader) ReadStereo(n int) ([]sample.Uniform, []sample.Uniform, int, bool, error) {
	ch := r.format.NumChannels
	if ch < 2 {
		ch = 2
	}
	buf := &audio.IntBuffer{Format: r.format, Data: make([]int, n*ch)}
	read, err := r.dec.PCMBuffer(buf)
	if err != nil && err != io.EOF {
		return nil, nil, r.format.SampleRate, false, err
	}
	frames := read / ch
	left := make([]sample.Uniform, frames)
	right := make([]sample.Uniform, frames)
	for i := 0; i < frames; i++ {
		left[i] = fromBitDepth(buf.Data[i*ch], r.dec.BitDepth)
		right[i] = fromBitDepth(buf.Data[i*ch+1], r.dec.BitDepth)
	}
	eof := read < len(buf.Data)
	return left, right, r.format.SampleRate, eof, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.f.Close() }

func fromBitDepth(v int, bitDepth int) sample.Uniform {
	switch bitDepth {
	case 8:
		return sample.FromPCM8(uint8(v))
	case 24:
		return sample.FromPCM24(int32(v))
	default:
		return sample.FromPCM16(int16(v))
	}
}

// Writer encodes each mono or stereo sample.Uniform block as LPCM16 as it is
// written and finalizes the single WAV file's header on Close; node/sink.File
// closes it on collective Finished.
type Writer struct {
	f   *os.File
	enc *wav.Encoder
}

// CreateWriter creates path for writing at sampleRate/numChannels, 16-bit
// LPCM.
func CreateWriter(path string, sampleRate, numChannels int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, 1)
	return &Writer{f: f, enc: enc}, nil
}

// WriteMono writes a full mono buffer as one PCM chunk.
func (w *Writer) WriteMono(samples []sample.Uniform, sampleRate int) error {
	format := &audio.Format{NumChannels: 1, SampleRate: sampleRate}
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s.ToPCM16())
	}
	buf := &audio.IntBuffer{Format: format, Data: data, SourceBitDepth: 16}
	return w.enc.Write(buf)
}

// WriteStereo writes a full stereo buffer as one interleaved PCM chunk.
func (w *Writer) WriteStereo(left, right []sample.Uniform, sampleRate int) error {
	format := &audio.Format{NumChannels: 2, SampleRate: sampleRate}
	n := len(left)
	data := make([]int, n*2)
	for i := 0; i < n; i++ {
		data[2*i] = int(left[i].ToPCM16())
		if i < len(right) {
			data[2*i+1] = int(right[i].ToPCM16())
		}
	}
	buf := &audio.IntBuffer{Format: format, Data: data, SourceBitDepth: 16}
	return w.enc.Write(buf)
}

// Close finalizes the WAV header and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
