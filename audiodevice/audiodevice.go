// Package audiodevice wraps github.com/gordonklaus/portaudio to satisfy
// node.AudioDeviceProxy, the capability node/sink.Device needs to push
// finished frames to the system's default output device in realtime mode.
package audiodevice

import (
	"github.com/gordonklaus/portaudio"

	"zikichombo.org/noisegraph/xerr"
)

// Proxy owns one open portaudio output stream.
type Proxy struct {
	stream   *portaudio.Stream
	channels int
	buf      []float32
}

// Open initializes portaudio and opens a default output stream at
// sampleRate with the given channel count and per-callback frame count.
func Open(sampleRate float64, channels, framesPerBuffer int) (*Proxy, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, xerr.NewInitError("output-device", "portaudio init: %v", err)
	}
	p := &Proxy{channels: channels, buf: make([]float32, framesPerBuffer*channels)}
	stream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, framesPerBuffer, &p.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, xerr.NewInitError("output-device", "open default stream: %v", err)
	}
	p.stream = stream
	if err := stream.Start(); err != nil {
		return nil, xerr.NewInitError("output-device", "start stream: %v", err)
	}
	return p, nil
}

// AvailableSendCounts reports the interleaved buffer's frame capacity.
func (p *Proxy) AvailableSendCounts() int {
	if p.channels == 0 {
		return 0
	}
	return len(p.buf) / p.channels
}

// SendSampleBuffer interleaves channels into the stream's output buffer and
// writes one callback's worth of frames.
func (p *Proxy) SendSampleBuffer(required int, channels [][]float32) error {
	need := required * p.channels
	if cap(p.buf) < need {
		p.buf = make([]float32, need)
	}
	p.buf = p.buf[:need]
	for i := 0; i < required; i++ {
		for ch := 0; ch < p.channels; ch++ {
			var v float32
			if ch < len(channels) && i < len(channels[ch]) {
				v = channels[ch][i]
			}
			p.buf[i*p.channels+ch] = v
		}
	}
	return p.stream.Write()
}

// Close stops the stream and terminates the portaudio runtime.
func (p *Proxy) Close() error {
	if err := p.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
