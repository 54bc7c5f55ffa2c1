package audiodevice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Proxy's stream field requires a live portaudio device to populate, so only
// the buffer-capacity arithmetic of AvailableSendCounts is exercised here;
// Open/SendSampleBuffer/Close need real hardware (see DESIGN.md).
func TestAvailableSendCountsDividesBufferByChannelCount(t *testing.T) {
	p := &Proxy{channels: 2, buf: make([]float32, 256)}
	require.Equal(t, 128, p.AvailableSendCounts())
}

func TestAvailableSendCountsZeroWhenChannelsUnset(t *testing.T) {
	p := &Proxy{buf: make([]float32, 256)}
	require.Equal(t, 0, p.AvailableSendCounts())
}
