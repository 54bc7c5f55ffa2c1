package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"zikichombo.org/noisegraph/node"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const validDoc = `{
  "version": 1,
  "setting": {
    "sample_count_frame": 512,
    "time_tick_mode": "offline",
    "channels": 2,
    "sample_rate": 48000
  },
  "system_setting": {
    "audio_device": {"enabled": true},
    "file_io": {"base_dir": "/tmp/audio"}
  },
  "node": {
    "osc": {"type": "emit-sine", "frequency": 440.0},
    "log": {"type": "output-log", "capacity": 100}
  },
  "relation": [
    {"prev": {"node": "osc", "pin": "out"}, "next": {"node": "log", "pin": "in"}}
  ]
}`

func TestLoadDecodesFullDocument(t *testing.T) {
	path := writeConfig(t, validDoc)
	doc, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 1, doc.Version)
	require.Equal(t, node.Setting{SampleCountFrame: 512, TimeTickMode: node.Offline, Channels: 2, SampleRate: 48000}, doc.Setting)
	require.NotNil(t, doc.System.AudioDevice)
	require.True(t, doc.System.AudioDevice.Enabled)
	require.NotNil(t, doc.System.FileIO)
	require.Equal(t, "/tmp/audio", doc.System.FileIO.BaseDir)

	require.Equal(t, node.Specifier("emit-sine"), doc.Nodes["osc"].Type)
	require.Equal(t, 440.0, doc.Nodes["osc"].Params["frequency"])
	require.NotContains(t, doc.Nodes["osc"].Params, "type")

	require.Len(t, doc.Relations, 1)
	require.Equal(t, "osc", doc.Relations[0].Prev.Node)
	require.Equal(t, "log", doc.Relations[0].Next.Node)
}

func TestLoadDefaultsChannelsAndSampleRate(t *testing.T) {
	path := writeConfig(t, `{
		"setting": {"sample_count_frame": 256, "time_tick_mode": "offline"},
		"node": {}, "relation": []
	}`)
	doc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Setting.Channels)
	require.Equal(t, 44100, doc.Setting.SampleRate)
}

func TestLoadRejectsMissingSetting(t *testing.T) {
	path := writeConfig(t, `{"node": {}, "relation": []}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNonPowerOfTwoFrame(t *testing.T) {
	path := writeConfig(t, `{"setting": {"sample_count_frame": 300, "time_tick_mode": "offline"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownTickMode(t *testing.T) {
	path := writeConfig(t, `{"setting": {"sample_count_frame": 256, "time_tick_mode": "warp-speed"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNodeMissingType(t *testing.T) {
	path := writeConfig(t, `{
		"setting": {"sample_count_frame": 256, "time_tick_mode": "offline"},
		"node": {"osc": {"frequency": 440}}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
