// Package config loads the engine's JSON configuration document (spec.md
// §6) via spf13/viper: top-level `setting`, `system_setting`, `node` and
// `relation` keys, decoded into the node/graph packages' native types.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"zikichombo.org/noisegraph/graph"
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/xerr"
)

// Document is the fully decoded configuration document, ready to hand to
// graph.Builder.Build.
type Document struct {
	Version  int
	Setting  node.Setting
	System   graph.SystemSetting
	Nodes    map[string]node.Metadata
	Relations []graph.Relation
}

// Load reads and decodes the configuration document at path.
func Load(path string) (*Document, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, xerr.NewConfigError("readable-file", "reading %s: %v", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Document, error) {
	doc := &Document{
		Version: v.GetInt("version"),
		Nodes:   make(map[string]node.Metadata),
	}

	settingMap := v.Sub("setting")
	if settingMap == nil {
		return nil, xerr.NewConfigError("setting-present", "missing top-level \"setting\" object")
	}
	frame := settingMap.GetInt("sample_count_frame")
	if frame <= 0 || frame&(frame-1) != 0 {
		return nil, xerr.NewConfigError("frame-power-of-two", "sample_count_frame (%d) must be a positive power of two", frame)
	}
	mode, err := parseTickMode(settingMap.GetString("time_tick_mode"))
	if err != nil {
		return nil, err
	}
	channels := settingMap.GetInt("channels")
	if channels == 0 {
		channels = 1
	}
	sampleRate := settingMap.GetInt("sample_rate")
	if sampleRate == 0 {
		sampleRate = 44100
	}
	doc.Setting = node.Setting{
		SampleCountFrame: frame,
		TimeTickMode:     mode,
		Channels:         channels,
		SampleRate:       sampleRate,
	}

	if sysMap := v.Sub("system_setting"); sysMap != nil {
		if ad := sysMap.Sub("audio_device"); ad != nil {
			doc.System.AudioDevice = &graph.AudioDeviceSetting{Enabled: ad.GetBool("enabled")}
		}
		if fi := sysMap.Sub("file_io"); fi != nil {
			doc.System.FileIO = &graph.FileIOSetting{BaseDir: fi.GetString("base_dir")}
		}
	}

	nodeRaw := v.GetStringMap("node")
	for name, raw := range nodeRaw {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			return nil, xerr.NewConfigError("node-shape", "node %q is not an object", name)
		}
		typeName, _ := fields["type"].(string)
		if typeName == "" {
			return nil, xerr.NewConfigError("node-type-present", "node %q missing \"type\"", name)
		}
		params := make(map[string]interface{}, len(fields))
		for k, val := range fields {
			if k == "type" {
				continue
			}
			params[k] = val
		}
		doc.Nodes[name] = node.Metadata{Type: node.Specifier(typeName), Params: params}
	}

	relRaw, _ := v.Get("relation").([]interface{})
	for _, entry := range relRaw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, xerr.NewConfigError("relation-shape", "relation entry is not an object")
		}
		prev, err := decodeEndpoint(m["prev"])
		if err != nil {
			return nil, err
		}
		next, err := decodeEndpoint(m["next"])
		if err != nil {
			return nil, err
		}
		doc.Relations = append(doc.Relations, graph.Relation{Prev: prev, Next: next})
	}

	return doc, nil
}

func decodeEndpoint(v interface{}) (graph.Endpoint, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return graph.Endpoint{}, xerr.NewConfigError("relation-endpoint-shape", "relation endpoint is not an object")
	}
	nodeName, _ := m["node"].(string)
	pinName, _ := m["pin"].(string)
	return graph.Endpoint{Node: nodeName, Pin: pinName}, nil
}

func parseTickMode(s string) (node.TickMode, error) {
	switch strings.ToLower(s) {
	case "offline", "":
		return node.Offline, nil
	case "realtime":
		return node.Realtime, nil
	default:
		return 0, xerr.NewConfigError("time-tick-mode-known", "unknown time_tick_mode %q", s)
	}
}
