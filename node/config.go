package node

// Setting is the graph-wide tick configuration (spec.md §4.3 "Setting").
type Setting struct {
	// SampleCountFrame is the offline frame size, a power of two.
	SampleCountFrame int
	TimeTickMode     TickMode
	Channels         int
	SampleRate       int
}

// DefaultTickSeconds returns the nominal offline Δt derived from the
// configured frame size and sample rate.
func (s Setting) DefaultTickSeconds() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(s.SampleCountFrame) / float64(s.SampleRate)
}

// Metadata is one node's declared type and parameters, as decoded from the
// configuration document's `node` map (JSON decoding itself is an external
// collaborator; by the time it reaches the engine it is already this shape).
type Metadata struct {
	Type   Specifier
	Params map[string]interface{}
}

// String returns the declared string parameter name, or def if absent.
func (m Metadata) String(name, def string) string {
	if v, ok := m.Params[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Float returns the declared float parameter name, or def if absent.
func (m Metadata) Float(name string, def float64) float64 {
	if v, ok := m.Params[name]; ok {
		switch t := v.(type) {
		case float64:
			return t
		case int:
			return float64(t)
		}
	}
	return def
}

// Int returns the declared int parameter name, or def if absent.
func (m Metadata) Int(name string, def int) int {
	return int(m.Float(name, float64(def)))
}

// Bool returns the declared bool parameter name, or def if absent.
func (m Metadata) Bool(name string, def bool) bool {
	if v, ok := m.Params[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
