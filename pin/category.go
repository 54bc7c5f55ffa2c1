// Package pin implements the typed pin/port model described in the engine's
// data model: output pins publish payloads, input pins accumulate them
// according to a declared container kind, and a bitflag compatibility
// predicate governs which pins may be connected.
package pin

import "fmt"

// Category is a pin payload category. Exactly one bit is set on an output
// pin; an input pin declares a bitmask of the categories it accepts.
type Category uint8

const (
	Start Category = 1 << iota
	BufferMono
	BufferStereo
	Text
	Frequency
	Dummy
)

func (c Category) String() string {
	switch c {
	case Start:
		return "start"
	case BufferMono:
		return "buffer_mono"
	case BufferStereo:
		return "buffer_stereo"
	case Text:
		return "text"
	case Frequency:
		return "frequency"
	case Dummy:
		return "dummy"
	default:
		return fmt.Sprintf("category(%#x)", uint8(c))
	}
}

// Compatible reports whether an output of category out may feed an input
// declaring the accepted set in.
func Compatible(out Category, in Category) bool {
	return out&in != 0
}
