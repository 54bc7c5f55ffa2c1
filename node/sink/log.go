package sink

import (
	"fmt"

	"github.com/rs/zerolog"

	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// Log formats each tick's frames either straight to zerolog at Info level,
// or into an in-memory ring buffer when constructed with capacity > 0 (the
// print-vs-buffer mode distinction the original output_log node makes).
type Log struct {
	ctl      *node.Control
	logger   zerolog.Logger
	capacity int
	ring     []sample.Uniform
}

// NewLog constructs a log sink. capacity of 0 means print-only mode;
// capacity > 0 retains the most recent capacity samples for inspection
// instead of printing them.
func NewLog(logger zerolog.Logger, capacity int) *Log {
	in := pin.NewInput("in", pin.BufferMono|pin.BufferStereo, pin.KindOutputLog)
	return &Log{
		ctl:      node.NewControl(node.SpecOutputLog, node.Normal, map[string]*pin.Pin{"in": in}, nil),
		logger:   logger,
		capacity: capacity,
	}
}

// Buffered returns the ring buffer's contents (nil in print-only mode).
func (l *Log) Buffered() []sample.Uniform { return l.ring }

func (l *Log) Control() *node.Control { return l.ctl }
func (l *Log) IsFinished() bool       { return l.ctl.State == node.Finished }
func (l *Log) CanProcess() bool       { return true }

func (l *Log) TryProcess(in *node.CommonInput) error {
	c := l.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	p := c.Inputs["in"]
	var mono []sample.Uniform
	switch p.ResolvedCategory() {
	case pin.BufferMono:
		view := p.Dynamic()
		mono = view.Drain(view.Frames())
	case pin.BufferStereo:
		view := p.StereoDynamic()
		left := view.DrainLeft(view.Frames())
		right := view.DrainRight(view.Frames())
		mono = make([]sample.Uniform, len(left))
		for i := range left {
			r := sample.Uniform(0)
			if i < len(right) {
				r = right[i]
			}
			mono[i] = (left[i] + r) / 2
		}
	}
	if len(mono) > 0 {
		if c.State == node.Stopped {
			c.SetState(node.Playing)
		}
		if l.capacity > 0 {
			l.ring = append(l.ring, mono...)
			if over := len(l.ring) - l.capacity; over > 0 {
				l.ring = l.ring[over:]
			}
		} else {
			l.logger.Info().Str("frames", fmt.Sprintf("%d", len(mono))).Msg("output-log tick")
		}
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
