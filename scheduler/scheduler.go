// Package scheduler implements the graph execution engine's cooperative,
// single-threaded tick loop (C5): one call to Run drives a built graph from
// its first tick to collective termination. Within each process-start-group
// nodes are visited from a FIFO queue seeded with the group's start items,
// and a node runs only once all its in-category predecessors have run this
// tick; the order among a group's start items and among a node's successors
// follows Go map iteration and is not fixed from one run to the next.
package scheduler

import (
	"context"
	"errors"
	"time"

	"zikichombo.org/noisegraph/graph"
	"zikichombo.org/noisegraph/node"
)

// ErrCancelled is returned by Run when ctx is cancelled between ticks. The
// engine has no mid-tick cancellation (spec.md §4.4): a cancelled context is
// only observed once the current tick's traversal has finished.
var ErrCancelled = errors.New("scheduler: cancelled")

// Scheduler drives one Graph's tick loop.
type Scheduler struct {
	g *graph.Graph
}

// New constructs a Scheduler for g.
func New(g *graph.Graph) *Scheduler {
	return &Scheduler{g: g}
}

// Run drives g's tick loop until collective termination or ctx cancellation,
// whichever comes first. It returns ErrCancelled, not ctx.Err(), so callers
// distinguish scheduler-level cancellation from a deeper plumbing error.
func (s *Scheduler) Run(ctx context.Context) error {
	g := s.g
	setting := g.Setting
	realtime := setting.TimeTickMode == node.Realtime
	nominalDt := setting.DefaultTickSeconds()

	var elapsedTime float64
	var processCounter uint64
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}

		var dt float64
		if realtime {
			now := time.Now()
			dt = now.Sub(lastTick).Seconds()
			lastTick = now
		} else {
			dt = nominalDt
		}
		elapsedTime += dt
		processCounter++

		if realtime && g.Services.AudioDevice != nil {
			// pre_hook_audio_device: nothing to do before the first send in
			// this engine's design — the device proxy is already streaming.
		}

		endNodeProcessed := false
		allFinished := true

		for _, grp := range g.Groups {
			required := 0
			if realtime && g.Services.AudioDevice != nil {
				channels := setting.Channels
				if channels < 1 {
					channels = 1
				}
				required = g.Services.AudioDevice.AvailableSendCounts() / channels
			} else {
				required = setting.SampleCountFrame
			}

			common := &node.CommonInput{
				TimeTickMode:           setting.TimeTickMode,
				ElapsedTime:            elapsedTime,
				FrameTime:              dt,
				Category:               grp.Category,
				RequiredChannelSamples: required,
				ProcessCounter:         processCounter,
			}

			queue := append([]*graph.GraphNode(nil), grp.StartItems...)
			for len(queue) > 0 {
				n := queue[0]
				queue = queue[1:]

				if n.Category != grp.Category {
					continue
				}
				if n.HasRunThisTick(processCounter) {
					continue
				}
				if !n.AllPrevRanThisTickInCategory(processCounter) {
					continue
				}
				if !n.Processor.CanProcess() {
					continue
				}

				common.ChildrenStates = n.ChildrenStates()
				if err := n.Processor.TryProcess(common); err != nil {
					return err
				}
				n.MarkRan(processCounter)

				for _, m := range n.NextNodes {
					if m.Processor.CanProcess() {
						queue = append(queue, m)
					}
				}
				if len(n.NextNodes) == 0 {
					endNodeProcessed = true
					allFinished = allFinished && n.Processor.IsFinished()
				}
			}
		}

		if realtime && g.Services.AudioDevice != nil {
			// post_hook_audio_device: the device proxy's Write call inside
			// sink.Device.TryProcess already blocks for this tick's buffer.
		}

		if endNodeProcessed && allFinished {
			return nil
		}
	}
}
