// Package graph implements the graph builder and validator (C4): it turns
// a node-metadata map and a relation list into a validated, wired Graph of
// processors ready for the scheduler to drive.
package graph

import (
	"zikichombo.org/noisegraph/node"
)

// Endpoint names one pin on one node within a Relation.
type Endpoint struct {
	Node string
	Pin  string
}

// Relation is one edge of the configuration document's `relation` array.
type Relation struct {
	Prev Endpoint
	Next Endpoint
}

// SystemSetting carries the optional init parameters for external services.
type SystemSetting struct {
	AudioDevice *AudioDeviceSetting
	FileIO      *FileIOSetting
}

// AudioDeviceSetting configures the realtime audio device service.
type AudioDeviceSetting struct {
	Enabled bool
}

// FileIOSetting configures the file I/O service.
type FileIOSetting struct {
	BaseDir string
}

// counter tracks the last tick a node successfully ran, used by the
// scheduler's readiness checks.
type counter struct {
	processCounter uint64
}

// GraphNode is the scheduler's view of one instantiated node: identity,
// connectivity, and the processor doing the actual work.
type GraphNode struct {
	Name        string
	Category    node.ProcessCategory
	Specifier   node.Specifier
	IsConnected bool
	Processor   node.Processor

	PrevNodes map[string]*GraphNode
	NextNodes map[string]*GraphNode

	counter counter
}

// HasRunThisTick reports whether the node has already run in tick t.
func (g *GraphNode) HasRunThisTick(t uint64) bool {
	return g.counter.processCounter >= t
}

// MarkRan records that the node ran in tick t.
func (g *GraphNode) MarkRan(t uint64) {
	g.counter.processCounter = t
}

// AllPrevRanThisTickInCategory reports whether every predecessor sharing
// this node's process category has already run in tick t. Predecessors in
// a different category are ignored, since cross-category edges are honored
// across ticks only (§4.4 "Ordering guarantees").
func (g *GraphNode) AllPrevRanThisTickInCategory(t uint64) bool {
	for _, p := range g.PrevNodes {
		if p.Category != g.Category {
			continue
		}
		if !p.HasRunThisTick(t) {
			return false
		}
	}
	return true
}

// ChildrenStates returns the finished-flags of this node's predecessors,
// for ProcessCommonInput.ChildrenStates.
func (g *GraphNode) ChildrenStates() []bool {
	if len(g.PrevNodes) == 0 {
		return nil
	}
	out := make([]bool, 0, len(g.PrevNodes))
	for _, p := range g.PrevNodes {
		out = append(out, p.Processor.IsFinished())
	}
	return out
}

// StartGroup is a process-start group: nodes sharing a process category
// with no in-category predecessors, seeding that category's traversal queue.
type StartGroup struct {
	Category   node.ProcessCategory
	StartItems []*GraphNode
}

// Graph is a built, validated graph ready to run.
type Graph struct {
	ID       string
	Setting  node.Setting
	Nodes    map[string]*GraphNode
	Groups   []*StartGroup // ascending category bit order
	Services node.Services

	cleanup func()
}

// Close releases any external services this graph's Builder initialized
// (the realtime audio device, primarily).
func (g *Graph) Close() {
	if g.cleanup != nil {
		g.cleanup()
	}
}
