package graph

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/xerr"
)

// validate runs the seven ordered validation steps of spec.md §4.3 against
// the raw node/relation declarations, before any processor is instantiated.
func validate(nodes map[string]node.Metadata, relations []Relation, mode node.TickMode) error {
	// 1. Every Relation has non-empty node and pin names.
	for _, r := range relations {
		if r.Prev.Node == "" || r.Prev.Pin == "" || r.Next.Node == "" || r.Next.Pin == "" {
			return xerr.NewGraphError("relation-endpoints-nonempty", "", relationName(r), "relation endpoints must name a node and a pin")
		}
	}

	// 2. Every referenced prev.node/next.node exists.
	for _, r := range relations {
		if _, ok := nodes[r.Prev.Node]; !ok && r.Prev.Node != startPinName {
			return xerr.NewGraphError("node-exists", r.Prev.Node, relationName(r), "referenced node does not exist")
		}
		if _, ok := nodes[r.Next.Node]; !ok && r.Next.Node != startPinName {
			return xerr.NewGraphError("node-exists", r.Next.Node, relationName(r), "referenced node does not exist")
		}
	}

	// 3 & 4. prev.pin exists as a declared output, next.pin as a declared
	// input, and their categories are compatible. Deferred to build time
	// since pin declarations live on instantiated processors, not on
	// Metadata; graph.Builder checks each relation in its wiring loop (build
	// step 2) just before linking it, so a validation failure still
	// surfaces before any tick runs.

	// 5. At most one _start_pin exists, and if one is declared it must be
	// referenced by at least one relation. A graph with no _start_pin at
	// all (a plain emitter/processor/sink pipeline) is not required to
	// declare one.
	startCount := 0
	for _, m := range nodes {
		if m.Type == node.SpecStartPin {
			startCount++
		}
	}
	if startCount > 1 {
		return xerr.NewGraphError("single-start-pin", "", "", "more than one _start_pin node declared")
	}
	if startCount == 1 {
		referenced := false
		for _, r := range relations {
			if r.Prev.Node == startPinName {
				referenced = true
			}
		}
		if !referenced {
			return xerr.NewGraphError("start-pin-referenced", "", "", "_start_pin exists but is not referenced by any relation")
		}
	}

	// 6. Cycle detection: for each node, BFS from that node collecting
	// (from,to) edges; duplicate detection on that set raises a cycle error.
	adjacency := make(map[string][]string)
	for _, r := range relations {
		adjacency[r.Prev.Node] = append(adjacency[r.Prev.Node], r.Next.Node)
	}
	for start := range nodes {
		if err := bfsCycleCheck(start, adjacency); err != nil {
			return err
		}
	}

	// 7. Every node's declared time-tick support intersects the configured
	// mode.
	for name, m := range nodes {
		if !m.Type.SupportsTick(mode) {
			return xerr.NewGraphError("tick-mode-supported", name, "", "node type %q does not support the configured tick mode", m.Type)
		}
	}
	return nil
}

const startPinName = "_start_pin"

func relationName(r Relation) string {
	return r.Prev.Node + "." + r.Prev.Pin + "->" + r.Next.Node + "." + r.Next.Pin
}

// bfsCycleCheck performs a breadth-first traversal from start, recording
// every (from,to) edge visited; a repeated edge means the traversal looped
// back on itself, i.e. a cycle reachable from start.
func bfsCycleCheck(start string, adjacency map[string][]string) error {
	type edge struct{ from, to string }
	seen := make(map[edge]bool)
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			e := edge{cur, next}
			if seen[e] {
				return xerr.NewGraphError("acyclic", cur, "", "cycle detected reachable from node %q", start)
			}
			seen[e] = true
			queue = append(queue, next)
		}
	}
	return nil
}
