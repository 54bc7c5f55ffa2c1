package graph

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"zikichombo.org/noisegraph/audiodevice"
	"zikichombo.org/noisegraph/fileio"
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	coreresample "zikichombo.org/noisegraph/resample"
	"zikichombo.org/noisegraph/xerr"
)

// Builder turns a node-metadata map and relation list into a validated,
// wired Graph. Each Build call stamps the resulting Graph with a fresh
// uuid.UUID so logs and error messages can distinguish concurrently running
// graphs (see scheduler.RunAll, the errgroup-based multi-graph runner).
type Builder struct {
	Logger zerolog.Logger
}

// NewBuilder constructs a Builder logging through the package-default
// zerolog logger.
func NewBuilder() *Builder {
	return &Builder{Logger: log.Logger}
}

// Build validates nodes/relations against setting.TimeTickMode, initializes
// the external services any node declares needing, instantiates every
// processor, wires pin links, marks connectivity, and computes process-start
// groups.
func (b *Builder) Build(nodes map[string]node.Metadata, relations []Relation, setting node.Setting, sys SystemSetting) (*Graph, error) {
	if err := validate(nodes, relations, setting.TimeTickMode); err != nil {
		return nil, err
	}

	needs := aggregateSystemNeeds(nodes)
	services, cleanup, err := initServices(needs, sys, setting)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		ID:       uuid.NewString(),
		Setting:  setting,
		Nodes:    make(map[string]*GraphNode, len(nodes)+1),
		Services: services,
	}
	g.cleanup = cleanup

	// Build step 1: instantiate each processor.
	for name, m := range nodes {
		proc, err := instantiate(name, m, setting, services)
		if err != nil {
			return nil, err
		}
		g.Nodes[name] = &GraphNode{
			Name:      name,
			Category:  proc.Control().Category,
			Specifier: m.Type,
			Processor: proc,
			PrevNodes: make(map[string]*GraphNode),
			NextNodes: make(map[string]*GraphNode),
		}
	}

	// Build step 2: for each relation, attach pin links and prev/next maps.
	for _, r := range relations {
		prevNode, ok := g.Nodes[r.Prev.Node]
		if !ok {
			return nil, xerr.NewGraphError("node-exists", r.Prev.Node, relationName(r), "referenced node does not exist")
		}
		nextNode, ok := g.Nodes[r.Next.Node]
		if !ok {
			return nil, xerr.NewGraphError("node-exists", r.Next.Node, relationName(r), "referenced node does not exist")
		}
		outPin, ok := prevNode.Processor.Control().Outputs[r.Prev.Pin]
		if !ok {
			return nil, xerr.NewGraphError("pin-exists", r.Prev.Node, relationName(r), "output pin %q does not exist", r.Prev.Pin)
		}
		inPin, ok := nextNode.Processor.Control().Inputs[r.Next.Pin]
		if !ok {
			return nil, xerr.NewGraphError("pin-exists", r.Next.Node, relationName(r), "input pin %q does not exist", r.Next.Pin)
		}
		if !pin.Compatible(outPin.Categories, inPin.Categories) {
			return nil, xerr.NewGraphError("pin-category-compatible", "", relationName(r), "output category %v incompatible with input accepting %v", outPin.Categories, inPin.Categories)
		}
		outPin.Link(inPin)
		inPin.Link(outPin)
		prevNode.NextNodes[nextNode.Name] = nextNode
		nextNode.PrevNodes[prevNode.Name] = prevNode
	}

	// Build step 3: mark is_connected via forward BFS from _start_pin.
	start, ok := g.Nodes[startPinName]
	if ok {
		markConnected(start)
	}

	// Build step 4: compute process-start groups in ascending category bit
	// order.
	g.Groups = computeStartGroups(g.Nodes)

	return g, nil
}

func aggregateSystemNeeds(nodes map[string]node.Metadata) node.SystemCategory {
	var needs node.SystemCategory
	for _, m := range nodes {
		needs |= m.Type.SystemNeeds()
	}
	return needs
}

func initServices(needs node.SystemCategory, sys SystemSetting, setting node.Setting) (node.Services, func(), error) {
	var services node.Services
	var closers []func()

	if needs&node.FileIO != 0 {
		baseDir := ""
		if sys.FileIO != nil {
			baseDir = sys.FileIO.BaseDir
		}
		services.Files = fileio.New(baseDir)
	}
	if needs&node.ResampleService != 0 {
		services.Resample = coreresample.New(setting.SampleRate, setting.SampleRate, false)
	}
	if needs&node.AudioDevice != 0 {
		enabled := sys.AudioDevice != nil && sys.AudioDevice.Enabled
		if enabled {
			proxy, err := audiodevice.Open(float64(setting.SampleRate), setting.Channels, setting.SampleCountFrame)
			if err != nil {
				return services, nil, err
			}
			services.AudioDevice = proxy
			closers = append(closers, func() { proxy.Close() })
		}
	}
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return services, cleanup, nil
}

func markConnected(g *GraphNode) {
	if g.IsConnected {
		return
	}
	g.IsConnected = true
	for _, next := range g.NextNodes {
		markConnected(next)
	}
}

// computeStartGroups finds, for every ProcessCategory bit in use, the
// nodes in that category with no in-category predecessor, in ascending bit
// order.
func computeStartGroups(nodes map[string]*GraphNode) []*StartGroup {
	categories := map[node.ProcessCategory]bool{}
	for _, n := range nodes {
		categories[n.Category] = true
	}
	ordered := make([]node.ProcessCategory, 0, len(categories))
	for c := range categories {
		ordered = append(ordered, c)
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j-1] > ordered[j]; j-- {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}

	groups := make([]*StartGroup, 0, len(ordered))
	for _, cat := range ordered {
		grp := &StartGroup{Category: cat}
		for _, n := range nodes {
			if n.Category != cat {
				continue
			}
			hasPredInCategory := false
			for _, p := range n.PrevNodes {
				if p.Category == cat {
					hasPredInCategory = true
					break
				}
			}
			if !hasPredInCategory {
				grp.StartItems = append(grp.StartItems, n)
			}
		}
		groups = append(groups, grp)
	}
	return groups
}
