package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"zikichombo.org/noisegraph/graph"
)

// RunAll drives several independent graphs concurrently, one goroutine per
// graph via errgroup, returning the first error any of them report (errgroup
// cancels the shared context for the rest). This is the multi-graph analogue
// of running a single Scheduler: a batch conversion job processing several
// input files, say, each as its own graph.
func RunAll(ctx context.Context, graphs []*graph.Graph) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, gr := range graphs {
		gr := gr
		g.Go(func() error {
			defer gr.Close()
			return New(gr).Run(ctx)
		})
	}
	return g.Wait()
}
