// Command noisegraph loads a configuration document, builds its graph(s),
// and runs them to collective termination.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"zikichombo.org/noisegraph/config"
	"zikichombo.org/noisegraph/graph"
	"zikichombo.org/noisegraph/scheduler"
	"zikichombo.org/noisegraph/xerr"
)

var inputFile string

func main() {
	root := &cobra.Command{
		Use:   "noisegraph",
		Short: "Run a noisegraph audio processing graph to completion",
		RunE:  run,
	}
	root.Flags().StringVar(&inputFile, "input-file", "", "path to the JSON configuration document (required)")
	root.MarkFlagRequired("input-file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	doc, err := config.Load(inputFile)
	if err != nil {
		return reportAndExit(err)
	}

	b := graph.NewBuilder()
	g, err := b.Build(doc.Nodes, doc.Relations, doc.Setting, doc.System)
	if err != nil {
		return reportAndExit(err)
	}
	defer g.Close()

	sched := scheduler.New(g)
	if err := sched.Run(context.Background()); err != nil {
		return reportAndExit(err)
	}

	log.Info().Str("graph", g.ID).Msg("collective termination reached")
	return nil
}

// reportAndExit prints the first offending relation/node name with the
// rule it violates (ConfigError/GraphError/InitError all carry that), then
// exits non-zero. pkg/errors.WithStack wraps each of these at its
// construction site, so they are unwrapped via errors.As rather than a
// direct type switch.
func reportAndExit(err error) error {
	var cfgErr *xerr.ConfigError
	var graphErr *xerr.GraphError
	var initErr *xerr.InitError

	switch {
	case stderrors.As(err, &cfgErr):
		fmt.Fprintf(os.Stderr, "configuration error [%s]: %s\n", cfgErr.Rule, cfgErr.Msg)
	case stderrors.As(err, &graphErr):
		name := graphErr.Node
		if graphErr.Relation != "" {
			name = graphErr.Relation
		}
		fmt.Fprintf(os.Stderr, "graph error [%s] at %s: %s\n", graphErr.Rule, name, graphErr.Msg)
	case stderrors.As(err, &initErr):
		fmt.Fprintf(os.Stderr, "init error at node %q: %s\n", initErr.Node, initErr.Msg)
	default:
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
	return nil
}
