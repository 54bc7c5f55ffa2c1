package graph

import (
	"os"

	"github.com/rs/zerolog"
)

// loggerFor returns a zerolog.Logger tagged with the owning node's name,
// used by output-log sinks constructed through the factory table.
func loggerFor(nodeName string) zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Str("node", nodeName).Logger()
}
