package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/metrics"
	"github.com/roach88/linkgraph/internal/snapshot"
	"github.com/roach88/linkgraph/internal/traverser"
)

// loadGraph reads a snapshot. Failures are reported through f with the
// snapshot's error code and exit with ExitCommandError.
func (o *RootOptions) loadGraph(f *OutputFormatter, path string) (*graph.Graph, error) {
	g, err := snapshot.Load(path)
	if err != nil {
		code := snapshot.ErrorCode(err)
		if code == "" {
			code = ErrCodeGeneric
		}
		return nil, f.Fail(ExitCommandError, code, err.Error(), err)
	}
	o.Logger.Debug("loaded snapshot", "path", path, "graph", g.Name, "projects", len(g.Projects))
	return g, nil
}

// newTraverser wires the traverser to the CLI logger and a fresh metrics
// registry.
func (o *RootOptions) newTraverser(g *graph.Graph) (*traverser.Traverser, *metrics.Metrics) {
	m := metrics.New()
	return traverser.New(g, traverser.WithLogger(o.Logger), traverser.WithMetrics(m)), m
}

// parseTargetRef splits "project-path:name" at the last colon.
func parseTargetRef(s string) (path, name string, err error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("invalid target %q: want project-path:name", s)
	}
	return s[:i], s[i+1:], nil
}
