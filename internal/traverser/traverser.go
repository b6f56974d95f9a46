package traverser

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// Recorder receives cache and query timing events. The metrics package
// provides a Prometheus-backed implementation.
type Recorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
	ObserveQuery(query string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)                   {}
func (nopRecorder) CacheMiss(string)                  {}
func (nopRecorder) ObserveQuery(string, time.Duration) {}

// Traverser answers dependency questions about one immutable Graph.
//
// A Traverser owns every memo table used to answer those questions: the
// combined-condition cache, the direct-target-dependency cache, the plugin
// executable cache and the conditional subgraph. Caches live exactly as
// long as the Traverser. When the graph changes, build a new Traverser.
//
// Thread-safe: all methods can be called concurrently.
type Traverser struct {
	graph   *graph.Graph
	logger  *slog.Logger
	metrics Recorder
	sdks    SDKMetadataProvider

	conditions    *memo[graph.Edge, platform.CombinationResult]
	directTargets *memo[graph.GraphTarget, []graph.GraphTarget]
	plugins       *memo[graph.TargetDependency, []string]

	subgraphOnce sync.Once
	subgraph     graph.DependencySet
}

// Option configures a Traverser.
type Option func(*Traverser)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(t *Traverser) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMetrics sets the recorder for cache and query metrics.
func WithMetrics(r Recorder) Option {
	return func(t *Traverser) {
		if r != nil {
			t.metrics = r
		}
	}
}

// WithSDKMetadataProvider replaces the provider used to locate SDKs.
func WithSDKMetadataProvider(p SDKMetadataProvider) Option {
	return func(t *Traverser) {
		if p != nil {
			t.sdks = p
		}
	}
}

// New creates a Traverser over g.
func New(g *graph.Graph, opts ...Option) *Traverser {
	t := &Traverser{
		graph:   g,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: nopRecorder{},
		sdks:    SystemSDKMetadataProvider{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.conditions = newMemo[graph.Edge, platform.CombinationResult](cacheCondition, t.metrics)
	t.directTargets = newMemo[graph.GraphTarget, []graph.GraphTarget](cacheDirectTargets, t.metrics)
	t.plugins = newMemo[graph.TargetDependency, []string](cachePluginBinaries, t.metrics)
	return t
}

// Graph returns the graph being traversed.
func (t *Traverser) Graph() *graph.Graph {
	return t.graph
}

// Name is the graph name.
func (t *Traverser) Name() string {
	return t.graph.Name
}

// Path is the graph root path.
func (t *Traverser) Path() string {
	return t.graph.Path
}

// Workspace returns the workspace description.
func (t *Traverser) Workspace() graph.Workspace {
	return t.graph.Workspace
}

// HasPackages reports whether any project declares a package.
func (t *Traverser) HasPackages() bool {
	for _, pkgs := range t.graph.Packages {
		if len(pkgs) > 0 {
			return true
		}
	}
	return false
}

// HasRemotePackages reports whether any declared package is remote.
func (t *Traverser) HasRemotePackages() bool {
	for _, pkgs := range t.graph.Packages {
		for _, p := range pkgs {
			if p.Kind == graph.PackageRemote {
				return true
			}
		}
	}
	return false
}

// CacheStats reports the number of memoized entries per cache.
func (t *Traverser) CacheStats() map[string]int {
	return map[string]int{
		cacheCondition:      t.conditions.len(),
		cacheDirectTargets:  t.directTargets.len(),
		cachePluginBinaries: t.plugins.len(),
	}
}

// observe times a public query. Use as: defer t.observe("name")().
func (t *Traverser) observe(query string) func() {
	start := time.Now()
	return func() {
		t.metrics.ObserveQuery(query, time.Since(start))
	}
}

// Target looks a target up by project path and name.
func (t *Traverser) Target(path, name string) (graph.GraphTarget, bool) {
	project, ok := t.graph.Projects[path]
	if !ok {
		return graph.GraphTarget{}, false
	}
	target, ok := project.Targets[name]
	if !ok {
		return graph.GraphTarget{}, false
	}
	return graph.GraphTarget{Path: path, Target: target, Project: project}, true
}

// TargetFrom resolves a target node to its GraphTarget. It returns false for
// non-target nodes and for dangling target references.
func (t *Traverser) TargetFrom(d graph.Dependency) (graph.GraphTarget, bool) {
	td, ok := d.(graph.TargetDependency)
	if !ok {
		return graph.GraphTarget{}, false
	}
	return t.Target(td.Path, td.Name)
}

// testTarget applies test to the target behind d. Non-targets and dangling
// references fail the test.
func (t *Traverser) testTarget(d graph.Dependency, test func(*graph.Target) bool) bool {
	gt, ok := t.TargetFrom(d)
	if !ok {
		return false
	}
	return test(gt.Target)
}

func targetNode(path, name string) graph.TargetDependency {
	return graph.TargetDependency{Name: name, Path: path}
}
