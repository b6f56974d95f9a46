package metrics

import (
	"bytes"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
	"github.com/roach88/linkgraph/internal/testutil"
	"github.com/roach88/linkgraph/internal/traverser"
)

func TestCounters(t *testing.T) {
	m := New()
	m.CacheHit("condition")
	m.CacheHit("condition")
	m.CacheMiss("condition")
	m.CacheMiss("direct_targets")

	assert.Equal(t, 2.0, promtest.ToFloat64(m.cacheHits.WithLabelValues("condition")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.cacheMisses.WithLabelValues("condition")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.cacheMisses.WithLabelValues("direct_targets")))
}

func TestCacheStats(t *testing.T) {
	m := New()
	m.CacheHit("direct_targets")
	m.CacheHit("condition")
	m.CacheHit("condition")
	m.CacheHit("condition")
	m.CacheMiss("condition")

	stats, err := m.CacheStats()
	require.NoError(t, err)
	assert.Equal(t, []CacheStat{
		{Cache: "condition", Hits: 3, Misses: 1},
		{Cache: "direct_targets", Hits: 1},
	}, stats)
	assert.InDelta(t, 0.75, stats[0].HitRatio(), 1e-9)
	assert.Zero(t, CacheStat{}.HitRatio())
}

func TestWriteText(t *testing.T) {
	m := New()
	m.CacheHit("condition")
	m.CacheMiss("plugin_executables")
	m.ObserveQuery("linkable_dependencies", 3*time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "# TYPE linkgraph_cache_hits_total counter")
	assert.Contains(t, out, `linkgraph_cache_hits_total{cache="condition"} 1`)
	assert.Contains(t, out, `linkgraph_cache_misses_total{cache="plugin_executables"} 1`)
	assert.Contains(t, out, "# TYPE linkgraph_query_duration_seconds histogram")
	assert.Contains(t, out, `linkgraph_query_duration_seconds_count{query="linkable_dependencies"} 1`)
}

func TestPrivateRegistry(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	a.CacheHit("condition")
	assert.Equal(t, 0.0, promtest.ToFloat64(b.cacheHits.WithLabelValues("condition")))
}

func TestRecordsTraverserQueries(t *testing.T) {
	const appPath = "/ws/App"
	g := graph.NewBuilder("Diamond", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("A", graph.StaticFramework),
		), true).
		Edge(testutil.Node(appPath, "App"), testutil.Node(appPath, "A"), platform.When(platform.FilterIOS)).
		Build()

	m := New()
	tr := traverser.New(g, traverser.WithMetrics(m))
	for range 2 {
		_, err := tr.LinkableDependencies(appPath, "App")
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, promtest.ToFloat64(m.cacheMisses.WithLabelValues("condition")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.cacheHits.WithLabelValues("condition")))
	assert.Equal(t, 1, promtest.CollectAndCount(m.queryDuration, "linkgraph_query_duration_seconds"))
}
