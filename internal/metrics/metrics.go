// Package metrics records traverser cache and query timing in a private
// Prometheus registry.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "linkgraph"

// Metrics implements traverser.Recorder.
//
// Thread-safe: Can be called concurrently.
type Metrics struct {
	registry      *prometheus.Registry
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry. Nothing is registered with
// the global default registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Number of traverser memo lookups answered from cache.",
			},
			[]string{"cache"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Number of traverser memo lookups that had to be computed.",
			},
			[]string{"cache"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Time taken to answer a per-target resolution query.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"query"},
		),
	}
	m.registry.MustRegister(m.cacheHits, m.cacheMisses, m.queryDuration)
	return m
}

// CacheHit counts a cache hit.
func (m *Metrics) CacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// CacheMiss counts a cache miss.
func (m *Metrics) CacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// ObserveQuery records how long a query took.
func (m *Metrics) ObserveQuery(query string, d time.Duration) {
	m.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// Registry returns the private registry, e.g. for serving over HTTP.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteText writes every collected family in the Prometheus text
// exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// CacheStat is the hit and miss count of one cache.
type CacheStat struct {
	Cache  string
	Hits   uint64
	Misses uint64
}

// HitRatio returns hits / (hits + misses), or 0 when the cache was unused.
func (c CacheStat) HitRatio() float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(total)
}

// CacheStats summarizes the cache counters, ordered by cache name.
func (m *Metrics) CacheStats() ([]CacheStat, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	byCache := map[string]*CacheStat{}
	stat := func(cache string) *CacheStat {
		s, ok := byCache[cache]
		if !ok {
			s = &CacheStat{Cache: cache}
			byCache[cache] = s
		}
		return s
	}

	for _, mf := range families {
		var hits bool
		switch mf.GetName() {
		case namespace + "_cache_hits_total":
			hits = true
		case namespace + "_cache_misses_total":
		default:
			continue
		}
		for _, metric := range mf.GetMetric() {
			s := stat(labelValue(metric, "cache"))
			n := uint64(metric.GetCounter().GetValue())
			if hits {
				s.Hits += n
			} else {
				s.Misses += n
			}
		}
	}

	out := make([]CacheStat, 0, len(byCache))
	for _, s := range byCache {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cache < out[j].Cache })
	return out, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
