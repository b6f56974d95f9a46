package traverser

import "sync"

// Cache names reported to the Recorder.
const (
	cacheCondition      = "condition"
	cacheDirectTargets  = "direct_targets"
	cachePluginBinaries = "plugin_executables"
)

// memo is a mutex-guarded memo table.
//
// The lock only covers a single get or put. Callers compute outside the
// lock, so two goroutines may compute the same entry concurrently; results
// are deterministic, so whichever put lands last is as good as the first.
//
// Thread-safe: Can be called concurrently.
type memo[K comparable, V any] struct {
	name    string
	rec     Recorder
	mu      sync.Mutex
	entries map[K]V
}

func newMemo[K comparable, V any](name string, rec Recorder) *memo[K, V] {
	return &memo[K, V]{name: name, rec: rec, entries: make(map[K]V)}
}

func (m *memo[K, V]) get(k K) (V, bool) {
	m.mu.Lock()
	v, ok := m.entries[k]
	m.mu.Unlock()

	if ok {
		m.rec.CacheHit(m.name)
	} else {
		m.rec.CacheMiss(m.name)
	}
	return v, ok
}

func (m *memo[K, V]) put(k K, v V) {
	m.mu.Lock()
	m.entries[k] = v
	m.mu.Unlock()
}

func (m *memo[K, V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
