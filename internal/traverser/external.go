package traverser

import (
	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// DirectTargetExternalDependencies returns the direct target dependencies
// that belong to external projects.
func (t *Traverser) DirectTargetExternalDependencies(path, name string) []TargetRef {
	return filterRefs(t.DirectTargetDependencies(path, name), func(r TargetRef) bool {
		return r.Project.IsExternal()
	})
}

// TargetsWithExternalDependencies returns the local targets that depend
// directly on at least one external target.
func (t *Traverser) TargetsWithExternalDependencies() []graph.GraphTarget {
	var out []graph.GraphTarget
	for _, gt := range t.AllInternalTargets() {
		if len(t.DirectTargetExternalDependencies(gt.Path, gt.Target.Name)) > 0 {
			out = append(out, gt)
		}
	}
	return out
}

// ExternalTargetSupportedPlatforms returns, for every target reachable from
// a local target with external dependencies, the platforms it must build
// for. Platforms flow from the consumer through each edge, narrowed by the
// edge condition, the consumer's dependency filters and the dependency's
// own platforms. Macros always build for macOS.
func (t *Traverser) ExternalTargetSupportedPlatforms() map[graph.GraphTarget]platform.Set[platform.Platform] {
	defer t.observe("external_target_supported_platforms")()
	return propagate(t,
		func(tg *graph.Target) platform.Set[platform.Platform] { return tg.SupportedPlatforms() },
		platform.NewSet(platform.MacOS),
		func(c platform.Condition, inherited platform.Set[platform.Platform], dep *graph.Target) platform.Set[platform.Platform] {
			return c.Platforms().Intersect(inherited).Intersect(dep.SupportedPlatforms())
		},
		func(inherited platform.Set[platform.Platform], dep *graph.Target) platform.Set[platform.Platform] {
			return inherited.Intersect(dep.SupportedPlatforms())
		},
	)
}

// ExternalTargetSupportedDestinations is ExternalTargetSupportedPlatforms
// for destinations. Macros always build for Mac.
func (t *Traverser) ExternalTargetSupportedDestinations() map[graph.GraphTarget]platform.Set[platform.Destination] {
	defer t.observe("external_target_supported_destinations")()
	return propagate(t,
		func(tg *graph.Target) platform.Set[platform.Destination] { return tg.Destinations },
		platform.NewSet(platform.Mac),
		func(c platform.Condition, inherited platform.Set[platform.Destination], dep *graph.Target) platform.Set[platform.Destination] {
			allowed := make(platform.Set[platform.Destination])
			for d := range inherited {
				if c.Contains(d.Filter()) {
					allowed[d] = struct{}{}
				}
			}
			return allowed.Intersect(dep.Destinations)
		},
		func(inherited platform.Set[platform.Destination], dep *graph.Target) platform.Set[platform.Destination] {
			return inherited.Intersect(dep.Destinations)
		},
	)
}

type propagation[T ~string] struct {
	target    graph.GraphTarget
	inherited platform.Set[T]
}

// propagate runs the forward fixed point shared by the platform and
// destination queries. A target is revisited only when its accumulated
// set grew.
func propagate[T ~string](
	t *Traverser,
	seed func(*graph.Target) platform.Set[T],
	macro platform.Set[T],
	conditioned func(platform.Condition, platform.Set[T], *graph.Target) platform.Set[T],
	unconditioned func(platform.Set[T], *graph.Target) platform.Set[T],
) map[graph.GraphTarget]platform.Set[T] {
	acc := make(map[graph.GraphTarget]platform.Set[T])

	var queue []propagation[T]
	for _, gt := range t.TargetsWithExternalDependencies() {
		queue = append(queue, propagation[T]{target: gt, inherited: seed(gt.Target)})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		filters := item.target.Target.DependencyPlatformFilters()
		for _, ref := range t.DirectTargetDependencies(item.target.Path, item.target.Target.Name) {
			dep := ref.Target
			inherited := item.inherited
			if dep.Product == graph.Macro {
				inherited = macro
			}

			var insert platform.Set[T]
			if !ref.Condition.IsUnconditional() && !filters.IsUnconditional() {
				c, ok := filters.Intersect(ref.Condition).Condition()
				if !ok || c.IsUnconditional() {
					continue
				}
				insert = conditioned(c, inherited, dep)
			} else {
				insert = unconditioned(inherited, dep)
			}

			existing := acc[ref.GraphTarget]
			if insert.IsSubset(existing) {
				if existing == nil {
					acc[ref.GraphTarget] = make(platform.Set[T])
				}
				continue
			}
			grown := existing.Union(insert)
			acc[ref.GraphTarget] = grown
			queue = append(queue, propagation[T]{target: ref.GraphTarget, inherited: grown})
		}
	}
	return acc
}

// AllOrphanExternalTargets returns the external targets that no local
// target needs on any platform. They are candidates for pruning.
func (t *Traverser) AllOrphanExternalTargets() []graph.GraphTarget {
	defer t.observe("all_orphan_external_targets")()
	var roots []graph.Dependency
	for _, gt := range t.TargetsWithExternalDependencies() {
		roots = append(roots, gt.Dependency())
	}
	platforms := t.ExternalTargetSupportedPlatforms()

	used := make(map[graph.GraphTarget]struct{})
	for d := range t.FilterDependencies(roots, nil, nil) {
		gt, ok := t.TargetFrom(d)
		if !ok {
			continue
		}
		if len(platforms[gt]) > 0 {
			used[gt] = struct{}{}
		}
	}

	var out []graph.GraphTarget
	for _, gt := range t.AllExternalTargets() {
		if _, ok := used[gt]; !ok {
			out = append(out, gt)
		}
	}
	return out
}
