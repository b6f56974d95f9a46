package traverser

import (
	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// CombinedCondition returns the platforms under which to is reachable from
// from, combining every path between them.
//
// Along one path the edge conditions are intersected; across paths the
// results are unioned. Incompatible means no path is active on any
// platform. Unconditional means some path is active everywhere.
//
// Example:
//
//	A --(ios)--> B --> C
//	A --(macos)--> D --> C
//
// gives C the condition {ios, macos} from A.
//
// Every (from, to) result that does not depend on a cycle is memoized for
// the life of the Traverser. Nodes outside the conditional subgraph (the
// endpoints of conditioned edges and everything reachable from them) never
// reach the memo: when both ends are outside it the answer is unconditional.
func (t *Traverser) CombinedCondition(to, from graph.Dependency) platform.CombinationResult {
	if len(t.graph.DependencyConditions) == 0 {
		return platform.Compatible(platform.Condition{})
	}

	sub := t.conditionalSubgraph()
	if !sub.Contains(graph.NodeKey(from)) && !sub.Contains(graph.NodeKey(to)) {
		return platform.Compatible(platform.Condition{})
	}

	result, _ := t.combinedCondition(to, from, make(graph.DependencySet))
	return result
}

// combinedCondition recurses through from's children. onPath holds the
// nodes of the current path; a path that loops back is incompatible.
//
// cut reports whether the result depends on such a loop. Those results are
// partial, since they depend on where the walk started, and are not cached.
func (t *Traverser) combinedCondition(to, from graph.Dependency, onPath graph.DependencySet) (result platform.CombinationResult, cut bool) {
	key := graph.Edge{From: from, To: to}
	if cached, ok := t.conditions.get(key); ok {
		return cached, false
	}
	if onPath.Contains(from) {
		return platform.Incompatible(), true
	}

	children := t.graph.DependenciesOf(from)
	if len(children) == 0 {
		// Leaf: nothing left to walk.
		return platform.Incompatible(), false
	}

	if direct, ok := directChild(children, to); ok {
		result = platform.Compatible(t.graph.Condition(from, direct))
	} else {
		// A --(ios)--> B --> C: C inherits ios through B.
		result = platform.Incompatible()
		onPath[from] = struct{}{}
		for child := range children {
			hop := t.graph.Condition(from, child)
			var viaChild platform.CombinationResult
			transitive, childCut := t.combinedCondition(to, child, onPath)
			cut = cut || childCut
			switch c, ok := transitive.Condition(); {
			case !ok:
				viaChild = platform.Incompatible()
			case c.IsUnconditional():
				viaChild = platform.Compatible(hop)
			default:
				viaChild = c.Intersect(hop)
			}
			result = result.Combine(viaChild)
		}
		delete(onPath, from)
	}

	if !cut {
		t.conditions.put(key, result)
	}
	return result, cut
}

// directChild finds to among children. Targets match on name and path so
// a lookup through a differently-linked edge still finds the edge.
func directChild(children graph.DependencySet, to graph.Dependency) (graph.Dependency, bool) {
	if children.Contains(to) {
		return to, true
	}
	if _, ok := to.(graph.TargetDependency); !ok {
		return nil, false
	}
	want := graph.NodeKey(to)
	for child := range children {
		if graph.NodeKey(child) == want {
			return child, true
		}
	}
	return nil, false
}

// conditionalSubgraph returns, in node-key form, the endpoints of every
// conditioned edge and everything reachable from them. Computed once.
func (t *Traverser) conditionalSubgraph() graph.DependencySet {
	t.subgraphOnce.Do(func() {
		endpoints := make(graph.DependencySet)
		for e := range t.graph.DependencyConditions {
			endpoints[e.From] = struct{}{}
			endpoints[e.To] = struct{}{}
		}
		roots := make([]graph.Dependency, 0, len(endpoints))
		for d := range endpoints {
			roots = append(roots, d)
		}
		reachable := t.FilterDependencies(roots, nil, nil)

		sub := make(graph.DependencySet, len(endpoints)+len(reachable))
		for d := range union(endpoints, reachable) {
			sub[graph.NodeKey(d)] = struct{}{}
		}
		t.subgraph = sub
		t.logger.Debug("conditional subgraph computed",
			"conditioned_edges", len(t.graph.DependencyConditions),
			"nodes", len(sub),
		)
	})
	return t.subgraph
}
