package traverser

import "github.com/roach88/linkgraph/internal/graph"

// Predicate tests a graph node.
type Predicate func(graph.Dependency) bool

func always(graph.Dependency) bool { return true }
func never(graph.Dependency) bool  { return false }

// or combines predicates; the result holds when any of them holds.
func or(preds ...Predicate) Predicate {
	return func(d graph.Dependency) bool {
		for _, p := range preds {
			if p(d) {
				return true
			}
		}
		return false
	}
}

// FilterDependencies walks the graph depth-first from roots and returns
// every reachable node for which test holds.
//
// Roots are never tested and never skipped. For any other node, skip
// returning true keeps the node's own test result but stops the walk from
// descending below it. Each node is visited at most once, so diamonds cost
// one visit and cycles terminate. A nil test selects everything; a nil skip
// skips nothing.
func (t *Traverser) FilterDependencies(roots []graph.Dependency, test, skip Predicate) graph.DependencySet {
	if test == nil {
		test = always
	}
	if skip == nil {
		skip = never
	}

	isRoot := make(graph.DependencySet, len(roots))
	for _, r := range roots {
		isRoot[r] = struct{}{}
	}

	stack := make([]graph.Dependency, 0, len(roots))
	stack = append(stack, roots...)
	visited := make(graph.DependencySet)
	found := make(graph.DependencySet)

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited.Contains(node) {
			continue
		}
		visited[node] = struct{}{}

		root := isRoot.Contains(node)
		if !root && test(node) {
			found[node] = struct{}{}
		}
		if !root && skip(node) {
			continue
		}

		for child := range t.graph.DependenciesOf(node) {
			if !visited.Contains(child) {
				stack = append(stack, child)
			}
		}
	}
	return found
}

// filterFrom is FilterDependencies with a single root.
func (t *Traverser) filterFrom(root graph.Dependency, test, skip Predicate) graph.DependencySet {
	return t.FilterDependencies([]graph.Dependency{root}, test, skip)
}

// allDependenciesSatisfy reports whether every node reachable from root
// satisfies meets.
func (t *Traverser) allDependenciesSatisfy(root graph.Dependency, meets Predicate) bool {
	ok := true
	t.filterFrom(root, func(d graph.Dependency) bool {
		if !meets(d) {
			ok = false
		}
		return false
	}, nil)
	return ok
}

// PrebuiltDependencies returns every precompiled node reachable from root.
func (t *Traverser) PrebuiltDependencies(root graph.Dependency) []graph.Dependency {
	return t.filterFrom(root, graph.IsPrecompiled, nil).Sorted()
}

// union merges node sets into a new set.
func union(sets ...graph.DependencySet) graph.DependencySet {
	out := make(graph.DependencySet)
	for _, s := range sets {
		for d := range s {
			out[d] = struct{}{}
		}
	}
	return out
}
