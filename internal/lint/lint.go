// Package lint checks a dependency graph for structural problems that the
// traverser would otherwise silently tolerate: target cycles, edges that
// point at targets no project declares, and conditions attached to edges
// that do not exist.
package lint

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/linkgraph/internal/graph"
)

// Issue codes (L001-L099)
const (
	CodeCycle           = "L001" // target-level dependency cycle
	CodeSelfLoop        = "L002" // target depends on itself
	CodeDanglingTarget  = "L003" // edge endpoint names an undeclared target
	CodeOrphanCondition = "L004" // condition recorded for a missing edge
)

// Issue levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// Issue is a single lint finding.
type Issue struct {
	Code    string   `json:"code"`
	Level   string   `json:"level"`
	Path    []string `json:"path,omitempty"` // cycle path: ["a", "b", "a"]
	Message string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Level, i.Message)
}

// HasErrors reports whether any issue is at error level.
func HasErrors(issues []Issue) bool {
	return slices.ContainsFunc(issues, func(i Issue) bool { return i.Level == LevelError })
}

// Lint runs every check over g and returns the findings in a stable order:
// cycles first, then dangling targets, then orphan conditions.
//
// A clean graph returns an empty, non-nil slice.
func Lint(g *graph.Graph) []Issue {
	issues := []Issue{}
	issues = append(issues, Cycles(g)...)
	issues = append(issues, DanglingTargets(g)...)
	issues = append(issues, OrphanConditions(g)...)
	return issues
}

// adjacency maps a target id ("path:name") to the target ids it depends on.
type adjacency map[string][]string

func targetID(td graph.TargetDependency) string {
	return td.Path + ":" + td.Name
}

// targetAdjacency keeps target -> target edges only. Precompiled artifacts
// cannot close a cycle because they never have target dependencies.
func targetAdjacency(g *graph.Graph) adjacency {
	adj := make(adjacency)
	for _, e := range g.Edges() {
		from, ok := e.From.(graph.TargetDependency)
		if !ok {
			continue
		}
		id := targetID(from)
		if adj[id] == nil {
			adj[id] = []string{}
		}
		if to, ok := e.To.(graph.TargetDependency); ok {
			adj[id] = append(adj[id], targetID(to))
		}
	}
	for id, next := range adj {
		slices.Sort(next)
		adj[id] = slices.Compact(next)
	}
	return adj
}

// Cycles reports every strongly connected component of the target graph
// that contains a cycle. Each cycle is reported once, starting at its
// smallest member.
func Cycles(g *graph.Graph) []Issue {
	adj := targetAdjacency(g)

	var issues []Issue
	for _, scc := range tarjanSCC(adj) {
		if len(scc) > 1 || hasSelfLoop(scc[0], adj) {
			issues = append(issues, cycleIssue(scc, adj))
		}
	}
	slices.SortFunc(issues, func(a, b Issue) int {
		return cmp.Compare(a.Path[0], b.Path[0])
	})
	return issues
}

func hasSelfLoop(node string, adj adjacency) bool {
	_, ok := slices.BinarySearch(adj[node], node)
	return ok
}

// tarjanSCC returns the strongly connected components of adj. Nodes are
// visited in sorted order so the output does not depend on map iteration.
func tarjanSCC(adj adjacency) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

func cycleIssue(scc []string, adj adjacency) Issue {
	if len(scc) == 1 {
		id := scc[0]
		return Issue{
			Code:    CodeSelfLoop,
			Level:   LevelError,
			Path:    []string{id, id},
			Message: fmt.Sprintf("target depends on itself: %s", id),
		}
	}
	path := reconstructCyclePath(scc, adj)
	return Issue{
		Code:    CodeCycle,
		Level:   LevelError,
		Path:    path,
		Message: fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath returns the shortest cycle through the first member
// of scc, staying inside the component. The result starts and ends with the
// same node.
func reconstructCyclePath(scc []string, adj adjacency) []string {
	if len(scc) == 0 {
		return []string{}
	}
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	start := scc[0]
	parent := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adj[current] {
			if !members[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for n := current; n != start; n = parent[n] {
					path = append(path, n)
				}
				path = append(path, start)
				slices.Reverse(path)
				return path
			}
			if _, seen := parent[next]; !seen {
				parent[next] = current
				queue = append(queue, next)
			}
		}
	}
	return []string{start}
}

// DanglingTargets reports target nodes that appear in an edge but are not
// declared by any project in the graph.
func DanglingTargets(g *graph.Graph) []Issue {
	seen := map[string]bool{}
	var issues []Issue
	check := func(d graph.Dependency, role string, e graph.Edge) {
		td, ok := d.(graph.TargetDependency)
		if !ok || declared(g, td) {
			return
		}
		id := targetID(td)
		if seen[id+role] {
			return
		}
		seen[id+role] = true
		issues = append(issues, Issue{
			Code:    CodeDanglingTarget,
			Level:   LevelError,
			Path:    []string{id},
			Message: fmt.Sprintf("%s of edge %s is not declared by any project", role, e),
		})
	}
	for _, e := range g.Edges() {
		check(e.From, "source", e)
		check(e.To, "destination", e)
	}
	return issues
}

func declared(g *graph.Graph, td graph.TargetDependency) bool {
	p, ok := g.Projects[td.Path]
	if !ok {
		return false
	}
	_, ok = p.Targets[td.Name]
	return ok
}

// OrphanConditions reports platform conditions attached to edges that are
// not part of the graph. They are warnings: the traverser never reads them.
func OrphanConditions(g *graph.Graph) []Issue {
	var orphans []graph.Edge
	for e := range g.DependencyConditions {
		if !g.DependenciesOf(e.From).Contains(e.To) {
			orphans = append(orphans, e)
		}
	}
	slices.SortFunc(orphans, func(a, b graph.Edge) int {
		if c := graph.Compare(a.From, b.From); c != 0 {
			return c
		}
		return graph.Compare(a.To, b.To)
	})

	issues := make([]Issue, 0, len(orphans))
	for _, e := range orphans {
		issues = append(issues, Issue{
			Code:    CodeOrphanCondition,
			Level:   LevelWarning,
			Message: fmt.Sprintf("condition %s is set on missing edge %s", g.DependencyConditions[e], e),
		})
	}
	return issues
}
