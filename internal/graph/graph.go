// Package graph holds the resolved dependency graph of a workspace: the
// projects and their targets, the precompiled artifacts they depend on, and
// the (optionally platform-conditioned) edges between them.
//
// A Graph is immutable once built. Queries over it live in the traverser
// package.
package graph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/linkgraph/internal/platform"
)

// DependencySet is the set of direct dependencies of a node.
type DependencySet map[Dependency]struct{}

// Contains reports whether d is in the set.
func (s DependencySet) Contains(d Dependency) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the members in Compare order.
func (s DependencySet) Sorted() []Dependency {
	out := make([]Dependency, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.SortFunc(out, Compare)
	return out
}

// Edge is a directed dependency from From to To.
type Edge struct {
	From Dependency
	To   Dependency
}

func (e Edge) String() string {
	return e.From.String() + " -> " + e.To.String()
}

// Graph is the root aggregate.
//
// Dependencies maps each node to its direct dependencies. A node that has
// no entry has no outgoing edges. DependencyConditions restricts an edge to
// a set of platforms; an edge absent from the map is always active.
type Graph struct {
	Name                 string
	Path                 string
	Workspace            Workspace
	Projects             map[string]*Project
	Packages             map[string]map[string]Package // project path -> package id
	Dependencies         map[Dependency]DependencySet
	DependencyConditions map[Edge]platform.Condition
}

// NodeKey returns the form of d used as a key of Dependencies. A target
// keeps its outgoing edges under its name and path only: the linking status
// belongs to the edge pointing at it, not to the target.
func NodeKey(d Dependency) Dependency {
	if td, ok := d.(TargetDependency); ok && td.Status != "" {
		td.Status = ""
		return td
	}
	return d
}

// DependenciesOf returns the direct dependencies of d.
func (g *Graph) DependenciesOf(d Dependency) DependencySet {
	return g.Dependencies[NodeKey(d)]
}

// Condition returns the condition of the edge from -> to. The zero
// (unconditional) value is returned for edges without a condition.
func (g *Graph) Condition(from, to Dependency) platform.Condition {
	return g.DependencyConditions[Edge{From: NodeKey(from), To: to}]
}

// HasEdge reports whether from depends directly on to.
func (g *Graph) HasEdge(from, to Dependency) bool {
	return g.DependenciesOf(from).Contains(to)
}

// Edges returns every edge in deterministic order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for from, tos := range g.Dependencies {
		for to := range tos {
			out = append(out, Edge{From: from, To: to})
		}
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if c := Compare(a.From, b.From); c != 0 {
			return c
		}
		return Compare(a.To, b.To)
	})
	return out
}

// Nodes returns every node that appears in an edge, in Compare order.
func (g *Graph) Nodes() []Dependency {
	seen := make(DependencySet)
	for from, tos := range g.Dependencies {
		seen[from] = struct{}{}
		for to := range tos {
			seen[to] = struct{}{}
		}
	}
	return seen.Sorted()
}

// ProjectPaths returns the project paths in sorted order.
func (g *Graph) ProjectPaths() []string {
	out := make([]string, 0, len(g.Projects))
	for p := range g.Projects {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// GraphTarget pairs a target with the project that owns it.
// Two GraphTargets are equal when they point at the same target and project.
type GraphTarget struct {
	Path    string
	Target  *Target
	Project *Project
}

// Dependency returns the graph node of the target.
func (t GraphTarget) Dependency() TargetDependency {
	return TargetDependency{Name: t.Target.Name, Path: t.Path}
}

func (t GraphTarget) String() string {
	return t.Path + ":" + t.Target.Name
}

// CompareTargets orders GraphTargets by project path, then target name.
func CompareTargets(a, b GraphTarget) int {
	if c := cmp.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	return cmp.Compare(a.Target.Name, b.Target.Name)
}

// Key is a stable textual identity for a node. Equal nodes have equal keys.
func Key(d Dependency) string {
	return fmt.Sprintf("%s%+v", d.Kind(), d)
}

// Compare orders nodes by kind, then by key.
func Compare(a, b Dependency) int {
	if c := cmp.Compare(kindRank(a.Kind()), kindRank(b.Kind())); c != 0 {
		return c
	}
	return strings.Compare(Key(a), Key(b))
}

var kindOrder = []Kind{
	KindTarget, KindPackageProduct, KindFramework, KindXCFramework,
	KindLibrary, KindBundle, KindSDK, KindMacro,
}

func kindRank(k Kind) int {
	return slices.Index(kindOrder, k)
}

// Builder assembles a Graph. It is meant for loaders and tests; the zero
// value is not usable, call NewBuilder.
type Builder struct {
	g *Graph
}

// NewBuilder starts a graph with the given name and root path. The
// workspace defaults to the same name and path with no projects.
func NewBuilder(name, path string) *Builder {
	return &Builder{g: &Graph{
		Name:                 name,
		Path:                 path,
		Workspace:            Workspace{Name: name, Path: path},
		Projects:             make(map[string]*Project),
		Packages:             make(map[string]map[string]Package),
		Dependencies:         make(map[Dependency]DependencySet),
		DependencyConditions: make(map[Edge]platform.Condition),
	}}
}

// Workspace replaces the workspace description.
func (b *Builder) Workspace(w Workspace) *Builder {
	b.g.Workspace = w
	return b
}

// Project registers a project. Root projects are also added to the
// workspace project list.
func (b *Builder) Project(p *Project, root bool) *Builder {
	if p.Targets == nil {
		p.Targets = make(map[string]*Target)
	}
	b.g.Projects[p.Path] = p
	if root && !slices.Contains(b.g.Workspace.Projects, p.Path) {
		b.g.Workspace.Projects = append(b.g.Workspace.Projects, p.Path)
	}
	return b
}

// Package registers a package under a project path.
func (b *Builder) Package(projectPath, id string, pkg Package) *Builder {
	if b.g.Packages[projectPath] == nil {
		b.g.Packages[projectPath] = make(map[string]Package)
	}
	b.g.Packages[projectPath][id] = pkg
	return b
}

// Edge adds from -> to. A non-zero condition restricts the edge.
func (b *Builder) Edge(from, to Dependency, condition platform.Condition) *Builder {
	from = NodeKey(from)
	set, ok := b.g.Dependencies[from]
	if !ok {
		set = make(DependencySet)
		b.g.Dependencies[from] = set
	}
	set[to] = struct{}{}
	if !condition.IsUnconditional() {
		b.g.DependencyConditions[Edge{From: from, To: to}] = condition
	}
	return b
}

// Node makes sure d has an entry in Dependencies even without edges.
func (b *Builder) Node(d Dependency) *Builder {
	d = NodeKey(d)
	if _, ok := b.g.Dependencies[d]; !ok {
		b.g.Dependencies[d] = make(DependencySet)
	}
	return b
}

// Build returns the graph. The builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	g := b.g
	b.g = nil
	return g
}
