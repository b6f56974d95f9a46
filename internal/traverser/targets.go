package traverser

import (
	"slices"
	"strings"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// TargetRef is a direct target dependency together with the condition of
// the edge that leads to it.
type TargetRef struct {
	graph.GraphTarget
	Condition platform.Condition
}

func compareTargetRefs(a, b TargetRef) int {
	if c := graph.CompareTargets(a.GraphTarget, b.GraphTarget); c != 0 {
		return c
	}
	return a.Condition.Compare(b.Condition)
}

func sortedTargets(set map[graph.GraphTarget]struct{}) []graph.GraphTarget {
	out := make([]graph.GraphTarget, 0, len(set))
	for gt := range set {
		out = append(out, gt)
	}
	slices.SortFunc(out, graph.CompareTargets)
	return out
}

// Targets returns the targets of the project at path.
func (t *Traverser) Targets(path string) []graph.GraphTarget {
	project, ok := t.graph.Projects[path]
	if !ok {
		return nil
	}
	out := make([]graph.GraphTarget, 0, len(project.Targets))
	for _, target := range project.Targets {
		out = append(out, graph.GraphTarget{Path: path, Target: target, Project: project})
	}
	slices.SortFunc(out, graph.CompareTargets)
	return out
}

// TargetsByProduct returns every target that builds product.
func (t *Traverser) TargetsByProduct(product graph.Product) []graph.GraphTarget {
	var out []graph.GraphTarget
	for _, gt := range t.AllTargets() {
		if gt.Target.Product == product {
			out = append(out, gt)
		}
	}
	return out
}

// AllTargets returns every target of every project.
func (t *Traverser) AllTargets() []graph.GraphTarget {
	return t.allTargets(false)
}

// AllInternalTargets returns the targets of local projects.
func (t *Traverser) AllInternalTargets() []graph.GraphTarget {
	return t.allTargets(true)
}

// AllExternalTargets returns the targets of external projects.
func (t *Traverser) AllExternalTargets() []graph.GraphTarget {
	var out []graph.GraphTarget
	for _, gt := range t.AllTargets() {
		if gt.Project.IsExternal() {
			out = append(out, gt)
		}
	}
	return out
}

func (t *Traverser) allTargets(excludeExternal bool) []graph.GraphTarget {
	var out []graph.GraphTarget
	for _, path := range t.graph.ProjectPaths() {
		if excludeExternal && t.graph.Projects[path].IsExternal() {
			continue
		}
		out = append(out, t.Targets(path)...)
	}
	return out
}

// RootTargets returns the targets of the workspace's projects.
func (t *Traverser) RootTargets() []graph.GraphTarget {
	set := make(map[graph.GraphTarget]struct{})
	for _, path := range t.graph.Workspace.Projects {
		for _, gt := range t.Targets(path) {
			set[gt] = struct{}{}
		}
	}
	return sortedTargets(set)
}

// RootProjects returns the workspace's projects that exist in the graph.
func (t *Traverser) RootProjects() []*graph.Project {
	seen := make(map[string]struct{})
	var out []*graph.Project
	for _, path := range t.graph.Workspace.Projects {
		p, ok := t.graph.Projects[path]
		if !ok {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *graph.Project) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Schemes returns the project schemes followed by the workspace schemes.
func (t *Traverser) Schemes() []graph.Scheme {
	var out []graph.Scheme
	for _, path := range t.graph.ProjectPaths() {
		out = append(out, t.graph.Projects[path].Schemes...)
	}
	return append(out, t.graph.Workspace.Schemes...)
}

// AllTestPlans returns the distinct test plans of all schemes.
func (t *Traverser) AllTestPlans() []graph.TestPlan {
	seen := make(map[graph.TestPlan]struct{})
	var out []graph.TestPlan
	for _, s := range t.Schemes() {
		for _, tp := range s.TestPlans {
			if _, ok := seen[tp]; ok {
				continue
			}
			seen[tp] = struct{}{}
			out = append(out, tp)
		}
	}
	slices.SortFunc(out, func(a, b graph.TestPlan) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// TestPlan finds a test plan by name.
func (t *Traverser) TestPlan(name string) (graph.TestPlan, bool) {
	for _, tp := range t.AllTestPlans() {
		if tp.Name == name {
			return tp, true
		}
	}
	return graph.TestPlan{}, false
}

// SchemeRunnableTarget returns the target a scheme launches: the run
// target, or the first build target. Non-runnable products yield false.
func (t *Traverser) SchemeRunnableTarget(s graph.Scheme) (graph.GraphTarget, bool) {
	var ref *graph.TargetReference
	switch {
	case s.RunTarget != nil:
		ref = s.RunTarget
	case len(s.BuildTargets) > 0:
		ref = &s.BuildTargets[0]
	default:
		return graph.GraphTarget{}, false
	}
	gt, ok := t.Target(ref.ProjectPath, ref.Name)
	if !ok || !gt.Target.Product.Runnable() {
		return graph.GraphTarget{}, false
	}
	return gt, true
}

// DirectTargetDependencies returns the targets path:name depends on
// directly, with the condition of each edge. Dangling edges are dropped.
func (t *Traverser) DirectTargetDependencies(path, name string) []TargetRef {
	return t.directTargetRefs(path, name, func(string) bool { return true })
}

// DirectLocalTargetDependencies returns the direct target dependencies that
// live in the same project.
func (t *Traverser) DirectLocalTargetDependencies(path, name string) []TargetRef {
	if _, ok := t.graph.Projects[path]; !ok {
		return nil
	}
	return t.directTargetRefs(path, name, func(p string) bool { return p == path })
}

// DirectNonExternalTargetDependencies returns the direct target
// dependencies that belong to local projects.
func (t *Traverser) DirectNonExternalTargetDependencies(path, name string) []TargetRef {
	return filterRefs(t.DirectTargetDependencies(path, name), func(r TargetRef) bool {
		return !r.Project.IsExternal()
	})
}

// directNonLocalTargetDependencies returns the direct target dependencies
// that live in another project.
func (t *Traverser) directNonLocalTargetDependencies(path, name string) []TargetRef {
	return t.directTargetRefs(path, name, func(p string) bool { return p != path })
}

func (t *Traverser) directTargetRefs(path, name string, keep func(projectPath string) bool) []TargetRef {
	from := targetNode(path, name)
	seen := make(map[TargetRef]struct{})
	var out []TargetRef
	for child := range t.graph.DependenciesOf(from) {
		td, ok := child.(graph.TargetDependency)
		if !ok || !keep(td.Path) {
			continue
		}
		gt, ok := t.Target(td.Path, td.Name)
		if !ok {
			continue
		}
		ref := TargetRef{GraphTarget: gt, Condition: t.graph.Condition(from, child)}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	slices.SortFunc(out, compareTargetRefs)
	return out
}

func filterRefs(refs []TargetRef, keep func(TargetRef) bool) []TargetRef {
	var out []TargetRef
	for _, r := range refs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func productIn(products ...graph.Product) func(TargetRef) bool {
	return func(r TargetRef) bool {
		return slices.Contains(products, r.Target.Product)
	}
}

// AppExtensionDependencies returns the direct app extension dependencies.
func (t *Traverser) AppExtensionDependencies(path, name string) []TargetRef {
	return filterRefs(t.DirectTargetDependencies(path, name), productIn(
		graph.AppExtension, graph.StickerPackExtension, graph.Watch2Extension,
		graph.TVTopShelfExtension, graph.MessagesExtension,
	))
}

// ExtensionKitExtensionDependencies returns the direct ExtensionKit
// extensions of the same project.
func (t *Traverser) ExtensionKitExtensionDependencies(path, name string) []TargetRef {
	return filterRefs(t.DirectLocalTargetDependencies(path, name), productIn(graph.ExtensionKitExtension))
}

// AppClipDependencies returns the app clip embedded by path:name, if any.
func (t *Traverser) AppClipDependencies(path, name string) (TargetRef, bool) {
	refs := filterRefs(t.DirectLocalTargetDependencies(path, name), productIn(graph.AppClip))
	if len(refs) == 0 {
		return TargetRef{}, false
	}
	return refs[0], true
}

// directTargetsOf returns the direct target dependencies as GraphTargets,
// memoized for the life of the Traverser.
func (t *Traverser) directTargetsOf(gt graph.GraphTarget) []graph.GraphTarget {
	if cached, ok := t.directTargets.get(gt); ok {
		return cached
	}
	refs := t.DirectTargetDependencies(gt.Path, gt.Target.Name)
	seen := make(map[graph.GraphTarget]struct{}, len(refs))
	out := make([]graph.GraphTarget, 0, len(refs))
	for _, r := range refs {
		if _, dup := seen[r.GraphTarget]; dup {
			continue
		}
		seen[r.GraphTarget] = struct{}{}
		out = append(out, r.GraphTarget)
	}
	t.directTargets.put(gt, out)
	return out
}

// AllTargetDependencies returns every target reachable from path:name
// through target edges. The target itself is only included when it sits
// on a cycle.
func (t *Traverser) AllTargetDependencies(path, name string) []graph.GraphTarget {
	gt, ok := t.Target(path, name)
	if !ok {
		return nil
	}
	return sortedTargets(t.allTargetDependencies([]graph.GraphTarget{gt}))
}

func (t *Traverser) allTargetDependencies(from []graph.GraphTarget) map[graph.GraphTarget]struct{} {
	out := make(map[graph.GraphTarget]struct{})
	var stack []graph.GraphTarget
	for _, gt := range from {
		stack = append(stack, t.directTargetsOf(gt)...)
	}
	for len(stack) > 0 {
		gt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[gt]; ok {
			continue
		}
		out[gt] = struct{}{}
		stack = append(stack, t.directTargetsOf(gt)...)
	}
	return out
}

// AllTargetsTopologicalSorted returns every target with dependencies
// before their dependents. Ties are broken by path and name.
func (t *Traverser) AllTargetsTopologicalSorted() ([]graph.GraphTarget, error) {
	defer t.observe("all_targets_topological_sorted")()

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[graph.GraphTarget]int)
	var out []graph.GraphTarget
	var stack []graph.GraphTarget

	var visit func(gt graph.GraphTarget) error
	visit = func(gt graph.GraphTarget) error {
		switch state[gt] {
		case done:
			return nil
		case visiting:
			i := slices.Index(stack, gt)
			path := make([]string, 0, len(stack)-i+1)
			for _, s := range stack[i:] {
				path = append(path, s.String())
			}
			return NewCycleError(append(path, gt.String()))
		}
		state[gt] = visiting
		stack = append(stack, gt)
		for _, dep := range t.directTargetsOf(gt) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[gt] = done
		out = append(out, gt)
		return nil
	}

	for _, gt := range t.AllTargets() {
		if err := visit(gt); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BuildsForMacCatalyst reports whether path:name and every node it depends
// on support Mac Catalyst. Precompiled binaries are assumed not to.
func (t *Traverser) BuildsForMacCatalyst(path, name string) bool {
	gt, ok := t.Target(path, name)
	if !ok || !gt.Target.SupportsCatalyst() {
		return false
	}
	return t.allDependenciesSatisfy(targetNode(path, name), func(d graph.Dependency) bool {
		dep, ok := t.TargetFrom(d)
		return ok && dep.Target.SupportsCatalyst()
	})
}

// HostTargetFor returns the first target of the same project, by name,
// that depends directly on path:name.
func (t *Traverser) HostTargetFor(path, name string) (graph.GraphTarget, bool) {
	want := targetNode(path, name)
	for _, gt := range t.Targets(path) {
		for child := range t.graph.DependenciesOf(gt.Dependency()) {
			if graph.NodeKey(child) == want {
				return gt, true
			}
		}
	}
	return graph.GraphTarget{}, false
}

// UnitTestHost returns the app that hosts the tests of path:name: the
// first direct target dependency, in path and name order, that can host
// tests.
func (t *Traverser) UnitTestHost(path, name string) (graph.GraphTarget, bool) {
	for _, r := range t.DirectTargetDependencies(path, name) {
		if r.Target.Product.CanHostTests() {
			return r.GraphTarget, true
		}
	}
	return graph.GraphTarget{}, false
}

// DependsOnXCTest reports whether path:name is a test bundle, opts into
// testing search paths, or links XCTest directly.
func (t *Traverser) DependsOnXCTest(path, name string) bool {
	gt, ok := t.Target(path, name)
	if !ok {
		return false
	}
	if gt.Target.Product.TestsBundle() {
		return true
	}
	if v, _ := gt.Target.Setting("ENABLE_TESTING_SEARCH_PATHS"); v == "YES" {
		return true
	}
	for child := range t.graph.DependenciesOf(targetNode(path, name)) {
		if sdk, ok := child.(graph.SDKDependency); ok && sdk.Name == "XCTest.framework" {
			return true
		}
	}
	return false
}

// NeedsEnableTestingSearchPaths reports whether path:name or any target it
// depends on transitively depends on XCTest.
func (t *Traverser) NeedsEnableTestingSearchPaths(path, name string) bool {
	if _, ok := t.Target(path, name); !ok {
		return false
	}
	if t.DependsOnXCTest(path, name) {
		return true
	}
	for _, dep := range t.AllTargetDependencies(path, name) {
		if t.DependsOnXCTest(dep.Path, dep.Target.Name) {
			return true
		}
	}
	return false
}

// PrecompiledFrameworksPaths returns the path of every single-platform
// precompiled framework in the graph.
func (t *Traverser) PrecompiledFrameworksPaths() []string {
	set := make(map[string]struct{})
	for _, d := range t.graph.Nodes() {
		if fw, ok := d.(graph.FrameworkDependency); ok {
			set[fw.Path] = struct{}{}
		}
	}
	return sortedStrings(set)
}

// AllProjectDependencies unions the linkable, embeddable and copied
// references of every target of the project at path.
func (t *Traverser) AllProjectDependencies(path string) (*ReferenceSet, error) {
	out := NewReferenceSet()
	for _, gt := range t.Targets(path) {
		linkable, err := t.LinkableDependencies(path, gt.Target.Name)
		if err != nil {
			return nil, err
		}
		out.Union(linkable)

		embeddable, err := t.EmbeddableFrameworks(path, gt.Target.Name)
		if err != nil {
			return nil, err
		}
		out.Union(embeddable)

		out.Union(t.CopyProductDependencies(path, gt.Target.Name))
	}
	return out, nil
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
