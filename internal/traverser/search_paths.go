package traverser

import (
	"path"

	"github.com/roach88/linkgraph/internal/graph"
)

// LibrariesPublicHeadersFolders returns the public headers directories of
// the precompiled libraries path:name depends on directly.
func (t *Traverser) LibrariesPublicHeadersFolders(projectPath, name string) []string {
	set := make(map[string]struct{})
	for _, lib := range t.directLibraries(projectPath, name) {
		if lib.PublicHeaders != "" {
			set[lib.PublicHeaders] = struct{}{}
		}
	}
	return sortedStrings(set)
}

// LibrariesSearchPaths returns the directories holding the precompiled
// libraries path:name links, directly or transitively, including those
// linked by a test host.
func (t *Traverser) LibrariesSearchPaths(projectPath, name string) ([]string, error) {
	defer t.observe("libraries_search_paths")()
	set := make(map[string]struct{})
	for _, lib := range t.directLibraries(projectPath, name) {
		set[path.Dir(lib.Path)] = struct{}{}
	}

	linkable, err := t.linkableDependencies(projectPath, name, false)
	if err != nil {
		return nil, err
	}
	for _, r := range linkable.Sorted() {
		if r.Kind == RefLibrary {
			set[path.Dir(r.Path)] = struct{}{}
		}
	}
	return sortedStrings(set), nil
}

// LibrariesSwiftIncludePaths returns the directories of the Swift module
// maps of the precompiled libraries path:name depends on directly.
func (t *Traverser) LibrariesSwiftIncludePaths(projectPath, name string) []string {
	set := make(map[string]struct{})
	for _, lib := range t.directLibraries(projectPath, name) {
		if lib.SwiftModuleMap != "" {
			set[path.Dir(lib.SwiftModuleMap)] = struct{}{}
		}
	}
	return sortedStrings(set)
}

// RunPathSearchPaths returns the directories of the dynamic precompiled
// frameworks a host-less unit test bundle loads at runtime. Every other
// target gets none: its frameworks are embedded.
func (t *Traverser) RunPathSearchPaths(projectPath, name string) []string {
	gt, ok := t.Target(projectPath, name)
	if !ok || !canEmbedFrameworks(gt.Target) || gt.Target.Product != graph.UnitTests {
		return nil
	}
	if _, hosted := t.UnitTestHost(projectPath, name); hosted {
		return nil
	}

	set := make(map[string]struct{})
	deps := t.filterFrom(targetNode(projectPath, name), graph.IsPrecompiledDynamicAndLinkable, t.canDependencyEmbedFrameworks)
	for d := range deps {
		switch d := d.(type) {
		case graph.XCFrameworkDependency:
			set[path.Dir(d.Path)] = struct{}{}
		case graph.FrameworkDependency:
			set[path.Dir(d.Path)] = struct{}{}
		}
	}
	return sortedStrings(set)
}

func (t *Traverser) directLibraries(projectPath, name string) []graph.LibraryDependency {
	var out []graph.LibraryDependency
	for _, d := range t.graph.DependenciesOf(targetNode(projectPath, name)).Sorted() {
		if lib, ok := d.(graph.LibraryDependency); ok {
			out = append(out, lib)
		}
	}
	return out
}
