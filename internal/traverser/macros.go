package traverser

import (
	"path"
	"slices"
	"strings"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

var macroHostProducts = []graph.Product{
	graph.StaticFramework, graph.Framework, graph.DynamicLibrary, graph.StaticLibrary,
}

// DirectSwiftMacroExecutables returns the macro executables path:name
// depends on directly. Macros always build for macOS.
func (t *Traverser) DirectSwiftMacroExecutables(projectPath, name string) *ReferenceSet {
	refs := NewReferenceSet()
	for _, r := range filterRefs(t.DirectTargetDependencies(projectPath, name), productIn(graph.Macro)) {
		refs.Add(Reference{
			Kind:        RefProduct,
			Target:      r.Target.Name,
			ProductName: r.Target.ResolvedProductName(),
			Product:     graph.Macro,
			Status:      graph.StatusRequired,
			Condition:   platform.When(platform.FilterMacOS),
		})
	}
	return refs
}

// DirectSwiftMacroTargets returns the direct library and framework
// dependencies that themselves depend on macro executables.
func (t *Traverser) DirectSwiftMacroTargets(projectPath, name string) []TargetRef {
	return filterRefs(t.DirectTargetDependencies(projectPath, name), func(r TargetRef) bool {
		return slices.Contains(macroHostProducts, r.Target.Product) &&
			t.DirectSwiftMacroExecutables(r.Path, r.Target.Name).Len() > 0
	})
}

// AllSwiftMacroTargets returns every library or framework reachable from
// path:name that depends on macro executables, plus path:name itself when
// it does.
func (t *Traverser) AllSwiftMacroTargets(projectPath, name string) []graph.GraphTarget {
	set := make(map[graph.GraphTarget]struct{})
	for _, gt := range t.AllTargetDependencies(projectPath, name) {
		if slices.Contains(macroHostProducts, gt.Target.Product) &&
			t.DirectSwiftMacroExecutables(gt.Path, gt.Target.Name).Len() > 0 {
			set[gt] = struct{}{}
		}
	}
	if gt, ok := t.Target(projectPath, name); ok && t.DirectSwiftMacroExecutables(projectPath, name).Len() > 0 {
		set[gt] = struct{}{}
	}
	return sortedTargets(set)
}

// AllSwiftPluginExecutables returns the -load-plugin-executable arguments
// for path:name, each formatted as "<executable>#<module>".
//
// Precompiled macros come from macro nodes and from XCFrameworks that ship
// macros. Macros built from source resolve inside the build directory.
// Results are memoized per target.
func (t *Traverser) AllSwiftPluginExecutables(projectPath, name string) []string {
	defer t.observe("all_swift_plugin_executables")()
	from := targetNode(projectPath, name)
	if cached, ok := t.plugins.get(from); ok {
		return cached
	}

	macroChildren := func(d graph.Dependency) []string {
		var out []string
		for child := range t.graph.DependenciesOf(d) {
			if m, ok := child.(graph.MacroDependency); ok {
				out = append(out, m.Path)
			}
		}
		return out
	}
	isMacro := func(d graph.Dependency) bool {
		_, ok := d.(graph.MacroDependency)
		return ok
	}

	set := make(map[string]struct{})
	precompiled := t.filterFrom(from, func(d graph.Dependency) bool {
		if _, ok := graph.AsXCFramework(d); ok {
			return len(macroChildren(d)) > 0
		}
		return isMacro(d)
	}, isMacro)
	for d := range precompiled {
		var paths []string
		switch d := d.(type) {
		case graph.XCFrameworkDependency:
			paths = macroChildren(d)
		case graph.MacroDependency:
			paths = []string{d.Path}
		}
		for _, p := range paths {
			set[p+"#"+strings.ReplaceAll(path.Base(p), ".macro", "")] = struct{}{}
		}
	}

	for _, gt := range t.AllSwiftMacroTargets(projectPath, name) {
		for _, r := range t.DirectSwiftMacroExecutables(gt.Path, gt.Target.Name).Sorted() {
			set["$BUILD_DIR/Debug$EFFECTIVE_PLATFORM_NAME/"+r.ProductName+"#"+r.ProductName] = struct{}{}
		}
	}

	out := sortedStrings(set)
	t.plugins.put(from, out)
	return out
}
