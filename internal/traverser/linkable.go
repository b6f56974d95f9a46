package traverser

import (
	"fmt"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// LinkableDependencies returns what the linker needs to build path:name.
//
// For unit tests hosted by an app, static products the host already links
// are left out. The only error is a failure to locate an SDK.
func (t *Traverser) LinkableDependencies(path, name string) (*ReferenceSet, error) {
	defer t.observe("linkable_dependencies")()
	return t.linkableDependencies(path, name, true)
}

// SearchablePathDependencies returns the linkable dependencies including
// those linked by a test host, plus static precompiled frameworks reachable
// from direct static frameworks. Used to compute search paths.
func (t *Traverser) SearchablePathDependencies(path, name string) (*ReferenceSet, error) {
	defer t.observe("searchable_path_dependencies")()
	refs, err := t.linkableDependencies(path, name, false)
	if err != nil {
		return nil, err
	}
	refs.Union(NewReferenceSet(t.staticPrecompiledFrameworksDependencies(path, name)...))
	return refs, nil
}

func (t *Traverser) linkableDependencies(path, name string, excludeHostAppDependencies bool) (*ReferenceSet, error) {
	gt, ok := t.Target(path, name)
	if !ok {
		return NewReferenceSet(), nil
	}
	from := targetNode(path, name)
	refs := NewReferenceSet()
	add := func(deps graph.DependencySet) {
		for _, r := range t.references(deps, from) {
			refs.Add(r)
		}
	}

	// System libraries and frameworks of static dependencies.
	if gt.Target.CanLinkStaticProducts() {
		sdks := make(graph.DependencySet)
		for d := range t.transitiveStaticDependencies(from) {
			for child := range t.graph.DependenciesOf(d) {
				if graph.IsSDK(child) {
					sdks[child] = struct{}{}
				}
			}
		}
		add(sdks)
	}

	if gt.Target.IsAppClip() {
		md, err := t.sdks.LoadMetadata("AppClip.framework", graph.StatusRequired, platform.IOS, graph.SDKSourceSystem)
		if err != nil {
			return nil, fmt.Errorf("locating AppClip SDK for %s: %w", gt, err)
		}
		refs.Add(Reference{
			Kind:      RefSDK,
			Path:      md.Path,
			Status:    graph.StatusRequired,
			Source:    graph.SDKSourceSystem,
			Condition: platform.When(platform.FilterIOS),
		})
	}

	// Direct system libraries and frameworks.
	direct := t.graph.DependenciesOf(from)
	directSDKs := make(graph.DependencySet)
	for child := range direct {
		if graph.IsSDK(child) {
			directSDKs[child] = struct{}{}
		}
	}
	add(directSDKs)

	// Precompiled dynamic binaries, the static XCFrameworks with Swift
	// modules they carry, and those XCFrameworks' SDKs.
	precompiled := t.precompiledDynamicLibrariesAndFrameworks(from)
	staticXCFrameworks := t.FilterDependencies(xcframeworkRoots(precompiled), func(d graph.Dependency) bool {
		xc, ok := graph.AsXCFramework(d)
		return ok && xc.Linking == graph.LinkingStatic && !xc.SwiftModules.IsEmpty()
	}, notXCFramework)
	staticXCFrameworkSDKs := make(graph.DependencySet)
	for d := range staticXCFrameworks {
		for child := range t.graph.DependenciesOf(d) {
			if graph.IsSDK(child) {
				staticXCFrameworkSDKs[child] = struct{}{}
			}
		}
	}
	add(union(precompiled, staticXCFrameworks, staticXCFrameworkSDKs))

	// Static libraries and frameworks, and what they pull in one hop later.
	if gt.Target.CanLinkStaticProducts() {
		static := t.transitiveStaticDependencies(from)

		var hostStatic graph.DependencySet
		if gt.Target.Product == graph.UnitTests && excludeHostAppDependencies {
			if host, ok := t.UnitTestHost(path, name); ok {
				hostStatic = t.transitiveStaticDependencies(host.Dependency())
			}
		}

		all := union(static)
		for d := range static {
			for child := range t.graph.DependenciesOf(d) {
				switch {
				case graph.IsTarget(child) && t.isEmbeddableTarget(child):
					all[child] = struct{}{}
				case graph.IsPrecompiled(child) && graph.IsLinkable(child):
					all[child] = struct{}{}
				}
			}
		}
		add(all)
		refs.Subtract(NewReferenceSet(t.references(hostStatic, from)...))
	}

	// Dynamic library and framework targets.
	dynamicTargets := make(graph.DependencySet)
	for child := range direct {
		if t.isDynamicLibraryTarget(child) || t.isFrameworkTarget(child) {
			dynamicTargets[child] = struct{}{}
		}
	}
	add(dynamicTargets)

	return refs, nil
}

// transitiveStaticDependencies returns the static nodes reachable from
// root without crossing a node that links static products itself.
func (t *Traverser) transitiveStaticDependencies(root graph.Dependency) graph.DependencySet {
	return t.filterFrom(root, t.isStatic, or(t.canLinkStaticProducts, graph.IsPrecompiledMacro))
}

// precompiledDynamicLibrariesAndFrameworks returns the dynamic precompiled
// binaries among root's direct precompiled dependencies and everything
// reachable from them.
func (t *Traverser) precompiledDynamicLibrariesAndFrameworks(root graph.Dependency) graph.DependencySet {
	candidates := make(graph.DependencySet)
	for child := range t.graph.DependenciesOf(root) {
		if !graph.IsPrecompiled(child) {
			continue
		}
		candidates[child] = struct{}{}
		for d := range t.filterFrom(child, nil, nil) {
			candidates[d] = struct{}{}
		}
	}
	out := make(graph.DependencySet)
	for d := range candidates {
		if graph.IsPrecompiledDynamicAndLinkable(d) {
			out[d] = struct{}{}
		}
	}
	return out
}

// StaticObjcXCFrameworksLinkedByDynamicXCFrameworkDependencies returns the
// static, Objective-C only XCFrameworks (module maps, no Swift modules)
// reachable through the dynamic XCFrameworks path:name depends on.
func (t *Traverser) StaticObjcXCFrameworksLinkedByDynamicXCFrameworkDependencies(path, name string) []graph.Dependency {
	precompiled := t.precompiledDynamicLibrariesAndFrameworks(targetNode(path, name))
	return t.FilterDependencies(xcframeworkRoots(precompiled), func(d graph.Dependency) bool {
		xc, ok := graph.AsXCFramework(d)
		return ok && xc.Linking == graph.LinkingStatic && xc.SwiftModules.IsEmpty() && !xc.ModuleMaps.IsEmpty()
	}, notXCFramework).Sorted()
}

// staticPrecompiledFrameworksDependencies returns references to the direct
// static frameworks of path:name and everything reachable from them.
func (t *Traverser) staticPrecompiledFrameworksDependencies(path, name string) []Reference {
	from := targetNode(path, name)
	deps := make(graph.DependencySet)
	for child := range t.graph.DependenciesOf(from) {
		fw, ok := child.(graph.FrameworkDependency)
		if !ok || fw.Linking != graph.LinkingStatic {
			continue
		}
		deps[child] = struct{}{}
		for d := range t.filterFrom(child, nil, nil) {
			deps[d] = struct{}{}
		}
	}
	return t.references(deps, from)
}

func xcframeworkRoots(deps graph.DependencySet) []graph.Dependency {
	var roots []graph.Dependency
	for _, d := range deps.Sorted() {
		if _, ok := graph.AsXCFramework(d); ok {
			roots = append(roots, d)
		}
	}
	return roots
}

func notXCFramework(d graph.Dependency) bool {
	_, ok := graph.AsXCFramework(d)
	return !ok
}
