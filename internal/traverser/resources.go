package traverser

import "github.com/roach88/linkgraph/internal/graph"

// ResourceBundleDependencies returns the resource bundles path:name copies.
//
// Bundles of local targets travel up the graph until a target that hosts
// resources. Bundles of external projects are only copied by targets that
// embed bundles, and precompiled bundles by every target that hosts
// resources. macOS apps embed loadable bundles as plugins, not resources.
func (t *Traverser) ResourceBundleDependencies(path, name string) *ReferenceSet {
	defer t.observe("resource_bundle_dependencies")()
	return t.resourceBundleDependencies(path, name)
}

func (t *Traverser) resourceBundleDependencies(path, name string) *ReferenceSet {
	gt, ok := t.Target(path, name)
	if !ok || !canHostResources(gt.Target) {
		return NewReferenceSet()
	}
	from := targetNode(path, name)
	embedsPlugins := gt.Target.CanEmbedPlugins()

	local := t.filterFrom(from, func(d graph.Dependency) bool {
		return t.isResourceBundle(d) &&
			!(t.IsExternal(d) || graph.IsPrecompiled(d)) &&
			!(embedsPlugins && t.canDependencyEmbedAsPlugin(d))
	}, t.canDependencyHostResources)

	embedsBundles := canEmbedBundles(gt.Target)
	external := t.filterFrom(from, func(d graph.Dependency) bool {
		if !t.isResourceBundle(d) {
			return false
		}
		return graph.IsPrecompiled(d) || (t.IsExternal(d) && embedsBundles)
	}, t.canDependencyEmbedBundles)

	return NewReferenceSet(t.references(union(local, external), from)...)
}

// CopyProductDependencies returns the products copied into the build
// directory of path:name: for static products their direct static target
// dependencies and static XCFrameworks, then apps and app extensions of
// other projects, then resource bundles.
func (t *Traverser) CopyProductDependencies(path, name string) *ReferenceSet {
	defer t.observe("copy_product_dependencies")()
	gt, ok := t.Target(path, name)
	if !ok {
		return NewReferenceSet()
	}

	refs := NewReferenceSet()
	if gt.Target.Product.IsStatic() {
		refs.Union(t.directStaticDependencies(path, name))
		refs.Union(NewReferenceSet(t.staticPrecompiledXCFrameworksDependencies(path, name)...))
	}
	refs.Union(t.executableNonLocalDependencies(path, name, graph.App, graph.AppExtension))
	refs.Union(t.resourceBundleDependencies(path, name))
	return refs
}

// ExecutableDependencies returns the apps of other projects that path:name
// depends on.
func (t *Traverser) ExecutableDependencies(path, name string) *ReferenceSet {
	return t.executableNonLocalDependencies(path, name, graph.App)
}

func (t *Traverser) executableNonLocalDependencies(path, name string, products ...graph.Product) *ReferenceSet {
	refs := NewReferenceSet()
	for _, r := range filterRefs(t.directNonLocalTargetDependencies(path, name), productIn(products...)) {
		refs.Add(Reference{
			Kind:        RefProduct,
			Target:      r.Target.Name,
			ProductName: r.Target.ProductNameWithExtension(),
			Product:     r.Target.Product,
			Status:      graph.StatusRequired,
		})
	}
	return refs
}

// DirectStaticDependencies returns the static targets path:name depends on
// directly.
func (t *Traverser) DirectStaticDependencies(path, name string) *ReferenceSet {
	return t.directStaticDependencies(path, name)
}

func (t *Traverser) directStaticDependencies(path, name string) *ReferenceSet {
	from := targetNode(path, name)
	deps := make(graph.DependencySet)
	for child := range t.graph.DependenciesOf(from) {
		if graph.IsTarget(child) && t.testTarget(child, func(tg *graph.Target) bool { return tg.Product.IsStatic() }) {
			deps[child] = struct{}{}
		}
	}
	return NewReferenceSet(t.references(deps, from)...)
}

// staticPrecompiledXCFrameworksDependencies returns the static XCFrameworks
// reachable from path:name through other static precompiled binaries.
func (t *Traverser) staticPrecompiledXCFrameworksDependencies(path, name string) []Reference {
	from := targetNode(path, name)
	deps := t.filterFrom(from, func(d graph.Dependency) bool {
		xc, ok := graph.AsXCFramework(d)
		return ok && xc.Linking == graph.LinkingStatic
	}, func(d graph.Dependency) bool {
		return graph.IsDynamicPrecompiled(d) || !graph.IsPrecompiled(d) || graph.IsPrecompiledMacro(d)
	})
	return t.references(deps, from)
}
