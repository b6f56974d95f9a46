package traverser

import (
	"fmt"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// canEmbedFrameworks reports whether a target's product carries embedded
// dynamic frameworks. A macOS-only bundle can too.
func canEmbedFrameworks(t *graph.Target) bool {
	switch t.Product {
	case graph.App, graph.Watch2App, graph.AppClip, graph.UnitTests, graph.UITests,
		graph.Watch2Extension, graph.SystemExtension, graph.XPC:
		return true
	case graph.Bundle:
		return t.SupportedPlatforms().Equal(platform.NewSet(platform.MacOS))
	default:
		return false
	}
}

// canEmbedBundles reports whether a target's product carries resource
// bundles of its dependencies.
func canEmbedBundles(t *graph.Target) bool {
	switch t.Product {
	case graph.App, graph.AppExtension, graph.ExtensionKitExtension, graph.Watch2App,
		graph.AppClip, graph.UnitTests, graph.UITests, graph.Watch2Extension,
		graph.SystemExtension, graph.XPC:
		return true
	default:
		return false
	}
}

// canHostResources reports whether resources of dependencies stop at this
// target. A static framework only hosts them when it has resources itself.
func canHostResources(t *graph.Target) bool {
	return t.SupportsResources() && (t.Product != graph.StaticFramework || t.ContainsResources())
}

// isStatic reports whether d is linked statically: static targets and
// static precompiled binaries.
func (t *Traverser) isStatic(d graph.Dependency) bool {
	switch d := d.(type) {
	case graph.XCFrameworkDependency:
		return d.Linking == graph.LinkingStatic
	case graph.FrameworkDependency:
		return d.Linking == graph.LinkingStatic
	case graph.LibraryDependency:
		return d.Linking == graph.LinkingStatic
	case graph.TargetDependency:
		return t.testTarget(d, func(tg *graph.Target) bool { return tg.Product.IsStatic() })
	case graph.MacroDependency, graph.BundleDependency, graph.PackageProductDependency, graph.SDKDependency:
		return false
	default:
		panic(fmt.Sprintf("traverser: unhandled dependency type %T", d))
	}
}

// canLinkStaticProducts reports whether static products stop at d because
// d links them: targets that link statics and every dynamic binary.
func (t *Traverser) canLinkStaticProducts(d graph.Dependency) bool {
	switch d := d.(type) {
	case graph.TargetDependency:
		return t.testTarget(d, (*graph.Target).CanLinkStaticProducts)
	case graph.XCFrameworkDependency:
		return d.Linking == graph.LinkingDynamic
	case graph.FrameworkDependency:
		return d.Linking == graph.LinkingDynamic
	case graph.LibraryDependency:
		return d.Linking == graph.LinkingDynamic
	case graph.MacroDependency, graph.BundleDependency, graph.PackageProductDependency, graph.SDKDependency:
		return false
	default:
		panic(fmt.Sprintf("traverser: unhandled dependency type %T", d))
	}
}

// isResourceBundle reports whether d is a precompiled bundle or a bundle target.
func (t *Traverser) isResourceBundle(d graph.Dependency) bool {
	switch d := d.(type) {
	case graph.BundleDependency:
		return true
	case graph.TargetDependency:
		return t.testTarget(d, func(tg *graph.Target) bool { return tg.Product == graph.Bundle })
	case graph.MacroDependency, graph.XCFrameworkDependency, graph.FrameworkDependency,
		graph.LibraryDependency, graph.PackageProductDependency, graph.SDKDependency:
		return false
	default:
		panic(fmt.Sprintf("traverser: unhandled dependency type %T", d))
	}
}

// isEmbeddableTarget reports whether d is a target whose product is copied
// into the runnable product: dynamic products and static frameworks that
// carry resources.
func (t *Traverser) isEmbeddableTarget(d graph.Dependency) bool {
	return t.testTarget(d, func(tg *graph.Target) bool {
		return tg.Product.IsDynamic() || (tg.Product == graph.StaticFramework && tg.ContainsResources())
	})
}

func (t *Traverser) isDynamicLibraryTarget(d graph.Dependency) bool {
	return t.testTarget(d, func(tg *graph.Target) bool { return tg.Product == graph.DynamicLibrary })
}

func (t *Traverser) isFrameworkTarget(d graph.Dependency) bool {
	return t.testTarget(d, func(tg *graph.Target) bool { return tg.Product == graph.Framework })
}

func (t *Traverser) isNonMergeableTarget(d graph.Dependency) bool {
	return t.testTarget(d, func(tg *graph.Target) bool { return !tg.Mergeable })
}

func (t *Traverser) canDependencyEmbedFrameworks(d graph.Dependency) bool {
	return t.testTarget(d, canEmbedFrameworks)
}

func (t *Traverser) canDependencyEmbedBundles(d graph.Dependency) bool {
	return t.testTarget(d, canEmbedBundles)
}

func (t *Traverser) canDependencyHostResources(d graph.Dependency) bool {
	return t.testTarget(d, canHostResources)
}

// canDependencyEmbedAsPlugin reports whether d is a loadable bundle that a
// plugin-embedding target copies as a plugin rather than as resources.
func (t *Traverser) canDependencyEmbedAsPlugin(d graph.Dependency) bool {
	return t.testTarget(d, func(tg *graph.Target) bool {
		return tg.IsEmbeddablePlugin() && !tg.GeneratedResourcesBundle
	})
}

// IsExternal reports whether d is a target of an external project.
func (t *Traverser) IsExternal(d graph.Dependency) bool {
	gt, ok := t.TargetFrom(d)
	return ok && gt.Project.IsExternal()
}

// isXCFrameworkMerged reports whether d is an XCFramework whose binary the
// target merges manually. It fails when such a binary is not mergeable.
func isXCFrameworkMerged(d graph.Dependency, merged map[string]struct{}, target string) (bool, error) {
	xc, ok := graph.AsXCFramework(d)
	if !ok || xc.InfoPlist.BinaryName == "" {
		return false, nil
	}
	if _, ok := merged[xc.InfoPlist.BinaryName]; !ok {
		return false, nil
	}
	if !xc.Mergeable {
		return false, NewNonMergeableError(target, xc.InfoPlist.BinaryName)
	}
	return true, nil
}
