package graph

import (
	"fmt"
	"path"
	"strings"
)

// Dependency is a sealed interface for the nodes of the dependency graph.
// Only the eight *Dependency structs in this file implement it.
//
// Every implementation is a comparable value: two nodes describing the same
// path (or project/name pair) with the same payload are equal and hash to
// the same map key, so diamonds collapse to a single visit.
type Dependency interface {
	dependency() // Sealed
	Kind() Kind
	fmt.Stringer
}

// Kind names a Dependency case. It is also the tag used by snapshots.
type Kind string

const (
	KindTarget         Kind = "target"
	KindFramework      Kind = "framework"
	KindLibrary        Kind = "library"
	KindXCFramework    Kind = "xcframework"
	KindBundle         Kind = "bundle"
	KindPackageProduct Kind = "package_product"
	KindSDK            Kind = "sdk"
	KindMacro          Kind = "macro"
)

// LinkingStatus controls how a dependency is linked.
// StatusNone declares a dependency that must not be linked.
type LinkingStatus string

const (
	StatusRequired LinkingStatus = "required"
	StatusOptional LinkingStatus = "optional"
	StatusNone     LinkingStatus = "none"
)

// BinaryLinking is the linking style of a precompiled binary.
type BinaryLinking string

const (
	LinkingStatic  BinaryLinking = "static"
	LinkingDynamic BinaryLinking = "dynamic"
)

// SDKSource tells where an SDK dependency is located inside Xcode.
type SDKSource string

const (
	SDKSourceSystem    SDKSource = "system"
	SDKSourceDeveloper SDKSource = "developer"
)

// PackageProductType is the kind of product a package exposes.
type PackageProductType string

const (
	PackageRuntime         PackageProductType = "runtime"
	PackageRuntimeEmbedded PackageProductType = "runtime_embedded"
	PackagePlugin          PackageProductType = "plugin"
	PackageMacro           PackageProductType = "macro"
)

// List is an immutable, comparable list of strings. Node payloads use it
// where a slice would make the node unusable as a map key.
type List string

const listSep = "\x1f"

// NewList builds a List from items. Order is preserved.
func NewList(items ...string) List {
	return List(strings.Join(items, listSep))
}

// Items returns the elements of the list.
func (l List) Items() []string {
	if l == "" {
		return nil
	}
	return strings.Split(string(l), listSep)
}

// Len returns the number of elements.
func (l List) Len() int {
	if l == "" {
		return 0
	}
	return strings.Count(string(l), listSep) + 1
}

// IsEmpty reports whether the list has no elements.
func (l List) IsEmpty() bool {
	return l == ""
}

// TargetDependency is a buildable target in a local or external project.
type TargetDependency struct {
	Name   string
	Path   string // project path
	Status LinkingStatus
}

func (TargetDependency) dependency() {}

// Kind implements Dependency.
func (TargetDependency) Kind() Kind { return KindTarget }

func (d TargetDependency) String() string {
	return fmt.Sprintf("target '%s'", d.Name)
}

// FrameworkDependency is a precompiled .framework for a single platform.
type FrameworkDependency struct {
	Path             string
	BinaryPath       string
	DSYMPath         string
	BCSymbolMapPaths List
	Linking          BinaryLinking
	Architectures    List
	Status           LinkingStatus
}

func (FrameworkDependency) dependency() {}

// Kind implements Dependency.
func (FrameworkDependency) Kind() Kind { return KindFramework }

func (d FrameworkDependency) String() string {
	return fmt.Sprintf("framework '%s'", path.Base(d.Path))
}

// LibraryDependency is a precompiled static or dynamic library.
type LibraryDependency struct {
	Path           string
	PublicHeaders  string
	Linking        BinaryLinking
	Architectures  List
	SwiftModuleMap string
}

func (LibraryDependency) dependency() {}

// Kind implements Dependency.
func (LibraryDependency) Kind() Kind { return KindLibrary }

func (d LibraryDependency) String() string {
	return fmt.Sprintf("library '%s'", path.Base(d.Path))
}

// XCFrameworkInfoPlist summarises the Info.plist of an XCFramework.
type XCFrameworkInfoPlist struct {
	Libraries  List   // slice identifiers, e.g. "ios-arm64"
	BinaryName string // binary name shared by the slices
}

// XCFrameworkDependency is a precompiled multi-platform bundle.
type XCFrameworkDependency struct {
	Path              string
	ExpectedSignature string
	InfoPlist         XCFrameworkInfoPlist
	Linking           BinaryLinking
	Status            LinkingStatus
	Mergeable         bool
	SwiftModules      List
	ModuleMaps        List
}

func (XCFrameworkDependency) dependency() {}

// Kind implements Dependency.
func (XCFrameworkDependency) Kind() Kind { return KindXCFramework }

func (d XCFrameworkDependency) String() string {
	return fmt.Sprintf("xcframework '%s'", path.Base(d.Path))
}

// BundleDependency is a precompiled resource bundle.
type BundleDependency struct {
	Path string
}

func (BundleDependency) dependency() {}

// Kind implements Dependency.
func (BundleDependency) Kind() Kind { return KindBundle }

func (d BundleDependency) String() string {
	return fmt.Sprintf("bundle '%s'", path.Base(d.Path))
}

// PackageProductDependency is a product of a package manager integration.
type PackageProductDependency struct {
	Path    string // project path
	Product string
	Type    PackageProductType
}

func (PackageProductDependency) dependency() {}

// Kind implements Dependency.
func (PackageProductDependency) Kind() Kind { return KindPackageProduct }

func (d PackageProductDependency) String() string {
	return fmt.Sprintf("package '%s'", d.Product)
}

// SDKDependency is a system library or framework shipped with Xcode.
type SDKDependency struct {
	Name   string
	Path   string
	Status LinkingStatus
	Source SDKSource
}

func (SDKDependency) dependency() {}

// Kind implements Dependency.
func (SDKDependency) Kind() Kind { return KindSDK }

func (d SDKDependency) String() string {
	return fmt.Sprintf("sdk '%s'", d.Name)
}

// MacroDependency is a precompiled compiler-plugin executable.
type MacroDependency struct {
	Path string
}

func (MacroDependency) dependency() {}

// Kind implements Dependency.
func (MacroDependency) Kind() Kind { return KindMacro }

func (d MacroDependency) String() string {
	return fmt.Sprintf("macro '%s'", path.Base(d.Path))
}

// Visitor has one method per Dependency case. Implementing it is the
// compile-time guarantee that every case is handled: adding a case to the
// graph breaks every visitor until it is handled.
type Visitor[T any] interface {
	Target(TargetDependency) T
	Framework(FrameworkDependency) T
	Library(LibraryDependency) T
	XCFramework(XCFrameworkDependency) T
	Bundle(BundleDependency) T
	PackageProduct(PackageProductDependency) T
	SDK(SDKDependency) T
	Macro(MacroDependency) T
}

// Visit dispatches d to the matching visitor method.
func Visit[T any](d Dependency, v Visitor[T]) T {
	switch d := d.(type) {
	case TargetDependency:
		return v.Target(d)
	case FrameworkDependency:
		return v.Framework(d)
	case LibraryDependency:
		return v.Library(d)
	case XCFrameworkDependency:
		return v.XCFramework(d)
	case BundleDependency:
		return v.Bundle(d)
	case PackageProductDependency:
		return v.PackageProduct(d)
	case SDKDependency:
		return v.SDK(d)
	case MacroDependency:
		return v.Macro(d)
	default:
		panic(fmt.Sprintf("graph: unhandled dependency type %T", d))
	}
}

// IsTarget reports whether d is a target node.
func IsTarget(d Dependency) bool {
	_, ok := d.(TargetDependency)
	return ok
}

// IsPrecompiled reports whether d is a binary artifact rather than something
// built from source.
func IsPrecompiled(d Dependency) bool {
	switch d.(type) {
	case XCFrameworkDependency, FrameworkDependency, LibraryDependency, BundleDependency, MacroDependency:
		return true
	case TargetDependency, PackageProductDependency, SDKDependency:
		return false
	default:
		panic(fmt.Sprintf("graph: unhandled dependency type %T", d))
	}
}

// IsLinkable reports whether d can be passed to the linker at all.
func IsLinkable(d Dependency) bool {
	switch d.(type) {
	case XCFrameworkDependency, FrameworkDependency, LibraryDependency, TargetDependency, SDKDependency:
		return true
	case BundleDependency, PackageProductDependency, MacroDependency:
		return false
	default:
		panic(fmt.Sprintf("graph: unhandled dependency type %T", d))
	}
}

// IsDynamicPrecompiled reports whether d is a dynamically linked binary.
func IsDynamicPrecompiled(d Dependency) bool {
	switch d := d.(type) {
	case XCFrameworkDependency:
		return d.Linking == LinkingDynamic
	case FrameworkDependency:
		return d.Linking == LinkingDynamic
	case LibraryDependency:
		return d.Linking == LinkingDynamic
	case BundleDependency, MacroDependency, TargetDependency, PackageProductDependency, SDKDependency:
		return false
	default:
		panic(fmt.Sprintf("graph: unhandled dependency type %T", d))
	}
}

// IsPrecompiledDynamicAndLinkable reports whether d is a dynamic binary the
// linker must see and that has to be embedded in a runnable product.
func IsPrecompiledDynamicAndLinkable(d Dependency) bool {
	return IsDynamicPrecompiled(d) && IsLinkable(d)
}

// IsPrecompiledMacro reports whether d is a precompiled macro executable.
func IsPrecompiledMacro(d Dependency) bool {
	_, ok := d.(MacroDependency)
	return ok
}

// IsSDK reports whether d is a system SDK.
func IsSDK(d Dependency) bool {
	_, ok := d.(SDKDependency)
	return ok
}

// AsXCFramework returns d as an XCFramework when it is one.
func AsXCFramework(d Dependency) (XCFrameworkDependency, bool) {
	x, ok := d.(XCFrameworkDependency)
	return x, ok
}
