package traverser

import (
	"cmp"
	"slices"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// ReferenceKind names the case of a Reference.
type ReferenceKind string

// The declaration order is also the sort order of references.
const (
	RefMacro          ReferenceKind = "macro"
	RefSDK            ReferenceKind = "sdk"
	RefProduct        ReferenceKind = "product"
	RefLibrary        ReferenceKind = "library"
	RefFramework      ReferenceKind = "framework"
	RefXCFramework    ReferenceKind = "xcframework"
	RefBundle         ReferenceKind = "bundle"
	RefPackageProduct ReferenceKind = "package_product"
)

var refKindOrder = []ReferenceKind{
	RefMacro, RefSDK, RefProduct, RefLibrary, RefFramework, RefXCFramework, RefBundle, RefPackageProduct,
}

// Reference is a resolved dependency as a project generator consumes it:
// what to link, embed or copy, and under which platform condition.
//
// Which fields are set depends on Kind. Identity (equality within a
// ReferenceSet) uses only:
//
//	macro:           Path
//	sdk:             Path, Condition
//	product:         Target, ProductName, Condition
//	library:         Path, Condition
//	framework:       Path, Condition
//	xcframework:     Path, ExpectedSignature, Condition
//	bundle:          Path, Condition
//	package_product: PackageProduct, Condition
type Reference struct {
	Kind              ReferenceKind       `json:"kind"`
	Path              string              `json:"path,omitempty"`
	BinaryPath        string              `json:"binary_path,omitempty"`
	DSYMPath          string              `json:"dsym_path,omitempty"`
	BCSymbolMapPaths  []string            `json:"bcsymbolmap_paths,omitempty"`
	Linking           graph.BinaryLinking `json:"linking,omitempty"`
	Architectures     []string            `json:"architectures,omitempty"`
	Product           graph.Product       `json:"product,omitempty"`
	Status            graph.LinkingStatus `json:"status,omitempty"`
	Source            graph.SDKSource     `json:"source,omitempty"`
	ExpectedSignature string              `json:"expected_signature,omitempty"`
	Libraries         []string            `json:"libraries,omitempty"`
	BinaryName        string              `json:"binary_name,omitempty"`
	Target            string              `json:"target,omitempty"`
	ProductName       string              `json:"product_name,omitempty"`
	PackageProduct    string              `json:"package_product,omitempty"`
	Condition         platform.Condition  `json:"condition,omitzero"`
}

// refKey is the identity of a Reference.
type refKey struct {
	kind      ReferenceKind
	a, b      string
	condition platform.Condition
}

func (r Reference) key() refKey {
	switch r.Kind {
	case RefMacro:
		return refKey{kind: r.Kind, a: r.Path}
	case RefProduct:
		return refKey{kind: r.Kind, a: r.Target, b: r.ProductName, condition: r.Condition}
	case RefXCFramework:
		return refKey{kind: r.Kind, a: r.Path, b: r.ExpectedSignature, condition: r.Condition}
	case RefPackageProduct:
		return refKey{kind: r.Kind, a: r.PackageProduct, condition: r.Condition}
	default:
		return refKey{kind: r.Kind, a: r.Path, condition: r.Condition}
	}
}

// CompareReferences orders references by kind, then by identity fields.
// Unconditional references sort after conditional ones with equal fields.
func CompareReferences(x, y Reference) int {
	a, b := x.key(), y.key()
	if c := cmp.Compare(slices.Index(refKindOrder, a.kind), slices.Index(refKindOrder, b.kind)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.a, b.a); c != 0 {
		return c
	}
	if c := cmp.Compare(a.b, b.b); c != 0 {
		return c
	}
	switch {
	case a.condition == b.condition:
		return 0
	case a.condition.IsUnconditional():
		return 1
	case b.condition.IsUnconditional():
		return -1
	default:
		return a.condition.Compare(b.condition)
	}
}

// String renders the identity of the reference, e.g.
// "framework /Frameworks/A.framework [ios]".
func (r Reference) String() string {
	k := r.key()
	out := string(k.kind) + " " + k.a
	if k.b != "" {
		out += " " + k.b
	}
	if !k.condition.IsUnconditional() {
		out += " [" + k.condition.String() + "]"
	}
	return out
}

// ReferenceSet is a set of references keyed by identity.
//
// Adding a reference whose identity is already present keeps the existing
// one. The zero value is not usable; call NewReferenceSet.
type ReferenceSet struct {
	m map[refKey]Reference
}

// NewReferenceSet builds a set from refs.
func NewReferenceSet(refs ...Reference) *ReferenceSet {
	s := &ReferenceSet{m: make(map[refKey]Reference, len(refs))}
	for _, r := range refs {
		s.Add(r)
	}
	return s
}

// Add inserts r unless an equal reference is present. SDK identity does not
// include the status, so a required SDK replaces an optional one with the
// same path and condition.
func (s *ReferenceSet) Add(r Reference) {
	k := r.key()
	existing, ok := s.m[k]
	switch {
	case !ok:
		s.m[k] = r
	case r.Kind == RefSDK && r.Status == graph.StatusRequired && existing.Status == graph.StatusOptional:
		s.m[k] = r
	}
}

// Contains reports whether an equal reference is present.
func (s *ReferenceSet) Contains(r Reference) bool {
	_, ok := s.m[r.key()]
	return ok
}

// Len returns the number of references.
func (s *ReferenceSet) Len() int {
	return len(s.m)
}

// Union adds every reference of o.
func (s *ReferenceSet) Union(o *ReferenceSet) {
	for _, r := range o.m {
		s.Add(r)
	}
}

// Subtract removes every reference equal to one in o.
func (s *ReferenceSet) Subtract(o *ReferenceSet) {
	for k := range o.m {
		delete(s.m, k)
	}
}

// Sorted returns the references in CompareReferences order.
func (s *ReferenceSet) Sorted() []Reference {
	out := make([]Reference, 0, len(s.m))
	for _, r := range s.m {
		out = append(out, r)
	}
	slices.SortFunc(out, CompareReferences)
	return out
}

// unionPreferringRequired adds refs. When a framework or XCFramework with
// the same path is already present, a required reference replaces an
// optional one; otherwise the existing reference is kept.
func (s *ReferenceSet) unionPreferringRequired(refs []Reference) {
	for _, r := range refs {
		existing, ok := s.samePath(r)
		if !ok {
			s.Add(r)
			continue
		}
		if r.Status == graph.StatusRequired && existing.Status == graph.StatusOptional {
			delete(s.m, existing.key())
			s.m[r.key()] = r
		}
	}
}

func (s *ReferenceSet) samePath(r Reference) (Reference, bool) {
	if r.Kind != RefFramework && r.Kind != RefXCFramework {
		if existing, ok := s.m[r.key()]; ok {
			return existing, true
		}
		return Reference{}, false
	}
	for _, existing := range s.m {
		if existing.Kind == r.Kind && existing.Path == r.Path {
			return existing, true
		}
	}
	return Reference{}, false
}

// dependencyReference converts d into the reference seen from from. It
// returns false when d is unreachable on every platform, when d is a
// package product that is not embedded at runtime, and for dangling targets.
func (t *Traverser) dependencyReference(to, from graph.Dependency) (Reference, bool) {
	c, ok := t.CombinedCondition(to, from).Condition()
	if !ok {
		return Reference{}, false
	}
	return graph.Visit[refResult](to, referenceBuilder{t: t, condition: c}).unpack()
}

// references converts every node of deps, dropping those without a reference.
func (t *Traverser) references(deps graph.DependencySet, from graph.Dependency) []Reference {
	out := make([]Reference, 0, len(deps))
	for _, d := range deps.Sorted() {
		if r, ok := t.dependencyReference(d, from); ok {
			out = append(out, r)
		}
	}
	return out
}

type refResult struct {
	ref Reference
	ok  bool
}

func (r refResult) unpack() (Reference, bool) { return r.ref, r.ok }

func some(r Reference) refResult { return refResult{ref: r, ok: true} }

// referenceBuilder implements graph.Visitor so that every node kind must
// have a conversion.
type referenceBuilder struct {
	t         *Traverser
	condition platform.Condition
}

func (b referenceBuilder) Target(d graph.TargetDependency) refResult {
	gt, ok := b.t.Target(d.Path, d.Name)
	if !ok {
		return refResult{}
	}
	status := d.Status
	if status == "" {
		status = graph.StatusRequired
	}
	return some(Reference{
		Kind:        RefProduct,
		Target:      gt.Target.Name,
		ProductName: gt.Target.ProductNameWithExtension(),
		Product:     gt.Target.Product,
		Status:      status,
		Condition:   b.condition,
	})
}

func (b referenceBuilder) Framework(d graph.FrameworkDependency) refResult {
	product := graph.Framework
	if d.Linking == graph.LinkingStatic {
		product = graph.StaticFramework
	}
	return some(Reference{
		Kind:             RefFramework,
		Path:             d.Path,
		BinaryPath:       d.BinaryPath,
		DSYMPath:         d.DSYMPath,
		BCSymbolMapPaths: d.BCSymbolMapPaths.Items(),
		Linking:          d.Linking,
		Architectures:    d.Architectures.Items(),
		Product:          product,
		Status:           d.Status,
		Condition:        b.condition,
	})
}

func (b referenceBuilder) Library(d graph.LibraryDependency) refResult {
	product := graph.DynamicLibrary
	if d.Linking == graph.LinkingStatic {
		product = graph.StaticLibrary
	}
	return some(Reference{
		Kind:          RefLibrary,
		Path:          d.Path,
		Linking:       d.Linking,
		Architectures: d.Architectures.Items(),
		Product:       product,
		Condition:     b.condition,
	})
}

func (b referenceBuilder) XCFramework(d graph.XCFrameworkDependency) refResult {
	return some(Reference{
		Kind:              RefXCFramework,
		Path:              d.Path,
		ExpectedSignature: d.ExpectedSignature,
		Libraries:         d.InfoPlist.Libraries.Items(),
		BinaryName:        d.InfoPlist.BinaryName,
		Status:            d.Status,
		Condition:         b.condition,
	})
}

func (b referenceBuilder) Bundle(d graph.BundleDependency) refResult {
	return some(Reference{Kind: RefBundle, Path: d.Path, Condition: b.condition})
}

func (b referenceBuilder) PackageProduct(d graph.PackageProductDependency) refResult {
	if d.Type != graph.PackageRuntimeEmbedded {
		return refResult{}
	}
	return some(Reference{Kind: RefPackageProduct, PackageProduct: d.Product, Condition: b.condition})
}

func (b referenceBuilder) SDK(d graph.SDKDependency) refResult {
	return some(Reference{
		Kind:      RefSDK,
		Path:      d.Path,
		Status:    d.Status,
		Source:    d.Source,
		Condition: b.condition,
	})
}

func (b referenceBuilder) Macro(d graph.MacroDependency) refResult {
	return some(Reference{Kind: RefMacro, Path: d.Path})
}
