package snapshot

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

var supported = semver.MustParse("1.0.0")

// CheckVersion validates schema_version against SupportedVersions.
func CheckVersion(raw string) error {
	if raw == "" {
		return newLoadError(ErrCodeVersion, "schema_version is required")
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return newLoadError(ErrCodeVersion, "invalid schema_version %q: %v", raw, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return newLoadError(ErrCodeVersion, "invalid constraint %q: %v", SupportedVersions, err)
	}
	if !c.Check(v) {
		return newLoadError(ErrCodeVersion, "schema_version %s is not supported (want %s, newest known %s)", v, SupportedVersions, supported)
	}
	return nil
}

// Graph validates the document and builds the graph it describes.
//
// Root projects are the workspace's projects when a workspace is given,
// otherwise every local project.
func (d *Document) Graph() (*graph.Graph, error) {
	if err := CheckVersion(d.SchemaVersion); err != nil {
		return nil, err
	}

	b := graph.NewBuilder(d.Name, d.Path)
	var roots []string
	if d.Workspace != nil {
		b.Workspace(*d.Workspace)
		roots = d.Workspace.Projects
	}

	for i, p := range d.Projects {
		project, err := p.project()
		if err != nil {
			return nil, fmt.Errorf("projects[%d]: %w", i, err)
		}
		root := !project.IsExternal()
		if d.Workspace != nil {
			root = slices.Contains(roots, project.Path)
		}
		b.Project(project, root)
	}

	for _, pkg := range d.Packages {
		b.Package(pkg.Project, pkg.ID, graph.Package{
			Kind:        pkg.Kind,
			Location:    pkg.Location,
			Requirement: pkg.Requirement,
		})
	}

	for i, e := range d.Dependencies {
		from, err := e.From.Dependency()
		if err != nil {
			return nil, fmt.Errorf("dependencies[%d].from: %w", i, err)
		}
		to, err := e.To.Dependency()
		if err != nil {
			return nil, fmt.Errorf("dependencies[%d].to: %w", i, err)
		}
		cond, err := parseCondition(e.Condition)
		if err != nil {
			return nil, fmt.Errorf("dependencies[%d].condition: %w", i, err)
		}
		b.Edge(from, to, cond)
	}
	return b.Build(), nil
}

func (p Project) project() (*graph.Project, error) {
	if p.Path == "" {
		return nil, newLoadError(ErrCodeGeneric, "project path is required")
	}
	kind := p.Type
	switch kind {
	case "":
		kind = graph.ProjectLocal
	case graph.ProjectLocal, graph.ProjectExternal:
	default:
		return nil, newLoadError(ErrCodeInvalidValue, "unknown project type %q", p.Type)
	}

	project := &graph.Project{
		Path:    p.Path,
		Name:    p.Name,
		Type:    kind,
		Targets: make(map[string]*graph.Target, len(p.Targets)),
		Schemes: p.Schemes,
	}
	for _, t := range p.Targets {
		target, err := t.target()
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		project.Targets[target.Name] = target
	}
	return project, nil
}

func (t Target) target() (*graph.Target, error) {
	if t.Name == "" {
		return nil, newLoadError(ErrCodeGeneric, "target name is required")
	}
	product, err := graph.ParseProduct(t.Product)
	if err != nil {
		return nil, newLoadError(ErrCodeInvalidValue, "%v", err)
	}

	destinations := platform.NewSet[platform.Destination]()
	for _, raw := range t.Destinations {
		dest, err := platform.ParseDestination(raw)
		if err != nil {
			return nil, newLoadError(ErrCodeInvalidValue, "%v", err)
		}
		destinations[dest] = struct{}{}
	}
	if len(destinations) == 0 {
		destinations[platform.IPhone] = struct{}{}
	}

	target := &graph.Target{
		Name:                     t.Name,
		Product:                  product,
		ProductName:              t.ProductName,
		BundleID:                 t.BundleID,
		Destinations:             destinations,
		Resources:                t.Resources,
		Mergeable:                t.Mergeable,
		Settings:                 t.Settings,
		GeneratedResourcesBundle: t.GeneratedResourcesBundle,
	}
	if m := t.MergedBinaryType; m != nil {
		mode := graph.MergeMode(m.Mode)
		switch mode {
		case graph.MergeDisabled, graph.MergeAutomatic, graph.MergeManual:
		default:
			return nil, newLoadError(ErrCodeInvalidValue, "unknown merge mode %q", m.Mode)
		}
		target.MergedBinaryType = graph.MergedBinaryType{Mode: mode, Manual: m.Manual}
	}
	return target, nil
}

func parseCondition(raw []string) (platform.Condition, error) {
	cond, err := platform.ParseCondition(raw)
	if err != nil {
		return platform.Condition{}, newLoadError(ErrCodeInvalidValue, "%v", err)
	}
	return cond, nil
}

// Dependency converts the tagged node into its graph.Dependency case.
func (n Node) Dependency() (graph.Dependency, error) {
	require := func(field, value string) error {
		if value == "" {
			return newLoadError(ErrCodeInvalidNode, "%s node requires %s", n.Kind, field)
		}
		return nil
	}
	linking := func() error {
		switch n.Linking {
		case graph.LinkingStatic, graph.LinkingDynamic:
			return nil
		default:
			return newLoadError(ErrCodeInvalidNode, "%s node has invalid linking %q", n.Kind, n.Linking)
		}
	}
	status := func(def graph.LinkingStatus) (graph.LinkingStatus, error) {
		switch n.Status {
		case "":
			return def, nil
		case graph.StatusRequired, graph.StatusOptional, graph.StatusNone:
			return n.Status, nil
		default:
			return "", newLoadError(ErrCodeInvalidNode, "%s node has invalid status %q", n.Kind, n.Status)
		}
	}

	switch n.Kind {
	case graph.KindTarget:
		if err := cmp.Or(require("name", n.Name), require("path", n.Path)); err != nil {
			return nil, err
		}
		s, err := status("")
		if err != nil {
			return nil, err
		}
		return graph.TargetDependency{Name: n.Name, Path: n.Path, Status: s}, nil

	case graph.KindFramework:
		if err := cmp.Or(require("path", n.Path), linking()); err != nil {
			return nil, err
		}
		s, err := status(graph.StatusRequired)
		if err != nil {
			return nil, err
		}
		return graph.FrameworkDependency{
			Path:             n.Path,
			BinaryPath:       n.BinaryPath,
			DSYMPath:         n.DSYMPath,
			BCSymbolMapPaths: graph.NewList(n.BCSymbolMapPaths...),
			Linking:          n.Linking,
			Architectures:    graph.NewList(n.Architectures...),
			Status:           s,
		}, nil

	case graph.KindLibrary:
		if err := cmp.Or(require("path", n.Path), linking()); err != nil {
			return nil, err
		}
		return graph.LibraryDependency{
			Path:           n.Path,
			PublicHeaders:  n.PublicHeaders,
			Linking:        n.Linking,
			Architectures:  graph.NewList(n.Architectures...),
			SwiftModuleMap: n.SwiftModuleMap,
		}, nil

	case graph.KindXCFramework:
		if err := cmp.Or(require("path", n.Path), linking()); err != nil {
			return nil, err
		}
		s, err := status(graph.StatusRequired)
		if err != nil {
			return nil, err
		}
		return graph.XCFrameworkDependency{
			Path:              n.Path,
			ExpectedSignature: n.ExpectedSignature,
			InfoPlist: graph.XCFrameworkInfoPlist{
				Libraries:  graph.NewList(n.Libraries...),
				BinaryName: n.BinaryName,
			},
			Linking:      n.Linking,
			Status:       s,
			Mergeable:    n.Mergeable,
			SwiftModules: graph.NewList(n.SwiftModules...),
			ModuleMaps:   graph.NewList(n.ModuleMaps...),
		}, nil

	case graph.KindBundle:
		if err := require("path", n.Path); err != nil {
			return nil, err
		}
		return graph.BundleDependency{Path: n.Path}, nil

	case graph.KindMacro:
		if err := require("path", n.Path); err != nil {
			return nil, err
		}
		return graph.MacroDependency{Path: n.Path}, nil

	case graph.KindPackageProduct:
		if err := cmp.Or(require("path", n.Path), require("product", n.Product)); err != nil {
			return nil, err
		}
		typ := n.ProductType
		switch typ {
		case "":
			typ = graph.PackageRuntime
		case graph.PackageRuntime, graph.PackageRuntimeEmbedded, graph.PackagePlugin, graph.PackageMacro:
		default:
			return nil, newLoadError(ErrCodeInvalidNode, "package_product node has invalid product_type %q", n.ProductType)
		}
		return graph.PackageProductDependency{Path: n.Path, Product: n.Product, Type: typ}, nil

	case graph.KindSDK:
		if err := cmp.Or(require("name", n.Name), require("path", n.Path)); err != nil {
			return nil, err
		}
		s, err := status(graph.StatusRequired)
		if err != nil {
			return nil, err
		}
		source := n.Source
		switch source {
		case "":
			source = graph.SDKSourceSystem
		case graph.SDKSourceSystem, graph.SDKSourceDeveloper:
		default:
			return nil, newLoadError(ErrCodeInvalidNode, "sdk node has invalid source %q", n.Source)
		}
		return graph.SDKDependency{Name: n.Name, Path: n.Path, Status: s, Source: source}, nil

	case "":
		return nil, newLoadError(ErrCodeInvalidNode, "node kind is required")
	default:
		return nil, newLoadError(ErrCodeInvalidNode, "unknown node kind %q", n.Kind)
	}
}

// FromGraph returns the document form of g. Projects, targets, packages
// and edges are sorted, so equal graphs produce equal documents.
func FromGraph(g *graph.Graph) *Document {
	ws := g.Workspace
	ws.Projects = slices.Clone(ws.Projects)
	slices.Sort(ws.Projects)

	doc := &Document{
		SchemaVersion: CurrentVersion,
		Name:          g.Name,
		Path:          g.Path,
		Workspace:     &ws,
	}

	for _, path := range g.ProjectPaths() {
		p := g.Projects[path]
		project := Project{Path: p.Path, Name: p.Name, Type: p.Type, Schemes: p.Schemes}
		for _, name := range slices.Sorted(maps.Keys(p.Targets)) {
			project.Targets = append(project.Targets, targetDocument(p.Targets[name]))
		}
		doc.Projects = append(doc.Projects, project)
	}

	for _, projectPath := range slices.Sorted(maps.Keys(g.Packages)) {
		pkgs := g.Packages[projectPath]
		for _, id := range slices.Sorted(maps.Keys(pkgs)) {
			pkg := pkgs[id]
			doc.Packages = append(doc.Packages, Package{
				Project:     projectPath,
				ID:          id,
				Kind:        pkg.Kind,
				Location:    pkg.Location,
				Requirement: pkg.Requirement,
			})
		}
	}

	for _, e := range g.Edges() {
		doc.Dependencies = append(doc.Dependencies, Edge{
			From:      NodeOf(e.From),
			To:        NodeOf(e.To),
			Condition: g.DependencyConditions[e].Strings(),
		})
	}
	return doc
}

func targetDocument(t *graph.Target) Target {
	out := Target{
		Name:                     t.Name,
		Product:                  string(t.Product),
		ProductName:              t.ProductName,
		BundleID:                 t.BundleID,
		Resources:                t.Resources,
		Mergeable:                t.Mergeable,
		Settings:                 t.Settings,
		GeneratedResourcesBundle: t.GeneratedResourcesBundle,
	}
	for _, d := range t.Destinations.Sorted() {
		out.Destinations = append(out.Destinations, string(d))
	}
	if !t.MergedBinaryType.IsDisabled() {
		out.MergedBinaryType = &MergedBinaryType{
			Mode:   string(t.MergedBinaryType.Mode),
			Manual: t.MergedBinaryType.Manual,
		}
	}
	return out
}

// NodeOf returns the tagged form of d.
func NodeOf(d graph.Dependency) Node {
	return graph.Visit[Node](d, nodeVisitor{})
}

type nodeVisitor struct{}

func (nodeVisitor) Target(d graph.TargetDependency) Node {
	return Node{Kind: graph.KindTarget, Name: d.Name, Path: d.Path, Status: d.Status}
}

func (nodeVisitor) Framework(d graph.FrameworkDependency) Node {
	return Node{
		Kind:             graph.KindFramework,
		Path:             d.Path,
		BinaryPath:       d.BinaryPath,
		DSYMPath:         d.DSYMPath,
		BCSymbolMapPaths: d.BCSymbolMapPaths.Items(),
		Linking:          d.Linking,
		Architectures:    d.Architectures.Items(),
		Status:           d.Status,
	}
}

func (nodeVisitor) Library(d graph.LibraryDependency) Node {
	return Node{
		Kind:           graph.KindLibrary,
		Path:           d.Path,
		PublicHeaders:  d.PublicHeaders,
		Linking:        d.Linking,
		Architectures:  d.Architectures.Items(),
		SwiftModuleMap: d.SwiftModuleMap,
	}
}

func (nodeVisitor) XCFramework(d graph.XCFrameworkDependency) Node {
	return Node{
		Kind:              graph.KindXCFramework,
		Path:              d.Path,
		ExpectedSignature: d.ExpectedSignature,
		Libraries:         d.InfoPlist.Libraries.Items(),
		BinaryName:        d.InfoPlist.BinaryName,
		Linking:           d.Linking,
		Status:            d.Status,
		Mergeable:         d.Mergeable,
		SwiftModules:      d.SwiftModules.Items(),
		ModuleMaps:        d.ModuleMaps.Items(),
	}
}

func (nodeVisitor) Bundle(d graph.BundleDependency) Node {
	return Node{Kind: graph.KindBundle, Path: d.Path}
}

func (nodeVisitor) PackageProduct(d graph.PackageProductDependency) Node {
	return Node{Kind: graph.KindPackageProduct, Path: d.Path, Product: d.Product, ProductType: d.Type}
}

func (nodeVisitor) SDK(d graph.SDKDependency) Node {
	return Node{Kind: graph.KindSDK, Name: d.Name, Path: d.Path, Status: d.Status, Source: d.Source}
}

func (nodeVisitor) Macro(d graph.MacroDependency) Node {
	return Node{Kind: graph.KindMacro, Path: d.Path}
}
