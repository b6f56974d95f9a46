// Package snapshot reads and writes graph snapshots: a serialized
// dependency graph in YAML, or in CUE for hand-maintained fixtures.
//
// A snapshot is a Document. Nodes are tagged objects whose "kind" selects
// the graph.Dependency case; edges may carry a platform condition.
package snapshot

import "github.com/roach88/linkgraph/internal/graph"

// CurrentVersion is written by FromGraph.
const CurrentVersion = "1.0.0"

// SupportedVersions is the schema_version constraint accepted by Load.
const SupportedVersions = "^1.0.0"

// Document is the on-disk form of a graph.
type Document struct {
	SchemaVersion string           `json:"schema_version" yaml:"schema_version"`
	Name          string           `json:"name" yaml:"name"`
	Path          string           `json:"path" yaml:"path"`
	Workspace     *graph.Workspace `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	Projects      []Project        `json:"projects" yaml:"projects"`
	Packages      []Package        `json:"packages,omitempty" yaml:"packages,omitempty"`
	Dependencies  []Edge           `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Project is a project and its targets. Type defaults to local.
type Project struct {
	Path    string            `json:"path" yaml:"path"`
	Name    string            `json:"name" yaml:"name"`
	Type    graph.ProjectType `json:"type,omitempty" yaml:"type,omitempty"`
	Targets []Target          `json:"targets,omitempty" yaml:"targets,omitempty"`
	Schemes []graph.Scheme    `json:"schemes,omitempty" yaml:"schemes,omitempty"`
}

// Target mirrors graph.Target. Destinations default to iPhone.
type Target struct {
	Name                     string            `json:"name" yaml:"name"`
	Product                  string            `json:"product" yaml:"product"`
	ProductName              string            `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	BundleID                 string            `json:"bundle_id,omitempty" yaml:"bundle_id,omitempty"`
	Destinations             []string          `json:"destinations,omitempty" yaml:"destinations,omitempty"`
	Resources                []string          `json:"resources,omitempty" yaml:"resources,omitempty"`
	MergedBinaryType         *MergedBinaryType `json:"merged_binary_type,omitempty" yaml:"merged_binary_type,omitempty"`
	Mergeable                bool              `json:"mergeable,omitempty" yaml:"mergeable,omitempty"`
	Settings                 map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
	GeneratedResourcesBundle bool              `json:"generated_resources_bundle,omitempty" yaml:"generated_resources_bundle,omitempty"`
}

// MergedBinaryType mirrors graph.MergedBinaryType.
type MergedBinaryType struct {
	Mode   string   `json:"mode" yaml:"mode"`
	Manual []string `json:"manual,omitempty" yaml:"manual,omitempty"`
}

// Package is a package declared by the project at Project.
type Package struct {
	Project     string            `json:"project" yaml:"project"`
	ID          string            `json:"id" yaml:"id"`
	Kind        graph.PackageKind `json:"kind" yaml:"kind"`
	Location    string            `json:"location" yaml:"location"`
	Requirement string            `json:"requirement,omitempty" yaml:"requirement,omitempty"`
}

// Edge is a dependency from From to To, active on the platforms named by
// Condition. An empty condition is always active.
type Edge struct {
	From      Node     `json:"from" yaml:"from"`
	To        Node     `json:"to" yaml:"to"`
	Condition []string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Node is the tagged form of a graph.Dependency. Kind selects which of the
// remaining fields apply:
//
//	target:          name, path (project), status
//	framework:       path, binary_path, dsym_path, bcsymbolmap_paths, linking, architectures, status
//	library:         path, public_headers, linking, architectures, swift_module_map
//	xcframework:     path, expected_signature, libraries, binary_name, linking, status, mergeable, swift_modules, module_maps
//	bundle, macro:   path
//	package_product: path (project), product, product_type
//	sdk:             name, path, status, source
type Node struct {
	Kind              graph.Kind               `json:"kind" yaml:"kind"`
	Name              string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Path              string                   `json:"path,omitempty" yaml:"path,omitempty"`
	Status            graph.LinkingStatus      `json:"status,omitempty" yaml:"status,omitempty"`
	Linking           graph.BinaryLinking      `json:"linking,omitempty" yaml:"linking,omitempty"`
	BinaryPath        string                   `json:"binary_path,omitempty" yaml:"binary_path,omitempty"`
	DSYMPath          string                   `json:"dsym_path,omitempty" yaml:"dsym_path,omitempty"`
	BCSymbolMapPaths  []string                 `json:"bcsymbolmap_paths,omitempty" yaml:"bcsymbolmap_paths,omitempty"`
	Architectures     []string                 `json:"architectures,omitempty" yaml:"architectures,omitempty"`
	PublicHeaders     string                   `json:"public_headers,omitempty" yaml:"public_headers,omitempty"`
	SwiftModuleMap    string                   `json:"swift_module_map,omitempty" yaml:"swift_module_map,omitempty"`
	ExpectedSignature string                   `json:"expected_signature,omitempty" yaml:"expected_signature,omitempty"`
	Libraries         []string                 `json:"libraries,omitempty" yaml:"libraries,omitempty"`
	BinaryName        string                   `json:"binary_name,omitempty" yaml:"binary_name,omitempty"`
	Mergeable         bool                     `json:"mergeable,omitempty" yaml:"mergeable,omitempty"`
	SwiftModules      []string                 `json:"swift_modules,omitempty" yaml:"swift_modules,omitempty"`
	ModuleMaps        []string                 `json:"module_maps,omitempty" yaml:"module_maps,omitempty"`
	Product           string                   `json:"product,omitempty" yaml:"product,omitempty"`
	ProductType       graph.PackageProductType `json:"product_type,omitempty" yaml:"product_type,omitempty"`
	Source            graph.SDKSource          `json:"source,omitempty" yaml:"source,omitempty"`
}
