package graph

// ProjectType tells whether a project belongs to the workspace or was
// generated from an external package.
type ProjectType string

const (
	ProjectLocal    ProjectType = "local"
	ProjectExternal ProjectType = "external"
)

// Project groups targets and schemes under one path.
type Project struct {
	Path    string
	Name    string
	Type    ProjectType
	Targets map[string]*Target
	Schemes []Scheme
}

// IsExternal reports whether the project comes from a package manager.
func (p *Project) IsExternal() bool {
	return p.Type == ProjectExternal
}

// TargetReference points at a target by project path and name.
type TargetReference struct {
	ProjectPath string `json:"project_path" yaml:"project_path"`
	Name        string `json:"name" yaml:"name"`
}

// TestPlan is a named test plan attached to a scheme's test action.
type TestPlan struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	IsDefault bool   `json:"is_default,omitempty" yaml:"is_default,omitempty"`
}

// Scheme describes what to build, run and test together.
type Scheme struct {
	Name         string            `json:"name" yaml:"name"`
	BuildTargets []TargetReference `json:"build_targets,omitempty" yaml:"build_targets,omitempty"`
	RunTarget    *TargetReference  `json:"run_target,omitempty" yaml:"run_target,omitempty"`
	TestPlans    []TestPlan        `json:"test_plans,omitempty" yaml:"test_plans,omitempty"`
}

// Workspace lists the root projects and workspace-level schemes.
type Workspace struct {
	Name     string   `json:"name" yaml:"name"`
	Path     string   `json:"path" yaml:"path"`
	Projects []string `json:"projects" yaml:"projects"`
	Schemes  []Scheme `json:"schemes,omitempty" yaml:"schemes,omitempty"`
}

// PackageKind distinguishes packages resolved from disk and from a remote.
type PackageKind string

const (
	PackageLocal  PackageKind = "local"
	PackageRemote PackageKind = "remote"
)

// Package is a package declared by a project.
type Package struct {
	Kind        PackageKind `json:"kind" yaml:"kind"`
	Location    string      `json:"location" yaml:"location"` // path or URL
	Requirement string      `json:"requirement,omitempty" yaml:"requirement,omitempty"`
}
