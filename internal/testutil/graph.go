// Package testutil provides graph fixtures and deterministic clocks and
// identifiers for tests.
package testutil

import (
	"path"
	"strings"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// Target returns a target named name. Without destinations it builds for
// iPhone and iPad.
func Target(name string, product graph.Product, destinations ...platform.Destination) *graph.Target {
	if len(destinations) == 0 {
		destinations = []platform.Destination{platform.IPhone, platform.IPad}
	}
	return &graph.Target{
		Name:         name,
		Product:      product,
		BundleID:     "dev.linkgraph." + name,
		Destinations: platform.NewSet(destinations...),
	}
}

// Project returns a local project at dir owning targets.
func Project(dir string, targets ...*graph.Target) *graph.Project {
	return newProject(dir, graph.ProjectLocal, targets)
}

// ExternalProject returns an external project at dir owning targets.
func ExternalProject(dir string, targets ...*graph.Target) *graph.Project {
	return newProject(dir, graph.ProjectExternal, targets)
}

func newProject(dir string, kind graph.ProjectType, targets []*graph.Target) *graph.Project {
	p := &graph.Project{
		Path:    dir,
		Name:    path.Base(dir),
		Type:    kind,
		Targets: make(map[string]*graph.Target, len(targets)),
	}
	for _, t := range targets {
		p.Targets[t.Name] = t
	}
	return p
}

// Node returns the graph node of the target name in the project at dir.
func Node(dir, name string) graph.TargetDependency {
	return graph.TargetDependency{Name: name, Path: dir}
}

// Framework returns a required precompiled framework.
func Framework(p string, linking graph.BinaryLinking) graph.FrameworkDependency {
	return graph.FrameworkDependency{
		Path:          p,
		BinaryPath:    p + "/" + strings.TrimSuffix(path.Base(p), path.Ext(p)),
		Linking:       linking,
		Architectures: graph.NewList("arm64"),
		Status:        graph.StatusRequired,
	}
}

// XCFramework returns a required XCFramework whose binary is binaryName.
func XCFramework(p string, linking graph.BinaryLinking, binaryName string) graph.XCFrameworkDependency {
	return graph.XCFrameworkDependency{
		Path: p,
		InfoPlist: graph.XCFrameworkInfoPlist{
			Libraries:  graph.NewList("ios-arm64"),
			BinaryName: binaryName,
		},
		Linking: linking,
		Status:  graph.StatusRequired,
	}
}

// Library returns a precompiled library with public headers next to it.
func Library(p string, linking graph.BinaryLinking) graph.LibraryDependency {
	return graph.LibraryDependency{
		Path:          p,
		PublicHeaders: path.Join(path.Dir(p), "include"),
		Linking:       linking,
		Architectures: graph.NewList("arm64"),
	}
}

// SDK returns a required system SDK such as "UIKit.framework".
func SDK(name string) graph.SDKDependency {
	return graph.SDKDependency{
		Name:   name,
		Path:   "/Platforms/iPhoneOS.platform/Developer/SDKs/iPhoneOS.sdk/System/Library/Frameworks/" + name,
		Status: graph.StatusRequired,
		Source: graph.SDKSourceSystem,
	}
}
