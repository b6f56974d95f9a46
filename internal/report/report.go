// Package report runs every per-target resolution query and collects the
// results into serializable reports.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/traverser"
)

// TargetReport is the resolution of a single target. Empty sections are
// omitted from JSON.
type TargetReport struct {
	Target   string        `json:"target"`
	Project  string        `json:"project"`
	Name     string        `json:"name"`
	Product  graph.Product `json:"product"`
	External bool          `json:"external,omitempty"`

	Linkable          []traverser.Reference `json:"linkable,omitempty"`
	Searchable        []traverser.Reference `json:"searchable,omitempty"`
	Embeddable        []traverser.Reference `json:"embeddable,omitempty"`
	ResourceBundles   []traverser.Reference `json:"resource_bundles,omitempty"`
	CopyProducts      []traverser.Reference `json:"copy_products,omitempty"`
	Executables       []traverser.Reference `json:"executables,omitempty"`
	StaticDirect      []traverser.Reference `json:"direct_static,omitempty"`
	MacroExecutables  []traverser.Reference `json:"macro_executables,omitempty"`
	PluginExecutables []string              `json:"plugin_executables,omitempty"`

	PublicHeadersFolders []string `json:"public_headers_folders,omitempty"`
	LibrarySearchPaths   []string `json:"library_search_paths,omitempty"`
	SwiftIncludePaths    []string `json:"swift_include_paths,omitempty"`
	RunPathSearchPaths   []string `json:"run_path_search_paths,omitempty"`

	TargetDependencies   []string `json:"target_dependencies,omitempty"`
	Host                 string   `json:"host,omitempty"`
	DependsOnXCTest      bool     `json:"depends_on_xctest,omitempty"`
	BuildsForMacCatalyst bool     `json:"builds_for_mac_catalyst,omitempty"`
}

// Build resolves gt. An error means the target is misconfigured, for
// example it manually merges a binary that is not mergeable.
//
// Thread-safe: Can be called concurrently with the same traverser.
func Build(tr *traverser.Traverser, gt graph.GraphTarget) (TargetReport, error) {
	path, name := gt.Path, gt.Target.Name
	r := TargetReport{
		Target:   gt.String(),
		Project:  path,
		Name:     name,
		Product:  gt.Target.Product,
		External: gt.Project != nil && gt.Project.IsExternal(),
	}

	linkable, err := tr.LinkableDependencies(path, name)
	if err != nil {
		return TargetReport{}, fmt.Errorf("%s: linkable dependencies: %w", gt, err)
	}
	searchable, err := tr.SearchablePathDependencies(path, name)
	if err != nil {
		return TargetReport{}, fmt.Errorf("%s: searchable dependencies: %w", gt, err)
	}
	embeddable, err := tr.EmbeddableFrameworks(path, name)
	if err != nil {
		return TargetReport{}, fmt.Errorf("%s: embeddable frameworks: %w", gt, err)
	}
	r.LibrarySearchPaths, err = tr.LibrariesSearchPaths(path, name)
	if err != nil {
		return TargetReport{}, fmt.Errorf("%s: library search paths: %w", gt, err)
	}

	r.Linkable = linkable.Sorted()
	r.Searchable = searchable.Sorted()
	r.Embeddable = embeddable.Sorted()
	r.ResourceBundles = tr.ResourceBundleDependencies(path, name).Sorted()
	r.CopyProducts = tr.CopyProductDependencies(path, name).Sorted()
	r.Executables = tr.ExecutableDependencies(path, name).Sorted()
	r.StaticDirect = tr.DirectStaticDependencies(path, name).Sorted()
	r.MacroExecutables = tr.DirectSwiftMacroExecutables(path, name).Sorted()
	r.PluginExecutables = tr.AllSwiftPluginExecutables(path, name)

	r.PublicHeadersFolders = tr.LibrariesPublicHeadersFolders(path, name)
	r.SwiftIncludePaths = tr.LibrariesSwiftIncludePaths(path, name)
	r.RunPathSearchPaths = tr.RunPathSearchPaths(path, name)

	for _, dep := range tr.AllTargetDependencies(path, name) {
		r.TargetDependencies = append(r.TargetDependencies, dep.String())
	}
	if host, ok := hostOf(tr, gt); ok {
		r.Host = host.String()
	}
	r.DependsOnXCTest = tr.DependsOnXCTest(path, name)
	r.BuildsForMacCatalyst = tr.BuildsForMacCatalyst(path, name)
	return r, nil
}

// hostOf returns the app hosting a test bundle, or the target embedding an
// extension.
func hostOf(tr *traverser.Traverser, gt graph.GraphTarget) (graph.GraphTarget, bool) {
	if gt.Target.Product.TestsBundle() {
		return tr.UnitTestHost(gt.Path, gt.Target.Name)
	}
	if gt.Target.Product.IsExtension() || gt.Target.Product == graph.AppClip {
		return tr.HostTargetFor(gt.Path, gt.Target.Name)
	}
	return graph.GraphTarget{}, false
}

// Option configures BuildAll.
type Option func(*options)

type options struct {
	concurrency int
}

// WithConcurrency bounds the number of targets resolved at once. Values
// below one mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// BuildAll resolves targets in parallel and returns their reports in the
// order of targets. The first error cancels the remaining work.
func BuildAll(ctx context.Context, tr *traverser.Traverser, targets []graph.GraphTarget, opts ...Option) ([]TargetReport, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}

	reports := make([]TargetReport, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, gt := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Build(tr, gt)
			if err != nil {
				return err
			}
			reports[i] = r
			slog.Debug("resolved target", "target", gt.String(), "linkable", len(r.Linkable))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("resolved targets", "graph", tr.Name(), "count", len(reports), "concurrency", o.concurrency)
	return reports, nil
}
