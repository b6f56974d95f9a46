package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/linkgraph/internal/traverser"
)

// WriteText renders reports for terminals. Only non-empty sections are
// printed.
func WriteText(w io.Writer, reports []TargetReport) error {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteByte('\n')
		}
		header := fmt.Sprintf("%s (%s)", r.Target, r.Product)
		if r.External {
			header += " external"
		}
		b.WriteString(header + "\n")

		refs(&b, "linkable", r.Linkable)
		refs(&b, "searchable", r.Searchable)
		refs(&b, "embeddable", r.Embeddable)
		refs(&b, "resource bundles", r.ResourceBundles)
		refs(&b, "copy products", r.CopyProducts)
		refs(&b, "executables", r.Executables)
		refs(&b, "direct static", r.StaticDirect)
		refs(&b, "macro executables", r.MacroExecutables)
		list(&b, "plugin executables", r.PluginExecutables)
		list(&b, "public headers folders", r.PublicHeadersFolders)
		list(&b, "library search paths", r.LibrarySearchPaths)
		list(&b, "swift include paths", r.SwiftIncludePaths)
		list(&b, "run path search paths", r.RunPathSearchPaths)
		list(&b, "target dependencies", r.TargetDependencies)

		if r.Host != "" {
			fmt.Fprintf(&b, "  host: %s\n", r.Host)
		}
		if r.DependsOnXCTest {
			b.WriteString("  depends on XCTest\n")
		}
		if r.BuildsForMacCatalyst {
			b.WriteString("  builds for Mac Catalyst\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func refs(b *strings.Builder, title string, rs []traverser.Reference) {
	if len(rs) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", title)
	for _, r := range rs {
		fmt.Fprintf(b, "    %s\n", r)
	}
}

func list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "    %s\n", item)
	}
}

// WriteSummaryText renders a summary for terminals.
func WriteSummaryText(w io.Writer, s Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", s.Name, s.Path)
	fmt.Fprintf(&b, "  projects: %d\n", s.Projects)
	fmt.Fprintf(&b, "  targets: %d\n", s.Targets)

	if len(s.ExternalTargets) > 0 {
		b.WriteString("  external targets:\n")
		for _, e := range s.ExternalTargets {
			platforms := make([]string, len(e.Platforms))
			for i, p := range e.Platforms {
				platforms[i] = string(p)
			}
			destinations := make([]string, len(e.Destinations))
			for i, d := range e.Destinations {
				destinations[i] = string(d)
			}
			fmt.Fprintf(&b, "    %s platforms=%s destinations=%s\n",
				e.Target, strings.Join(platforms, ","), strings.Join(destinations, ","))
		}
	}
	list(&b, "orphan external targets", s.Orphans)
	list(&b, "build order", s.BuildOrder)

	_, err := io.WriteString(w, b.String())
	return err
}
