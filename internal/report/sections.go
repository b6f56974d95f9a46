package report

import "github.com/roach88/linkgraph/internal/traverser"

// SectionNames lists the report sections in rendering order. Every section
// renders to a list of strings; references use their String form.
var SectionNames = []string{
	"linkable",
	"searchable",
	"embeddable",
	"resource_bundles",
	"copy_products",
	"executables",
	"direct_static",
	"macro_executables",
	"plugin_executables",
	"public_headers_folders",
	"library_search_paths",
	"swift_include_paths",
	"run_path_search_paths",
	"target_dependencies",
	"host",
	"flags",
}

// Flags rendered in the "flags" section.
const (
	FlagDependsOnXCTest      = "depends_on_xctest"
	FlagBuildsForMacCatalyst = "builds_for_mac_catalyst"
)

// Section returns the named section as strings. ok is false for an unknown
// name; a known but empty section returns nil, true.
func (r TargetReport) Section(name string) (entries []string, ok bool) {
	switch name {
	case "linkable":
		return referenceStrings(r.Linkable), true
	case "searchable":
		return referenceStrings(r.Searchable), true
	case "embeddable":
		return referenceStrings(r.Embeddable), true
	case "resource_bundles":
		return referenceStrings(r.ResourceBundles), true
	case "copy_products":
		return referenceStrings(r.CopyProducts), true
	case "executables":
		return referenceStrings(r.Executables), true
	case "direct_static":
		return referenceStrings(r.StaticDirect), true
	case "macro_executables":
		return referenceStrings(r.MacroExecutables), true
	case "plugin_executables":
		return r.PluginExecutables, true
	case "public_headers_folders":
		return r.PublicHeadersFolders, true
	case "library_search_paths":
		return r.LibrarySearchPaths, true
	case "swift_include_paths":
		return r.SwiftIncludePaths, true
	case "run_path_search_paths":
		return r.RunPathSearchPaths, true
	case "target_dependencies":
		return r.TargetDependencies, true
	case "host":
		if r.Host == "" {
			return nil, true
		}
		return []string{r.Host}, true
	case "flags":
		var flags []string
		if r.DependsOnXCTest {
			flags = append(flags, FlagDependsOnXCTest)
		}
		if r.BuildsForMacCatalyst {
			flags = append(flags, FlagBuildsForMacCatalyst)
		}
		return flags, true
	default:
		return nil, false
	}
}

func referenceStrings(refs []traverser.Reference) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}
