package graph

import (
	"strings"

	"github.com/roach88/linkgraph/internal/platform"
)

// MergeMode selects how a target merges its dynamic dependencies into its
// own binary.
type MergeMode string

const (
	MergeDisabled  MergeMode = "disabled"
	MergeAutomatic MergeMode = "automatic"
	MergeManual    MergeMode = "manual"
)

// MergedBinaryType is the merge mode plus, for manual merging, the binary
// names to merge.
type MergedBinaryType struct {
	Mode   MergeMode
	Manual []string
}

// IsDisabled reports whether the target does not merge binaries. The zero
// value is disabled.
func (m MergedBinaryType) IsDisabled() bool {
	return m.Mode == "" || m.Mode == MergeDisabled
}

// ManualSet returns the binaries to merge when the mode is manual.
func (m MergedBinaryType) ManualSet() (map[string]struct{}, bool) {
	if m.Mode != MergeManual {
		return nil, false
	}
	out := make(map[string]struct{}, len(m.Manual))
	for _, name := range m.Manual {
		out[name] = struct{}{}
	}
	return out, true
}

// Target is a buildable unit inside a project.
//
// Targets are read-only once they are part of a Graph.
type Target struct {
	Name                     string
	Product                  Product
	ProductName              string // defaults to Name with '-' replaced by '_'
	BundleID                 string
	Destinations             platform.Set[platform.Destination]
	Resources                []string
	MergedBinaryType         MergedBinaryType
	Mergeable                bool
	Settings                 map[string]string
	GeneratedResourcesBundle bool
}

// ResolvedProductName returns ProductName, or the sanitized target name when
// ProductName is empty.
func (t *Target) ResolvedProductName() string {
	if t.ProductName != "" {
		return t.ProductName
	}
	return strings.ReplaceAll(t.Name, "-", "_")
}

// ProductNameWithExtension is the file name of the built product, e.g.
// "libCore.a" or "App.app".
func (t *Target) ProductNameWithExtension() string {
	name := t.ResolvedProductName()
	ext := t.Product.FileExtension()
	switch {
	case t.Product == StaticLibrary || t.Product == DynamicLibrary:
		return "lib" + name + "." + ext
	case ext == "":
		return name
	default:
		return name + "." + ext
	}
}

// SupportedPlatforms is derived from the destinations.
func (t *Target) SupportedPlatforms() platform.Set[platform.Platform] {
	return platform.Platforms(t.Destinations)
}

// Supports reports whether the target builds for p.
func (t *Target) Supports(p platform.Platform) bool {
	return t.SupportedPlatforms().Contains(p)
}

// SupportsCatalyst reports whether the target builds for Mac Catalyst.
func (t *Target) SupportsCatalyst() bool {
	return t.Destinations.Contains(platform.MacCatalyst)
}

// DependencyPlatformFilters is the condition matching every platform the
// target builds for. Catalyst is included when the target supports it.
func (t *Target) DependencyPlatformFilters() platform.Condition {
	var filters []platform.Filter
	for _, p := range platform.AllPlatforms {
		if !t.Supports(p) {
			continue
		}
		switch p {
		case platform.IOS:
			filters = append(filters, platform.FilterIOS)
		case platform.MacOS:
			filters = append(filters, platform.FilterMacOS)
		case platform.TvOS:
			filters = append(filters, platform.FilterTvOS)
		case platform.WatchOS:
			filters = append(filters, platform.FilterWatchOS)
		case platform.VisionOS:
			filters = append(filters, platform.FilterVisionOS)
		}
	}
	if t.SupportsCatalyst() {
		filters = append(filters, platform.FilterCatalyst)
	}
	return platform.When(filters...)
}

// ContainsResources reports whether the target declares resource files.
func (t *Target) ContainsResources() bool {
	return len(t.Resources) > 0
}

// SupportsResources reports whether the product type can host resources.
func (t *Target) SupportsResources() bool {
	switch t.Product {
	case CommandLineTool, DynamicLibrary, StaticLibrary, XPC, SystemExtension, Macro:
		return false
	default:
		return true
	}
}

// CanLinkStaticProducts reports whether static dependencies end up linked
// into this target's binary.
func (t *Target) CanLinkStaticProducts() bool {
	switch t.Product {
	case Framework, DynamicLibrary, App, CommandLineTool, XPC, UnitTests, UITests,
		AppExtension, Watch2Extension, MessagesExtension, AppClip,
		TVTopShelfExtension, SystemExtension, ExtensionKitExtension, Macro:
		return true
	default:
		return false
	}
}

// IsEmbeddablePlugin reports whether the target is a macOS loadable bundle.
func (t *Target) IsEmbeddablePlugin() bool {
	return t.Supports(platform.MacOS) && t.Product == Bundle
}

// CanEmbedPlugins reports whether the target can carry loadable bundles.
func (t *Target) CanEmbedPlugins() bool {
	return t.Supports(platform.MacOS) && t.Product == App
}

// IsAppClip reports whether the target is an app clip.
func (t *Target) IsAppClip() bool {
	return t.Product == AppClip
}

// Setting returns a base build setting.
func (t *Target) Setting(key string) (string, bool) {
	v, ok := t.Settings[key]
	return v, ok
}
