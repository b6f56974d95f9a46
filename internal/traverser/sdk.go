package traverser

import (
	"path"
	"strings"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

// SDKMetadata locates a system framework or library inside Xcode.
type SDKMetadata struct {
	Name   string
	Path   string
	Status graph.LinkingStatus
	Source graph.SDKSource
}

// SDKMetadataProvider resolves SDK names such as "UIKit.framework" or
// "libc++.tbd" to their location for a platform.
type SDKMetadataProvider interface {
	LoadMetadata(name string, status graph.LinkingStatus, p platform.Platform, source graph.SDKSource) (SDKMetadata, error)
}

// SystemSDKMetadataProvider computes SDK paths relative to the Xcode
// developer directory.
type SystemSDKMetadataProvider struct{}

// LoadMetadata implements SDKMetadataProvider.
//
// System SDKs live under
// /Platforms/<Root>.platform/Developer/SDKs/<Root>.sdk, frameworks in
// System/Library/Frameworks and text-based libraries in usr/lib (Swift
// runtime libraries in usr/lib/swift). Developer SDKs live under
// /Platforms/<Root>.platform/Developer/Library/Frameworks.
func (SystemSDKMetadataProvider) LoadMetadata(name string, status graph.LinkingStatus, p platform.Platform, source graph.SDKSource) (SDKMetadata, error) {
	var sub string
	switch path.Ext(name) {
	case ".framework":
		sub = "System/Library/Frameworks"
	case ".tbd":
		sub = "usr/lib"
		if strings.HasPrefix(name, "libswift") {
			sub = "usr/lib/swift"
		}
	default:
		return SDKMetadata{}, NewUnsupportedSDKError(name)
	}

	root := p.SDKRoot()
	platformDir := path.Join("/Platforms", root+".platform", "Developer")

	var full string
	switch source {
	case graph.SDKSourceDeveloper:
		full = path.Join(platformDir, "Library", "Frameworks", name)
	default:
		full = path.Join(platformDir, "SDKs", root+".sdk", sub, name)
	}

	return SDKMetadata{Name: name, Path: full, Status: status, Source: source}, nil
}
