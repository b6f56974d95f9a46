package traverser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

func TestSystemSDKMetadataProvider(t *testing.T) {
	tests := []struct {
		name     string
		sdk      string
		platform platform.Platform
		source   graph.SDKSource
		want     string
	}{
		{"framework", "UIKit.framework", platform.IOS, graph.SDKSourceSystem,
			"/Platforms/iPhoneOS.platform/Developer/SDKs/iPhoneOS.sdk/System/Library/Frameworks/UIKit.framework"},
		{"library", "libc++.tbd", platform.MacOS, graph.SDKSourceSystem,
			"/Platforms/MacOSX.platform/Developer/SDKs/MacOSX.sdk/usr/lib/libc++.tbd"},
		{"swift runtime", "libswiftCore.tbd", platform.TvOS, graph.SDKSourceSystem,
			"/Platforms/AppleTVOS.platform/Developer/SDKs/AppleTVOS.sdk/usr/lib/swift/libswiftCore.tbd"},
		{"developer", "XCTest.framework", platform.IOS, graph.SDKSourceDeveloper,
			"/Platforms/iPhoneOS.platform/Developer/Library/Frameworks/XCTest.framework"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := SystemSDKMetadataProvider{}.LoadMetadata(tt.sdk, graph.StatusOptional, tt.platform, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, md.Path)
			assert.Equal(t, graph.StatusOptional, md.Status)
		})
	}
}

func TestSystemSDKMetadataProvider_Unsupported(t *testing.T) {
	_, err := SystemSDKMetadataProvider{}.LoadMetadata("libz.a", graph.StatusRequired, platform.IOS, graph.SDKSourceSystem)
	require.Error(t, err)
	assert.True(t, IsUnsupportedSDKError(err))
	assert.False(t, IsNonMergeableError(err))
}
