package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
)

func TestTargetDefaultsToIOS(t *testing.T) {
	tg := Target("App", graph.App)
	assert.True(t, tg.Destinations.Equal(platform.NewSet(platform.IPhone, platform.IPad)))
	assert.Equal(t, "dev.linkgraph.App", tg.BundleID)
}

func TestProjects(t *testing.T) {
	p := Project("/ws/App", Target("App", graph.App))
	assert.Equal(t, "App", p.Name)
	assert.False(t, p.IsExternal())
	assert.Contains(t, p.Targets, "App")

	e := ExternalProject("/ws/.build/Alamofire", Target("Alamofire", graph.Framework))
	assert.True(t, e.IsExternal())
}

func TestPrecompiledFixtures(t *testing.T) {
	fw := Framework("/fw/Core.framework", graph.LinkingDynamic)
	assert.Equal(t, "/fw/Core.framework/Core", fw.BinaryPath)

	lib := Library("/libs/ssl/libssl.a", graph.LinkingStatic)
	assert.Equal(t, "/libs/ssl/include", lib.PublicHeaders)

	xc := XCFramework("/xc/Pay.xcframework", graph.LinkingDynamic, "Pay")
	assert.Equal(t, "Pay", xc.InfoPlist.BinaryName)
}
