package traverser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
	"github.com/roach88/linkgraph/internal/testutil"
)

func TestResourceBundles_StopAtResourceHost(t *testing.T) {
	withResources := testutil.Target("Hosting", graph.StaticFramework)
	withResources.Resources = []string{"Assets.xcassets"}

	g := graph.NewBuilder("Resources", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("Plain", graph.StaticFramework),
			withResources,
			testutil.Target("PlainRes", graph.Bundle),
			testutil.Target("HostedRes", graph.Bundle),
		), true).
		Edge(node("App"), node("Plain"), always0).
		Edge(node("App"), node("Hosting"), always0).
		Edge(node("Plain"), node("PlainRes"), always0).
		Edge(node("Hosting"), node("HostedRes"), always0).
		Edge(node("App"), graph.BundleDependency{Path: "/res/Assets.bundle"}, always0).
		Build()
	tr := New(g)

	assert.Equal(t, []string{
		"product PlainRes PlainRes.bundle",
		"bundle /res/Assets.bundle",
	}, refStrings(tr.ResourceBundleDependencies(appPath, "App")))

	assert.Equal(t, []string{"product HostedRes HostedRes.bundle"},
		refStrings(tr.ResourceBundleDependencies(appPath, "Hosting")))

	// A static framework without resources hosts nothing.
	assert.Zero(t, tr.ResourceBundleDependencies(appPath, "Plain").Len())
}

func TestResourceBundles_ExternalOnlyInBundleEmbeddingTargets(t *testing.T) {
	g := graph.NewBuilder("External", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("Kit", graph.Framework),
		), true).
		Project(testutil.ExternalProject(extPath,
			testutil.Target("Ext", graph.Framework),
			testutil.Target("Ext_Resources", graph.Bundle),
		), false).
		Edge(node("App"), node("Kit"), always0).
		Edge(node("Kit"), testutil.Node(extPath, "Ext"), always0).
		Edge(testutil.Node(extPath, "Ext"), testutil.Node(extPath, "Ext_Resources"), always0).
		Build()
	tr := New(g)

	assert.Equal(t, []string{"product Ext_Resources Ext_Resources.bundle"},
		refStrings(tr.ResourceBundleDependencies(appPath, "App")))
	assert.Zero(t, tr.ResourceBundleDependencies(appPath, "Kit").Len())
}

func TestResourceBundles_MacAppEmbedsPluginsNotResources(t *testing.T) {
	g := graph.NewBuilder("Plugins", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("MacApp", graph.App, platform.Mac),
			testutil.Target("Plugin", graph.Bundle, platform.Mac),
		), true).
		Edge(testutil.Node(appPath, "MacApp"), testutil.Node(appPath, "Plugin"), always0).
		Build()

	assert.Zero(t, New(g).ResourceBundleDependencies(appPath, "MacApp").Len())
}

func TestCopyProductDependencies(t *testing.T) {
	pay := testutil.XCFramework("/xc/Pay.xcframework", graph.LinkingStatic, "Pay")
	g := graph.NewBuilder("Copy", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("Static", graph.StaticLibrary),
			testutil.Target("Inner", graph.StaticLibrary),
			testutil.Target("Host", graph.App),
		), true).
		Project(testutil.Project("/ws/Other",
			testutil.Target("Companion", graph.App),
			testutil.Target("Widget", graph.AppExtension),
		), false).
		Edge(node("Static"), node("Inner"), always0).
		Edge(node("Static"), pay, always0).
		Edge(node("Host"), testutil.Node("/ws/Other", "Companion"), always0).
		Edge(node("Host"), testutil.Node("/ws/Other", "Widget"), always0).
		Build()
	tr := New(g)

	assert.Equal(t, []string{
		"product Inner libInner.a",
		"xcframework /xc/Pay.xcframework",
	}, refStrings(tr.CopyProductDependencies(appPath, "Static")))

	assert.Equal(t, []string{
		"product Companion Companion.app",
		"product Widget Widget.appex",
	}, refStrings(tr.CopyProductDependencies(appPath, "Host")))

	assert.Equal(t, []string{"product Companion Companion.app"},
		refStrings(tr.ExecutableDependencies(appPath, "Host")))
}

func TestSearchPaths(t *testing.T) {
	ssl := testutil.Library("/libs/ssl/libssl.a", graph.LinkingStatic)
	ssl.SwiftModuleMap = "/libs/ssl/module/ssl.modulemap"
	core := testutil.Framework("/fw/Core.framework", graph.LinkingDynamic)

	g := graph.NewBuilder("Paths", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("AppTests", graph.UnitTests),
			testutil.Target("LogicTests", graph.UnitTests),
		), true).
		Edge(node("App"), ssl, always0).
		Edge(node("AppTests"), node("App"), always0).
		Edge(node("AppTests"), core, always0).
		Edge(node("LogicTests"), core, always0).
		Build()
	tr := New(g)

	assert.Equal(t, []string{"/libs/ssl/include"}, tr.LibrariesPublicHeadersFolders(appPath, "App"))
	assert.Equal(t, []string{"/libs/ssl/module"}, tr.LibrariesSwiftIncludePaths(appPath, "App"))

	paths, err := tr.LibrariesSearchPaths(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{"/libs/ssl"}, paths)

	assert.Equal(t, []string{"/fw"}, tr.RunPathSearchPaths(appPath, "LogicTests"))
	assert.Empty(t, tr.RunPathSearchPaths(appPath, "AppTests"))
	assert.Empty(t, tr.RunPathSearchPaths(appPath, "App"))
}

func TestSwiftMacros(t *testing.T) {
	macros := testutil.XCFramework("/xc/Macros.xcframework", graph.LinkingStatic, "Macros")
	g := graph.NewBuilder("Macros", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("Lib", graph.Framework),
			testutil.Target("LibMacros", graph.Macro, platform.Mac),
		), true).
		Edge(node("App"), node("Lib"), always0).
		Edge(node("App"), macros, always0).
		Edge(node("Lib"), node("LibMacros"), always0).
		Edge(macros, graph.MacroDependency{Path: "/xc/Macros.xcframework/Macros.macro"}, always0).
		Build()
	tr := New(g)

	assert.Equal(t, []string{"product LibMacros LibMacros [macos]"},
		refStrings(tr.DirectSwiftMacroExecutables(appPath, "Lib")))

	direct := tr.DirectSwiftMacroTargets(appPath, "App")
	require.Len(t, direct, 1)
	assert.Equal(t, "Lib", direct[0].Target.Name)

	all := tr.AllSwiftMacroTargets(appPath, "App")
	require.Len(t, all, 1)
	assert.Equal(t, "Lib", all[0].Target.Name)

	want := []string{
		"$BUILD_DIR/Debug$EFFECTIVE_PLATFORM_NAME/LibMacros#LibMacros",
		"/xc/Macros.xcframework/Macros.macro#Macros",
	}
	assert.Equal(t, want, tr.AllSwiftPluginExecutables(appPath, "App"))
	assert.Equal(t, want, tr.AllSwiftPluginExecutables(appPath, "App"))
	assert.Equal(t, 1, tr.CacheStats()[cachePluginBinaries])
}
