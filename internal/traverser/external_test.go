package traverser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
	"github.com/roach88/linkgraph/internal/testutil"
)

func ext(name string) graph.TargetDependency {
	return testutil.Node(extPath, name)
}

// externalGraph:
//
//	App --> Ext --> ExtCore
//	         \--> ExtMacros
//	App --(ios)--> ExtIOS
//	App --(tvos)--> ExtTV
//	ExtUnused
func externalGraph() *Traverser {
	g := graph.NewBuilder("External", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App, platform.IPhone, platform.IPad, platform.Mac),
		), true).
		Project(testutil.ExternalProject(extPath,
			testutil.Target("Ext", graph.Framework, platform.IPhone, platform.IPad, platform.Mac, platform.AppleTV),
			testutil.Target("ExtCore", graph.StaticLibrary, platform.IPhone, platform.IPad),
			testutil.Target("ExtMacros", graph.Macro, platform.Mac),
			testutil.Target("ExtIOS", graph.Framework, platform.IPhone, platform.Mac),
			testutil.Target("ExtTV", graph.Framework, platform.AppleTV),
			testutil.Target("ExtUnused", graph.Framework),
		), false).
		Edge(node("App"), ext("Ext"), always0).
		Edge(node("App"), ext("ExtIOS"), when(platform.FilterIOS)).
		Edge(node("App"), ext("ExtTV"), when(platform.FilterTvOS)).
		Edge(ext("Ext"), ext("ExtCore"), always0).
		Edge(ext("Ext"), ext("ExtMacros"), always0).
		Build()
	return New(g)
}

func mustTarget(t *testing.T, tr *Traverser, path, name string) graph.GraphTarget {
	t.Helper()
	gt, ok := tr.Target(path, name)
	require.True(t, ok, "target %s:%s", path, name)
	return gt
}

func TestTargetsWithExternalDependencies(t *testing.T) {
	tr := externalGraph()

	got := tr.TargetsWithExternalDependencies()
	require.Len(t, got, 1)
	assert.Equal(t, "App", got[0].Target.Name)

	direct := tr.DirectTargetExternalDependencies(appPath, "App")
	require.Len(t, direct, 3)
	assert.Equal(t, when(platform.FilterIOS), direct[1].Condition)
}

func TestExternalTargetSupportedPlatforms(t *testing.T) {
	tr := externalGraph()
	got := tr.ExternalTargetSupportedPlatforms()

	cases := map[string]platform.Set[platform.Platform]{
		"Ext":       platform.NewSet(platform.IOS, platform.MacOS),
		"ExtCore":   platform.NewSet(platform.IOS),
		"ExtMacros": platform.NewSet(platform.MacOS),
		"ExtIOS":    platform.NewSet(platform.IOS),
	}
	for name, want := range cases {
		gt := mustTarget(t, tr, extPath, name)
		assert.Equal(t, want.Sorted(), got[gt].Sorted(), name)
	}

	_, ok := got[mustTarget(t, tr, extPath, "ExtTV")]
	assert.False(t, ok, "an incompatible edge propagates nothing")
}

func TestExternalTargetSupportedDestinations(t *testing.T) {
	tr := externalGraph()
	got := tr.ExternalTargetSupportedDestinations()

	cases := map[string]platform.Set[platform.Destination]{
		"Ext":       platform.NewSet(platform.IPhone, platform.IPad, platform.Mac),
		"ExtCore":   platform.NewSet(platform.IPhone, platform.IPad),
		"ExtMacros": platform.NewSet(platform.Mac),
		"ExtIOS":    platform.NewSet(platform.IPhone),
	}
	for name, want := range cases {
		gt := mustTarget(t, tr, extPath, name)
		assert.Equal(t, want.Sorted(), got[gt].Sorted(), name)
	}
}

func TestExternalPropagationReachesFixedPointThroughDiamonds(t *testing.T) {
	g := graph.NewBuilder("Fixpoint", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("IOSApp", graph.App, platform.IPhone),
			testutil.Target("MacApp", graph.App, platform.Mac),
		), true).
		Project(testutil.ExternalProject(extPath,
			testutil.Target("Left", graph.Framework, platform.IPhone, platform.Mac),
			testutil.Target("Right", graph.Framework, platform.IPhone, platform.Mac),
			testutil.Target("Bottom", graph.Framework, platform.IPhone, platform.Mac),
		), false).
		Edge(node("IOSApp"), ext("Left"), always0).
		Edge(node("MacApp"), ext("Right"), always0).
		Edge(ext("Left"), ext("Bottom"), always0).
		Edge(ext("Right"), ext("Bottom"), always0).
		Build()
	tr := New(g)

	got := tr.ExternalTargetSupportedPlatforms()
	bottom := mustTarget(t, tr, extPath, "Bottom")
	assert.Equal(t, []platform.Platform{platform.IOS, platform.MacOS}, got[bottom].Sorted())
}

func TestAllOrphanExternalTargets(t *testing.T) {
	tr := externalGraph()

	var names []string
	for _, gt := range tr.AllOrphanExternalTargets() {
		names = append(names, gt.Target.Name)
	}
	assert.Equal(t, []string{"ExtTV", "ExtUnused"}, names)
}
