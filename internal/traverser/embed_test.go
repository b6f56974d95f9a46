package traverser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/testutil"
)

func TestEmbeddableFrameworks(t *testing.T) {
	core := testutil.Framework("/fw/Core.framework", graph.LinkingDynamic)
	g := graph.NewBuilder("Embed", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("Dyn", graph.Framework),
			testutil.Target("S", graph.StaticLibrary),
		), true).
		Edge(node("App"), node("Dyn"), always0).
		Edge(node("App"), node("S"), always0).
		Edge(node("Dyn"), core, always0).
		Build()
	tr := New(g)

	refs, err := tr.EmbeddableFrameworks(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"product Dyn Dyn.framework",
		"framework /fw/Core.framework",
	}, refStrings(refs))

	// Frameworks embed nothing themselves.
	dyn, err := tr.EmbeddableFrameworks(appPath, "Dyn")
	require.NoError(t, err)
	assert.Zero(t, dyn.Len())
}

func TestEmbeddableFrameworks_RequiredWinsOverOptional(t *testing.T) {
	optional := testutil.Framework("/fw/Core.framework", graph.LinkingDynamic)
	optional.Status = graph.StatusOptional
	required := testutil.Framework("/fw/Core.framework", graph.LinkingDynamic)

	g := graph.NewBuilder("Status", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("Dyn", graph.Framework),
		), true).
		Edge(node("App"), optional, always0).
		Edge(node("App"), node("Dyn"), always0).
		Edge(node("Dyn"), required, always0).
		Build()

	refs, err := New(g).EmbeddableFrameworks(appPath, "App")
	require.NoError(t, err)

	var frameworks []Reference
	for _, r := range refs.Sorted() {
		if r.Kind == RefFramework {
			frameworks = append(frameworks, r)
		}
	}
	require.Len(t, frameworks, 1)
	assert.Equal(t, graph.StatusRequired, frameworks[0].Status)
}

func mergingApp(mergeable bool) *Traverser {
	pay := testutil.XCFramework("/xc/Pay.xcframework", graph.LinkingDynamic, "Pay")
	pay.Mergeable = mergeable
	maps := testutil.XCFramework("/xc/Maps.xcframework", graph.LinkingDynamic, "Maps")

	app := testutil.Target("App", graph.App)
	app.MergedBinaryType = graph.MergedBinaryType{Mode: graph.MergeManual, Manual: []string{"Pay"}}

	g := graph.NewBuilder("Merge", "/ws").
		Project(testutil.Project(appPath, app), true).
		Edge(node("App"), pay, always0).
		Edge(node("App"), maps, always0).
		Build()
	return New(g)
}

func TestEmbeddableFrameworks_ManualMergeSkipsMergedBinaries(t *testing.T) {
	refs, err := mergingApp(true).EmbeddableFrameworks(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{"xcframework /xc/Maps.xcframework"}, refStrings(refs))
}

func TestEmbeddableFrameworks_ManualMergeOfNonMergeableFails(t *testing.T) {
	_, err := mergingApp(false).EmbeddableFrameworks(appPath, "App")
	require.Error(t, err)
	assert.True(t, IsNonMergeableError(err))
	assert.Contains(t, err.Error(), "Pay")
}

func TestEmbeddableFrameworks_MergingKeepsOnlyNonMergeableTargets(t *testing.T) {
	app := testutil.Target("App", graph.App)
	app.MergedBinaryType = graph.MergedBinaryType{Mode: graph.MergeAutomatic}
	merged := testutil.Target("Merged", graph.Framework)
	merged.Mergeable = true

	g := graph.NewBuilder("Automatic", "/ws").
		Project(testutil.Project(appPath, app, merged, testutil.Target("Plain", graph.Framework)), true).
		Edge(node("App"), node("Merged"), always0).
		Edge(node("App"), node("Plain"), always0).
		Build()

	refs, err := New(g).EmbeddableFrameworks(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{"product Plain Plain.framework"}, refStrings(refs))
}

func TestEmbeddableFrameworks_UnitTests(t *testing.T) {
	core := testutil.Framework("/fw/Core.framework", graph.LinkingDynamic)
	extra := testutil.Framework("/fw/Extra.framework", graph.LinkingDynamic)

	g := graph.NewBuilder("Tests", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("AppTests", graph.UnitTests),
			testutil.Target("LogicTests", graph.UnitTests),
		), true).
		Edge(node("App"), core, always0).
		Edge(node("AppTests"), node("App"), always0).
		Edge(node("AppTests"), core, always0).
		Edge(node("AppTests"), extra, always0).
		Edge(node("LogicTests"), core, always0).
		Build()
	tr := New(g)

	hosted, err := tr.EmbeddableFrameworks(appPath, "AppTests")
	require.NoError(t, err)
	assert.Equal(t, []string{"framework /fw/Extra.framework"}, refStrings(hosted))

	hostless, err := tr.EmbeddableFrameworks(appPath, "LogicTests")
	require.NoError(t, err)
	assert.Zero(t, hostless.Len())
}
