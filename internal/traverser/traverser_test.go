package traverser

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
	"github.com/roach88/linkgraph/internal/testutil"
)

const (
	appPath = "/ws/App"
	extPath = "/ws/.build/checkouts/Ext"
)

func node(name string) graph.TargetDependency {
	return testutil.Node(appPath, name)
}

func refStrings(s *ReferenceSet) []string {
	var out []string
	for _, r := range s.Sorted() {
		out = append(out, r.String())
	}
	return out
}

func when(filters ...platform.Filter) platform.Condition {
	return platform.When(filters...)
}

var always0 = platform.Condition{}

// diamond: App -> A, App -> B, A -> Core, B -> Core, everything static.
func diamond(condA, condB platform.Condition) *Traverser {
	app := testutil.Target("App", graph.App, platform.IPhone, platform.IPad, platform.Mac)
	g := graph.NewBuilder("Diamond", "/ws").
		Project(testutil.Project(appPath,
			app,
			testutil.Target("A", graph.StaticFramework),
			testutil.Target("B", graph.StaticFramework),
			testutil.Target("Core", graph.StaticLibrary),
		), true).
		Edge(node("App"), node("A"), condA).
		Edge(node("App"), node("B"), condB).
		Edge(node("A"), node("Core"), always0).
		Edge(node("B"), node("Core"), always0).
		Build()
	return New(g)
}

func TestFilterDependencies(t *testing.T) {
	tr := diamond(always0, always0)
	app := graph.Dependency(node("App"))

	all := tr.FilterDependencies([]graph.Dependency{app}, nil, nil)
	assert.Len(t, all, 3)
	assert.False(t, all.Contains(app), "roots are never tested")

	static := tr.filterFrom(app, tr.isStatic, nil)
	assert.True(t, static.Contains(node("Core")))

	stopAtA := func(d graph.Dependency) bool { return d == graph.Dependency(node("A")) }
	viaB := tr.filterFrom(app, nil, stopAtA)
	assert.True(t, viaB.Contains(node("A")), "skipped nodes are still tested")
	assert.True(t, viaB.Contains(node("Core")), "Core is still reachable through B")

	stopBoth := or(stopAtA, func(d graph.Dependency) bool { return d == graph.Dependency(node("B")) })
	blocked := tr.filterFrom(app, nil, stopBoth)
	assert.Len(t, blocked, 2)
	assert.False(t, blocked.Contains(node("Core")))
}

func TestLinkable_DiamondDeduplicated(t *testing.T) {
	tr := diamond(always0, always0)

	refs, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"product A A.framework",
		"product B B.framework",
		"product Core libCore.a",
	}, refStrings(refs))
}

func TestLinkable_UnionAcrossPaths(t *testing.T) {
	tr := diamond(when(platform.FilterIOS), when(platform.FilterMacOS))

	refs, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"product A A.framework [ios]",
		"product B B.framework [macos]",
		"product Core libCore.a [ios,macos]",
	}, refStrings(refs))
}

func TestLinkable_DisjointConditionsOmitDependency(t *testing.T) {
	app := testutil.Target("App", graph.App, platform.IPhone, platform.Mac)
	g := graph.NewBuilder("Disjoint", "/ws").
		Project(testutil.Project(appPath,
			app,
			testutil.Target("A", graph.StaticFramework),
			testutil.Target("Core", graph.StaticLibrary),
		), true).
		Edge(node("App"), node("A"), when(platform.FilterIOS)).
		Edge(node("A"), node("Core"), when(platform.FilterMacOS)).
		Build()
	tr := New(g)

	refs, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{"product A A.framework [ios]"}, refStrings(refs))
	assert.True(t, tr.CombinedCondition(node("Core"), node("App")).IsIncompatible())
}

func TestLinkable_StopsAtDynamicBoundary(t *testing.T) {
	g := graph.NewBuilder("Boundary", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("Dyn", graph.Framework),
			testutil.Target("S", graph.StaticLibrary),
		), true).
		Edge(node("App"), node("Dyn"), always0).
		Edge(node("Dyn"), node("S"), always0).
		Build()
	tr := New(g)

	app, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{"product Dyn Dyn.framework"}, refStrings(app))

	dyn, err := tr.LinkableDependencies(appPath, "Dyn")
	require.NoError(t, err)
	assert.Equal(t, []string{"product S libS.a"}, refStrings(dyn))
}

func hostedTests() *Traverser {
	g := graph.NewBuilder("Hosted", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("AppTests", graph.UnitTests),
			testutil.Target("Shared", graph.StaticLibrary),
			testutil.Target("TestSupport", graph.StaticLibrary),
		), true).
		Edge(node("App"), node("Shared"), always0).
		Edge(node("AppTests"), node("App"), always0).
		Edge(node("AppTests"), node("Shared"), always0).
		Edge(node("AppTests"), node("TestSupport"), always0).
		Build()
	return New(g)
}

func TestLinkable_UnitTestsSkipHostStatics(t *testing.T) {
	tr := hostedTests()

	host, ok := tr.UnitTestHost(appPath, "AppTests")
	require.True(t, ok)
	assert.Equal(t, "App", host.Target.Name)

	refs, err := tr.LinkableDependencies(appPath, "AppTests")
	require.NoError(t, err)
	assert.Equal(t, []string{"product TestSupport libTestSupport.a"}, refStrings(refs))

	searchable, err := tr.SearchablePathDependencies(appPath, "AppTests")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"product Shared libShared.a",
		"product TestSupport libTestSupport.a",
	}, refStrings(searchable))
}

func TestLinkable_SDKs(t *testing.T) {
	uikit := testutil.SDK("UIKit.framework")
	coreData := testutil.SDK("CoreData.framework")
	g := graph.NewBuilder("SDKs", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("S", graph.StaticLibrary),
		), true).
		Edge(node("App"), node("S"), always0).
		Edge(node("App"), coreData, always0).
		Edge(node("S"), uikit, always0).
		Build()
	tr := New(g)

	refs, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"sdk " + coreData.Path,
		"sdk " + uikit.Path,
		"product S libS.a",
	}, refStrings(refs))
}

func TestLinkable_PrecompiledDynamicAndStaticXCFrameworks(t *testing.T) {
	dyn := testutil.XCFramework("/xc/Pay.xcframework", graph.LinkingDynamic, "Pay")
	swiftStatic := testutil.XCFramework("/xc/Models.xcframework", graph.LinkingStatic, "Models")
	swiftStatic.SwiftModules = graph.NewList("Models.swiftmodule")
	objcStatic := testutil.XCFramework("/xc/Legacy.xcframework", graph.LinkingStatic, "Legacy")
	objcStatic.ModuleMaps = graph.NewList("module.modulemap")
	security := testutil.SDK("Security.framework")

	g := graph.NewBuilder("XCFrameworks", "/ws").
		Project(testutil.Project(appPath, testutil.Target("App", graph.App)), true).
		Edge(node("App"), dyn, always0).
		Edge(dyn, swiftStatic, always0).
		Edge(dyn, objcStatic, always0).
		Edge(swiftStatic, security, always0).
		Build()
	tr := New(g)

	refs, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"sdk " + security.Path,
		"xcframework /xc/Models.xcframework",
		"xcframework /xc/Pay.xcframework",
	}, refStrings(refs))

	assert.Equal(t, []graph.Dependency{objcStatic},
		tr.StaticObjcXCFrameworksLinkedByDynamicXCFrameworkDependencies(appPath, "App"))
}

type fakeSDKs struct{ err error }

func (f fakeSDKs) LoadMetadata(name string, status graph.LinkingStatus, p platform.Platform, source graph.SDKSource) (SDKMetadata, error) {
	if f.err != nil {
		return SDKMetadata{}, f.err
	}
	return SDKMetadata{Name: name, Path: "/sdk/" + name, Status: status, Source: source}, nil
}

func TestLinkable_AppClipGetsAppClipSDK(t *testing.T) {
	g := graph.NewBuilder("Clip", "/ws").
		Project(testutil.Project(appPath, testutil.Target("Clip", graph.AppClip)), true).
		Build()

	refs, err := New(g).LinkableDependencies(appPath, "Clip")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"sdk /Platforms/iPhoneOS.platform/Developer/SDKs/iPhoneOS.sdk/System/Library/Frameworks/AppClip.framework [ios]",
	}, refStrings(refs))

	_, err = New(g, WithSDKMetadataProvider(fakeSDKs{err: NewUnsupportedSDKError("AppClip.framework")})).
		LinkableDependencies(appPath, "Clip")
	require.Error(t, err)
	assert.True(t, IsUnsupportedSDKError(err))
}

func TestLinkable_UnknownTargetIsEmpty(t *testing.T) {
	refs, err := diamond(always0, always0).LinkableDependencies(appPath, "Missing")
	require.NoError(t, err)
	assert.Zero(t, refs.Len())
}

func TestQueriesAreIdempotent(t *testing.T) {
	tr := diamond(when(platform.FilterIOS), when(platform.FilterMacOS))

	first, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	second, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)

	assert.Equal(t, first.Sorted(), second.Sorted())
	assert.Positive(t, tr.CacheStats()[cacheCondition])
}

func TestQueriesAreSafeForConcurrentUse(t *testing.T) {
	tr := diamond(when(platform.FilterIOS), when(platform.FilterMacOS))
	want := []string{
		"product A A.framework [ios]",
		"product B B.framework [macos]",
		"product Core libCore.a [ios,macos]",
	}

	var wg sync.WaitGroup
	results := make([][]string, 20)
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			refs, err := tr.LinkableDependencies(appPath, "App")
			if err == nil {
				results[idx] = refStrings(refs)
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

type countingRecorder struct {
	mu      sync.Mutex
	hits    map[string]int
	misses  map[string]int
	queries map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{hits: map[string]int{}, misses: map[string]int{}, queries: map[string]int{}}
}

func (r *countingRecorder) CacheHit(cache string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[cache]++
}

func (r *countingRecorder) CacheMiss(cache string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[cache]++
}

func (r *countingRecorder) ObserveQuery(query string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[query]++
}

func TestMetricsRecorder(t *testing.T) {
	rec := newCountingRecorder()
	g := graph.NewBuilder("Diamond", "/ws").
		Project(testutil.Project(appPath,
			testutil.Target("App", graph.App),
			testutil.Target("A", graph.StaticFramework),
		), true).
		Edge(node("App"), node("A"), when(platform.FilterIOS)).
		Build()
	tr := New(g, WithMetrics(rec))

	_, err := tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)
	_, err = tr.LinkableDependencies(appPath, "App")
	require.NoError(t, err)

	assert.Equal(t, 2, rec.queries["linkable_dependencies"])
	assert.Equal(t, 1, rec.misses[cacheCondition])
	assert.Equal(t, 1, rec.hits[cacheCondition])
}
