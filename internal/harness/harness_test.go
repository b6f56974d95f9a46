package harness

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 7)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			RunWithGolden(t, s)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/merge_enforcement.yaml")
	require.NoError(t, err)

	assert.Equal(t, "merge_enforcement", s.Name)
	assert.Equal(t, filepath.Join("testdata", "graphs", "merge.yaml"), s.Snapshot)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, AssertFails, s.Assertions[0].Type)
	assert.Equal(t, "NON_MERGEABLE_XCFRAMEWORK", s.Assertions[0].Code)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"missing_snapshot.yaml", "snapshot not found"},
		{"unknown_field.yaml", "field assertion not found"},
		{"unknown_section.yaml", `unknown section "linked"`},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadScenario(filepath.Join("testdata", "invalid", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadScenario("testdata/invalid/absent.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios_EmptyDir(t *testing.T) {
	_, err := LoadScenarios(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files found")
}

func TestValidateAssertion(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		want string
	}{
		{"missing type", Assertion{}, "type is required"},
		{"unknown type", Assertion{Type: "matches"}, `unknown assertion type "matches"`},
		{"missing target", Assertion{Type: AssertFails}, "target is required for fails"},
		{"missing values", Assertion{Type: AssertContains, Target: "/ws/App:App", Section: "linkable"}, "values list is required for contains"},
		{"negative count", Assertion{Type: AssertCount, Target: "/ws/App:App", Section: "linkable", Count: -1}, "count must be non-negative"},
		{"missing build order values", Assertion{Type: AssertBuildOrder, Target: "/ws/App:App"}, "values list is required for build_order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAssertion(2, &tt.a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "assertions[2]")
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, validateAssertion(0, &Assertion{Type: AssertLint}))
	assert.NoError(t, validateAssertion(0, &Assertion{Type: AssertEquals, Target: "/ws/App:App", Section: "linkable"}))
}

func diamond(assertions ...Assertion) *Scenario {
	return &Scenario{
		Name:        "diamond",
		Description: "diamond graph",
		Snapshot:    filepath.Join("testdata", "graphs", "diamond.yaml"),
		Assertions:  assertions,
	}
}

func TestRun_FailedAssertions(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		want string
	}{
		{
			name: "equals",
			a:    Assertion{Type: AssertEquals, Target: "/ws/App:App", Section: "linkable", Values: []string{"product Core libCore.a"}},
			want: `assertions[0] equals /ws/App:App: linkable = ["product A A.framework", "product B B.framework", "product Core libCore.a"]`,
		},
		{
			name: "contains",
			a:    Assertion{Type: AssertContains, Target: "/ws/App:App", Section: "linkable", Values: []string{"product Kit Kit.framework"}},
			want: `linkable is missing ["product Kit Kit.framework"]`,
		},
		{
			name: "excludes",
			a:    Assertion{Type: AssertExcludes, Target: "/ws/App:App", Section: "linkable", Values: []string{"product Core libCore.a"}},
			want: `linkable unexpectedly holds ["product Core libCore.a"]`,
		},
		{
			name: "count",
			a:    Assertion{Type: AssertCount, Target: "/ws/App:App", Section: "linkable", Count: 2},
			want: "linkable has 3 entries, want 2",
		},
		{
			name: "fails",
			a:    Assertion{Type: AssertFails, Target: "/ws/App:App"},
			want: "expected resolution to fail, but it succeeded",
		},
		{
			name: "unknown target",
			a:    Assertion{Type: AssertEquals, Target: "/ws/App:Nope", Section: "linkable"},
			want: "unknown target /ws/App:Nope",
		},
		{
			name: "malformed target",
			a:    Assertion{Type: AssertIdempotent, Target: "App"},
			want: `invalid target "App"`,
		},
		{
			name: "build order",
			a:    Assertion{Type: AssertBuildOrder, Target: "/ws/App:App", Values: []string{"/ws/App:Core"}},
			want: "/ws/App:Core is built before /ws/App:App",
		},
		{
			name: "lint",
			a:    Assertion{Type: AssertLint, Values: []string{"L001"}},
			want: `lint codes = [], want ["L001"]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(context.Background(), diamond(tt.a))
			require.NoError(t, err)

			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestRun_SharesResolution(t *testing.T) {
	result, err := Run(context.Background(), diamond(
		Assertion{Type: AssertCount, Target: "/ws/App:App", Section: "linkable", Count: 3},
		Assertion{Type: AssertContains, Target: "/ws/App:App", Section: "linkable", Values: []string{"product A A.framework"}},
		Assertion{Type: AssertEquals, Target: "/ws/App:A", Section: "linkable"},
	))
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	require.Len(t, result.Targets, 2)
	assert.Equal(t, "/ws/App:A", result.Targets[0].Target)
	assert.Equal(t, "/ws/App:App", result.Targets[1].Target)
	require.NotNil(t, result.Targets[1].Report)
	assert.Len(t, result.Targets[1].Report.Linkable, 3)
}

func TestRun_RecordsResolutionErrors(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/merge_enforcement.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	require.Len(t, result.Targets, 1)
	assert.Nil(t, result.Targets[0].Report)
	assert.Contains(t, result.Targets[0].Error, "NON_MERGEABLE_XCFRAMEWORK")
}

func TestRun_SnapshotError(t *testing.T) {
	s := diamond(Assertion{Type: AssertLint})
	s.Snapshot = filepath.Join("testdata", "graphs", "absent.yaml")

	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario diamond")
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, diamond(Assertion{Type: AssertLint}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteText(t *testing.T) {
	pass := NewResult("ok")
	fail := NewResult("broken")
	fail.AddError("assertions[0] lint: lint codes = [], want [\"L001\"]")

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []*Result{pass, fail}))

	want := "✓ ok\n" +
		"✗ broken\n" +
		"    assertions[0] lint: lint codes = [], want [\"L001\"]\n" +
		"\n1 passed, 1 failed\n"
	assert.Equal(t, want, buf.String())
}
