package harness

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// RunWithGolden runs a scenario, requires every assertion to hold and
// compares its text rendering against testdata/golden/<name>.golden.
//
// Update golden files with: go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err, "scenario execution failed")
	require.True(t, result.Pass, "scenario %s failed:\n%v", scenario.Name, result.Errors)

	AssertGolden(t, scenario.Name, result)
	return result
}

// AssertGolden compares the text rendering of result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []*Result{result}))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}
