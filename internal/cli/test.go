package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/linkgraph/internal/harness"
)

// TestResult is the JSON payload of test.
type TestResult struct {
	Results []*harness.Result `json:"results"`
	Passed  int               `json:"passed"`
	Failed  int               `json:"failed"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <scenario|dir>...",
		Short: "Run resolution scenarios",
		Long: `Run conformance scenarios. Each argument is a scenario file or a
directory whose *.yaml files are scenarios.

Exits with status 1 when any assertion fails and 2 when a scenario cannot
be loaded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			var scenarios []*harness.Scenario
			for _, arg := range args {
				loaded, err := loadScenarios(arg)
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeScenario, err.Error(), err)
				}
				scenarios = append(scenarios, loaded...)
			}

			result := TestResult{Results: make([]*harness.Result, 0, len(scenarios))}
			for _, s := range scenarios {
				r, err := harness.Run(cmd.Context(), s)
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeScenario, err.Error(), err)
				}
				if r.Pass {
					result.Passed++
				} else {
					result.Failed++
				}
				result.Results = append(result.Results, r)
				rootOpts.Logger.Debug("scenario run", "scenario", s.Name, "pass", r.Pass)
			}

			if err := f.Success(result, func(w io.Writer) error {
				return harness.WriteText(w, result.Results)
			}); err != nil {
				return err
			}

			if result.Failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, len(result.Results)))
			}
			return nil
		},
	}
}

func loadScenarios(path string) ([]*harness.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return harness.LoadScenarios(path)
	}
	s, err := harness.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return []*harness.Scenario{s}, nil
}
