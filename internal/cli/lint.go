package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/linkgraph/internal/lint"
)

// LintResult is the JSON payload of lint.
type LintResult struct {
	Issues   []lint.Issue `json:"issues"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <snapshot>",
		Short: "Check a graph for cycles, dangling edges and stray conditions",
		Long: `Check a graph snapshot for target dependency cycles, edges to targets no
project declares and conditions set on edges that do not exist.

Exits with status 1 when any issue is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			g, err := rootOpts.loadGraph(f, args[0])
			if err != nil {
				return err
			}

			issues := lint.Lint(g)
			result := LintResult{Issues: issues}
			for _, issue := range issues {
				if issue.Level == lint.LevelError {
					result.Errors++
				} else {
					result.Warnings++
				}
			}

			if err := f.Success(result, func(w io.Writer) error {
				return writeLintText(w, issues)
			}); err != nil {
				return err
			}

			if len(issues) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d error(s), %d warning(s)", result.Errors, result.Warnings))
			}
			return nil
		},
	}
}

func writeLintText(w io.Writer, issues []lint.Issue) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, "✓ No issues found")
		return err
	}
	for _, issue := range issues {
		if _, err := fmt.Fprintln(w, issue.String()); err != nil {
			return err
		}
	}
	return nil
}
