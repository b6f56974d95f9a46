package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/linkgraph/internal/report"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <snapshot>",
		Short: "Summarize external targets and build order",
		Long: `Print the whole-graph view: the platforms and destinations each external
target must support, external targets no local target reaches, and a
dependency-first build order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			g, err := rootOpts.loadGraph(f, args[0])
			if err != nil {
				return err
			}
			tr, _ := rootOpts.newTraverser(g)

			s, err := report.Summarize(tr)
			if err != nil {
				return f.Fail(ExitFailure, ErrCodeResolution, err.Error(), err)
			}
			return f.Success(s, func(w io.Writer) error {
				return report.WriteSummaryText(w, s)
			})
		},
	}
}
