package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/linkgraph/internal/fingerprint"
)

// FingerprintResult is the JSON payload of fingerprint.
type FingerprintResult struct {
	Graph       string `json:"graph"`
	Fingerprint string `json:"fingerprint"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <snapshot>",
		Short: "Print the content hash of a graph",
		Long: `Print the SHA-256 fingerprint of a graph snapshot. Equivalent graphs
hash the same whatever their source format or field order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			g, err := rootOpts.loadGraph(f, args[0])
			if err != nil {
				return err
			}

			fp, err := fingerprint.Graph(g)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), err)
			}

			result := FingerprintResult{Graph: g.Name, Fingerprint: fp}
			return f.Success(result, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, fp)
				return err
			})
		},
	}
}
