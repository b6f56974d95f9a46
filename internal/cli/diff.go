package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/linkgraph/internal/store"
)

// latestRun selects the newest stored run in place of an ID.
const latestRun = "latest"

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <db> <run-a> <run-b>",
		Short: "Compare two stored runs",
		Long: `Compare the reports of two runs saved by resolve --store. Either run may be
given as "latest".

Exits with status 1 when the runs differ.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			s, err := openExistingStore(f, rootOpts, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			from, err := loadRun(ctx, f, s, args[1])
			if err != nil {
				return err
			}
			to, err := loadRun(ctx, f, s, args[2])
			if err != nil {
				return err
			}

			d := store.Diff(from, to)
			if err := f.Success(d, func(w io.Writer) error {
				return writeDiffText(w, d)
			}); err != nil {
				return err
			}

			if !d.Empty() {
				return NewExitError(ExitFailure, fmt.Sprintf("%d target(s) differ", len(d.Targets)))
			}
			return nil
		},
	}
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "runs <db>",
		Short: "List stored runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			s, err := openExistingStore(f, rootOpts, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), err)
			}

			type runInfo struct {
				ID          string `json:"id"`
				Graph       string `json:"graph"`
				Fingerprint string `json:"fingerprint"`
				CreatedAt   string `json:"created_at"`
			}
			infos := make([]runInfo, len(runs))
			for i, r := range runs {
				infos[i] = runInfo{
					ID:          r.ID,
					Graph:       r.GraphName,
					Fingerprint: r.Fingerprint,
					CreatedAt:   r.CreatedAt.Format(time.RFC3339),
				}
			}

			return f.Success(infos, func(w io.Writer) error {
				for _, info := range infos {
					if _, err := fmt.Fprintf(w, "%s  %s  %s  %.12s\n", info.ID, info.CreatedAt, info.Graph, info.Fingerprint); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// openExistingStore refuses to create a database as a side effect of a
// read-only command.
func openExistingStore(f *OutputFormatter, o *RootOptions, path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), err)
	}
	s, err := store.Open(path, store.WithLogger(o.Logger))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err.Error(), err)
	}
	return s, nil
}

func loadRun(ctx context.Context, f *OutputFormatter, s *store.Store, id string) (store.Run, error) {
	var (
		run store.Run
		err error
	)
	if id == latestRun {
		run, err = s.LatestRun(ctx)
	} else {
		run, err = s.LoadRun(ctx, id)
	}
	if errors.Is(err, store.ErrRunNotFound) {
		return store.Run{}, f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), err)
	}
	if err != nil {
		return store.Run{}, f.Fail(ExitCommandError, ErrCodeStore, err.Error(), err)
	}
	return run, nil
}

func writeDiffText(w io.Writer, d store.RunDiff) error {
	if _, err := fmt.Fprintf(w, "%s -> %s\n", d.From, d.To); err != nil {
		return err
	}
	if d.FingerprintChanged {
		if _, err := fmt.Fprintln(w, "graph fingerprint changed"); err != nil {
			return err
		}
	}
	if d.Empty() {
		_, err := fmt.Fprintln(w, "no differences")
		return err
	}
	for _, t := range d.Targets {
		if _, err := fmt.Fprintf(w, "%s (%s)\n", t.Target, t.Change); err != nil {
			return err
		}
		for _, e := range t.Added {
			if _, err := fmt.Fprintf(w, "  + %s\n", e); err != nil {
				return err
			}
		}
		for _, e := range t.Removed {
			if _, err := fmt.Fprintf(w, "  - %s\n", e); err != nil {
				return err
			}
		}
	}
	return nil
}
