package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/linkgraph/internal/fingerprint"
	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/metrics"
	"github.com/roach88/linkgraph/internal/report"
	"github.com/roach88/linkgraph/internal/store"
	"github.com/roach88/linkgraph/internal/traverser"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Targets     []string
	Store       string
	Concurrency int
}

// ResolveResult is the JSON payload of resolve.
type ResolveResult struct {
	Graph       string                `json:"graph"`
	Fingerprint string                `json:"fingerprint,omitempty"`
	Run         string                `json:"run,omitempty"`
	Reports     []report.TargetReport `json:"reports"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <snapshot>",
		Short: "Resolve the build settings of targets",
		Long: `Resolve every per-target query for the targets of a graph snapshot.

Without --target all targets are resolved (external ones are skipped when
exclude_external is set in the config). With --store, or a database in the
config, the reports are saved as a run that diff can compare later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Targets, "target", "t", nil, "target to resolve as project-path:name (repeatable)")
	cmd.Flags().StringVar(&opts.Store, "store", "", "SQLite database to save the run in")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "targets resolved in parallel (0 = config or GOMAXPROCS)")

	return cmd
}

func runResolve(ctx context.Context, opts *ResolveOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	g, err := opts.loadGraph(f, path)
	if err != nil {
		return err
	}
	tr, m := opts.newTraverser(g)

	targets, err := opts.selectTargets(tr)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeUnknownTarget, err.Error(), err)
	}

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = opts.Config.Concurrency
	}
	reports, err := report.BuildAll(ctx, tr, targets, report.WithConcurrency(concurrency))
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeResolution, err.Error(), err)
	}

	result := ResolveResult{Graph: g.Name, Reports: reports}

	dbPath := opts.Store
	if dbPath == "" {
		dbPath = opts.Config.Database
	}
	if dbPath != "" {
		run, err := opts.saveRun(ctx, dbPath, g, reports)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), err)
		}
		result.Fingerprint = run.Fingerprint
		result.Run = run.ID
		fmt.Fprintf(cmd.ErrOrStderr(), "stored run %s\n", run.ID)
	}

	if err := f.Success(result, func(w io.Writer) error {
		return report.WriteText(w, reports)
	}); err != nil {
		return err
	}

	if opts.Verbose {
		opts.logCacheStats(m)
		return m.WriteText(cmd.ErrOrStderr())
	}
	return nil
}

func (o *ResolveOptions) selectTargets(tr *traverser.Traverser) ([]graph.GraphTarget, error) {
	if len(o.Targets) == 0 {
		all := tr.AllTargets()
		if !o.Config.ExcludeExternal {
			return all, nil
		}
		local := make([]graph.GraphTarget, 0, len(all))
		for _, gt := range all {
			if gt.Project == nil || !gt.Project.IsExternal() {
				local = append(local, gt)
			}
		}
		return local, nil
	}

	out := make([]graph.GraphTarget, 0, len(o.Targets))
	for _, ref := range o.Targets {
		path, name, err := parseTargetRef(ref)
		if err != nil {
			return nil, err
		}
		gt, ok := tr.Target(path, name)
		if !ok {
			return nil, fmt.Errorf("unknown target %s", ref)
		}
		out = append(out, gt)
	}
	return out, nil
}

func (o *ResolveOptions) saveRun(ctx context.Context, dbPath string, g *graph.Graph, reports []report.TargetReport) (store.Run, error) {
	fp, err := fingerprint.Graph(g)
	if err != nil {
		return store.Run{}, fmt.Errorf("fingerprint graph: %w", err)
	}

	s, err := store.Open(dbPath, store.WithLogger(o.Logger))
	if err != nil {
		return store.Run{}, err
	}
	defer s.Close()

	return s.SaveRun(ctx, store.Run{
		GraphName:   g.Name,
		GraphPath:   g.Path,
		Fingerprint: fp,
		Reports:     reports,
	})
}

func (o *RootOptions) logCacheStats(m *metrics.Metrics) {
	stats, err := m.CacheStats()
	if err != nil {
		o.Logger.Warn("cache stats unavailable", "error", err)
		return
	}
	for _, s := range stats {
		o.Logger.Debug("cache", "name", s.Cache, "hits", s.Hits, "misses", s.Misses, "hit_ratio", s.HitRatio())
	}
}
