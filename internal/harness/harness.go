package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/report"
	"github.com/roach88/linkgraph/internal/snapshot"
	"github.com/roach88/linkgraph/internal/traverser"
)

// Harness evaluates the assertions of one scenario against one graph.
// Each target is resolved at most once; assertions share the result.
type Harness struct {
	graph    *graph.Graph
	tr       *traverser.Traverser
	outcomes map[string]*outcome
	logger   *slog.Logger
}

type outcome struct {
	target graph.GraphTarget
	found  bool
	report report.TargetReport
	err    error
}

// Run loads the scenario's snapshot and evaluates every assertion.
//
// An error is returned only when the scenario cannot run at all, for
// example when the snapshot does not load. Failed assertions are reported
// in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	g, err := snapshot.Load(scenario.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	h := &Harness{
		graph:    g,
		tr:       traverser.New(g),
		outcomes: make(map[string]*outcome),
		logger:   slog.Default().With("scenario", scenario.Name),
	}

	result := NewResult(scenario.Name)
	for i, a := range scenario.Assertions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.evaluate(a); err != nil {
			result.AddError((&AssertionError{Index: i, Type: a.Type, Target: a.Target, Message: err.Error()}).Error())
			h.logger.Debug("assertion failed", "index", i, "type", a.Type, "error", err)
		}
	}

	result.Targets = h.targetOutcomes()
	h.logger.Debug("scenario finished", "pass", result.Pass, "targets", len(result.Targets))
	return result, nil
}

// resolve returns the cached outcome for ref, resolving it on first use.
func (h *Harness) resolve(ref string) *outcome {
	if o, ok := h.outcomes[ref]; ok {
		return o
	}

	o := &outcome{}
	h.outcomes[ref] = o

	path, name, err := splitTarget(ref)
	if err != nil {
		o.err = err
		return o
	}
	o.target, o.found = h.tr.Target(path, name)
	if !o.found {
		o.err = fmt.Errorf("unknown target %s", ref)
		return o
	}
	o.report, o.err = report.Build(h.tr, o.target)
	return o
}

func (h *Harness) targetOutcomes() []TargetOutcome {
	out := make([]TargetOutcome, 0, len(h.outcomes))
	for ref, o := range h.outcomes {
		t := TargetOutcome{Target: ref}
		if o.err != nil {
			t.Error = o.err.Error()
		} else {
			r := o.report
			t.Report = &r
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

func splitTarget(ref string) (path, name string, err error) {
	for i := len(ref) - 1; i > 0; i-- {
		if ref[i] == ':' {
			if i == len(ref)-1 {
				break
			}
			return ref[:i], ref[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid target %q: want project-path:name", ref)
}
