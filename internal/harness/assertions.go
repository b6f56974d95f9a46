package harness

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/linkgraph/internal/fingerprint"
	"github.com/roach88/linkgraph/internal/lint"
	"github.com/roach88/linkgraph/internal/report"
	"github.com/roach88/linkgraph/internal/traverser"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Index   int
	Type    string
	Target  string
	Message string
}

func (e *AssertionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("assertions[%d] %s: %s", e.Index, e.Type, e.Message)
	}
	return fmt.Sprintf("assertions[%d] %s %s: %s", e.Index, e.Type, e.Target, e.Message)
}

func (h *Harness) evaluate(a Assertion) error {
	switch a.Type {
	case AssertContains, AssertExcludes, AssertEquals, AssertCount:
		return h.evaluateSection(a)
	case AssertFails:
		return h.evaluateFails(a)
	case AssertIdempotent:
		return h.evaluateIdempotent(a)
	case AssertBuildOrder:
		return h.evaluateBuildOrder(a)
	case AssertLint:
		return h.evaluateLint(a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (h *Harness) evaluateSection(a Assertion) error {
	o := h.resolve(a.Target)
	if o.err != nil {
		return fmt.Errorf("resolution failed: %w", o.err)
	}
	got, ok := o.report.Section(a.Section)
	if !ok {
		return fmt.Errorf("unknown section %q", a.Section)
	}

	switch a.Type {
	case AssertContains:
		var missing []string
		for _, v := range a.Values {
			if !slices.Contains(got, v) {
				missing = append(missing, v)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s is missing %s; got %s", a.Section, quoteAll(missing), quoteAll(got))
		}
	case AssertExcludes:
		var present []string
		for _, v := range a.Values {
			if slices.Contains(got, v) {
				present = append(present, v)
			}
		}
		if len(present) > 0 {
			return fmt.Errorf("%s unexpectedly holds %s", a.Section, quoteAll(present))
		}
	case AssertEquals:
		if !slices.Equal(got, a.Values) {
			return fmt.Errorf("%s = %s, want %s", a.Section, quoteAll(got), quoteAll(a.Values))
		}
	case AssertCount:
		if len(got) != a.Count {
			return fmt.Errorf("%s has %d entries, want %d: %s", a.Section, len(got), a.Count, quoteAll(got))
		}
	}
	return nil
}

func (h *Harness) evaluateFails(a Assertion) error {
	o := h.resolve(a.Target)
	if !o.found {
		return o.err
	}
	if o.err == nil {
		return errors.New("expected resolution to fail, but it succeeded")
	}
	if a.Code != "" && !strings.Contains(o.err.Error(), a.Code) {
		return fmt.Errorf("expected error code %s, got: %v", a.Code, o.err)
	}
	return nil
}

// evaluateIdempotent compares the cached resolution, a second resolution on
// the same traverser and a resolution on a fresh traverser.
func (h *Harness) evaluateIdempotent(a Assertion) error {
	o := h.resolve(a.Target)
	if o.err != nil {
		return fmt.Errorf("resolution failed: %w", o.err)
	}
	first, err := fingerprint.MarshalCanonical(o.report)
	if err != nil {
		return err
	}

	for _, tr := range []*traverser.Traverser{h.tr, traverser.New(h.graph)} {
		gt, ok := tr.Target(o.target.Path, o.target.Target.Name)
		if !ok {
			return fmt.Errorf("unknown target %s", a.Target)
		}
		again, err := report.Build(tr, gt)
		if err != nil {
			return fmt.Errorf("repeated resolution failed: %w", err)
		}
		next, err := fingerprint.MarshalCanonical(again)
		if err != nil {
			return err
		}
		if !bytes.Equal(first, next) {
			return fmt.Errorf("repeated resolution differs:\n  first: %s\n  again: %s", first, next)
		}
	}
	return nil
}

func (h *Harness) evaluateBuildOrder(a Assertion) error {
	order, err := h.tr.AllTargetsTopologicalSorted()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(order))
	for i, gt := range order {
		index[gt.String()] = i
	}

	pos, ok := index[a.Target]
	if !ok {
		return fmt.Errorf("unknown target %s", a.Target)
	}
	for _, v := range a.Values {
		after, ok := index[v]
		if !ok {
			return fmt.Errorf("unknown target %s", v)
		}
		if after <= pos {
			return fmt.Errorf("%s is built before %s", v, a.Target)
		}
	}
	return nil
}

func (h *Harness) evaluateLint(a Assertion) error {
	issues := lint.Lint(h.graph)
	codes := make([]string, 0, len(issues))
	for _, i := range issues {
		codes = append(codes, i.Code)
	}
	want := a.Values
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(codes, want) {
		msgs := make([]string, 0, len(issues))
		for _, i := range issues {
			msgs = append(msgs, i.String())
		}
		return fmt.Errorf("lint codes = %s, want %s; issues: %s", quoteAll(codes), quoteAll(want), strings.Join(msgs, "; "))
	}
	return nil
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
