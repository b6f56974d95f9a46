package store

import (
	"slices"

	"github.com/roach88/linkgraph/internal/report"
)

// ChangeKind classifies a TargetDiff.
type ChangeKind string

const (
	TargetAdded   ChangeKind = "added"
	TargetRemoved ChangeKind = "removed"
	TargetChanged ChangeKind = "changed"
)

// TargetDiff lists the entries a target gained and lost between two runs.
// Entries are "section: value" strings such as
// "linkable: product Core libCore.a [ios]".
type TargetDiff struct {
	Target  string     `json:"target"`
	Change  ChangeKind `json:"change"`
	Added   []string   `json:"added,omitempty"`
	Removed []string   `json:"removed,omitempty"`
}

// RunDiff compares run From against run To.
type RunDiff struct {
	From               string       `json:"from"`
	To                 string       `json:"to"`
	FingerprintChanged bool         `json:"fingerprint_changed"`
	Targets            []TargetDiff `json:"targets"`
}

// Empty reports whether no target changed.
func (d RunDiff) Empty() bool {
	return len(d.Targets) == 0
}

// Diff compares the reports of two runs. Unchanged targets are omitted and
// the result is ordered by target.
func Diff(from, to Run) RunDiff {
	out := RunDiff{
		From:               from.ID,
		To:                 to.ID,
		FingerprintChanged: from.Fingerprint != to.Fingerprint,
		Targets:            []TargetDiff{},
	}

	before := indexReports(from.Reports)
	after := indexReports(to.Reports)

	targets := make([]string, 0, len(before)+len(after))
	for t := range before {
		targets = append(targets, t)
	}
	for t := range after {
		if _, ok := before[t]; !ok {
			targets = append(targets, t)
		}
	}
	slices.Sort(targets)

	for _, t := range targets {
		a, inA := before[t]
		b, inB := after[t]
		switch {
		case !inA:
			out.Targets = append(out.Targets, TargetDiff{Target: t, Change: TargetAdded, Added: entries(b)})
		case !inB:
			out.Targets = append(out.Targets, TargetDiff{Target: t, Change: TargetRemoved, Removed: entries(a)})
		default:
			added, removed := subtract(entries(b), entries(a)), subtract(entries(a), entries(b))
			if len(added) == 0 && len(removed) == 0 {
				continue
			}
			out.Targets = append(out.Targets, TargetDiff{Target: t, Change: TargetChanged, Added: added, Removed: removed})
		}
	}
	return out
}

func indexReports(reports []report.TargetReport) map[string]report.TargetReport {
	m := make(map[string]report.TargetReport, len(reports))
	for _, r := range reports {
		m[r.Target] = r
	}
	return m
}

// entries flattens a report into sorted, comparable "section: value" lines.
func entries(r report.TargetReport) []string {
	var out []string
	for _, name := range report.SectionNames {
		values, _ := r.Section(name)
		for _, v := range values {
			out = append(out, name+": "+v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// subtract returns the elements of a not in b. Both must be sorted.
func subtract(a, b []string) []string {
	var out []string
	for _, s := range a {
		if _, found := slices.BinarySearch(b, s); !found {
			out = append(out, s)
		}
	}
	return out
}
