package report

import (
	"fmt"

	"github.com/roach88/linkgraph/internal/platform"
	"github.com/roach88/linkgraph/internal/traverser"
)

// ExternalTarget is an external target with the platforms and
// destinations it has to be built for.
type ExternalTarget struct {
	Target       string                 `json:"target"`
	Platforms    []platform.Platform    `json:"platforms"`
	Destinations []platform.Destination `json:"destinations"`
}

// Summary describes the graph as a whole.
type Summary struct {
	Name            string           `json:"name"`
	Path            string           `json:"path"`
	Projects        int              `json:"projects"`
	Targets         int              `json:"targets"`
	ExternalTargets []ExternalTarget `json:"external_targets,omitempty"`
	Orphans         []string         `json:"orphan_external_targets,omitempty"`
	BuildOrder      []string         `json:"build_order,omitempty"`
}

// Summarize collects the whole-graph queries. It fails when the targets
// form a cycle and cannot be ordered.
func Summarize(tr *traverser.Traverser) (Summary, error) {
	g := tr.Graph()
	s := Summary{
		Name:     tr.Name(),
		Path:     tr.Path(),
		Projects: len(g.Projects),
		Targets:  len(tr.AllTargets()),
	}

	platforms := tr.ExternalTargetSupportedPlatforms()
	destinations := tr.ExternalTargetSupportedDestinations()
	for _, gt := range tr.AllExternalTargets() {
		p, ok := platforms[gt]
		if !ok {
			continue
		}
		s.ExternalTargets = append(s.ExternalTargets, ExternalTarget{
			Target:       gt.String(),
			Platforms:    p.Sorted(),
			Destinations: destinations[gt].Sorted(),
		})
	}

	for _, gt := range tr.AllOrphanExternalTargets() {
		s.Orphans = append(s.Orphans, gt.String())
	}

	order, err := tr.AllTargetsTopologicalSorted()
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %s: %w", tr.Name(), err)
	}
	for _, gt := range order {
		s.BuildOrder = append(s.BuildOrder, gt.String())
	}
	return s, nil
}
