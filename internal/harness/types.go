package harness

import "github.com/roach88/linkgraph/internal/report"

// TargetOutcome is the resolution of one target touched by a scenario.
type TargetOutcome struct {
	Target string               `json:"target"`
	Report *report.TargetReport `json:"report,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors holds one message per failed assertion.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Targets lists every target an assertion resolved, ordered by target.
	Targets []TargetOutcome `json:"targets"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Errors:   []string{},
		Targets:  []TargetOutcome{},
	}
}

// AddError records a failed assertion and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
