package harness

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders results as one line per scenario, failed assertions
// indented below, and a pass/fail tally.
func WriteText(w io.Writer, results []*Result) error {
	var b strings.Builder
	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
			fmt.Fprintf(&b, "✓ %s\n", r.Scenario)
			continue
		}
		fmt.Fprintf(&b, "✗ %s\n", r.Scenario)
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "    %s\n", e)
		}
	}
	fmt.Fprintf(&b, "\n%d passed, %d failed\n", passed, len(results)-passed)
	_, err := io.WriteString(w, b.String())
	return err
}
