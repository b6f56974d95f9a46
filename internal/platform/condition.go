package platform

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

// Filter is a single platform filter an edge can be restricted to.
// Filters are bit flags so a Condition is a small comparable bitset.
type Filter uint16

const (
	FilterIOS Filter = 1 << iota
	FilterMacOS
	FilterTvOS
	FilterCatalyst
	FilterDriverKit
	FilterWatchOS
	FilterVisionOS
)

// allFilters is the canonical iteration and print order.
var allFilters = []Filter{
	FilterIOS, FilterMacOS, FilterTvOS, FilterCatalyst,
	FilterDriverKit, FilterWatchOS, FilterVisionOS,
}

var filterNames = map[Filter]string{
	FilterIOS:       "ios",
	FilterMacOS:     "macos",
	FilterTvOS:      "tvos",
	FilterCatalyst:  "catalyst",
	FilterDriverKit: "driverkit",
	FilterWatchOS:   "watchos",
	FilterVisionOS:  "visionos",
}

// ParseFilter parses a filter name such as "ios" or "catalyst".
func ParseFilter(raw string) (Filter, error) {
	for f, name := range filterNames {
		if name == raw {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown platform filter %q", raw)
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Filter(%d)", uint16(f))
}

// Platform returns the platform the filter selects. DriverKit has none.
func (f Filter) Platform() (Platform, bool) {
	switch f {
	case FilterIOS, FilterCatalyst:
		return IOS, true
	case FilterMacOS:
		return MacOS, true
	case FilterTvOS:
		return TvOS, true
	case FilterWatchOS:
		return WatchOS, true
	case FilterVisionOS:
		return VisionOS, true
	default:
		return "", false
	}
}

// Condition is the set of platform filters under which an edge is active.
//
// The zero value is the unconditional condition: the edge is active on
// every platform. A non-zero Condition never holds an empty filter set;
// When collapses an empty set into the zero value.
type Condition struct {
	filters Filter
}

// When builds a condition from filters. No filters means unconditional.
func When(filters ...Filter) Condition {
	var c Condition
	for _, f := range filters {
		c.filters |= f
	}
	return c
}

// ParseCondition builds a condition from filter names.
func ParseCondition(names []string) (Condition, error) {
	filters := make([]Filter, 0, len(names))
	for _, n := range names {
		f, err := ParseFilter(n)
		if err != nil {
			return Condition{}, err
		}
		filters = append(filters, f)
	}
	return When(filters...), nil
}

// IsUnconditional reports whether the condition applies everywhere.
func (c Condition) IsUnconditional() bool {
	return c.filters == 0
}

// Contains reports whether f is one of the condition's filters.
func (c Condition) Contains(f Filter) bool {
	return c.filters&f != 0
}

// Len returns the number of filters.
func (c Condition) Len() int {
	return bits.OnesCount16(uint16(c.filters))
}

// Filters returns the filters in canonical order.
func (c Condition) Filters() []Filter {
	out := make([]Filter, 0, c.Len())
	for _, f := range allFilters {
		if c.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Strings returns the filter names in canonical order. Nil when unconditional.
func (c Condition) Strings() []string {
	if c.IsUnconditional() {
		return nil
	}
	filters := c.Filters()
	out := make([]string, len(filters))
	for i, f := range filters {
		out[i] = f.String()
	}
	return out
}

// Platforms returns the platforms selected by the filters.
func (c Condition) Platforms() Set[Platform] {
	out := make(Set[Platform])
	for _, f := range c.Filters() {
		if p, ok := f.Platform(); ok {
			out[p] = struct{}{}
		}
	}
	return out
}

func (c Condition) String() string {
	if c.IsUnconditional() {
		return "always"
	}
	return strings.Join(c.Strings(), ",")
}

// IsZero reports whether the condition is unconditional. It lets
// `omitzero` drop unconditional conditions from JSON.
func (c Condition) IsZero() bool {
	return c.IsUnconditional()
}

// MarshalJSON encodes the condition as its sorted filter names, or null
// when unconditional.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Strings())
}

// UnmarshalJSON decodes a list of filter names. null or [] is unconditional.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseCondition(names)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Compare orders conditions: unconditional first, then by bitset value.
func (c Condition) Compare(o Condition) int {
	switch {
	case c.filters < o.filters:
		return -1
	case c.filters > o.filters:
		return 1
	default:
		return 0
	}
}

// Intersect narrows c by o. Unconditional is the identity. An empty
// intersection means no platform satisfies both and yields Incompatible.
func (c Condition) Intersect(o Condition) CombinationResult {
	switch {
	case c.IsUnconditional():
		return Compatible(o)
	case o.IsUnconditional():
		return Compatible(c)
	}
	common := c.filters & o.filters
	if common == 0 {
		return Incompatible()
	}
	return Compatible(Condition{filters: common})
}

// Union widens c by o. Unconditional absorbs.
func (c Condition) Union(o Condition) Condition {
	if c.IsUnconditional() || o.IsUnconditional() {
		return Condition{}
	}
	return Condition{filters: c.filters | o.filters}
}

// CombinationResult is either Incompatible (no path makes a dependency
// reachable) or a Condition (possibly unconditional).
type CombinationResult struct {
	incompatible bool
	condition    Condition
}

// Incompatible returns the bottom value of the algebra.
func Incompatible() CombinationResult {
	return CombinationResult{incompatible: true}
}

// Compatible wraps a condition.
func Compatible(c Condition) CombinationResult {
	return CombinationResult{condition: c}
}

// IsIncompatible reports whether the result is the incompatible value.
func (r CombinationResult) IsIncompatible() bool {
	return r.incompatible
}

// Condition returns the wrapped condition. ok is false for Incompatible.
func (r CombinationResult) Condition() (c Condition, ok bool) {
	return r.condition, !r.incompatible
}

// Combine unions two results reached through independent paths.
// Incompatible is the identity.
func (r CombinationResult) Combine(o CombinationResult) CombinationResult {
	switch {
	case r.incompatible:
		return o
	case o.incompatible:
		return r
	}
	return Compatible(r.condition.Union(o.condition))
}

func (r CombinationResult) String() string {
	if r.incompatible {
		return "incompatible"
	}
	return r.condition.String()
}
