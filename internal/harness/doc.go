// Package harness runs conformance scenarios against the resolver.
//
// A scenario names a graph snapshot and a list of assertions about how its
// targets resolve. Scenarios document resolution rules as executable
// contracts: diamond de-duplication, condition propagation, static linking
// boundaries, test host exclusion and merge enforcement.
//
// # Scenario Format
//
//	name: diamond_dedup
//	description: "Two paths to the same static library link it once"
//	snapshot: graphs/diamond.yaml
//	assertions:
//	  - type: equals
//	    target: /ws/App:App
//	    section: linkable
//	    values:
//	      - product A A.framework
//	      - product B B.framework
//	      - product Core libCore.a
//	  - type: fails
//	    target: /ws/App:Merged
//	    code: NON_MERGEABLE_XCFRAMEWORK
//
// The snapshot path is relative to the scenario file.
//
// # Assertion Types
//
//   - contains: the section holds every listed value
//   - excludes: the section holds none of the listed values
//   - equals: the section is exactly the listed values, in order
//   - count: the section has exactly count entries
//   - fails: resolving the target fails, with code in the error when given
//   - idempotent: resolving the target twice gives identical reports
//   - build_order: target is built before every listed value
//   - lint: the lint codes found are exactly the listed values
//
// Sections are the names in report.SectionNames.
package harness
