package traverser

import (
	"errors"
	"fmt"
)

// ResolutionError represents a configuration error found while resolving
// a target's dependencies.
//
// Resolution errors include:
//   - Non-mergeable XCFramework: a manually merged binary was not built
//     with -make_mergeable
//   - Unsupported SDK: an SDK name has no known extension
//   - Cycle: the target graph cannot be sorted topologically
//
// Silent omissions (dangling edges, incompatible conditions) are not errors.
type ResolutionError struct {
	// Code identifies the error category.
	Code ResolutionErrorCode

	// Message is a human-readable description.
	Message string

	// Target is the target being resolved, as "path:name", when known.
	Target string

	// Dependency names the offending dependency, when known.
	Dependency string
}

// ResolutionErrorCode categorizes resolution errors.
type ResolutionErrorCode string

const (
	// ErrCodeNonMergeableXCFramework indicates a manually merged XCFramework
	// that cannot be merged.
	ErrCodeNonMergeableXCFramework ResolutionErrorCode = "NON_MERGEABLE_XCFRAMEWORK"

	// ErrCodeUnsupportedSDK indicates an SDK name with an unknown extension.
	ErrCodeUnsupportedSDK ResolutionErrorCode = "UNSUPPORTED_SDK"

	// ErrCodeCycle indicates a dependency cycle between targets.
	ErrCodeCycle ResolutionErrorCode = "CYCLE"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	switch {
	case e.Target != "" && e.Dependency != "":
		return fmt.Sprintf("%s: %s (target=%s, dependency=%s)", e.Code, e.Message, e.Target, e.Dependency)
	case e.Target != "":
		return fmt.Sprintf("%s: %s (target=%s)", e.Code, e.Message, e.Target)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsNonMergeableError returns true if err is a non-mergeable XCFramework error.
// Uses errors.As to handle wrapped errors.
func IsNonMergeableError(err error) bool {
	return hasCode(err, ErrCodeNonMergeableXCFramework)
}

// IsUnsupportedSDKError returns true if err is an unsupported SDK error.
func IsUnsupportedSDKError(err error) bool {
	return hasCode(err, ErrCodeUnsupportedSDK)
}

// IsCycleError returns true if err is a target cycle error.
func IsCycleError(err error) bool {
	return hasCode(err, ErrCodeCycle)
}

func hasCode(err error, code ResolutionErrorCode) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewNonMergeableError creates a ResolutionError for an XCFramework listed
// for manual merging that was not built mergeable.
func NewNonMergeableError(target, binaryName string) *ResolutionError {
	return &ResolutionError{
		Code:       ErrCodeNonMergeableXCFramework,
		Message:    fmt.Sprintf("XCFramework %s must be compiled with -make_mergeable option enabled", binaryName),
		Target:     target,
		Dependency: binaryName,
	}
}

// NewUnsupportedSDKError creates a ResolutionError for an SDK name whose
// extension is neither .framework nor .tbd.
func NewUnsupportedSDKError(name string) *ResolutionError {
	return &ResolutionError{
		Code:       ErrCodeUnsupportedSDK,
		Message:    fmt.Sprintf("the SDK type of %s is not supported, only .framework and .tbd are", name),
		Dependency: name,
	}
}

// NewCycleError creates a ResolutionError for a target cycle.
func NewCycleError(path []string) *ResolutionError {
	return &ResolutionError{
		Code:    ErrCodeCycle,
		Message: fmt.Sprintf("targets form a cycle: %v", path),
	}
}
