package snapshot

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes, shared with the CLI's JSON output.
const (
	ErrCodeGeneric      = "E001" // malformed document
	ErrCodeScanError    = "E002" // directory scan error
	ErrCodeNoFiles      = "E003" // no CUE files found
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeVersion      = "E010" // missing or unsupported schema_version
	ErrCodeInvalidNode  = "E011" // node with an unknown kind or missing fields
	ErrCodeInvalidValue = "E012" // unknown product, destination, filter or mode
)

// LoadError is returned for every snapshot that cannot be turned into a
// graph. Pos is set when the error comes from a CUE source.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newLoadError(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the code of a LoadError in err's chain, or "" if there
// is none.
func ErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
