package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// LoadErrorCode categorizes configuration load failures.
type LoadErrorCode string

const (
	// ErrCodeNotFound indicates the file does not exist or cannot be read.
	ErrCodeNotFound LoadErrorCode = "NOT_FOUND"

	// ErrCodeParseFailed indicates the file is not valid YAML or CUE.
	ErrCodeParseFailed LoadErrorCode = "PARSE_FAILED"

	// ErrCodeSchemaViolation indicates the file parsed but the configuration
	// is invalid.
	ErrCodeSchemaViolation LoadErrorCode = "SCHEMA_VIOLATION"

	// ErrCodeUnsupportedFormat indicates an unknown file extension.
	ErrCodeUnsupportedFormat LoadErrorCode = "UNSUPPORTED_FORMAT"
)

// LoadError is returned by Load.
type LoadError struct {
	Code    LoadErrorCode
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is a LoadError with the given code.
// Uses errors.As to handle wrapped errors.
func IsLoadError(err error, code LoadErrorCode) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}
