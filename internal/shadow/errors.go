package shadow

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidSlot indicates a slot index outside the table.
	ErrCodeInvalidSlot ConfigErrorCode = "INVALID_SLOT"

	// ErrCodeInvalidDigit indicates a source digit outside P0..P5.
	ErrCodeInvalidDigit ConfigErrorCode = "INVALID_DIGIT"

	// ErrCodeInvalidDivisor indicates a zero divisor.
	ErrCodeInvalidDivisor ConfigErrorCode = "INVALID_DIVISOR"
)

// ConfigError reports a rejected controller write.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Slot is the affected slot, or -1 when the error is not tied to one.
	Slot int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Slot >= 0 {
		return fmt.Sprintf("%s: %s (slot=%d)", e.Code, e.Message, e.Slot)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err is a ConfigError with the given code.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newConfigError(code ConfigErrorCode, slot int, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Slot: slot, Message: fmt.Sprintf(format, args...)}
}
