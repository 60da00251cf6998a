package service

import (
	"errors"
	"fmt"
)

// Sentinel business errors
var (
	ErrDuplicateCode = errors.New("cylinder code already exists")
	ErrGasTypeInUse  = errors.New("gas type is referenced by one or more cylinders")
	ErrCylinderInUse = errors.New("cylinder is referenced by one or more supply details")
)

// ValidationError is a request-level validation failure. No mutation has
// occurred when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// PreconditionError is returned when a cylinder is not in the state a batch
// operation requires. It names the offending cylinder so the caller can tell
// which member of the batch aborted the whole unit of work.
type PreconditionError struct {
	CylinderID uint
	Code       string
	Reason     string
}

func (e *PreconditionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cylinder %s (id %d): %s", e.Code, e.CylinderID, e.Reason)
	}
	return fmt.Sprintf("cylinder %d: %s", e.CylinderID, e.Reason)
}
