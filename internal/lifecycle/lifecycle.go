package lifecycle

import (
	"fmt"
)

// Status is a cylinder lifecycle status.
type Status string

// Cylinder lifecycle statuses. The string values are part of the external
// API contract and of the persisted rows, so they must not change.
const (
	StatusInStock       Status = "in stock"
	StatusFilling       Status = "filling"
	StatusFilled        Status = "filled"
	StatusToBeDelivered Status = "to be delivered"
	StatusDelivered     Status = "delivered"
	StatusReturned      Status = "returned"
	StatusEmpty         Status = "empty"
)

// Size is a cylinder size.
type Size string

const (
	Size10L Size = "10L"
	Size40L Size = "40L"
	Size50L Size = "50L"
)

// transitions is the explicit transition table. A status maps to the set of
// statuses it may legally move to.
var transitions = map[Status][]Status{
	StatusInStock:       {StatusFilling},
	StatusFilling:       {StatusFilled},
	StatusFilled:        {StatusToBeDelivered},
	StatusToBeDelivered: {StatusDelivered},
	StatusDelivered:     {StatusReturned},
	StatusReturned:      {StatusEmpty},
	StatusEmpty:         {StatusFilling},
}

// TransitionError is returned when a requested status transition is not in
// the transition table.
type TransitionError struct {
	CylinderID uint
	From       Status
	To         Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cylinder %d: illegal transition from %q to %q", e.CylinderID, e.From, e.To)
}

// IsValid reports whether s is a known lifecycle status.
func (s Status) IsValid() bool {
	switch s {
	case StatusInStock, StatusFilling, StatusFilled, StatusToBeDelivered,
		StatusDelivered, StatusReturned, StatusEmpty:
		return true
	}
	return false
}

// IsValid reports whether s is a known cylinder size.
func (s Size) IsValid() bool {
	switch s {
	case Size10L, Size40L, Size50L:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a TransitionError if from -> to is not legal.
func ValidateTransition(cylinderID uint, from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{CylinderID: cylinderID, From: from, To: to}
	}
	return nil
}

// ClearsGasType reports whether entering the status removes the gas from the
// cylinder. Gas is removed when a cylinder is returned or emptied.
func ClearsGasType(to Status) bool {
	return to == StatusReturned || to == StatusEmpty
}

// Deactivates reports whether entering the status takes the cylinder out of
// active circulation.
func Deactivates(to Status) bool {
	return to == StatusReturned
}

// StampsFillingEnd reports whether entering the status should auto-stamp the
// filling end time when one was not supplied.
func StampsFillingEnd(to Status) bool {
	return to == StatusFilled
}

// Assignable reports whether a cylinder in the given state may be selected
// into a vehicle assignment batch.
func Assignable(status Status, active bool) bool {
	return status == StatusFilled && active
}

// Statuses returns all lifecycle statuses in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusInStock, StatusFilling, StatusFilled, StatusToBeDelivered,
		StatusDelivered, StatusReturned, StatusEmpty,
	}
}
