package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
)

// Transition sources recorded in the status history.
const (
	SourceCreate     = "create"
	SourceOperator   = "operator"
	SourceAssignment = "assignment"
	SourceDelivery   = "delivery"
	SourceReturn     = "return"
	SourceSupply     = "supply"
)

// transition captures one applied status change so history can be recorded
// after the surrounding transaction commits. History is best-effort and must
// never roll the primary mutation back.
type transition struct {
	CylinderID uint
	From       lifecycle.Status
	To         lifecycle.Status
	Source     string
}

// transitionOptions controls how applyTransition behaves.
type transitionOptions struct {
	// validate enforces the lifecycle transition table. The supply path and
	// the forced operator override skip it deliberately.
	validate bool
	// fillingEndTime overrides the auto-stamped end time when moving to
	// filled.
	fillingEndTime *time.Time
	// gasTypeID, when set, is written to the cylinder before the status
	// change (the supply path carries the delivered gas with it).
	gasTypeID *uint
}

// applyTransition is the single operation through which every status change
// flows. It always updates the cylinder row, conditionally flips the flags on
// an active cylinder assignment, and returns the applied transition for
// history recording. Both delivery paths (assignment-driven and
// supply-driven) call this one operation.
func applyTransition(ctx context.Context, repos repository.Set, cyl *models.Cylinder, to lifecycle.Status, source string, opts transitionOptions) (*transition, error) {
	from := cyl.Status

	if opts.validate {
		if err := lifecycle.ValidateTransition(cyl.ID, from, to); err != nil {
			return nil, err
		}
	}

	if opts.gasTypeID != nil {
		cyl.GasTypeID = opts.gasTypeID
	}

	if lifecycle.StampsFillingEnd(to) && cyl.FillingEndTime == nil {
		endTime := time.Now()
		if opts.fillingEndTime != nil {
			endTime = *opts.fillingEndTime
		}
		cyl.FillingEndTime = &endTime
	}

	if lifecycle.ClearsGasType(to) {
		cyl.GasTypeID = nil
		cyl.GasType = nil
	}

	if lifecycle.Deactivates(to) {
		cyl.IsActive = false
	}

	cyl.Status = to
	if err := repos.Cylinders.Update(ctx, cyl); err != nil {
		return nil, errors.Wrap(err, "failed to update cylinder status")
	}

	if err := syncAssignmentFlags(ctx, repos, cyl.ID, to); err != nil {
		return nil, err
	}

	return &transition{
		CylinderID: cyl.ID,
		From:       from,
		To:         to,
		Source:     source,
	}, nil
}

// syncAssignmentFlags flips the delivered/returned flags on the cylinder's
// active assignment when one exists. A cylinder delivered or returned outside
// of any dispatch simply has no assignment to update.
func syncAssignmentFlags(ctx context.Context, repos repository.Set, cylinderID uint, to lifecycle.Status) error {
	if to != lifecycle.StatusDelivered && to != lifecycle.StatusReturned {
		return nil
	}

	assignment, err := repos.Assignments.ActiveAssignmentForCylinder(ctx, cylinderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "failed to look up active assignment")
	}

	switch to {
	case lifecycle.StatusDelivered:
		assignment.IsDelivered = true
	case lifecycle.StatusReturned:
		assignment.IsReturned = true
	}

	if err := repos.Assignments.UpdateCylinderAssignment(ctx, assignment); err != nil {
		return errors.Wrap(err, "failed to update cylinder assignment flags")
	}

	if to == lifecycle.StatusReturned {
		if err := repos.Assignments.DeactivateVehicleAssignmentIfComplete(ctx, assignment.VehicleAssignmentID); err != nil {
			return errors.Wrap(err, "failed to deactivate completed vehicle assignment")
		}
	}

	return nil
}
