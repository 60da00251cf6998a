package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/cylinder/internal/cache"
	"example.com/backstage/services/cylinder/internal/history"
	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
	"example.com/backstage/services/cylinder/internal/utils"
)

const assignmentCacheTTL = 5 * time.Minute

// AssignRequest defines the request to dispatch a batch of cylinders.
type AssignRequest struct {
	VehiclePlate string `json:"vehicle_plate" validate:"required"`
	DriverName   string `json:"driver_name" validate:"required"`
	CylinderIDs  []uint `json:"cylinder_ids" validate:"required,min=1"`
}

// MarkRequest identifies one cylinder on one vehicle assignment.
type MarkRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required"`
	CylinderID   uint `json:"cylinder_id" validate:"required"`
}

// AssignmentSummary is a vehicle assignment with cylinder counts.
type AssignmentSummary struct {
	models.VehicleAssignment
	CylinderCount  int `json:"cylinder_count"`
	DeliveredCount int `json:"delivered_count"`
	ReturnedCount  int `json:"returned_count"`
}

// AssignmentService defines vehicle dispatch operations
type AssignmentService interface {
	Assign(ctx context.Context, req *AssignRequest) (*models.VehicleAssignment, error)
	MarkDelivered(ctx context.Context, req *MarkRequest) error
	MarkReturned(ctx context.Context, req *MarkRequest) error
	List(ctx context.Context) ([]AssignmentSummary, error)
	GetByID(ctx context.Context, id uint) (*AssignmentSummary, error)
}

type assignmentService struct {
	manager repository.Manager
	logger  *history.Logger
	cache   *cache.RedisCache
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(manager repository.Manager, logger *history.Logger, redisCache *cache.RedisCache) AssignmentService {
	return &assignmentService{
		manager: manager,
		logger:  logger,
		cache:   redisCache,
	}
}

// Assign dispatches a batch of cylinders on a vehicle. The whole batch is a
// single transaction: each cylinder is locked, verified to be filled and
// active, linked to the new vehicle assignment, and moved to "to be
// delivered". One offending cylinder rolls the entire batch back with an
// error naming it.
func (s *assignmentService) Assign(ctx context.Context, req *AssignRequest) (*models.VehicleAssignment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid request: %v", err)
	}

	var (
		assignment  *models.VehicleAssignment
		transitions []*transition
	)

	err := s.manager.Transaction(ctx, func(repos repository.Set) error {
		assignment = &models.VehicleAssignment{
			ReferenceID:  uuid.New(),
			VehiclePlate: req.VehiclePlate,
			DriverName:   req.DriverName,
			AssignedAt:   time.Now(),
			IsActive:     true,
		}
		if err := repos.Assignments.CreateVehicleAssignment(ctx, assignment); err != nil {
			return errors.Wrap(err, "failed to create vehicle assignment")
		}

		for _, cylinderID := range req.CylinderIDs {
			// Row-level lock closes the check-then-act race between two
			// concurrent assignments of the same cylinder.
			cylinder, err := repos.Cylinders.LockByID(ctx, cylinderID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &PreconditionError{CylinderID: cylinderID, Reason: "cylinder does not exist"}
				}
				return err
			}

			if !lifecycle.Assignable(cylinder.Status, cylinder.IsActive) {
				return &PreconditionError{
					CylinderID: cylinder.ID,
					Code:       cylinder.Code,
					Reason:     "must be filled and active to be assigned, current status is " + string(cylinder.Status),
				}
			}

			if err := repos.Assignments.CreateCylinderAssignment(ctx, &models.CylinderAssignment{
				VehicleAssignmentID: assignment.ID,
				CylinderID:          cylinder.ID,
			}); err != nil {
				return errors.Wrap(err, "failed to create cylinder assignment")
			}

			applied, err := applyTransition(ctx, repos, cylinder, lifecycle.StatusToBeDelivered, SourceAssignment, transitionOptions{validate: true})
			if err != nil {
				return err
			}
			transitions = append(transitions, applied)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range transitions {
		s.logger.Record(ctx, t.CylinderID, t.From, t.To, t.Source)
	}

	return assignment, nil
}

func (s *assignmentService) MarkDelivered(ctx context.Context, req *MarkRequest) error {
	return s.mark(ctx, req, lifecycle.StatusDelivered, SourceDelivery)
}

func (s *assignmentService) MarkReturned(ctx context.Context, req *MarkRequest) error {
	return s.mark(ctx, req, lifecycle.StatusReturned, SourceReturn)
}

func (s *assignmentService) mark(ctx context.Context, req *MarkRequest, to lifecycle.Status, source string) error {
	if err := utils.ValidateStruct(req); err != nil {
		return NewValidationError("invalid request: %v", err)
	}

	var applied *transition

	err := s.manager.Transaction(ctx, func(repos repository.Set) error {
		if _, err := repos.Assignments.GetCylinderAssignment(ctx, req.AssignmentID, req.CylinderID); err != nil {
			return err
		}

		cylinder, err := repos.Cylinders.LockByID(ctx, req.CylinderID)
		if err != nil {
			return err
		}

		applied, err = applyTransition(ctx, repos, cylinder, to, source, transitionOptions{validate: true})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Record(ctx, applied.CylinderID, applied.From, applied.To, applied.Source)
	s.invalidate(ctx, req.AssignmentID)
	return nil
}

func (s *assignmentService) List(ctx context.Context) ([]AssignmentSummary, error) {
	assignments, err := s.manager.Repos().Assignments.ListVehicleAssignments(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]AssignmentSummary, 0, len(assignments))
	for i := range assignments {
		summaries = append(summaries, summarize(&assignments[i]))
	}
	return summaries, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (*AssignmentSummary, error) {
	var cached AssignmentSummary
	if err := s.cache.Get(ctx, cache.AssignmentCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	assignment, err := s.manager.Repos().Assignments.GetVehicleAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := summarize(assignment)
	if err := s.cache.Set(ctx, cache.AssignmentCacheKey(id), summary, assignmentCacheTTL); err != nil {
		log.Warn().Err(err).Uint("assignment_id", id).Msg("Failed to cache assignment")
	}
	return &summary, nil
}

func (s *assignmentService) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, cache.AssignmentCacheKey(id)); err != nil {
		log.Warn().Err(err).Uint("assignment_id", id).Msg("Failed to invalidate assignment cache")
	}
}

func summarize(assignment *models.VehicleAssignment) AssignmentSummary {
	summary := AssignmentSummary{
		VehicleAssignment: *assignment,
		CylinderCount:     len(assignment.Cylinders),
	}
	for _, ca := range assignment.Cylinders {
		if ca.IsDelivered {
			summary.DeliveredCount++
		}
		if ca.IsReturned {
			summary.ReturnedCount++
		}
	}
	return summary
}
