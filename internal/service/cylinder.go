package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"example.com/backstage/services/cylinder/internal/history"
	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
	"example.com/backstage/services/cylinder/internal/utils"
)

// CreateCylinderRequest defines the request to create a cylinder
type CreateCylinderRequest struct {
	Code             string     `json:"code" validate:"required"`
	Size             string     `json:"size" validate:"required"`
	GasTypeID        *uint      `json:"gas_type_id"`
	Status           string     `json:"status"`
	FillingStartTime *time.Time `json:"filling_start_time"`
	FillingEndTime   *time.Time `json:"filling_end_time"`
	IsActive         *bool      `json:"is_active"`
}

// UpdateCylinderRequest edits cylinder metadata. Status is deliberately not
// part of this request; transitions go through TransitionStatus.
type UpdateCylinderRequest struct {
	Code      *string `json:"code"`
	Size      *string `json:"size"`
	GasTypeID *uint   `json:"gas_type_id"`
	ClearGas  bool    `json:"clear_gas_type"`
	IsActive  *bool   `json:"is_active"`
}

// TransitionRequest moves a cylinder to a new lifecycle status.
type TransitionRequest struct {
	Status         string     `json:"status" validate:"required"`
	FillingEndTime *time.Time `json:"filling_end_time"`
	// Force skips transition-table validation. Admin override for
	// correcting records; the change is still audited.
	Force bool `json:"force"`
}

// ListCylindersRequest filters a cylinder listing.
type ListCylindersRequest struct {
	Status string
	Date   *time.Time
	All    bool
}

// CylinderService defines cylinder lifecycle operations
type CylinderService interface {
	Create(ctx context.Context, req *CreateCylinderRequest) (*models.Cylinder, error)
	GetByID(ctx context.Context, id uint) (*models.Cylinder, error)
	List(ctx context.Context, req *ListCylindersRequest) ([]models.Cylinder, error)
	UpdateMetadata(ctx context.Context, id uint, req *UpdateCylinderRequest) (*models.Cylinder, error)
	TransitionStatus(ctx context.Context, id uint, req *TransitionRequest) (*models.Cylinder, error)
	Delete(ctx context.Context, id uint) error
	History(ctx context.Context, id uint) ([]models.CylinderStatusHistory, error)
}

type cylinderService struct {
	manager repository.Manager
	logger  *history.Logger
}

// NewCylinderService creates a new cylinder service
func NewCylinderService(manager repository.Manager, logger *history.Logger) CylinderService {
	return &cylinderService{
		manager: manager,
		logger:  logger,
	}
}

func (s *cylinderService) Create(ctx context.Context, req *CreateCylinderRequest) (*models.Cylinder, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid request: %v", err)
	}

	size := lifecycle.Size(req.Size)
	if !size.IsValid() {
		return nil, NewValidationError("invalid cylinder size %q", req.Size)
	}

	status := lifecycle.StatusInStock
	if req.Status != "" {
		status = lifecycle.Status(req.Status)
		if !status.IsValid() {
			return nil, NewValidationError("invalid cylinder status %q", req.Status)
		}
	}

	repos := s.manager.Repos()

	if req.GasTypeID != nil {
		if _, err := repos.GasTypes.GetByID(ctx, *req.GasTypeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NewValidationError("gas type %d does not exist", *req.GasTypeID)
			}
			return nil, err
		}
	}

	cylinder := &models.Cylinder{
		Code:             req.Code,
		Size:             size,
		GasTypeID:        req.GasTypeID,
		Status:           status,
		FillingStartTime: req.FillingStartTime,
		FillingEndTime:   req.FillingEndTime,
		IsActive:         true,
	}
	if req.IsActive != nil {
		cylinder.IsActive = *req.IsActive
	}
	if status == lifecycle.StatusFilling && cylinder.FillingStartTime == nil {
		now := time.Now()
		cylinder.FillingStartTime = &now
	}

	if err := repos.Cylinders.Create(ctx, cylinder); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}

	s.logger.Record(ctx, cylinder.ID, "", cylinder.Status, SourceCreate)

	return cylinder, nil
}

func (s *cylinderService) GetByID(ctx context.Context, id uint) (*models.Cylinder, error) {
	return s.manager.Repos().Cylinders.GetByID(ctx, id)
}

func (s *cylinderService) List(ctx context.Context, req *ListCylindersRequest) ([]models.Cylinder, error) {
	filter := repository.CylinderFilter{
		Day: req.Date,
		All: req.All,
	}
	if req.Status != "" {
		status := lifecycle.Status(req.Status)
		if !status.IsValid() {
			return nil, NewValidationError("invalid cylinder status %q", req.Status)
		}
		filter.Status = &status
	}
	return s.manager.Repos().Cylinders.List(ctx, filter)
}

func (s *cylinderService) UpdateMetadata(ctx context.Context, id uint, req *UpdateCylinderRequest) (*models.Cylinder, error) {
	var updated *models.Cylinder

	err := s.manager.Transaction(ctx, func(repos repository.Set) error {
		cylinder, err := repos.Cylinders.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Code != nil {
			cylinder.Code = *req.Code
		}
		if req.Size != nil {
			size := lifecycle.Size(*req.Size)
			if !size.IsValid() {
				return NewValidationError("invalid cylinder size %q", *req.Size)
			}
			cylinder.Size = size
		}
		if req.ClearGas {
			cylinder.GasTypeID = nil
		} else if req.GasTypeID != nil {
			if _, err := repos.GasTypes.GetByID(ctx, *req.GasTypeID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewValidationError("gas type %d does not exist", *req.GasTypeID)
				}
				return err
			}
			cylinder.GasTypeID = req.GasTypeID
		}
		if req.IsActive != nil {
			cylinder.IsActive = *req.IsActive
		}

		if err := repos.Cylinders.Update(ctx, cylinder); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrDuplicateCode
			}
			return err
		}
		updated = cylinder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *cylinderService) TransitionStatus(ctx context.Context, id uint, req *TransitionRequest) (*models.Cylinder, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid request: %v", err)
	}

	to := lifecycle.Status(req.Status)
	if !to.IsValid() {
		return nil, NewValidationError("invalid cylinder status %q", req.Status)
	}

	var (
		updated *models.Cylinder
		applied *transition
	)

	err := s.manager.Transaction(ctx, func(repos repository.Set) error {
		cylinder, err := repos.Cylinders.LockByID(ctx, id)
		if err != nil {
			return err
		}

		if to == lifecycle.StatusFilling && cylinder.FillingStartTime == nil {
			now := time.Now()
			cylinder.FillingStartTime = &now
		}

		applied, err = applyTransition(ctx, repos, cylinder, to, SourceOperator, transitionOptions{
			validate:       !req.Force,
			fillingEndTime: req.FillingEndTime,
		})
		if err != nil {
			return err
		}
		updated = cylinder
		return nil
	})
	if err != nil {
		return nil, err
	}

	// History is recorded after the transaction commits so a bookkeeping
	// failure can never roll the status change back.
	s.logger.Record(ctx, applied.CylinderID, applied.From, applied.To, applied.Source)

	return updated, nil
}

func (s *cylinderService) Delete(ctx context.Context, id uint) error {
	repos := s.manager.Repos()

	cylinder, err := repos.Cylinders.GetByID(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := repos.Cylinders.ReferencedBySupply(ctx, cylinder.Code)
	if err != nil {
		return err
	}
	if referenced {
		return ErrCylinderInUse
	}

	return repos.Cylinders.Delete(ctx, id)
}

func (s *cylinderService) History(ctx context.Context, id uint) ([]models.CylinderStatusHistory, error) {
	repos := s.manager.Repos()
	if _, err := repos.Cylinders.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return repos.History.ListForCylinder(ctx, id)
}
