package service

import (
	"context"

	"github.com/pkg/errors"

	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
	"example.com/backstage/services/cylinder/internal/utils"
)

// GasTypeRequest defines the request to create or update a gas type.
type GasTypeRequest struct {
	Name          string  `json:"name" validate:"required"`
	PricePerLiter float64 `json:"price_per_liter" validate:"gte=0"`
}

// GasTypeService defines gas type operations
type GasTypeService interface {
	Create(ctx context.Context, req *GasTypeRequest) (*models.GasType, error)
	GetByID(ctx context.Context, id uint) (*models.GasType, error)
	List(ctx context.Context) ([]models.GasType, error)
	Update(ctx context.Context, id uint, req *GasTypeRequest) (*models.GasType, error)
	Delete(ctx context.Context, id uint) error
}

type gasTypeService struct {
	manager repository.Manager
}

// NewGasTypeService creates a new gas type service
func NewGasTypeService(manager repository.Manager) GasTypeService {
	return &gasTypeService{manager: manager}
}

func (s *gasTypeService) Create(ctx context.Context, req *GasTypeRequest) (*models.GasType, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid request: %v", err)
	}

	gasType := &models.GasType{
		Name:          req.Name,
		PricePerLiter: req.PricePerLiter,
	}
	if err := s.manager.Repos().GasTypes.Create(ctx, gasType); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, NewValidationError("gas type %q already exists", req.Name)
		}
		return nil, err
	}
	return gasType, nil
}

func (s *gasTypeService) GetByID(ctx context.Context, id uint) (*models.GasType, error) {
	return s.manager.Repos().GasTypes.GetByID(ctx, id)
}

func (s *gasTypeService) List(ctx context.Context) ([]models.GasType, error) {
	return s.manager.Repos().GasTypes.List(ctx)
}

func (s *gasTypeService) Update(ctx context.Context, id uint, req *GasTypeRequest) (*models.GasType, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid request: %v", err)
	}

	gasType, err := s.manager.Repos().GasTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	gasType.Name = req.Name
	gasType.PricePerLiter = req.PricePerLiter
	if err := s.manager.Repos().GasTypes.Update(ctx, gasType); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, NewValidationError("gas type %q already exists", req.Name)
		}
		return nil, err
	}
	return gasType, nil
}

func (s *gasTypeService) Delete(ctx context.Context, id uint) error {
	repos := s.manager.Repos()

	if _, err := repos.GasTypes.GetByID(ctx, id); err != nil {
		return err
	}

	inUse, err := repos.GasTypes.InUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrGasTypeInUse
	}

	return repos.GasTypes.Delete(ctx, id)
}
