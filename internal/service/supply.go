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

// SupplyItemRequest is one cylinder line item of a supply.
type SupplyItemRequest struct {
	CylinderCode string  `json:"cylinder_code" validate:"required"`
	GasTypeID    uint    `json:"gas_type_id" validate:"required"`
	Liters       float64 `json:"liters" validate:"required,gt=0"`
	Price        float64 `json:"price" validate:"gte=0"`
}

// CreateSupplyRequest defines the request to record a hospital delivery.
type CreateSupplyRequest struct {
	Date                 *time.Time          `json:"date"`
	HospitalName         string              `json:"hospital_name" validate:"required"`
	VehiclePlate         string              `json:"vehicle_plate"`
	DriverName           string              `json:"driver_name"`
	StorekeeperName      string              `json:"storekeeper_name"`
	TechnicianName       string              `json:"technician_name"`
	RecipientName        string              `json:"recipient_name"`
	StorekeeperSignature string              `json:"storekeeper_signature"`
	RecipientSignature   string              `json:"recipient_signature"`
	Items                []SupplyItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SupplyService defines hospital supply recording operations
type SupplyService interface {
	Create(ctx context.Context, req *CreateSupplyRequest) (*models.Supply, error)
	GetByID(ctx context.Context, id uint) (*models.Supply, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error)
}

type supplyService struct {
	manager repository.Manager
	logger  *history.Logger
}

// NewSupplyService creates a new supply service
func NewSupplyService(manager repository.Manager, logger *history.Logger) SupplyService {
	return &supplyService{
		manager: manager,
		logger:  logger,
	}
}

// Create records a hospital delivery. The supply row, its line items and the
// per-cylinder delivered transitions are one transaction; an unknown cylinder
// code or gas type anywhere in the batch rolls the whole supply back. The
// total price is recomputed from the line items.
func (s *supplyService) Create(ctx context.Context, req *CreateSupplyRequest) (*models.Supply, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid request: %v", err)
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	var total float64
	for _, item := range req.Items {
		total += item.Price
	}

	var (
		supply      *models.Supply
		transitions []*transition
	)

	err := s.manager.Transaction(ctx, func(repos repository.Set) error {
		supply = &models.Supply{
			Date:                 date,
			HospitalName:         req.HospitalName,
			VehiclePlate:         req.VehiclePlate,
			DriverName:           req.DriverName,
			StorekeeperName:      req.StorekeeperName,
			TechnicianName:       req.TechnicianName,
			RecipientName:        req.RecipientName,
			StorekeeperSignature: req.StorekeeperSignature,
			RecipientSignature:   req.RecipientSignature,
			TotalPrice:           total,
		}
		if err := repos.Supplies.Create(ctx, supply); err != nil {
			return errors.Wrap(err, "failed to create supply")
		}

		for _, item := range req.Items {
			cylinder, err := repos.Cylinders.GetByCode(ctx, item.CylinderCode)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewValidationError("cylinder with code %q does not exist", item.CylinderCode)
				}
				return err
			}

			if _, err := repos.GasTypes.GetByID(ctx, item.GasTypeID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewValidationError("gas type %d does not exist", item.GasTypeID)
				}
				return err
			}

			detail := &models.SupplyDetail{
				SupplyID:     supply.ID,
				CylinderCode: item.CylinderCode,
				GasTypeID:    item.GasTypeID,
				Liters:       item.Liters,
				Price:        item.Price,
			}
			if err := repos.Supplies.CreateDetail(ctx, detail); err != nil {
				return errors.Wrap(err, "failed to create supply detail")
			}
			supply.Details = append(supply.Details, *detail)

			// Locked re-read before the status write; the line item carries
			// the delivered gas type with it. The supply path does not
			// enforce the transition table: recording a delivery is an
			// after-the-fact statement of what physically happened.
			locked, err := repos.Cylinders.LockByID(ctx, cylinder.ID)
			if err != nil {
				return err
			}
			gasTypeID := item.GasTypeID
			applied, err := applyTransition(ctx, repos, locked, lifecycle.StatusDelivered, SourceSupply, transitionOptions{
				gasTypeID: &gasTypeID,
			})
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

	return supply, nil
}

func (s *supplyService) GetByID(ctx context.Context, id uint) (*models.Supply, error) {
	return s.manager.Repos().Supplies.GetByID(ctx, id)
}

func (s *supplyService) ListBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error) {
	return s.manager.Repos().Supplies.ListBetween(ctx, start, end)
}
