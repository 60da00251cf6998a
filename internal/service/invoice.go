package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
)

// InvoiceService defines invoicing operations
type InvoiceService interface {
	// CreateForSupply creates the invoice for a supply, or returns the
	// existing one. Idempotent.
	CreateForSupply(ctx context.Context, supplyID uint) (*models.Invoice, error)
	GetByID(ctx context.Context, id uint) (*models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Invoice, error)
}

type invoiceService struct {
	manager repository.Manager
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(manager repository.Manager) InvoiceService {
	return &invoiceService{manager: manager}
}

func (s *invoiceService) CreateForSupply(ctx context.Context, supplyID uint) (*models.Invoice, error) {
	var invoice *models.Invoice

	err := s.manager.Transaction(ctx, func(repos repository.Set) error {
		supply, err := repos.Supplies.GetByID(ctx, supplyID)
		if err != nil {
			return err
		}

		existing, err := repos.Invoices.GetBySupplyID(ctx, supplyID)
		if err == nil {
			invoice = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		invoice = &models.Invoice{
			SupplyID: supply.ID,
			Amount:   supply.TotalPrice,
			Status:   models.InvoiceStatusUnpaid,
			Date:     time.Now(),
		}
		return repos.Invoices.Create(ctx, invoice)
	})

	// A concurrent creation can slip between the existence check and the
	// insert; the unique index on supply_id turns that into a duplicate key,
	// which resolves to the row the other writer created.
	if errors.Is(err, repository.ErrDuplicateKey) {
		return s.manager.Repos().Invoices.GetBySupplyID(ctx, supplyID)
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.manager.Repos().Invoices.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context) ([]models.Invoice, error) {
	return s.manager.Repos().Invoices.List(ctx)
}

func (s *invoiceService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Invoice, error) {
	if status != models.InvoiceStatusPaid && status != models.InvoiceStatusUnpaid {
		return nil, NewValidationError("invalid invoice status %q", status)
	}

	if err := s.manager.Repos().Invoices.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.manager.Repos().Invoices.GetByID(ctx, id)
}
