package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
)

func TestCreateInvoiceForSupply(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewInvoiceService(manager)

	supply := &models.Supply{ID: 7, HospitalName: "CHUK", TotalPrice: 25000}
	mocks.supplies.On("GetByID", mock.Anything, uint(7)).Return(supply, nil)
	mocks.invoices.On("GetBySupplyID", mock.Anything, uint(7)).Return(nil, repository.ErrNotFound)
	mocks.invoices.On("Create", mock.Anything, mock.AnythingOfType("*models.Invoice")).Return(nil)

	invoice, err := svc.CreateForSupply(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, uint(7), invoice.SupplyID)
	assert.Equal(t, float64(25000), invoice.Amount)
	assert.Equal(t, models.InvoiceStatusUnpaid, invoice.Status)
}

func TestCreateInvoiceIsIdempotent(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewInvoiceService(manager)

	supply := &models.Supply{ID: 7, TotalPrice: 25000}
	existing := &models.Invoice{ID: 3, SupplyID: 7, Amount: 25000, Status: models.InvoiceStatusUnpaid}
	mocks.supplies.On("GetByID", mock.Anything, uint(7)).Return(supply, nil)
	mocks.invoices.On("GetBySupplyID", mock.Anything, uint(7)).Return(existing, nil)

	invoice, err := svc.CreateForSupply(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, uint(3), invoice.ID)
	mocks.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInvoiceResolvesConcurrentDuplicate(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewInvoiceService(manager)

	supply := &models.Supply{ID: 7, TotalPrice: 25000}
	winner := &models.Invoice{ID: 4, SupplyID: 7, Amount: 25000, Status: models.InvoiceStatusUnpaid}

	mocks.supplies.On("GetByID", mock.Anything, uint(7)).Return(supply, nil)
	// First read misses, the insert loses the race, the refetch finds the
	// row the other writer created.
	mocks.invoices.On("GetBySupplyID", mock.Anything, uint(7)).Return(nil, repository.ErrNotFound).Once()
	mocks.invoices.On("Create", mock.Anything, mock.AnythingOfType("*models.Invoice")).Return(repository.ErrDuplicateKey)
	mocks.invoices.On("GetBySupplyID", mock.Anything, uint(7)).Return(winner, nil).Once()

	invoice, err := svc.CreateForSupply(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, uint(4), invoice.ID)
}

func TestCreateInvoiceUnknownSupply(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewInvoiceService(manager)

	mocks.supplies.On("GetByID", mock.Anything, uint(99)).Return(nil, repository.ErrNotFound)

	_, err := svc.CreateForSupply(context.Background(), 99)

	require.ErrorIs(t, err, repository.ErrNotFound)
	mocks.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewInvoiceService(manager)

	paid := &models.Invoice{ID: 3, SupplyID: 7, Status: models.InvoiceStatusPaid}
	mocks.invoices.On("UpdateStatus", mock.Anything, uint(3), models.InvoiceStatusPaid).Return(nil)
	mocks.invoices.On("GetByID", mock.Anything, uint(3)).Return(paid, nil)

	invoice, err := svc.UpdateStatus(context.Background(), 3, models.InvoiceStatusPaid)

	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, invoice.Status)
}

func TestUpdateInvoiceStatusRejectsUnknownStatus(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewInvoiceService(manager)

	_, err := svc.UpdateStatus(context.Background(), 3, "void")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	mocks.invoices.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
