package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
)

func TestCreateCylinderDefaultsToInStock(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	mocks.cylinders.On("Create", mock.Anything, mock.AnythingOfType("*models.Cylinder")).Return(nil)

	cylinder, err := svc.Create(context.Background(), &CreateCylinderRequest{
		Code: "CYL-001",
		Size: "40L",
	})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusInStock, cylinder.Status)
	assert.True(t, cylinder.IsActive)
	assert.Nil(t, cylinder.FillingStartTime)
	mocks.cylinders.AssertExpectations(t)
}

func TestCreateCylinderFillingStampsStartTime(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	mocks.cylinders.On("Create", mock.Anything, mock.AnythingOfType("*models.Cylinder")).Return(nil)

	cylinder, err := svc.Create(context.Background(), &CreateCylinderRequest{
		Code:   "CYL-002",
		Size:   "10L",
		Status: string(lifecycle.StatusFilling),
	})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusFilling, cylinder.Status)
	require.NotNil(t, cylinder.FillingStartTime)
}

func TestCreateCylinderDuplicateCode(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	mocks.cylinders.On("Create", mock.Anything, mock.AnythingOfType("*models.Cylinder")).
		Return(repository.ErrDuplicateKey)

	_, err := svc.Create(context.Background(), &CreateCylinderRequest{
		Code: "CYL-001",
		Size: "40L",
	})

	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateCylinderRejectsBadInput(t *testing.T) {
	manager, _ := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	var validationErr *ValidationError

	_, err := svc.Create(context.Background(), &CreateCylinderRequest{Size: "40L"})
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Create(context.Background(), &CreateCylinderRequest{Code: "CYL-003", Size: "70L"})
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Create(context.Background(), &CreateCylinderRequest{Code: "CYL-003", Size: "40L", Status: "lost"})
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateCylinderUnknownGasType(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	mocks.gasTypes.On("GetByID", mock.Anything, uint(9)).Return(nil, repository.ErrNotFound)

	gasTypeID := uint(9)
	_, err := svc.Create(context.Background(), &CreateCylinderRequest{
		Code:      "CYL-004",
		Size:      "40L",
		GasTypeID: &gasTypeID,
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	mocks.cylinders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTransitionStatusLegal(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Status: lifecycle.StatusFilled, IsActive: true}
	mocks.cylinders.On("LockByID", mock.Anything, uint(1)).Return(cylinder, nil)
	mocks.cylinders.On("Update", mock.Anything, cylinder).Return(nil)

	updated, err := svc.TransitionStatus(context.Background(), 1, &TransitionRequest{
		Status: string(lifecycle.StatusToBeDelivered),
	})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusToBeDelivered, updated.Status)
	mocks.cylinders.AssertExpectations(t)
}

func TestTransitionStatusIllegalRejected(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Status: lifecycle.StatusInStock, IsActive: true}
	mocks.cylinders.On("LockByID", mock.Anything, uint(1)).Return(cylinder, nil)

	_, err := svc.TransitionStatus(context.Background(), 1, &TransitionRequest{
		Status: string(lifecycle.StatusDelivered),
	})

	var transErr *lifecycle.TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, lifecycle.StatusInStock, transErr.From)
	assert.Equal(t, lifecycle.StatusDelivered, transErr.To)
	mocks.cylinders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTransitionStatusForceBypassesTable(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Status: lifecycle.StatusInStock, IsActive: true}
	mocks.cylinders.On("LockByID", mock.Anything, uint(1)).Return(cylinder, nil)
	mocks.cylinders.On("Update", mock.Anything, cylinder).Return(nil)
	mocks.assignments.On("ActiveAssignmentForCylinder", mock.Anything, uint(1)).
		Return(nil, repository.ErrNotFound)

	updated, err := svc.TransitionStatus(context.Background(), 1, &TransitionRequest{
		Status: string(lifecycle.StatusDelivered),
		Force:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusDelivered, updated.Status)
}

func TestTransitionToReturnedClearsGasAndDeactivates(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	gasTypeID := uint(3)
	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Status: lifecycle.StatusDelivered, GasTypeID: &gasTypeID, IsActive: true}
	mocks.cylinders.On("LockByID", mock.Anything, uint(1)).Return(cylinder, nil)
	mocks.cylinders.On("Update", mock.Anything, cylinder).Return(nil)
	mocks.assignments.On("ActiveAssignmentForCylinder", mock.Anything, uint(1)).
		Return(nil, repository.ErrNotFound)

	updated, err := svc.TransitionStatus(context.Background(), 1, &TransitionRequest{
		Status: string(lifecycle.StatusReturned),
	})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusReturned, updated.Status)
	assert.Nil(t, updated.GasTypeID)
	assert.False(t, updated.IsActive)
}

func TestTransitionToFilledStampsEndTime(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Status: lifecycle.StatusFilling, IsActive: true}
	mocks.cylinders.On("LockByID", mock.Anything, uint(1)).Return(cylinder, nil)
	mocks.cylinders.On("Update", mock.Anything, cylinder).Return(nil)

	updated, err := svc.TransitionStatus(context.Background(), 1, &TransitionRequest{
		Status: string(lifecycle.StatusFilled),
	})

	require.NoError(t, err)
	require.NotNil(t, updated.FillingEndTime)
}

func TestUpdateMetadataDoesNotTouchStatus(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Size: lifecycle.Size10L, Status: lifecycle.StatusFilled, IsActive: true}
	mocks.cylinders.On("LockByID", mock.Anything, uint(1)).Return(cylinder, nil)
	mocks.cylinders.On("Update", mock.Anything, cylinder).Return(nil)

	newCode := "CYL-001-B"
	newSize := "50L"
	updated, err := svc.UpdateMetadata(context.Background(), 1, &UpdateCylinderRequest{
		Code: &newCode,
		Size: &newSize,
	})

	require.NoError(t, err)
	assert.Equal(t, "CYL-001-B", updated.Code)
	assert.Equal(t, lifecycle.Size50L, updated.Size)
	assert.Equal(t, lifecycle.StatusFilled, updated.Status)
}

func TestDeleteCylinderReferencedBySupply(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Status: lifecycle.StatusDelivered}
	mocks.cylinders.On("GetByID", mock.Anything, uint(1)).Return(cylinder, nil)
	mocks.cylinders.On("ReferencedBySupply", mock.Anything, "CYL-001").Return(true, nil)

	err := svc.Delete(context.Background(), 1)

	require.ErrorIs(t, err, ErrCylinderInUse)
	mocks.cylinders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteCylinderUnreferenced(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	cylinder := &models.Cylinder{ID: 1, Code: "CYL-001", Status: lifecycle.StatusInStock}
	mocks.cylinders.On("GetByID", mock.Anything, uint(1)).Return(cylinder, nil)
	mocks.cylinders.On("ReferencedBySupply", mock.Anything, "CYL-001").Return(false, nil)
	mocks.cylinders.On("Delete", mock.Anything, uint(1)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 1))
	mocks.cylinders.AssertExpectations(t)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	manager, _ := newTestMocks()
	svc := NewCylinderService(manager, newTestLogger())

	_, err := svc.List(context.Background(), &ListCylindersRequest{Status: "vanished"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
