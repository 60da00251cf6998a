package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/backstage/services/cylinder/internal/models"
)

func TestCreateGasType(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewGasTypeService(manager)

	mocks.gasTypes.On("Create", mock.Anything, mock.AnythingOfType("*models.GasType")).Return(nil)

	gasType, err := svc.Create(context.Background(), &GasTypeRequest{Name: "Oxygen", PricePerLiter: 300})

	require.NoError(t, err)
	assert.Equal(t, "Oxygen", gasType.Name)
	mocks.gasTypes.AssertExpectations(t)
}

func TestDeleteGasTypeInUse(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewGasTypeService(manager)

	mocks.gasTypes.On("GetByID", mock.Anything, uint(3)).Return(&models.GasType{ID: 3, Name: "Oxygen"}, nil)
	mocks.gasTypes.On("InUse", mock.Anything, uint(3)).Return(true, nil)

	err := svc.Delete(context.Background(), 3)

	require.ErrorIs(t, err, ErrGasTypeInUse)
	mocks.gasTypes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteGasTypeUnused(t *testing.T) {
	manager, mocks := newTestMocks()
	svc := NewGasTypeService(manager)

	mocks.gasTypes.On("GetByID", mock.Anything, uint(3)).Return(&models.GasType{ID: 3, Name: "Oxygen"}, nil)
	mocks.gasTypes.On("InUse", mock.Anything, uint(3)).Return(false, nil)
	mocks.gasTypes.On("Delete", mock.Anything, uint(3)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 3))
	mocks.gasTypes.AssertExpectations(t)
}
