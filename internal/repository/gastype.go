package repository

import (
	"context"

	"gorm.io/gorm"

	"example.com/backstage/services/cylinder/internal/db"
	"example.com/backstage/services/cylinder/internal/models"
)

// GasTypeRepository defines the interface for gas type persistence
type GasTypeRepository interface {
	Create(ctx context.Context, gasType *models.GasType) error
	GetByID(ctx context.Context, id uint) (*models.GasType, error)
	List(ctx context.Context) ([]models.GasType, error)
	Update(ctx context.Context, gasType *models.GasType) error
	Delete(ctx context.Context, id uint) error
	// InUse reports whether any cylinder currently references the gas type.
	InUse(ctx context.Context, id uint) (bool, error)
}

type gasTypeRepository struct {
	db *gorm.DB
}

// NewGasTypeRepository creates a new gas type repository
func NewGasTypeRepository(gdb *gorm.DB) GasTypeRepository {
	return &gasTypeRepository{db: gdb}
}

func (r *gasTypeRepository) Create(ctx context.Context, gasType *models.GasType) error {
	if err := r.db.WithContext(ctx).Create(gasType).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *gasTypeRepository) GetByID(ctx context.Context, id uint) (*models.GasType, error) {
	var gasType models.GasType
	err := r.db.WithContext(ctx).First(&gasType, id).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &gasType, nil
}

func (r *gasTypeRepository) List(ctx context.Context) ([]models.GasType, error) {
	var gasTypes []models.GasType
	if err := r.db.WithContext(ctx).Order("name").Find(&gasTypes).Error; err != nil {
		return nil, err
	}
	return gasTypes, nil
}

func (r *gasTypeRepository) Update(ctx context.Context, gasType *models.GasType) error {
	err := r.db.WithContext(ctx).Save(gasType).Error
	if err != nil && db.IsUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *gasTypeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.GasType{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gasTypeRepository) InUse(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Cylinder{}).
		Where("gas_type_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
