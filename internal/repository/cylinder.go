package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/backstage/services/cylinder/internal/db"
	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/models"
)

// CylinderFilter narrows a cylinder listing.
type CylinderFilter struct {
	Status *lifecycle.Status
	// Day restricts status-filtered listings to cylinders last touched on
	// that calendar day. Ignored when All is set.
	Day *time.Time
	All bool
}

// CylinderRepository defines the interface for cylinder persistence
type CylinderRepository interface {
	Create(ctx context.Context, cylinder *models.Cylinder) error
	GetByID(ctx context.Context, id uint) (*models.Cylinder, error)
	GetByCode(ctx context.Context, code string) (*models.Cylinder, error)
	// LockByID loads a cylinder with a row-level lock (SELECT ... FOR
	// UPDATE). Only meaningful inside a transaction.
	LockByID(ctx context.Context, id uint) (*models.Cylinder, error)
	List(ctx context.Context, filter CylinderFilter) ([]models.Cylinder, error)
	Update(ctx context.Context, cylinder *models.Cylinder) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[lifecycle.Status]int64, error)
	ReferencedBySupply(ctx context.Context, code string) (bool, error)
}

type cylinderRepository struct {
	db *gorm.DB
}

// NewCylinderRepository creates a new cylinder repository
func NewCylinderRepository(gdb *gorm.DB) CylinderRepository {
	return &cylinderRepository{db: gdb}
}

func (r *cylinderRepository) Create(ctx context.Context, cylinder *models.Cylinder) error {
	if err := r.db.WithContext(ctx).Create(cylinder).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *cylinderRepository) GetByID(ctx context.Context, id uint) (*models.Cylinder, error) {
	var cylinder models.Cylinder
	err := r.db.WithContext(ctx).Preload("GasType").First(&cylinder, id).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cylinder, nil
}

func (r *cylinderRepository) GetByCode(ctx context.Context, code string) (*models.Cylinder, error) {
	var cylinder models.Cylinder
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&cylinder).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cylinder, nil
}

func (r *cylinderRepository) LockByID(ctx context.Context, id uint) (*models.Cylinder, error) {
	var cylinder models.Cylinder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cylinder, id).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cylinder, nil
}

func (r *cylinderRepository) List(ctx context.Context, filter CylinderFilter) ([]models.Cylinder, error) {
	query := r.db.WithContext(ctx).Preload("GasType").Order("code")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)

		if !filter.All {
			day := time.Now()
			if filter.Day != nil {
				day = *filter.Day
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
			query = query.Where("updated_at >= ? AND updated_at < ?", start, start.AddDate(0, 0, 1))
		}
	}

	var cylinders []models.Cylinder
	if err := query.Find(&cylinders).Error; err != nil {
		return nil, err
	}
	return cylinders, nil
}

func (r *cylinderRepository) Update(ctx context.Context, cylinder *models.Cylinder) error {
	// Save writes all fields, including zero-valued ones such as a cleared
	// gas type reference or a false active flag.
	err := r.db.WithContext(ctx).Save(cylinder).Error
	if err != nil && db.IsUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *cylinderRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Cylinder{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cylinderRepository) CountByStatus(ctx context.Context) (map[lifecycle.Status]int64, error) {
	type row struct {
		Status lifecycle.Status
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Cylinder{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[lifecycle.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func (r *cylinderRepository) ReferencedBySupply(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SupplyDetail{}).
		Where("cylinder_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
