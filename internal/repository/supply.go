package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"example.com/backstage/services/cylinder/internal/db"
	"example.com/backstage/services/cylinder/internal/models"
)

// HospitalRevenue is a per-hospital revenue aggregate row.
type HospitalRevenue struct {
	HospitalName string  `json:"hospital_name"`
	Deliveries   int64   `json:"deliveries"`
	Revenue      float64 `json:"revenue"`
}

// SupplyRepository defines the interface for supply persistence
type SupplyRepository interface {
	Create(ctx context.Context, supply *models.Supply) error
	CreateDetail(ctx context.Context, detail *models.SupplyDetail) error
	GetByID(ctx context.Context, id uint) (*models.Supply, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error)
	RevenueBetween(ctx context.Context, start, end time.Time) (float64, error)
	RevenueByHospitalBetween(ctx context.Context, start, end time.Time) ([]HospitalRevenue, error)
}

type supplyRepository struct {
	db *gorm.DB
}

// NewSupplyRepository creates a new supply repository
func NewSupplyRepository(gdb *gorm.DB) SupplyRepository {
	return &supplyRepository{db: gdb}
}

func (r *supplyRepository) Create(ctx context.Context, supply *models.Supply) error {
	return r.db.WithContext(ctx).Omit("Details").Create(supply).Error
}

func (r *supplyRepository) CreateDetail(ctx context.Context, detail *models.SupplyDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *supplyRepository) GetByID(ctx context.Context, id uint) (*models.Supply, error) {
	var supply models.Supply
	err := r.db.WithContext(ctx).Preload("Details").First(&supply, id).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &supply, nil
}

func (r *supplyRepository) ListBetween(ctx context.Context, start, end time.Time) ([]models.Supply, error) {
	var supplies []models.Supply
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("date >= ? AND date < ?", start, end).
		Order("date DESC").
		Find(&supplies).Error
	if err != nil {
		return nil, err
	}
	return supplies, nil
}

func (r *supplyRepository) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).
		Model(&models.Supply{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("date >= ? AND date < ?", start, end).
		Scan(&revenue).Error
	if err != nil {
		return 0, err
	}
	return revenue, nil
}

func (r *supplyRepository) RevenueByHospitalBetween(ctx context.Context, start, end time.Time) ([]HospitalRevenue, error) {
	var rows []HospitalRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Supply{}).
		Select("hospital_name, count(*) as deliveries, COALESCE(SUM(total_price), 0) as revenue").
		Where("date >= ? AND date < ?", start, end).
		Group("hospital_name").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
