package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/models"
)

// HistoryRepository defines the interface for the status-transition audit log
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.CylinderStatusHistory) error
	// TableExists probes for the history table. Resolved once at startup to
	// pick between event-based and snapshot-based reporting.
	TableExists(ctx context.Context) (bool, error)
	CountTransitionsBetween(ctx context.Context, start, end time.Time) (map[lifecycle.Status]int64, error)
	ListForCylinder(ctx context.Context, cylinderID uint) ([]models.CylinderStatusHistory, error)
	ListUnindexed(ctx context.Context, limit int) ([]models.CylinderStatusHistory, error)
	MarkIndexed(ctx context.Context, ids []uint) error
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(gdb *gorm.DB) HistoryRepository {
	return &historyRepository{db: gdb}
}

func (r *historyRepository) Append(ctx context.Context, entry *models.CylinderStatusHistory) error {
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepository) TableExists(ctx context.Context) (bool, error) {
	return r.db.WithContext(ctx).Migrator().HasTable(&models.CylinderStatusHistory{}), nil
}

func (r *historyRepository) CountTransitionsBetween(ctx context.Context, start, end time.Time) (map[lifecycle.Status]int64, error) {
	type row struct {
		NewStatus lifecycle.Status
		Total     int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.CylinderStatusHistory{}).
		Select("new_status, count(*) as total").
		Where("changed_at >= ? AND changed_at < ?", start, end).
		Group("new_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[lifecycle.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.NewStatus] = r.Total
	}
	return counts, nil
}

func (r *historyRepository) ListForCylinder(ctx context.Context, cylinderID uint) ([]models.CylinderStatusHistory, error) {
	var entries []models.CylinderStatusHistory
	err := r.db.WithContext(ctx).
		Where("cylinder_id = ?", cylinderID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) ListUnindexed(ctx context.Context, limit int) ([]models.CylinderStatusHistory, error) {
	var entries []models.CylinderStatusHistory
	err := r.db.WithContext(ctx).
		Where("indexed = ?", false).
		Order("id").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) MarkIndexed(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.CylinderStatusHistory{}).
		Where("id IN ?", ids).
		Update("indexed", true).Error
}
