package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/backstage/services/cylinder/internal/cache"
	"example.com/backstage/services/cylinder/internal/history"
	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/repository"
)

const reportCacheTTL = 5 * time.Minute

// Report periods
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// Report source modes. History-based numbers count actual transitions in the
// window; the snapshot fallback counts current statuses and is less precise.
const (
	ReportSourceHistory  = "history"
	ReportSourceSnapshot = "snapshot"
)

// CylinderReport aggregates lifecycle activity and revenue over a period.
type CylinderReport struct {
	Period       string                       `json:"period"`
	Source       string                       `json:"source"`
	From         time.Time                    `json:"from"`
	To           time.Time                    `json:"to"`
	StatusCounts map[lifecycle.Status]int64   `json:"status_counts"`
	TotalRevenue float64                      `json:"total_revenue"`
	Hospitals    []repository.HospitalRevenue `json:"hospitals"`
	GeneratedAt  time.Time                    `json:"generated_at"`
}

// ReportService defines reporting operations
type ReportService interface {
	CylinderReport(ctx context.Context, period string) (*CylinderReport, error)
	// WarmCache refreshes the cached report for every period. Called by the
	// background worker.
	WarmCache(ctx context.Context) error
}

type reportService struct {
	manager    repository.Manager
	cache      *cache.RedisCache
	capability history.Capability
}

// NewReportService creates a new report service
func NewReportService(manager repository.Manager, redisCache *cache.RedisCache, capability history.Capability) ReportService {
	return &reportService{
		manager:    manager,
		cache:      redisCache,
		capability: capability,
	}
}

func (s *reportService) CylinderReport(ctx context.Context, period string) (*CylinderReport, error) {
	start, end, err := periodWindow(period, time.Now())
	if err != nil {
		return nil, err
	}

	var cached CylinderReport
	if err := s.cache.Get(ctx, cache.ReportCacheKey(period), &cached); err == nil {
		return &cached, nil
	}

	report, err := s.build(ctx, period, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.ReportCacheKey(period), report, reportCacheTTL); err != nil {
		log.Warn().Err(err).Str("period", period).Msg("Failed to cache report")
	}
	return report, nil
}

func (s *reportService) WarmCache(ctx context.Context) error {
	for _, period := range []string{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear} {
		start, end, err := periodWindow(period, time.Now())
		if err != nil {
			return err
		}
		report, err := s.build(ctx, period, start, end)
		if err != nil {
			return err
		}
		if err := s.cache.Set(ctx, cache.ReportCacheKey(period), report, reportCacheTTL); err != nil {
			log.Warn().Err(err).Str("period", period).Msg("Failed to warm report cache")
		}
	}
	return nil
}

// build assembles a report. When the history table is available the status
// counts are transition events within the window; otherwise the report falls
// back to a snapshot of current statuses and says so in the Source field.
func (s *reportService) build(ctx context.Context, period string, start, end time.Time) (*CylinderReport, error) {
	repos := s.manager.Repos()

	report := &CylinderReport{
		Period:      period,
		From:        start,
		To:          end,
		GeneratedAt: time.Now(),
	}

	if s.capability.TableAvailable {
		counts, err := repos.History.CountTransitionsBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		report.Source = ReportSourceHistory
		report.StatusCounts = counts
	} else {
		counts, err := repos.Cylinders.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
		report.Source = ReportSourceSnapshot
		report.StatusCounts = counts
	}

	revenue, err := repos.Supplies.RevenueBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	report.TotalRevenue = revenue

	hospitals, err := repos.Supplies.RevenueByHospitalBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	report.Hospitals = hospitals

	return report, nil
}

// periodWindow resolves a report period to a [start, end) window ending now.
func periodWindow(period string, now time.Time) (time.Time, time.Time, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodDay:
		return dayStart, dayStart.AddDate(0, 0, 1), nil
	case PeriodWeek:
		offset := (int(now.Weekday()) + 6) % 7 // week starts Monday
		weekStart := dayStart.AddDate(0, 0, -offset)
		return weekStart, weekStart.AddDate(0, 0, 7), nil
	case PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, monthStart.AddDate(0, 1, 0), nil
	case PeriodYear:
		yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return yearStart, yearStart.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, NewValidationError("invalid report period %q", period)
	}
}
