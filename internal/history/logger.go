package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/backstage/services/cylinder/internal/lifecycle"
	"example.com/backstage/services/cylinder/internal/messaging"
	"example.com/backstage/services/cylinder/internal/models"
	"example.com/backstage/services/cylinder/internal/repository"
)

// Capability captures whether the history table is available. It is resolved
// once at startup rather than re-probed on every request; reporting uses it
// to pick between event-based and snapshot-based aggregation.
type Capability struct {
	TableAvailable bool
}

// ResolveCapability probes the history table once.
func ResolveCapability(ctx context.Context, repo repository.HistoryRepository) Capability {
	exists, err := repo.TableExists(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to probe status history table, assuming absent")
		return Capability{TableAvailable: false}
	}
	if !exists {
		log.Warn().Msg("Status history table absent, reporting will run in snapshot fallback mode")
	}
	return Capability{TableAvailable: exists}
}

// TransitionIndexer mirrors transition events into the search index.
type TransitionIndexer interface {
	Enabled() bool
	IndexTransition(ctx context.Context, entry *models.CylinderStatusHistory) error
}

// Logger appends status transitions to the audit log. Every write is
// best-effort: failures are logged and swallowed so the primary cylinder or
// supply mutation never depends on bookkeeping succeeding.
type Logger struct {
	repo       repository.HistoryRepository
	indexer    TransitionIndexer
	publisher  messaging.Publisher
	capability Capability
}

// NewLogger creates a status history logger.
func NewLogger(repo repository.HistoryRepository, indexer TransitionIndexer, publisher messaging.Publisher, capability Capability) *Logger {
	return &Logger{
		repo:       repo,
		indexer:    indexer,
		publisher:  publisher,
		capability: capability,
	}
}

// TransitionEvent is the published shape of a status transition.
type TransitionEvent struct {
	CylinderID     uint             `json:"cylinder_id"`
	PreviousStatus lifecycle.Status `json:"previous_status"`
	NewStatus      lifecycle.Status `json:"new_status"`
	Source         string           `json:"source"`
	ChangedAt      time.Time        `json:"changed_at"`
}

// Record appends one transition to the history log and mirrors it to the
// search index and the event queue. It never returns an error.
func (l *Logger) Record(ctx context.Context, cylinderID uint, from, to lifecycle.Status, source string) {
	changedAt := time.Now()

	if l.capability.TableAvailable {
		entry := &models.CylinderStatusHistory{
			CylinderID:     cylinderID,
			PreviousStatus: from,
			NewStatus:      to,
			Source:         source,
			ChangedAt:      changedAt,
		}

		if err := l.repo.Append(ctx, entry); err != nil {
			log.Warn().Err(err).
				Uint("cylinder_id", cylinderID).
				Str("from", string(from)).
				Str("to", string(to)).
				Msg("Failed to append status history, continuing")
		} else if l.indexer != nil && l.indexer.Enabled() {
			if err := l.indexer.IndexTransition(ctx, entry); err != nil {
				log.Warn().Err(err).
					Uint("history_id", entry.ID).
					Msg("Failed to index status transition, worker will retry")
			} else if err := l.repo.MarkIndexed(ctx, []uint{entry.ID}); err != nil {
				log.Warn().Err(err).
					Uint("history_id", entry.ID).
					Msg("Failed to mark history row indexed")
			}
		}
	}

	if l.publisher != nil {
		event := TransitionEvent{
			CylinderID:     cylinderID,
			PreviousStatus: from,
			NewStatus:      to,
			Source:         source,
			ChangedAt:      changedAt,
		}
		if err := l.publisher.Publish(ctx, event); err != nil {
			log.Warn().Err(err).
				Uint("cylinder_id", cylinderID).
				Msg("Failed to publish status transition event")
		}
	}
}

// Capability returns the capability resolved at construction.
func (l *Logger) Capability() Capability {
	return l.capability
}
