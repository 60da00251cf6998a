package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"example.com/backstage/services/cylinder/internal/history"
	"example.com/backstage/services/cylinder/internal/repository"
)

// IndexBackfillService re-indexes history rows whose inline search indexing
// failed. It runs from the background worker as a fallback mechanism.
type IndexBackfillService interface {
	Backfill(ctx context.Context, batchSize int) (int, error)
}

type indexBackfillService struct {
	manager repository.Manager
	indexer history.TransitionIndexer
}

// NewIndexBackfillService creates a new index backfill service
func NewIndexBackfillService(manager repository.Manager, indexer history.TransitionIndexer) IndexBackfillService {
	return &indexBackfillService{
		manager: manager,
		indexer: indexer,
	}
}

// Backfill indexes up to batchSize unindexed history rows and returns how
// many were indexed. Rows that fail stay unindexed for the next run.
func (s *indexBackfillService) Backfill(ctx context.Context, batchSize int) (int, error) {
	if s.indexer == nil || !s.indexer.Enabled() {
		return 0, nil
	}

	repos := s.manager.Repos()

	entries, err := repos.History.ListUnindexed(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	var indexed []uint
	for i := range entries {
		if err := s.indexer.IndexTransition(ctx, &entries[i]); err != nil {
			log.Warn().Err(err).Uint("history_id", entries[i].ID).Msg("Failed to backfill transition index")
			continue
		}
		indexed = append(indexed, entries[i].ID)
	}

	if err := repos.History.MarkIndexed(ctx, indexed); err != nil {
		return 0, err
	}
	return len(indexed), nil
}
