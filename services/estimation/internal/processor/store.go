package processor

import (
	"context"
	"time"

	"souk/services/estimation/internal/models"
)

// EstimateStore persists engine output. The ClickHouse repository is the
// production implementation.
type EstimateStore interface {
	SaveEstimate(ctx context.Context, estimate models.JobEstimate) error
	LatestEstimate(ctx context.Context, jobID string) (*models.JobEstimate, error)
}

// RankingStore records presented offer orderings.
type RankingStore interface {
	SaveRanking(ctx context.Context, jobID string, offers []models.Offer, rankedAt time.Time) error
}
