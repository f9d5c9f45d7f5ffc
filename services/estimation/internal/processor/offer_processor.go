package processor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"souk/common/telemetry"
	domainerrors "souk/services/estimation/internal/errors"
	"souk/services/estimation/internal/models"
	"souk/services/estimation/internal/ranking"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OfferProcessor struct {
	logger *zap.Logger
	store  RankingStore
	scorer ranking.Scorer
	tracer trace.Tracer
	now    func() time.Time
}

func NewOfferProcessor(logger *zap.Logger, store RankingStore, scorer ranking.Scorer) *OfferProcessor {
	return &OfferProcessor{
		logger: logger,
		store:  store,
		scorer: scorer,
		tracer: telemetry.GetTracer("souk/estimation/processor"),
		now:    time.Now,
	}
}

// ProcessRankRequest orders a job's offers for display. With a scorer every
// offer is ordered by its score against the band, otherwise by its AIScore.
// Recording the ranking is best effort and never fails the request.
func (p *OfferProcessor) ProcessRankRequest(ctx context.Context, rawData []byte) (*models.RankResponse, error) {
	ctx, span := p.tracer.Start(ctx, "ProcessRankRequest")
	defer span.End()

	var req models.RankRequest
	if err := json.Unmarshal(rawData, &req); err != nil {
		return nil, domainerrors.InvalidInput("decode rank request", err)
	}
	req.JobID = strings.TrimSpace(req.JobID)
	if req.JobID == "" {
		return nil, domainerrors.InvalidInput("rank request has no jobId", nil)
	}

	span.SetAttributes(
		telemetry.String("job.id", req.JobID),
		telemetry.Int("offers.count", len(req.Offers)),
	)

	ranked := ranking.ScoreAndRank(req.Offers, req.PriceBand, p.scorer)

	if err := p.store.SaveRanking(ctx, req.JobID, ranked, p.now().UTC()); err != nil {
		span.RecordError(err)
		p.logger.Warn("Failed to record offer ranking",
			zap.String("job_id", req.JobID),
			zap.Error(err),
		)
	}

	p.logger.Debug("Ranked offers",
		zap.String("job_id", req.JobID),
		zap.Int("offers", len(ranked)),
	)
	return &models.RankResponse{JobID: req.JobID, Offers: ranked}, nil
}
