package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"souk/common/telemetry"
	domainerrors "souk/services/estimation/internal/errors"
	"souk/services/estimation/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EstimateRepository persists estimates and offer rankings in ClickHouse.
type EstimateRepository struct {
	logger *zap.Logger
	db     clickhouse.Conn
	tracer trace.Tracer
}

func NewEstimateRepository(logger *zap.Logger, db clickhouse.Conn) *EstimateRepository {
	return &EstimateRepository{
		logger: logger,
		db:     db,
		tracer: telemetry.GetTracer("souk/estimation/repository"),
	}
}

func (r *EstimateRepository) SaveEstimate(ctx context.Context, e models.JobEstimate) error {
	ctx, span := r.tracer.Start(ctx, "SaveEstimate")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", e.JobID))

	query := `
		INSERT INTO job_estimates (
			id, job_id, category, city, requested_at, fingerprint,
			description, pickup, dropoff, pax, preferred_time, km,
			band_low, band_high, currency, factor_base, factor_surge,
			factor_distance, created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	var pax *int32
	if e.Spec.Pax != nil {
		v := int32(*e.Spec.Pax)
		pax = &v
	}

	if err := r.db.Exec(ctx, query,
		e.ID,
		e.JobID,
		string(e.Category),
		e.City,
		e.RequestedAt,
		e.Fingerprint,
		e.Spec.Description,
		e.Spec.Pickup,
		e.Spec.Dropoff,
		pax,
		e.Spec.PreferredTime,
		e.Spec.Km,
		int64(e.PriceBand.Low),
		int64(e.PriceBand.High),
		e.PriceBand.Currency,
		e.PriceBand.Factors.Base,
		e.PriceBand.Factors.Surge,
		e.PriceBand.Factors.Distance,
		e.CreatedAt,
		e.UpdatedAt,
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("insert job estimate: %w", err)
	}

	return nil
}

// LatestEstimate loads the most recent estimate stored for jobID.
func (r *EstimateRepository) LatestEstimate(ctx context.Context, jobID string) (*models.JobEstimate, error) {
	ctx, span := r.tracer.Start(ctx, "LatestEstimate")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", jobID))

	query := `
		SELECT
			id, job_id, category, city, requested_at, toString(fingerprint),
			description, pickup, dropoff, pax, preferred_time, km,
			band_low, band_high, currency, factor_base, factor_surge,
			factor_distance, created_at, updated_at
		FROM job_estimates FINAL
		WHERE job_id = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var (
		e         models.JobEstimate
		id        string
		category  string
		pax       *int32
		low, high int64
	)
	err := r.db.QueryRow(ctx, query, jobID).Scan(
		&id,
		&e.JobID,
		&category,
		&e.City,
		&e.RequestedAt,
		&e.Fingerprint,
		&e.Spec.Description,
		&e.Spec.Pickup,
		&e.Spec.Dropoff,
		&pax,
		&e.Spec.PreferredTime,
		&e.Spec.Km,
		&low,
		&high,
		&e.PriceBand.Currency,
		&e.PriceBand.Factors.Base,
		&e.PriceBand.Factors.Surge,
		&e.PriceBand.Factors.Distance,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFound("no estimate for job "+jobID, err)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("select job estimate: %w", err)
	}

	e.ID = id
	e.Category = models.Category(category)
	e.PriceBand.Low = int(low)
	e.PriceBand.High = int(high)
	if pax != nil {
		v := int(*pax)
		e.Spec.Pax = &v
	}
	return &e, nil
}

// SaveRanking records the order in which offers were presented for a job.
// Offers are expected to carry the positions assigned by ranking.
func (r *EstimateRepository) SaveRanking(ctx context.Context, jobID string, offers []models.Offer, rankedAt time.Time) error {
	if len(offers) == 0 {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "SaveRanking")
	defer span.End()
	span.SetAttributes(
		telemetry.String("job.id", jobID),
		telemetry.Int("offers.count", len(offers)),
	)

	batch, err := r.db.PrepareBatch(ctx, "INSERT INTO offer_rankings (job_id, offer_id, position, score, price, ranked_at)")
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("prepare ranking batch: %w", err)
	}

	for _, o := range offers {
		if err := batch.Append(jobID, o.ID, uint32(o.Position), o.Score(), o.Price, rankedAt); err != nil {
			_ = batch.Abort()
			span.RecordError(err)
			return fmt.Errorf("append offer %s: %w", o.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("send ranking batch: %w", err)
	}

	r.logger.Debug("Recorded offer ranking",
		zap.String("job_id", jobID),
		zap.Int("offers", len(offers)),
	)
	return nil
}
