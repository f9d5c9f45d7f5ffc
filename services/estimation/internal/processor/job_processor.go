package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"souk/common/cache"
	"souk/common/telemetry"
	"souk/services/estimation/internal/config"
	domainerrors "souk/services/estimation/internal/errors"
	"souk/services/estimation/internal/messaging"
	"souk/services/estimation/internal/models"
	"souk/services/estimation/internal/parser"
	"souk/services/estimation/internal/pricing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	estimateNamespace    = uuid.NewSHA1(uuid.NameSpaceURL, []byte("souk:job-estimate"))
	fingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("souk:job-estimate-inputs"))
)

// EstimateID returns the stable estimate identifier for a job.
func EstimateID(jobID string) string {
	return uuid.NewSHA1(estimateNamespace, []byte(jobID)).String()
}

// Fingerprint identifies the inputs an estimate was computed from. Equal
// fingerprints always produce equal estimates.
func Fingerprint(event models.JobPostedEvent) string {
	key := strings.Join([]string{event.Category, event.City, event.Timestamp, event.FreeText}, "\x1f")
	return uuid.NewSHA1(fingerprintNamespace, []byte(key)).String()
}

func estimateCacheKey(jobID string) string {
	return "estimate:" + jobID
}

type JobProcessor struct {
	logger     *zap.Logger
	store      EstimateStore
	cache      cache.Cache
	publisher  messaging.Publisher
	extractor  *parser.Extractor
	calculator *pricing.Calculator
	tracer     trace.Tracer
	config     *config.Config
	now        func() time.Time
}

func NewJobProcessor(
	logger *zap.Logger,
	store EstimateStore,
	c cache.Cache,
	publisher messaging.Publisher,
	extractor *parser.Extractor,
	calculator *pricing.Calculator,
	config *config.Config,
) *JobProcessor {
	return &JobProcessor{
		logger:     logger,
		store:      store,
		cache:      c,
		publisher:  publisher,
		extractor:  extractor,
		calculator: calculator,
		tracer:     telemetry.GetTracer("souk/estimation/processor"),
		config:     config,
		now:        time.Now,
	}
}

// ProcessJobPosted decodes a job event and returns the job's estimate,
// computing a new one only when the estimation inputs changed.
func (p *JobProcessor) ProcessJobPosted(ctx context.Context, rawData []byte) (*models.JobEstimate, error) {
	ctx, span := p.tracer.Start(ctx, "ProcessJobPosted")
	defer span.End()

	var event models.JobPostedEvent
	if err := json.Unmarshal(rawData, &event); err != nil {
		return nil, domainerrors.InvalidInput("decode job event", err)
	}
	event.JobID = strings.TrimSpace(event.JobID)
	if event.JobID == "" {
		return nil, domainerrors.InvalidInput("job event has no jobId", nil)
	}

	span.SetAttributes(
		telemetry.String("job.id", event.JobID),
		telemetry.String("job.category", event.Category),
	)

	estimate, err := p.Estimate(ctx, event)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return estimate, nil
}

// Estimate runs the engine for event unless the job's cached estimate was
// computed from identical inputs. The cache only holds estimates that were
// published, so a failed publish is retried on the next event.
func (p *JobProcessor) Estimate(ctx context.Context, event models.JobPostedEvent) (*models.JobEstimate, error) {
	ctx, span := p.tracer.Start(ctx, "Estimate")
	defer span.End()

	fingerprint := Fingerprint(event)
	previous := p.cachedEstimate(ctx, event.JobID)
	if previous != nil && previous.Fingerprint == fingerprint {
		span.SetAttributes(telemetry.Bool("estimate.reused", true))
		p.logger.Debug("Estimation inputs unchanged, reusing estimate",
			zap.String("job_id", event.JobID),
			zap.String("fingerprint", fingerprint),
		)
		return previous, nil
	}

	category := models.Category(event.Category)
	if !category.Valid() {
		p.logger.Warn("Unknown job category, using fallback estimate",
			zap.String("job_id", event.JobID),
			zap.String("category", event.Category),
		)
	}

	spec := p.extractor.Extract(event.FreeText, category)
	band := p.calculator.Estimate(pricing.Request{
		City:     event.City,
		Category: category,
		Time:     event.Timestamp,
		Km:       spec.Km,
		Pax:      spec.Pax,
	})

	now := p.now().UTC()
	estimate := &models.JobEstimate{
		ID:          EstimateID(event.JobID),
		JobID:       event.JobID,
		Category:    category,
		City:        event.City,
		RequestedAt: event.Timestamp,
		Fingerprint: fingerprint,
		Spec:        spec,
		PriceBand:   band,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if previous == nil {
		previous = p.storedEstimate(ctx, event.JobID)
	}
	if previous != nil && !previous.CreatedAt.IsZero() {
		estimate.CreatedAt = previous.CreatedAt
	}

	span.SetAttributes(
		telemetry.Int("band.low", band.Low),
		telemetry.Int("band.high", band.High),
		telemetry.Float64("band.surge", band.Factors.Surge),
	)

	if err := p.store.SaveEstimate(ctx, *estimate); err != nil {
		p.logger.Error("Failed to store job estimate", zap.String("job_id", event.JobID), zap.Error(err))
		return nil, fmt.Errorf("store job estimate: %w", err)
	}

	if err := p.publisher.PublishEstimate(ctx, estimate); err != nil {
		p.logger.Error("Failed to publish job estimate", zap.String("job_id", event.JobID), zap.Error(err))
		return nil, fmt.Errorf("publish job estimate: %w", err)
	}

	if err := p.cache.Set(ctx, estimateCacheKey(event.JobID), estimate, p.config.CacheTTL); err != nil {
		p.logger.Warn("Failed to cache job estimate", zap.String("job_id", event.JobID), zap.Error(err))
	}

	p.logger.Info("Estimated job",
		zap.String("job_id", event.JobID),
		zap.String("category", event.Category),
		zap.Int("low", band.Low),
		zap.Int("high", band.High),
		zap.Float64("surge", band.Factors.Surge),
	)
	return estimate, nil
}

// cachedEstimate treats lookup failures as a miss so the job is re-estimated.
func (p *JobProcessor) cachedEstimate(ctx context.Context, jobID string) *models.JobEstimate {
	var cached models.JobEstimate
	err := p.cache.Get(ctx, estimateCacheKey(jobID), &cached)
	if err == nil {
		return &cached
	}
	if !errors.Is(err, cache.ErrNotFound) {
		p.logger.Warn("Failed to read cached estimate", zap.String("job_id", jobID), zap.Error(err))
	}
	return nil
}

// storedEstimate returns the last persisted estimate. It may never have been
// published, so it only supplies CreatedAt.
func (p *JobProcessor) storedEstimate(ctx context.Context, jobID string) *models.JobEstimate {
	stored, err := p.store.LatestEstimate(ctx, jobID)
	if err != nil {
		if !domainerrors.IsType(err, domainerrors.ErrTypeNotFound) {
			p.logger.Warn("Failed to load stored estimate", zap.String("job_id", jobID), zap.Error(err))
		}
		return nil
	}
	return stored
}
