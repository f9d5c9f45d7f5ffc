package feeder

import (
	"context"
	"sync/atomic"
	"time"

	"souk/common/telemetry"
	"souk/services/ingestion/internal/messaging"
	"souk/services/ingestion/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("souk/services/ingestion/feeder")

// Result is the outcome of feeding one posting. Reply holds the estimate
// when the feeder waits for replies.
type Result struct {
	JobID string
	Reply []byte
	Err   error
}

type Stats struct {
	Sent   int32
	Failed int32
}

// Feeder sends job postings to the estimation service.
type Feeder struct {
	publisher messaging.Publisher
	logger    *zap.Logger
	workers   int
	wait      bool
	timeout   time.Duration
}

// New returns a feeder using workers goroutines. With a positive timeout each
// posting is sent as a request and the estimate reply is collected.
func New(publisher messaging.Publisher, logger *zap.Logger, workers int, timeout time.Duration) *Feeder {
	if workers < 1 {
		workers = 1
	}
	return &Feeder{
		publisher: publisher,
		logger:    logger,
		workers:   workers,
		wait:      timeout > 0,
		timeout:   timeout,
	}
}

// Run feeds every posting and calls onResult for each outcome. onResult may
// be called concurrently.
func (f *Feeder) Run(ctx context.Context, postings []models.JobPosting, onResult func(Result)) Stats {
	ctx, span := tracer.Start(ctx, "Feeder.Run")
	defer span.End()

	var stats Stats
	postingChan := make(chan *models.JobPosting)

	wg := f.startWorkers(ctx, postingChan, func(r Result) {
		if r.Err != nil {
			atomic.AddInt32(&stats.Failed, 1)
		} else {
			atomic.AddInt32(&stats.Sent, 1)
		}
		if onResult != nil {
			onResult(r)
		}
	})

feed:
	for i := range postings {
		select {
		case postingChan <- &postings[i]:
		case <-ctx.Done():
			break feed
		}
	}
	close(postingChan)
	wg.Wait()

	span.SetAttributes(
		telemetry.Int("postings.sent", int(stats.Sent)),
		telemetry.Int("postings.failed", int(stats.Failed)),
	)
	f.logger.Info("completed feeding job postings",
		zap.Int("total", len(postings)),
		zap.Int32("sent", stats.Sent),
		zap.Int32("failed", stats.Failed))
	return stats
}

func (f *Feeder) send(ctx context.Context, posting *models.JobPosting) Result {
	ctx, span := tracer.Start(ctx, "Feeder.send")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", posting.JobID))

	if !f.wait {
		return Result{JobID: posting.JobID, Err: f.publisher.PublishJobPosting(ctx, posting)}
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	reply, err := f.publisher.RequestEstimate(ctx, posting)
	return Result{JobID: posting.JobID, Reply: reply, Err: err}
}
