package messaging

import (
	"context"
	"encoding/json"

	"souk/common/telemetry"
	"souk/services/estimation/internal/errors"
	"souk/services/estimation/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("souk/estimation/messaging")

type Publisher interface {
	PublishEstimate(ctx context.Context, estimate *models.JobEstimate) error
}

// MsgPublisher is the subset of *nats.Conn used for publishing.
type MsgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

type natsPublisher struct {
	conn   MsgPublisher
	logger *zap.Logger
}

// NewPublisher publishes on an existing connection. The connection is owned
// by the caller.
func NewPublisher(logger *zap.Logger, conn MsgPublisher) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}
}

func (p *natsPublisher) PublishEstimate(ctx context.Context, estimate *models.JobEstimate) error {
	ctx, span := tracer.Start(ctx, "PublishEstimate")
	defer span.End()

	data, err := json.Marshal(estimate)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling job estimate", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", JobEstimatedSubject),
		telemetry.Int("message.size", len(data)),
		telemetry.String("job.id", estimate.JobID),
	)

	msg := nats.NewMsg(JobEstimatedSubject)
	msg.Data = data
	InjectTraceContext(ctx, msg)

	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish job estimate",
			zap.String("job_id", estimate.JobID),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published job estimate",
		zap.String("job_id", estimate.JobID),
		zap.Int("low", estimate.PriceBand.Low),
		zap.Int("high", estimate.PriceBand.High),
		zap.String("subject", JobEstimatedSubject))
	return nil
}
