package messaging

import (
	"context"
	"encoding/json"

	"souk/common/telemetry"
	"souk/services/ingestion/internal/errors"
	"souk/services/ingestion/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("souk/services/ingestion/messaging")

const (
	JobPostedSubject = "jobs.posted"
)

type Publisher interface {
	// PublishJobPosting fires the posting at the estimation service.
	PublishJobPosting(ctx context.Context, posting *models.JobPosting) error
	// RequestEstimate sends the posting and waits for the estimate reply.
	RequestEstimate(ctx context.Context, posting *models.JobPosting) ([]byte, error)
	Close()
}

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subj string, data []byte) error
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
	Close()
}

type natsPublisher struct {
	conn   Conn
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger, conn Conn) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}
}

func encode(posting *models.JobPosting) ([]byte, error) {
	data, err := posting.MarshalBinary()
	if err != nil {
		return nil, errors.Internal("marshaling job posting", err)
	}
	return data, nil
}

func (p *natsPublisher) PublishJobPosting(ctx context.Context, posting *models.JobPosting) error {
	_, span := tracer.Start(ctx, "PublishJobPosting")
	defer span.End()

	data, err := encode(posting)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		telemetry.String("nats.subject", JobPostedSubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(JobPostedSubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish job posting",
			zap.String("job_id", posting.JobID),
			zap.Error(err))
		return errors.Internal("publishing to NATS", err)
	}

	p.logger.Debug("published job posting",
		zap.String("job_id", posting.JobID),
		zap.String("subject", JobPostedSubject))
	return nil
}

func (p *natsPublisher) RequestEstimate(ctx context.Context, posting *models.JobPosting) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "RequestEstimate")
	defer span.End()

	data, err := encode(posting)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	msg, err := p.conn.RequestWithContext(ctx, JobPostedSubject, data)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Unavailable("requesting estimate", err)
	}

	var reply struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg.Data, &reply); err == nil && reply.Error != "" {
		return nil, errors.Internal("estimation failed for job "+posting.JobID, errors.Remote(reply.Error))
	}
	return msg.Data, nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
