package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"souk/services/estimation/internal/config"
	domainerrors "souk/services/estimation/internal/errors"
	"souk/services/estimation/internal/messaging"
	"souk/services/estimation/internal/models"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type JobEstimator interface {
	ProcessJobPosted(ctx context.Context, rawData []byte) (*models.JobEstimate, error)
}

type OfferRanker interface {
	ProcessRankRequest(ctx context.Context, rawData []byte) (*models.RankResponse, error)
}

// Subscriber is the subset of *nats.Conn the handler subscribes with.
type Subscriber interface {
	ChanQueueSubscribe(subj, queue string, ch chan *nats.Msg) (*nats.Subscription, error)
}

type Handler struct {
	logger    *zap.Logger
	nc        Subscriber
	tracer    trace.Tracer
	estimator JobEstimator
	ranker    OfferRanker
	config    *config.Config

	msgs    chan *nats.Msg
	done    chan struct{}
	stop    sync.Once
	subs    []*nats.Subscription
	pool    *workerPool
	respond func(msg *nats.Msg, data []byte) error
}

func NewHandler(logger *zap.Logger, nc Subscriber, tracer trace.Tracer, estimator JobEstimator, ranker OfferRanker, config *config.Config) *Handler {
	return &Handler{
		logger:    logger,
		nc:        nc,
		tracer:    tracer,
		estimator: estimator,
		ranker:    ranker,
		config:    config,
		msgs:      make(chan *nats.Msg, config.WorkerBuffer),
		done:      make(chan struct{}),
		pool:      newWorkerPool(config.WorkerCount, logger),
		respond: func(msg *nats.Msg, data []byte) error {
			return msg.Respond(data)
		},
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	subjects := []string{
		messaging.JobPostedSubject,
		messaging.JobUpdatedSubject,
		messaging.OffersRankSubject,
	}

	for _, subject := range subjects {
		sub, err := h.nc.ChanQueueSubscribe(subject, h.config.NATSQueueGroup, h.msgs)
		if err != nil {
			h.unsubscribe()
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		h.subs = append(h.subs, sub)
	}

	h.pool.start(h.msgs, h.done, h.HandleMsg)
	h.logger.Info("Registered NATS subscriptions",
		zap.Strings("subjects", subjects),
		zap.String("queue", h.config.NATSQueueGroup),
	)

	lc.Append(fx.Hook{
		OnStop: h.Stop,
	})

	return nil
}

// Stop unsubscribes, lets the workers finish buffered messages and waits for
// them until ctx expires.
func (h *Handler) Stop(ctx context.Context) error {
	h.unsubscribe()
	h.stop.Do(func() { close(h.done) })

	finished := make(chan struct{})
	go func() {
		h.pool.wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers: %w", ctx.Err())
	}
}

func (h *Handler) unsubscribe() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Warn("Failed to unsubscribe",
				zap.String("subject", sub.Subject),
				zap.Error(err))
		}
	}
	h.subs = nil
}

// HandleMsg dispatches one message by subject.
func (h *Handler) HandleMsg(msg *nats.Msg) {
	ctx := messaging.ExtractTraceContext(context.Background(), msg)
	if h.config.ProcessingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.ProcessingTimeout)
		defer cancel()
	}

	switch msg.Subject {
	case messaging.JobPostedSubject, messaging.JobUpdatedSubject:
		h.handleJobPosted(ctx, msg)
	case messaging.OffersRankSubject:
		h.handleRankRequest(ctx, msg)
	default:
		h.logger.Warn("Dropping message on unexpected subject", zap.String("subject", msg.Subject))
	}
}

func (h *Handler) handleJobPosted(ctx context.Context, msg *nats.Msg) {
	ctx, span := h.tracer.Start(ctx, "handleJobPosted")
	defer span.End()

	start := time.Now()
	estimate, err := h.estimator.ProcessJobPosted(ctx, msg.Data)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to process job posting",
			zap.Error(err),
			zap.String("subject", msg.Subject),
			zap.String("error_type", string(domainerrors.TypeOf(err))),
		)
		h.reply(msg, errorReply(err))
		return
	}

	h.logger.Info("Successfully processed job posting",
		zap.String("subject", msg.Subject),
		zap.String("job_id", estimate.JobID),
		zap.Duration("took", time.Since(start)),
	)
	h.reply(msg, estimate)
}

func (h *Handler) handleRankRequest(ctx context.Context, msg *nats.Msg) {
	ctx, span := h.tracer.Start(ctx, "handleRankRequest")
	defer span.End()

	resp, err := h.ranker.ProcessRankRequest(ctx, msg.Data)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to rank offers",
			zap.Error(err),
			zap.String("error_type", string(domainerrors.TypeOf(err))),
		)
		h.reply(msg, errorReply(err))
		return
	}
	h.reply(msg, resp)
}

// reply answers request/reply callers. Plain publishes have no reply subject
// and are left alone.
func (h *Handler) reply(msg *nats.Msg, v any) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}
	if err := h.respond(msg, data); err != nil {
		h.logger.Warn("Failed to send reply",
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}

func errorReply(err error) models.ErrorReply {
	return models.ErrorReply{
		Error: err.Error(),
		Type:  string(domainerrors.TypeOf(err)),
	}
}
