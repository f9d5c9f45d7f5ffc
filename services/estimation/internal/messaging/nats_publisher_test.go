package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	domainerrors "souk/services/estimation/internal/errors"
	"souk/services/estimation/internal/messaging"
	"souk/services/estimation/internal/models"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"
)

type recordingConn struct {
	msgs []*nats.Msg
	err  error
}

func (r *recordingConn) PublishMsg(msg *nats.Msg) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestPublishEstimate(t *testing.T) {
	conn := &recordingConn{}
	pub := messaging.NewPublisher(zaptest.NewLogger(t), conn)

	est := &models.JobEstimate{
		JobID:     "job-1",
		PriceBand: models.PriceBand{Low: 128, High: 200, Currency: "MAD"},
	}
	if err := pub.PublishEstimate(context.Background(), est); err != nil {
		t.Fatalf("PublishEstimate() error = %v", err)
	}
	if len(conn.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(conn.msgs))
	}
	msg := conn.msgs[0]
	if msg.Subject != messaging.JobEstimatedSubject {
		t.Errorf("subject = %q", msg.Subject)
	}
	var got models.JobEstimate
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.JobID != "job-1" || got.PriceBand.High != 200 {
		t.Errorf("payload = %+v", got)
	}
}

func TestPublishEstimate_Unavailable(t *testing.T) {
	pub := messaging.NewPublisher(zaptest.NewLogger(t), &recordingConn{err: nats.ErrConnectionClosed})

	err := pub.PublishEstimate(context.Background(), &models.JobEstimate{JobID: "job-1"})
	if !domainerrors.IsType(err, domainerrors.ErrTypeUnavailable) {
		t.Errorf("error = %v, want UNAVAILABLE", err)
	}
	if !errors.Is(err, nats.ErrConnectionClosed) {
		t.Errorf("error = %v, want wrapped ErrConnectionClosed", err)
	}
}

func TestTraceContextRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	msg := nats.NewMsg("x")
	messaging.InjectTraceContext(ctx, msg)

	got := trace.SpanContextFromContext(messaging.ExtractTraceContext(context.Background(), msg))
	if got.TraceID() != sc.TraceID() || got.SpanID() != sc.SpanID() {
		t.Errorf("extracted %v, want %v", got, sc)
	}
}

func TestExtractTraceContext_NoHeaders(t *testing.T) {
	ctx := context.Background()
	if got := messaging.ExtractTraceContext(ctx, &nats.Msg{}); got != ctx {
		t.Error("expected the input context back")
	}
}
