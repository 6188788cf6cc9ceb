package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Event is a finished transaction ready to be delivered to a transport.
type Event struct {
	TraceID     trace.TraceID  `json:"trace_id"`
	SpanID      trace.SpanID   `json:"span_id"`
	Transaction string         `json:"transaction"`
	Source      string         `json:"source"`
	Op          string         `json:"op"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Data        map[string]any `json:"data,omitempty"`
	Breadcrumbs []Breadcrumb   `json:"breadcrumbs,omitempty"`
}

// Transport delivers flushed events to the outside world.
type Transport interface {
	Send(ctx context.Context, events []*Event) error
}

// LogTransport writes finished transactions to the plugin logger. It is the
// default sink when no real event backend is wired in.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(_ context.Context, events []*Event) error {
	for _, ev := range events {
		t.log.Info("transaction finished",
			zap.String("transaction", ev.Transaction),
			zap.String("op", ev.Op),
			zap.String("source", ev.Source),
			zap.String("trace_id", ev.TraceID.String()),
			zap.String("span_id", ev.SpanID.String()),
			zap.String("status", ev.Status.String()),
			zap.Time("start", ev.StartTime),
			zap.Duration("elapsed", ev.EndTime.Sub(ev.StartTime)),
			zap.Int("breadcrumbs", len(ev.Breadcrumbs)))
	}

	return nil
}
