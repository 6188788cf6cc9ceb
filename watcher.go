package queuetrace

import (
	"sync"
	"time"

	"github.com/roadrunner-server/queuetrace/v4/tracing"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Watcher translates queue lifecycle events for one connection into calls
// on the tracing core. It owns no decision logic: decisions come from the
// tracing package, the watcher only marshals fields and keeps the
// span/scope stack balanced.
//
// The host guarantees sequential event delivery per worker; the mutex keeps
// the watcher correct when several pollers share one connection.
type Watcher struct {
	mu sync.Mutex

	connection string
	hub        *tracing.Hub
	codec      *tracing.Codec
	cfg        *Config
	log        *zap.Logger
	metrics    *statsExporter
	clock      clockz.Clock
}

func newWatcher(connection string, cfg *Config, log *zap.Logger, metrics *statsExporter, transport tracing.Transport, clock clockz.Clock) *Watcher {
	return &Watcher{
		connection: connection,
		hub: tracing.NewHub(transport,
			tracing.WithClock(clock),
			tracing.WithMaxBreadcrumbs(cfg.MaxBreadcrumbs)),
		codec:   tracing.NewCodec(),
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		clock:   clock,
	}
}

// Hub exposes the worker hub, e.g. for the host to set an enclosing span.
func (w *Watcher) Hub() *tracing.Hub {
	return w.hub
}

// WrapPayload is the enqueue entry point: when a sampled span is active it
// opens a publish span, injects the trace fields into the payload and
// records the span on the stack. Otherwise the payload passes through
// untouched and no headers are injected.
func (w *Watcher) WrapPayload(payload []byte, queue string) []byte {
	w.mu.Lock()
	defer w.mu.Unlock()

	sctx := tracing.DecideEnqueue(w.hub.CurrentSpan(), queue, w.connection, w.clock.Now().UTC())
	if sctx == nil {
		return payload
	}

	span := w.hub.StartChild(w.hub.CurrentSpan(), *sctx)

	baggage, traceparent := w.codec.Encode(span)
	out, err := InjectTraceFields(payload, baggage, traceparent)
	if err != nil {
		// the payload is not ours to break: ship it as-is, untraced
		w.log.Warn("trace fields injection failed", zap.String("queue", queue), zap.Error(err))
		out = payload
	}

	w.hub.PushSpan(span)
	w.metrics.CountPublishSpan()
	w.metrics.spansStartedCounter.WithLabelValues(tracing.OpQueuePublish, queue, w.connection).Inc()

	return out
}

// HandleJobQueueing retags the active publish span with the job name once
// the host reveals which job is being serialized.
func (w *Watcher) HandleJobQueueing(job Job) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cur := w.hub.CurrentSpan()
	if cur == nil || cur.Op() != tracing.OpQueuePublish {
		return
	}

	cur.SetDescription(resolveName(job))
	cur.SetData("messaging.message.job", job.Name())

	if ident, ok := job.(interface{ ID() string }); ok {
		if id := ident.ID(); id != "" {
			cur.SetData("messaging.message.id", id)
		}
	}
}

// HandleJobQueued pops and finishes the publish span, if one exists.
func (w *Watcher) HandleJobQueued(job Job) {
	w.mu.Lock()
	defer w.mu.Unlock()

	span := w.hub.MaybePopSpan()
	if span == nil {
		return
	}

	span.Finish()

	w.log.Debug("job queued",
		zap.String("job", job.Name()),
		zap.String("queue", job.Queue()),
		zap.String("connection", w.connection),
		zap.String("trace_id", span.TraceID().String()))
}

// HandleJobProcessing starts the dequeue side: clears any stale scope left
// by a previous run, pushes a fresh one, records a breadcrumb and applies
// the dequeue decision. The stale-scope pop is the sole safety net against
// a prior exception or out-of-order delivery and must stay first.
func (w *Watcher) HandleJobProcessing(job Job) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if stale := w.hub.MaybePopScope(); stale != nil {
		w.log.Debug("stale scope cleared", zap.String("connection", w.connection))
	}

	w.hub.PushScope()

	if w.cfg.BreadcrumbsEnabled() {
		w.hub.AddBreadcrumb(tracing.Breadcrumb{
			Level:    "info",
			Type:     "default",
			Category: "queue.job",
			Message:  "Processing queue job",
			Data: map[string]any{
				"job":      job.Name(),
				"queue":    job.Queue(),
				"attempts": job.Attempts(),
			},
		})
	}

	in := tracing.DequeueInput{
		CurrentSpan:         w.hub.CurrentSpan(),
		JobName:             job.Name(),
		ResolvedName:        resolveName(job),
		Queue:               job.Queue(),
		Connection:          w.connection,
		Attempts:            job.Attempts(),
		JobsEnabled:         w.cfg.JobsEnabled(),
		TransactionsEnabled: w.cfg.JobTransactionsEnabled(),
		Now:                 w.clock.Now().UTC(),
	}

	if in.CurrentSpan == nil {
		baggage, traceparent := ExtractTraceFields(job.Payload())
		in.Propagation = w.hub.ContinueTrace(traceparent, baggage)
	}

	d := tracing.DecideDequeue(in)
	switch d.Kind {
	case tracing.DecisionNone:
		w.metrics.CountUntraced()
	case tracing.DecisionSkip:
		// sampled-out parent, the veto holds regardless of local toggles
		w.metrics.CountVetoed()
		w.log.Debug("job trace suppressed by unsampled parent",
			zap.String("job", job.Name()),
			zap.String("queue", job.Queue()),
			zap.String("connection", w.connection))
	case tracing.DecisionStartSpan:
		span := w.hub.StartChild(in.CurrentSpan, d.Span)
		w.hub.PushSpan(span)
		w.metrics.CountProcessSpan()
		w.metrics.spansStartedCounter.WithLabelValues(tracing.OpQueueProcess, job.Queue(), w.connection).Inc()
	case tracing.DecisionStartTransaction:
		tx := w.hub.StartTransaction(d.Transaction)
		w.hub.PushSpan(tx)
		w.metrics.CountProcessTransaction()
		w.metrics.spansStartedCounter.WithLabelValues(tracing.OpQueueProcess, job.Queue(), w.connection).Inc()
	}
}

// HandleJobProcessed finishes the active span with status ok and pops the
// scope.
func (w *Watcher) HandleJobProcessed(job Job) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if span := w.hub.MaybePopSpan(); span != nil {
		span.SetStatus(tracing.StatusOK)
		span.Finish()
	}

	w.hub.MaybePopScope()
}

// HandleJobExceptionOccurred finishes the active span with status
// internal_error and flushes buffered events. The scope is deliberately
// left pushed: the next HandleJobProcessing clears it.
func (w *Watcher) HandleJobExceptionOccurred(job Job, jobErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if span := w.hub.MaybePopSpan(); span != nil {
		span.SetStatus(tracing.StatusInternalError)
		span.Finish()
	}

	w.log.Debug("job failed",
		zap.String("job", job.Name()),
		zap.String("queue", job.Queue()),
		zap.String("connection", w.connection),
		zap.Error(jobErr))

	w.flush()
}

// HandleWorkerStopping flushes buffered events, independent of span state.
func (w *Watcher) HandleWorkerStopping() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.flush()
}

// Flush drains buffered events outside of the event loop, used on plugin
// stop.
func (w *Watcher) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.flush()
}

func (w *Watcher) flush() {
	w.metrics.CountFlush()
	err := w.hub.Flush(time.Second * time.Duration(w.cfg.FlushTimeout))
	if err != nil {
		w.metrics.CountFlushErr()
		w.log.Warn("events flush failed", zap.String("connection", w.connection), zap.Error(err))
	}
}
