package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

const defaultMaxBreadcrumbs int = 100

// hubKeyType is a private type for context keys to avoid collisions.
type hubKeyType struct{}

var hubKey hubKeyType

// Hub owns the span/scope stack and the current-span pointer for exactly
// one worker. It replaces the process-wide "current hub" of SDKs designed
// for single-threaded runtimes: with multiple worker goroutines in one
// process, each worker keys its own hub, either directly or through
// WithHub/FromContext.
type Hub struct {
	mu sync.Mutex

	clock   clockz.Clock
	codec   *Codec
	stack   *Stack
	sampler func() Sampled

	// base scope, always present; pushed scopes shadow it
	scope *Scope
	// span set by the host outside of the stack, e.g. an enclosing
	// request transaction
	external *Span

	transport      Transport
	buffer         []*Event
	maxBreadcrumbs int
}

// Option configures a Hub.
type Option func(*Hub)

// WithClock injects a clock for deterministic timestamps in tests.
func WithClock(c clockz.Clock) Option {
	return func(h *Hub) {
		h.clock = c
	}
}

// WithMaxBreadcrumbs caps the number of breadcrumbs kept per scope.
func WithMaxBreadcrumbs(n int) Option {
	return func(h *Hub) {
		h.maxBreadcrumbs = n
	}
}

// WithSampler sets the local sampling decision applied to transactions
// whose incoming decision is undetermined. Default samples everything; the
// actual sampling algorithm belongs to the host SDK, only the flag is read
// here.
func WithSampler(f func() Sampled) Option {
	return func(h *Hub) {
		h.sampler = f
	}
}

// NewHub creates a hub delivering flushed events to the given transport.
func NewHub(transport Transport, opts ...Option) *Hub {
	h := &Hub{
		clock:          clockz.RealClock,
		codec:          NewCodec(),
		stack:          NewStack(),
		transport:      transport,
		maxBreadcrumbs: defaultMaxBreadcrumbs,
		sampler: func() Sampled {
			return SampledTrue
		},
	}

	for _, opt := range opts {
		opt(h)
	}

	h.scope = NewScope(h.maxBreadcrumbs)

	return h
}

// WithHub keys the hub to the given context.
func WithHub(ctx context.Context, h *Hub) context.Context {
	return context.WithValue(ctx, hubKey, h)
}

// FromContext extracts the hub keyed to the context, nil when absent.
func FromContext(ctx context.Context) *Hub {
	if ctx == nil {
		return nil
	}
	h, _ := ctx.Value(hubKey).(*Hub)
	return h
}

func (h *Hub) now() time.Time {
	return h.clock.Now().UTC()
}

// CurrentSpan returns the innermost pushed span, falling back to the span
// set via SetSpan. Nil when nothing is active.
func (h *Hub) CurrentSpan() *Span {
	h.mu.Lock()
	defer h.mu.Unlock()

	if top := h.stack.TopSpan(); top != nil {
		return top
	}
	return h.external
}

// SetSpan replaces the host-provided current span. The pushed span stack
// always shadows it.
func (h *Hub) SetSpan(s *Span) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.external = s
}

// Scope returns the active scope: the innermost pushed one, else the base
// scope.
func (h *Hub) Scope() *Scope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.topScope()
}

func (h *Hub) topScope() *Scope {
	if top := h.stack.TopScope(); top != nil {
		return top
	}
	return h.scope
}

// PushSpan records a span as current.
func (h *Hub) PushSpan(s *Span) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack.PushSpan(s)
}

// MaybePopSpan removes and returns the current pushed span, nil when the
// stack is empty. Never errors.
func (h *Hub) MaybePopSpan() *Span {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.MaybePopSpan()
}

// PushScope activates a fresh scope: no breadcrumbs carried over, new
// propagation context. This is what prevents breadcrumb and trace leakage
// between job runs reusing the same worker process.
func (h *Hub) PushScope() *Scope {
	h.mu.Lock()
	defer h.mu.Unlock()

	sc := NewScope(h.maxBreadcrumbs)
	h.stack.PushScope(sc)
	return sc
}

// MaybePopScope removes and returns the innermost pushed scope, nil when
// none is pushed. The base scope is never popped.
func (h *Hub) MaybePopScope() *Scope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.MaybePopScope()
}

// SpanDepth and ScopeDepth report stack sizes, used by stats.
func (h *Hub) SpanDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.SpanDepth()
}

func (h *Hub) ScopeDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack.ScopeDepth()
}

// AddBreadcrumb records a breadcrumb on the active scope. A zero timestamp
// is filled in from the hub clock.
func (h *Hub) AddBreadcrumb(b Breadcrumb) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b.Timestamp.IsZero() {
		b.Timestamp = h.now()
	}
	h.topScope().AddBreadcrumb(b)
}

// ContinueTrace decodes the incoming propagation strings and installs the
// result as the active scope's propagation context. Absent or malformed
// input yields a fresh context with the parent decision undetermined.
func (h *Hub) ContinueTrace(traceparentData, baggageData string) PropagationContext {
	pc := h.codec.Decode(baggageData, traceparentData)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.topScope().SetPropagationContext(pc)

	return pc
}

// StartTransaction starts a trace-root span. Missing trace id and start
// time are generated; an undetermined sampling decision is resolved by the
// local sampler.
func (h *Hub) StartTransaction(tc TransactionContext) *Span {
	h.mu.Lock()
	defer h.mu.Unlock()

	traceID := tc.TraceID
	if !traceID.IsValid() {
		traceID = newTraceID()
	}

	sampled := tc.Sampled
	if sampled == SampledUndefined {
		sampled = h.sampler()
	}

	start := tc.StartTime
	if start.IsZero() {
		start = h.now()
	}

	return &Span{
		hub:           h,
		op:            tc.Op,
		description:   tc.Description,
		name:          tc.Name,
		source:        tc.Source,
		data:          cloneData(tc.Data),
		sampled:       sampled,
		traceID:       traceID,
		spanID:        newSpanID(),
		parentSpanID:  tc.ParentSpanID,
		startTime:     start,
		isTransaction: true,
	}
}

// StartChild starts a span below parent, inheriting its trace id and
// sampling decision. The sampled flag is inherited, never recomputed. A nil
// parent degrades to a detached root-less span rather than failing.
func (h *Hub) StartChild(parent *Span, sc SpanContext) *Span {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := sc.StartTime
	if start.IsZero() {
		start = h.now()
	}

	span := &Span{
		hub:         h,
		parent:      parent,
		op:          sc.Op,
		description: sc.Description,
		data:        cloneData(sc.Data),
		spanID:      newSpanID(),
		startTime:   start,
	}

	if parent != nil {
		span.traceID = parent.traceID
		span.parentSpanID = parent.spanID
		span.sampled = parent.sampled
		return span
	}

	span.traceID = newTraceID()
	span.sampled = h.sampler()
	return span
}

// captureTransaction buffers a finished sampled transaction until the next
// flush, attaching the breadcrumbs of the active scope.
func (h *Hub) captureTransaction(s *Span) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer = append(h.buffer, &Event{
		TraceID:     s.traceID,
		SpanID:      s.spanID,
		Transaction: s.name,
		Source:      s.source,
		Op:          s.op,
		Description: s.description,
		Status:      s.status,
		StartTime:   s.startTime,
		EndTime:     s.endTime,
		Data:        cloneData(s.data),
		Breadcrumbs: h.topScope().Breadcrumbs(),
	})
}

// PendingEvents reports the number of buffered events.
func (h *Hub) PendingEvents() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buffer)
}

// Flush drains buffered events to the transport, bounded by timeout.
// Failures never propagate to job processing; the caller may log the
// returned error.
func (h *Hub) Flush(timeout time.Duration) error {
	h.mu.Lock()
	events := h.buffer
	h.buffer = nil
	h.mu.Unlock()

	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return h.transport.Send(ctx, events)
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
