package tracing

import (
	"time"

	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
)

// Breadcrumb is a lightweight timestamped diagnostic event attached to a
// scope.
type Breadcrumb struct {
	Level     string         `json:"level"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// PropagationContext carries the trace id and span id used to continue
// future children when no live parent span exists. It is either freshly
// generated or reconstructed from decoded baggage/traceparent strings.
type PropagationContext struct {
	TraceID      trace.TraceID
	SpanID       trace.SpanID
	ParentSpanID trace.SpanID
	// ParentSampled is the sampling decision of the remote parent.
	// SampledUndefined when the context was generated locally or the
	// incoming strings were absent or malformed.
	ParentSampled Sampled
	Baggage       baggage.Baggage
}

// NewPropagationContext returns a fresh context with random ids and an
// undetermined parent sampling decision.
func NewPropagationContext() PropagationContext {
	return PropagationContext{
		TraceID:       newTraceID(),
		SpanID:        newSpanID(),
		ParentSampled: SampledUndefined,
	}
}

// Scope is the mutable per-execution-context bag holding breadcrumbs and the
// propagation context. A scope is pushed before job processing begins and
// popped exactly once when processing ends.
type Scope struct {
	breadcrumbs    []Breadcrumb
	maxBreadcrumbs int
	propagation    PropagationContext
}

// NewScope returns a scope with no breadcrumbs and a fresh propagation
// context. maxBreadcrumbs <= 0 means unbounded.
func NewScope(maxBreadcrumbs int) *Scope {
	return &Scope{
		maxBreadcrumbs: maxBreadcrumbs,
		propagation:    NewPropagationContext(),
	}
}

// AddBreadcrumb appends a breadcrumb, dropping the oldest one when the cap
// is reached.
func (s *Scope) AddBreadcrumb(b Breadcrumb) {
	if s.maxBreadcrumbs > 0 && len(s.breadcrumbs) >= s.maxBreadcrumbs {
		s.breadcrumbs = append(s.breadcrumbs[:0], s.breadcrumbs[1:]...)
	}
	s.breadcrumbs = append(s.breadcrumbs, b)
}

// Breadcrumbs returns a copy of the recorded breadcrumbs in order.
func (s *Scope) Breadcrumbs() []Breadcrumb {
	out := make([]Breadcrumb, len(s.breadcrumbs))
	copy(out, s.breadcrumbs)
	return out
}

// ClearBreadcrumbs drops all recorded breadcrumbs.
func (s *Scope) ClearBreadcrumbs() {
	s.breadcrumbs = s.breadcrumbs[:0]
}

func (s *Scope) PropagationContext() PropagationContext {
	return s.propagation
}

func (s *Scope) SetPropagationContext(pc PropagationContext) {
	s.propagation = pc
}
