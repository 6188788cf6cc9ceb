package tracing

import (
	"time"

	"go.opentelemetry.io/otel/trace"
)

// span operations and sources used by the queue integration
const (
	OpQueuePublish string = "queue.publish"
	OpQueueProcess string = "queue.process"

	SourceTask string = "task"
)

// Sampled is the tri-state sampling decision attached to a span or decoded
// from an incoming trace. The zero value is SampledUndefined.
type Sampled int8

const (
	SampledUndefined Sampled = iota
	SampledFalse
	SampledTrue
)

// Bool reports whether the decision is an explicit yes.
func (s Sampled) Bool() bool {
	return s == SampledTrue
}

func (s Sampled) String() string {
	switch s {
	case SampledTrue:
		return "true"
	case SampledFalse:
		return "false"
	default:
		return "undefined"
	}
}

// Status is the terminal state of a span.
type Status uint8

const (
	StatusUnset Status = iota
	StatusOK
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInternalError:
		return "internal_error"
	default:
		return "unset"
	}
}

// SpanContext describes a span to be started. TraceID and ParentSpanID are
// only consulted for transactions continuing a remote trace; children always
// inherit them from the parent span.
type SpanContext struct {
	Op           string
	Description  string
	Data         map[string]any
	TraceID      trace.TraceID
	ParentSpanID trace.SpanID
	Sampled      Sampled
	StartTime    time.Time
}

// TransactionContext describes a trace-root span with a name and a source
// classification.
type TransactionContext struct {
	SpanContext

	Name   string
	Source string
}

// Span is a single timed operation within a trace. Spans are NOT safe for
// concurrent use; the host guarantees sequential job processing per worker.
//
// A span is mutable until Finish is called, immutable and terminal after.
// The sampled flag is set at creation, inherited by children and never
// recomputed.
type Span struct {
	hub    *Hub
	parent *Span // non-owning

	op          string
	description string
	// transaction-only fields
	name   string
	source string

	data    map[string]any
	status  Status
	sampled Sampled

	traceID      trace.TraceID
	spanID       trace.SpanID
	parentSpanID trace.SpanID

	startTime time.Time
	endTime   time.Time

	isTransaction bool
	finished      bool
}

func (s *Span) Op() string {
	return s.op
}

func (s *Span) Description() string {
	return s.description
}

// SetDescription replaces the span description. No-op after Finish.
func (s *Span) SetDescription(d string) {
	if s.finished {
		return
	}
	s.description = d
}

// SetData attaches a structured key/value pair. No-op after Finish.
func (s *Span) SetData(key string, value any) {
	if s.finished {
		return
	}
	if s.data == nil {
		s.data = make(map[string]any)
	}
	s.data[key] = value
}

// Data returns the value stored under key, or nil.
func (s *Span) Data(key string) any {
	return s.data[key]
}

func (s *Span) Status() Status {
	return s.status
}

// SetStatus sets the terminal status. No-op after Finish.
func (s *Span) SetStatus(st Status) {
	if s.finished {
		return
	}
	s.status = st
}

func (s *Span) Sampled() Sampled {
	return s.sampled
}

func (s *Span) TraceID() trace.TraceID {
	return s.traceID
}

func (s *Span) SpanID() trace.SpanID {
	return s.spanID
}

func (s *Span) ParentSpanID() trace.SpanID {
	return s.parentSpanID
}

// Parent returns the parent span, nil for a trace root.
func (s *Span) Parent() *Span {
	return s.parent
}

func (s *Span) StartTime() time.Time {
	return s.startTime
}

// EndTime is zero until the span is finished.
func (s *Span) EndTime() time.Time {
	return s.endTime
}

func (s *Span) IsTransaction() bool {
	return s.isTransaction
}

// Name returns the transaction name, empty for ordinary spans.
func (s *Span) Name() string {
	return s.name
}

// Source returns the transaction source classification, e.g. "task".
func (s *Span) Source() string {
	return s.source
}

func (s *Span) Finished() bool {
	return s.finished
}

// Finish stamps the end time and seals the span. A finished sampled
// transaction is buffered on the owning hub until the next flush. Safe to
// call multiple times, subsequent calls are no-ops.
func (s *Span) Finish() {
	if s.finished {
		return
	}
	s.finished = true

	if s.hub != nil {
		s.endTime = s.hub.now()
		if s.isTransaction && s.sampled == SampledTrue {
			s.hub.captureTransaction(s)
		}
		return
	}

	s.endTime = time.Now().UTC()
}
