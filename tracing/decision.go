package tracing

import (
	"time"
)

// DecisionKind is the outcome of the dequeue decision.
type DecisionKind uint8

const (
	// DecisionNone - this job will not be traced.
	DecisionNone DecisionKind = iota
	// DecisionSkip - a sampled-out parent forbids creating any span for the
	// child, even a fresh root. Independent of local toggles.
	DecisionSkip
	// DecisionStartSpan - continue the live parent with a child span.
	DecisionStartSpan
	// DecisionStartTransaction - no live parent, start a trace root.
	DecisionStartTransaction
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionSkip:
		return "skip"
	case DecisionStartSpan:
		return "span"
	case DecisionStartTransaction:
		return "transaction"
	default:
		return "none"
	}
}

// Decision carries the dequeue outcome together with the context to start,
// depending on Kind.
type Decision struct {
	Kind        DecisionKind
	Span        SpanContext
	Transaction TransactionContext
}

// DequeueInput is everything DecideDequeue needs. Propagation is the
// decoded payload context and is only consulted when CurrentSpan is nil.
type DequeueInput struct {
	CurrentSpan *Span
	Propagation PropagationContext

	JobName      string
	ResolvedName string
	Queue        string
	Connection   string
	Attempts     int

	JobsEnabled         bool
	TransactionsEnabled bool

	// Now is stamped on the resulting context as the span start time. The
	// timestamp is taken at decision time rather than at actual execution
	// start so that decode overhead is accounted to the job consistently.
	Now time.Time
}

// DecideEnqueue chooses whether a publish span should be opened for an
// outgoing job. Returns nil when no span is active or the active span was
// not sampled; in that case no trace headers are injected either.
func DecideEnqueue(current *Span, queue, connection string, now time.Time) *SpanContext {
	if current == nil || !current.Sampled().Bool() {
		return nil
	}

	return &SpanContext{
		Op:          OpQueuePublish,
		Description: queue,
		Data: map[string]any{
			"messaging.system":                 "roadrunner",
			"messaging.destination.name":       queue,
			"messaging.destination.connection": connection,
		},
		StartTime: now,
	}
}

// DecideDequeue chooses between a root transaction, a child span, a hard
// skip and a no-op for an incoming job. Pure function; never fails. A job
// whose name could not be resolved proceeds with the raw name.
func DecideDequeue(in DequeueInput) Decision {
	// tracing disabled for the shape this job would take
	if in.CurrentSpan == nil && !in.TransactionsEnabled {
		return Decision{Kind: DecisionNone}
	}
	if in.CurrentSpan != nil && !in.JobsEnabled {
		return Decision{Kind: DecisionNone}
	}

	resolved := in.ResolvedName
	if resolved == "" {
		resolved = in.JobName
	}

	data := map[string]any{
		"job":        in.JobName,
		"queue":      in.Queue,
		"resolved":   resolved,
		"attempts":   in.Attempts,
		"connection": in.Connection,
	}

	if in.CurrentSpan != nil {
		return Decision{
			Kind: DecisionStartSpan,
			Span: SpanContext{
				Op:          OpQueueProcess,
				Description: resolved,
				Data:        data,
				StartTime:   in.Now,
			},
		}
	}

	// sampling-propagation veto: an explicitly unsampled parent suppresses
	// the child regardless of local configuration
	if in.Propagation.ParentSampled == SampledFalse {
		return Decision{Kind: DecisionSkip}
	}

	return Decision{
		Kind: DecisionStartTransaction,
		Transaction: TransactionContext{
			Name:   resolved,
			Source: SourceTask,
			SpanContext: SpanContext{
				Op:           OpQueueProcess,
				Description:  resolved,
				Data:         data,
				TraceID:      in.Propagation.TraceID,
				ParentSpanID: in.Propagation.ParentSpanID,
				Sampled:      in.Propagation.ParentSampled,
				StartTime:    in.Now,
			},
		},
	}
}
