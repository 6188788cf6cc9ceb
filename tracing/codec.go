package tracing

import (
	"context"

	jprop "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// carrier keys produced/consumed by the composite propagator
const (
	traceparentKey string = "traceparent"
	baggageKey     string = "baggage"
)

// baggage members attached on encode
const (
	baggageTraceID string = "sentry-trace_id"
	baggageSampled string = "sentry-sampled"
)

// Codec encodes and decodes the two propagation fields exchanged through
// the queue payload. Both directions are pure string transformations with
// no side effects; the codec holds no mutable state and is safe for
// concurrent use.
type Codec struct {
	prop propagation.TextMapPropagator
}

// NewCodec builds a codec over the W3C trace-context and baggage
// propagators, with the jaeger propagator composed in for interop with
// hosts still emitting uber-trace-id headers.
func NewCodec() *Codec {
	return &Codec{
		prop: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
			jprop.Jaeger{},
		),
	}
}

// Encode produces transport-ready baggage and traceparent strings for the
// given span. Call only with an active sampled span; the decision layer
// guarantees this on the enqueue path.
func (c *Codec) Encode(span *Span) (string, string) {
	flags := trace.TraceFlags(0)
	if span.Sampled().Bool() {
		flags = trace.FlagsSampled
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    span.TraceID(),
		SpanID:     span.SpanID(),
		TraceFlags: flags,
	})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	members := make([]baggage.Member, 0, 2)
	if m, err := baggage.NewMember(baggageTraceID, span.TraceID().String()); err == nil {
		members = append(members, m)
	}
	if m, err := baggage.NewMember(baggageSampled, span.Sampled().String()); err == nil {
		members = append(members, m)
	}

	if bag, err := baggage.New(members...); err == nil {
		ctx = baggage.ContextWithBaggage(ctx, bag)
	}

	carrier := propagation.MapCarrier{}
	c.prop.Inject(ctx, carrier)

	return carrier.Get(baggageKey), carrier.Get(traceparentKey)
}

// Decode reconstructs a propagation context from possibly-absent strings.
// It never fails: absent or malformed input yields fresh ids with the
// parent sampling decision left undetermined. A valid traceparent with the
// sampled flag clear decodes to an explicit SampledFalse, which is the
// input of the sampling-propagation veto.
func (c *Codec) Decode(baggageData, traceparentData string) PropagationContext {
	carrier := propagation.MapCarrier{}
	if traceparentData != "" {
		carrier.Set(traceparentKey, traceparentData)
	}
	if baggageData != "" {
		carrier.Set(baggageKey, baggageData)
	}

	ctx := c.prop.Extract(context.Background(), carrier)

	pc := NewPropagationContext()
	pc.Baggage = baggage.FromContext(ctx)

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return pc
	}

	pc.TraceID = sc.TraceID()
	pc.ParentSpanID = sc.SpanID()
	if sc.IsSampled() {
		pc.ParentSampled = SampledTrue
	} else {
		pc.ParentSampled = SampledFalse
	}

	return pc
}
