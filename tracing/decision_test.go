package tracing

import (
	"testing"
	"time"
)

func sampledSpan(t *testing.T, sampled Sampled) *Span {
	t.Helper()

	hub := NewHub(nopTransport{})
	return hub.StartTransaction(TransactionContext{
		Name: "enclosing",
		SpanContext: SpanContext{
			Op:      "http.server",
			Sampled: sampled,
		},
	})
}

func TestDecideEnqueueNoCurrentSpan(t *testing.T) {
	if sc := DecideEnqueue(nil, "emails", "default", time.Now()); sc != nil {
		t.Fatalf("expected no publish span, got %+v", sc)
	}
}

func TestDecideEnqueueUnsampledCurrentSpan(t *testing.T) {
	span := sampledSpan(t, SampledFalse)

	if sc := DecideEnqueue(span, "emails", "default", time.Now()); sc != nil {
		t.Fatalf("expected no publish span, got %+v", sc)
	}
}

func TestDecideEnqueueSampledCurrentSpan(t *testing.T) {
	span := sampledSpan(t, SampledTrue)
	now := time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC)

	sc := DecideEnqueue(span, "emails", "default", now)
	if sc == nil {
		t.Fatal("expected a publish span context")
	}

	if got, want := sc.Op, OpQueuePublish; got != want {
		t.Fatalf("unexpected op, got %q, want %q", got, want)
	}

	if got, want := sc.Description, "emails"; got != want {
		t.Fatalf("unexpected description, got %q, want %q", got, want)
	}

	if got, want := sc.Data["messaging.destination.name"], "emails"; got != want {
		t.Fatalf("unexpected destination, got %v, want %v", got, want)
	}

	if got, want := sc.Data["messaging.destination.connection"], "default"; got != want {
		t.Fatalf("unexpected connection, got %v, want %v", got, want)
	}

	if !sc.StartTime.Equal(now) {
		t.Fatalf("start time not stamped at decision time, got %v, want %v", sc.StartTime, now)
	}
}

func TestDecideDequeueDisabled(t *testing.T) {
	tests := []struct {
		name string
		in   DequeueInput
	}{
		{
			name: "no current span, transactions disabled",
			in: DequeueInput{
				JobsEnabled:         true,
				TransactionsEnabled: false,
			},
		},
		{
			name: "current span, jobs disabled",
			in: DequeueInput{
				CurrentSpan:         sampledSpan(t, SampledTrue),
				JobsEnabled:         false,
				TransactionsEnabled: true,
			},
		},
	}

	for i := range tests {
		t.Run(tests[i].name, func(t *testing.T) {
			d := DecideDequeue(tests[i].in)
			if d.Kind != DecisionNone {
				t.Fatalf("expected no-op decision, got %s", d.Kind)
			}
		})
	}
}

func TestDecideDequeueVeto(t *testing.T) {
	pc := NewPropagationContext()
	pc.ParentSampled = SampledFalse

	// the veto holds even with both toggles on
	d := DecideDequeue(DequeueInput{
		Propagation:         pc,
		JobName:             "SendReceipt",
		JobsEnabled:         true,
		TransactionsEnabled: true,
	})

	if d.Kind != DecisionSkip {
		t.Fatalf("expected skip, got %s", d.Kind)
	}
}

func TestDecideDequeueTransaction(t *testing.T) {
	pc := NewPropagationContext()
	pc.ParentSampled = SampledTrue
	now := time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC)

	d := DecideDequeue(DequeueInput{
		Propagation:         pc,
		JobName:             "App\\Jobs\\SendReceipt",
		ResolvedName:        "SendReceipt",
		Queue:               "emails",
		Connection:          "default",
		Attempts:            1,
		JobsEnabled:         true,
		TransactionsEnabled: true,
		Now:                 now,
	})

	if d.Kind != DecisionStartTransaction {
		t.Fatalf("expected transaction, got %s", d.Kind)
	}

	tc := d.Transaction
	if got, want := tc.Name, "SendReceipt"; got != want {
		t.Fatalf("unexpected name, got %q, want %q", got, want)
	}

	if got, want := tc.Source, SourceTask; got != want {
		t.Fatalf("unexpected source, got %q, want %q", got, want)
	}

	if got, want := tc.Op, OpQueueProcess; got != want {
		t.Fatalf("unexpected op, got %q, want %q", got, want)
	}

	if tc.TraceID != pc.TraceID {
		t.Fatal("trace id not continued from the decoded parent")
	}

	if tc.ParentSpanID != pc.ParentSpanID {
		t.Fatal("parent span id not continued from the decoded parent")
	}

	if tc.Sampled != SampledTrue {
		t.Fatalf("sampling decision not inherited, got %s", tc.Sampled)
	}

	if !tc.StartTime.Equal(now) {
		t.Fatalf("start time not stamped at decision time, got %v, want %v", tc.StartTime, now)
	}

	if got, want := tc.Data["resolved"], "SendReceipt"; got != want {
		t.Fatalf("unexpected resolved name, got %v, want %v", got, want)
	}

	if got, want := tc.Data["attempts"], 1; got != want {
		t.Fatalf("unexpected attempts, got %v, want %v", got, want)
	}
}

func TestDecideDequeueUndeterminedParent(t *testing.T) {
	d := DecideDequeue(DequeueInput{
		Propagation:         NewPropagationContext(),
		JobName:             "SendReceipt",
		JobsEnabled:         true,
		TransactionsEnabled: true,
		Now:                 time.Now(),
	})

	if d.Kind != DecisionStartTransaction {
		t.Fatalf("expected transaction, got %s", d.Kind)
	}

	// undetermined is not a veto; the local sampler resolves it later
	if d.Transaction.Sampled != SampledUndefined {
		t.Fatalf("expected undetermined sampling, got %s", d.Transaction.Sampled)
	}
}

func TestDecideDequeueChildSpan(t *testing.T) {
	d := DecideDequeue(DequeueInput{
		CurrentSpan:         sampledSpan(t, SampledTrue),
		JobName:             "App\\Jobs\\SendReceipt",
		Queue:               "emails",
		JobsEnabled:         true,
		TransactionsEnabled: true,
		Now:                 time.Now(),
	})

	if d.Kind != DecisionStartSpan {
		t.Fatalf("expected child span, got %s", d.Kind)
	}

	if got, want := d.Span.Op, OpQueueProcess; got != want {
		t.Fatalf("unexpected op, got %q, want %q", got, want)
	}

	// unresolved name falls back to the raw one
	if got, want := d.Span.Description, "App\\Jobs\\SendReceipt"; got != want {
		t.Fatalf("unexpected description, got %q, want %q", got, want)
	}

	if got, want := d.Span.Data["job"], "App\\Jobs\\SendReceipt"; got != want {
		t.Fatalf("unexpected job data, got %v, want %v", got, want)
	}
}
