package queuetrace

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestInjectTraceFieldsPreservesPayload(t *testing.T) {
	payload := []byte(`{"displayName":"SendReceipt","data":{"order":42}}`)

	out, err := InjectTraceFields(payload, "sentry-trace_id=abc", "00-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa-bbbbbbbbbbbbbbbb-01")
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if got, want := decoded["displayName"], "SendReceipt"; got != want {
		t.Fatalf("unrelated field lost, got %v, want %v", got, want)
	}

	if decoded["data"] == nil {
		t.Fatal("nested field lost")
	}

	if got, want := decoded[BaggageField], "sentry-trace_id=abc"; got != want {
		t.Fatalf("unexpected baggage field, got %v, want %v", got, want)
	}

	if got, want := decoded[TraceparentField], "00-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa-bbbbbbbbbbbbbbbb-01"; got != want {
		t.Fatalf("unexpected traceparent field, got %v, want %v", got, want)
	}
}

func TestInjectTraceFieldsEmptyPayload(t *testing.T) {
	out, err := InjectTraceFields(nil, "bg", "tp")
	if err != nil {
		t.Fatalf("inject into empty payload failed: %v", err)
	}

	baggage, traceparent := ExtractTraceFields(out)
	if baggage != "bg" || traceparent != "tp" {
		t.Fatalf("round trip mismatch, got %q/%q", baggage, traceparent)
	}
}

func TestInjectTraceFieldsNonObject(t *testing.T) {
	if _, err := InjectTraceFields([]byte(`[1,2,3]`), "bg", "tp"); err == nil {
		t.Fatal("expected an error for a non-object payload")
	}
}

func TestExtractTraceFieldsDegrades(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "nil payload"},
		{name: "empty payload", payload: []byte{}},
		{name: "garbage payload", payload: []byte("not json")},
		{name: "object without trace fields", payload: []byte(`{"displayName":"SendReceipt"}`)},
	}

	for i := range tests {
		t.Run(tests[i].name, func(t *testing.T) {
			baggage, traceparent := ExtractTraceFields(tests[i].payload)
			if baggage != "" || traceparent != "" {
				t.Fatalf("expected empty trace fields, got %q/%q", baggage, traceparent)
			}
		})
	}
}
