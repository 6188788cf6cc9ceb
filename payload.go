package queuetrace

import (
	"github.com/goccy/go-json"
)

// Reserved payload fields carrying trace continuation data. The payload is
// otherwise opaque to the plugin and must survive the round trip untouched;
// unrelated consumers ignore these fields.
const (
	BaggageField     string = "sentry_baggage_data"
	TraceparentField string = "sentry_trace_parent_data"
)

// InjectTraceFields sets the two reserved fields on a JSON payload,
// preserving every other field byte-for-byte where possible. An empty
// payload is treated as an empty object. Returns an error only when the
// payload is not a JSON object; callers degrade to the original payload.
func InjectTraceFields(payload []byte, baggage, traceparent string) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if len(payload) != 0 {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, err
		}
	}

	bg, err := json.Marshal(baggage)
	if err != nil {
		return nil, err
	}

	tp, err := json.Marshal(traceparent)
	if err != nil {
		return nil, err
	}

	fields[BaggageField] = bg
	fields[TraceparentField] = tp

	return json.Marshal(fields)
}

// ExtractTraceFields reads the two reserved fields from a JSON payload.
// Absent or malformed payloads yield empty strings, never an error.
func ExtractTraceFields(payload []byte) (string, string) {
	if len(payload) == 0 {
		return "", ""
	}

	var fields struct {
		Baggage     string `json:"sentry_baggage_data"`
		Traceparent string `json:"sentry_trace_parent_data"`
	}

	// malformed payload degrades to "no trace context"
	_ = json.Unmarshal(payload, &fields)

	return fields.Baggage, fields.Traceparent
}
