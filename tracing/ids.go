package tracing

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// newTraceID generates a random 128-bit trace id. Falls back to a time-based
// id if crypto/rand fails.
func newTraceID() trace.TraceID {
	var id trace.TraceID
	if _, err := rand.Read(id[:]); err != nil {
		binary.BigEndian.PutUint64(id[:8], uint64(time.Now().UnixNano()))
		binary.BigEndian.PutUint64(id[8:], uint64(time.Now().UnixNano()))
	}
	return id
}

// newSpanID generates a random 64-bit span id.
func newSpanID() trace.SpanID {
	var id trace.SpanID
	if _, err := rand.Read(id[:]); err != nil {
		binary.BigEndian.PutUint64(id[:], uint64(time.Now().UnixNano()))
	}
	return id
}
