// Package tracing implements the span and scope lifecycle core for the
// queuetrace plugin.
//
// A job is created in one process, serialized into a queue payload and
// executed later in another process. This package carries the trace across
// that boundary: Codec encodes/decodes the two propagation fields exchanged
// through the payload, DecideEnqueue/DecideDequeue choose between a root
// transaction, a child span or no span at all, and Stack keeps the pushed
// spans and scopes balanced across the success, failure and exception paths.
//
// Hub is the per-worker entry point holding the stack, the current span and
// the buffered events waiting for a flush. Hubs are never shared between
// workers; use WithHub/FromContext to key a hub to an execution context.
package tracing
