// Package queuetrace implements the RoadRunner queue tracing plugin. It
// observes the lifecycle of queue jobs and maintains distributed trace
// continuity across the enqueue/dequeue boundary: a publish span is opened
// when a job is pushed, the trace context is serialized into two reserved
// payload fields, and a process transaction (or child span) is resumed when
// the job is later executed, possibly on another host.
//
// Key components:
//   - Plugin: the main entry point, implementing the endure lifecycle
//   - Watcher: per-connection adapter translating the six queue lifecycle
//     events into calls on the tracing core
//   - tracing: the span/scope stack, propagation codec and decision logic
//   - RPC methods: Stats, List
package queuetrace
