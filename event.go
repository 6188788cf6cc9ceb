package queuetrace

// EventType enumerates the queue lifecycle notifications consumed by the
// plugin.
type EventType uint8

const (
	EventJobQueueing EventType = iota
	EventJobQueued
	EventJobProcessing
	EventJobProcessed
	EventJobExceptionOccurred
	EventWorkerStopping
)

func (t EventType) String() string {
	switch t {
	case EventJobQueueing:
		return "job_queueing"
	case EventJobQueued:
		return "job_queued"
	case EventJobProcessing:
		return "job_processing"
	case EventJobProcessed:
		return "job_processed"
	case EventJobExceptionOccurred:
		return "job_exception_occurred"
	case EventWorkerStopping:
		return "worker_stopping"
	default:
		return "unknown"
	}
}

// Event is a single lifecycle notification from the host queue. Job is nil
// for WorkerStopping; Err is set only for JobExceptionOccurred.
type Event struct {
	Type       EventType
	Job        Job
	Connection string
	Err        error
}
