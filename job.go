package queuetrace

// Job is the capability surface the plugin needs from a queue job.
type Job interface {
	// Name contains the name of the job broker (usually a class name).
	Name() string
	// Queue is the name of the queue the job travels through.
	Queue() string
	// Attempts is the current delivery attempt count.
	Attempts() int
	// Payload is the raw serialized payload, read for the reserved trace
	// fields.
	Payload() []byte
}

// NameResolver is an optional Job capability: some brokers can resolve a
// display name distinct from the raw broker name.
type NameResolver interface {
	ResolveName() string
}

// resolveName returns the resolved job name when the job supports
// resolution, falling back to the raw name. Resolution never fails.
func resolveName(j Job) string {
	if j == nil {
		return ""
	}

	if r, ok := j.(NameResolver); ok {
		if name := r.ResolveName(); name != "" {
			return name
		}
	}

	return j.Name()
}

// Message is the concrete job envelope used by the built-in drivers.
type Message struct {
	// Job contains the name of the job broker.
	Job string `json:"job"`

	// Ident is the unique identifier of the job, provided from outside.
	Ident string `json:"id"`

	// QueueName is the queue the job was pushed to.
	QueueName string `json:"queue"`

	// Resolved is the display name, when the broker resolved one.
	Resolved string `json:"resolved,omitempty"`

	// AttemptCount is the current delivery attempt.
	AttemptCount int `json:"attempts"`

	// Pld is raw data (usually JSON) passed to the job broker.
	Pld []byte `json:"payload"`
}

func (m *Message) Name() string {
	return m.Job
}

func (m *Message) ID() string {
	return m.Ident
}

func (m *Message) Queue() string {
	return m.QueueName
}

func (m *Message) ResolveName() string {
	return m.Resolved
}

func (m *Message) Attempts() int {
	return m.AttemptCount
}

func (m *Message) Payload() []byte {
	return m.Pld
}
