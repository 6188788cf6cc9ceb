package queuetrace

// Config defines settings for the queue tracing plugin.
type Config struct {
	// Jobs enables per-job child spans when an enclosing span is already
	// active on the worker. Default - true.
	Jobs *bool `mapstructure:"queue_jobs"`
	// JobTransactions enables root transactions for jobs arriving with no
	// enclosing span. Default - true.
	JobTransactions *bool `mapstructure:"queue_job_transactions"`
	// Breadcrumbs enables the breadcrumb recorded when job processing
	// starts. Default - true.
	Breadcrumbs *bool `mapstructure:"breadcrumbs"`
	// MaxBreadcrumbs is the per-scope breadcrumb cap. Default - 100.
	MaxBreadcrumbs int `mapstructure:"max_breadcrumbs"`
	// FlushTimeout in seconds bounds a single transport flush. Default - 2.
	FlushTimeout int `mapstructure:"flush_timeout"`
	// NumPollers configures the number of lifecycle event pollers.
	// Default - 1.
	NumPollers int `mapstructure:"num_pollers"`
	// EventBufferSize is the capacity of the lifecycle event channel.
	// Default - 100.
	EventBufferSize int `mapstructure:"event_buffer_size"`
}

func (c *Config) InitDefaults() {
	if c.Jobs == nil {
		c.Jobs = toPtr(true)
	}

	if c.JobTransactions == nil {
		c.JobTransactions = toPtr(true)
	}

	if c.Breadcrumbs == nil {
		c.Breadcrumbs = toPtr(true)
	}

	if c.MaxBreadcrumbs == 0 {
		c.MaxBreadcrumbs = 100
	}

	if c.FlushTimeout == 0 {
		c.FlushTimeout = 2
	}

	if c.NumPollers == 0 {
		c.NumPollers = 1
	}

	if c.EventBufferSize == 0 {
		c.EventBufferSize = 100
	}
}

func (c *Config) JobsEnabled() bool {
	return c.Jobs != nil && *c.Jobs
}

func (c *Config) JobTransactionsEnabled() bool {
	return c.JobTransactions != nil && *c.JobTransactions
}

func (c *Config) BreadcrumbsEnabled() bool {
	return c.Breadcrumbs != nil && *c.Breadcrumbs
}

func toPtr[T any](v T) *T {
	return &v
}
