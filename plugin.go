package queuetrace

import (
	"context"
	"sync"

	"github.com/roadrunner-server/endure/v2/dep"
	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/queuetrace/v4/tracing"
	"github.com/zoobzio/clockz"
	jprop "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	PluginName string = "queuetrace"
)

type Plugin struct {
	mu sync.RWMutex

	// queue tracing plugin configuration
	cfg *Config `structure:"queuetrace"`
	log *zap.Logger

	tracer    *sdktrace.TracerProvider
	transport tracing.Transport
	clock     clockz.Clock
	metrics   *statsExporter

	// per-connection adapters
	watchers sync.Map // map[string]*Watcher

	eventsCh chan Event
	stopCh   chan struct{}
}

func (p *Plugin) Init(cfg Configurer, log Logger) error {
	const op = errors.Op("queuetrace_plugin_init")
	if !cfg.Has(PluginName) {
		return errors.E(op, errors.Disabled)
	}

	err := cfg.UnmarshalKey(PluginName, &p.cfg)
	if err != nil {
		return errors.E(op, err)
	}

	p.cfg.InitDefaults()

	p.log = new(zap.Logger)
	p.log = log.NamedLogger(PluginName)

	p.clock = clockz.RealClock
	p.transport = tracing.NewLogTransport(p.log)
	p.metrics = newStatsExporter()

	p.eventsCh = make(chan Event, p.cfg.EventBufferSize)
	p.stopCh = make(chan struct{}, 1)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}, jprop.Jaeger{}))

	return nil
}

func (p *Plugin) Serve() chan error {
	errCh := make(chan error, 1)

	if p.tracer == nil {
		// noop tracer
		p.tracer = sdktrace.NewTracerProvider()
	}

	p.mu.Lock()
	p.listener()
	p.mu.Unlock()

	return errCh
}

func (p *Plugin) Stop(ctx context.Context) error {
	// Broadcast stop signal to all pollers
	close(p.stopCh)

	sema := semaphore.NewWeighted(int64(p.cfg.NumPollers))

	// range over all watchers and flush the buffered events
	p.watchers.Range(func(key, value any) bool {
		// acquire semaphore, but if RR canceled the context, we should stop
		errA := sema.Acquire(ctx, 1)
		if errA != nil {
			return false
		}

		go func() {
			value.(*Watcher).Flush()
			sema.Release(1)
		}()
		// process next
		return true
	})

	err := sema.Acquire(ctx, int64(p.cfg.NumPollers))
	if err != nil {
		return err
	}

	p.watchers.Range(func(key, _ any) bool {
		p.watchers.Delete(key)
		return true
	})

	return nil
}

func (p *Plugin) Collects() []*dep.In {
	return []*dep.In{
		dep.Fits(func(pp any) {
			p.tracer = pp.(Tracer).Tracer()
		}, (*Tracer)(nil)),
		dep.Fits(func(pp any) {
			pp.(Notifier).Subscribe(p.eventsCh)
		}, (*Notifier)(nil)),
	}
}

func (p *Plugin) Name() string {
	return PluginName
}

func (p *Plugin) RPC() any {
	return &rpc{
		p: p,
	}
}

// Notify delivers a lifecycle event to the plugin. Drops the event when the
// buffer is full: tracing must never block the queue.
func (p *Plugin) Notify(ev Event) {
	select {
	case p.eventsCh <- ev:
	default:
		p.log.Warn("event buffer full, lifecycle event dropped", zap.String("type", ev.Type.String()), zap.String("connection", ev.Connection))
	}
}

// WrapPayload is the enqueue-side entry point for queue drivers: it routes
// the payload through the connection watcher which may open a publish span
// and inject the trace continuation fields.
func (p *Plugin) WrapPayload(payload []byte, queue, connection string) []byte {
	return p.watcher(connection).WrapPayload(payload, queue)
}

// watcher returns the adapter for the connection, creating it on first use.
func (p *Plugin) watcher(connection string) *Watcher {
	if w, ok := p.watchers.Load(connection); ok {
		return w.(*Watcher)
	}

	w, _ := p.watchers.LoadOrStore(connection, newWatcher(connection, p.cfg, p.log, p.metrics, p.transport, p.clock))
	return w.(*Watcher)
}
