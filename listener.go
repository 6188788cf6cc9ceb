package queuetrace

import (
	"context"

	"go.uber.org/zap"
)

// non blocking listener
func (p *Plugin) listener() {
	for i := 0; i < p.cfg.NumPollers; i++ {
		go func() {
			for {
				select {
				case <-p.stopCh:
					p.log.Debug("------> queuetrace poller was stopped <------")
					return
				case ev, ok := <-p.eventsCh:
					if !ok {
						return
					}

					_, span := p.tracer.Tracer(PluginName).Start(context.Background(), "queuetrace_listener")
					p.dispatch(ev)
					span.End()
				}
			}
		}()
	}
}

func (p *Plugin) dispatch(ev Event) {
	w := p.watcher(ev.Connection)

	switch ev.Type {
	case EventJobQueueing:
		w.HandleJobQueueing(ev.Job)
	case EventJobQueued:
		w.HandleJobQueued(ev.Job)
	case EventJobProcessing:
		w.HandleJobProcessing(ev.Job)
	case EventJobProcessed:
		w.HandleJobProcessed(ev.Job)
	case EventJobExceptionOccurred:
		w.HandleJobExceptionOccurred(ev.Job, ev.Err)
	case EventWorkerStopping:
		w.HandleWorkerStopping()
	default:
		p.log.Warn("unknown lifecycle event", zap.Uint8("type", uint8(ev.Type)), zap.String("connection", ev.Connection))
	}
}
