package queuetrace

import (
	"sync/atomic"

	"github.com/roadrunner-server/errors"
)

type rpc struct {
	p *Plugin
}

// Stats is the RPC response with the plugin counters.
type Stats struct {
	PublishSpans        uint64 `json:"publish_spans"`
	ProcessSpans        uint64 `json:"process_spans"`
	ProcessTransactions uint64 `json:"process_transactions"`
	Vetoed              uint64 `json:"vetoed"`
	Untraced            uint64 `json:"untraced"`
	Flushes             uint64 `json:"flushes"`
	FlushErrors         uint64 `json:"flush_errors"`
}

func (r *rpc) Stats(_ bool, out *Stats) error {
	const op = errors.Op("queuetrace_rpc_stats")
	if out == nil {
		return errors.E(op, errors.Str("nil output"))
	}

	se := r.p.metrics
	out.PublishSpans = atomic.LoadUint64(se.publishSpans)
	out.ProcessSpans = atomic.LoadUint64(se.processSpans)
	out.ProcessTransactions = atomic.LoadUint64(se.processTransactions)
	out.Vetoed = atomic.LoadUint64(se.vetoed)
	out.Untraced = atomic.LoadUint64(se.untraced)
	out.Flushes = atomic.LoadUint64(se.flushes)
	out.FlushErrors = atomic.LoadUint64(se.flushErrs)

	return nil
}

// List returns the connections with an active watcher.
func (r *rpc) List(_ bool, out *[]string) error {
	const op = errors.Op("queuetrace_rpc_list")
	if out == nil {
		return errors.E(op, errors.Str("nil output"))
	}

	res := make([]string, 0, 2)
	r.p.watchers.Range(func(key, _ any) bool {
		// we can safely convert the key here as we know that we store keys as strings
		res = append(res, key.(string))
		return true
	})

	*out = res
	return nil
}
