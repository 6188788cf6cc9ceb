package queuetrace

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "rr_queuetrace"
)

type statsExporter struct {
	publishSpans        *uint64
	processSpans        *uint64
	processTransactions *uint64
	vetoed              *uint64
	untraced            *uint64
	flushes             *uint64
	flushErrs           *uint64

	publishSpansDesc        *prometheus.Desc
	processSpansDesc        *prometheus.Desc
	processTransactionsDesc *prometheus.Desc
	vetoedDesc              *prometheus.Desc
	untracedDesc            *prometheus.Desc
	flushesDesc             *prometheus.Desc
	flushErrsDesc           *prometheus.Desc

	spansStartedCounter *prometheus.CounterVec
}

func newStatsExporter() *statsExporter {
	return &statsExporter{
		publishSpans:        toPtr(uint64(0)),
		processSpans:        toPtr(uint64(0)),
		processTransactions: toPtr(uint64(0)),
		vetoed:              toPtr(uint64(0)),
		untraced:            toPtr(uint64(0)),
		flushes:             toPtr(uint64(0)),
		flushErrs:           toPtr(uint64(0)),

		publishSpansDesc:        prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "publish_spans"), "Number of queue.publish spans started", nil, nil),
		processSpansDesc:        prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "process_spans"), "Number of queue.process child spans started", nil, nil),
		processTransactionsDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "process_transactions"), "Number of queue.process transactions started", nil, nil),
		vetoedDesc:              prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "vetoed"), "Number of jobs left untraced because the parent trace was not sampled", nil, nil),
		untracedDesc:            prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "untraced"), "Number of jobs left untraced by configuration", nil, nil),
		flushesDesc:             prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "flushes"), "Number of event flushes triggered", nil, nil),
		flushErrsDesc:           prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "flush_errors"), "Number of event flushes which failed", nil, nil),

		spansStartedCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spans_started_total",
			Help:      "The total number of spans started by the queue tracing plugin",
		}, []string{"op", "queue", "connection"}),
	}
}

func (se *statsExporter) CountPublishSpan() {
	atomic.AddUint64(se.publishSpans, 1)
}

func (se *statsExporter) CountProcessSpan() {
	atomic.AddUint64(se.processSpans, 1)
}

func (se *statsExporter) CountProcessTransaction() {
	atomic.AddUint64(se.processTransactions, 1)
}

func (se *statsExporter) CountVetoed() {
	atomic.AddUint64(se.vetoed, 1)
}

func (se *statsExporter) CountUntraced() {
	atomic.AddUint64(se.untraced, 1)
}

func (se *statsExporter) CountFlush() {
	atomic.AddUint64(se.flushes, 1)
}

func (se *statsExporter) CountFlushErr() {
	atomic.AddUint64(se.flushErrs, 1)
}

func (p *Plugin) MetricsCollector() []prometheus.Collector {
	return []prometheus.Collector{p.metrics}
}

func (se *statsExporter) Describe(d chan<- *prometheus.Desc) {
	d <- se.publishSpansDesc
	d <- se.processSpansDesc
	d <- se.processTransactionsDesc
	d <- se.vetoedDesc
	d <- se.untracedDesc
	d <- se.flushesDesc
	d <- se.flushErrsDesc

	se.spansStartedCounter.Describe(d)
}

func (se *statsExporter) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(se.publishSpansDesc, prometheus.GaugeValue, float64(atomic.LoadUint64(se.publishSpans)))
	ch <- prometheus.MustNewConstMetric(se.processSpansDesc, prometheus.GaugeValue, float64(atomic.LoadUint64(se.processSpans)))
	ch <- prometheus.MustNewConstMetric(se.processTransactionsDesc, prometheus.GaugeValue, float64(atomic.LoadUint64(se.processTransactions)))
	ch <- prometheus.MustNewConstMetric(se.vetoedDesc, prometheus.GaugeValue, float64(atomic.LoadUint64(se.vetoed)))
	ch <- prometheus.MustNewConstMetric(se.untracedDesc, prometheus.GaugeValue, float64(atomic.LoadUint64(se.untraced)))
	ch <- prometheus.MustNewConstMetric(se.flushesDesc, prometheus.GaugeValue, float64(atomic.LoadUint64(se.flushes)))
	ch <- prometheus.MustNewConstMetric(se.flushErrsDesc, prometheus.GaugeValue, float64(atomic.LoadUint64(se.flushErrs)))

	se.spansStartedCounter.Collect(ch)
}
