// Package prometheus records run metrics in a Prometheus registry so they can
// be dumped in the node exporter textfile format.
package prometheus

import (
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/crawl"
	"github.com/fwojciec/docsynth/merge"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsynth"

// Metrics holds the collectors of one process. All methods are safe for
// concurrent use and never block, so Progress can run inside the crawler's
// critical section.
type Metrics struct {
	registry *prometheus.Registry

	crawlPages   *prometheus.CounterVec
	crawlRuns    prometheus.Counter
	crawlYield   prometheus.Gauge
	mergeEntries *prometheus.CounterVec
	conflicts    *prometheus.GaugeVec
	buildTime    prometheus.Histogram
}

// NewMetrics creates Metrics registered in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		crawlPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "pages_total",
			Help:      "Pages visited by the crawler, by result.",
		}, []string{"result"}),
		crawlRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "runs_total",
			Help:      "Finished crawls.",
		}),
		crawlYield: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "last_pages",
			Help:      "Pages produced by the most recent crawl.",
		}),
		mergeEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "merge",
			Name:      "entries_total",
			Help:      "Entries rendered into category documents, by how their final text was produced.",
		}, []string{"result"}),
		conflicts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conflicts",
			Help:      "Conflicts in the most recent artifact, by severity.",
		}, []string{"severity"}),
		buildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of complete builds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	m.registry.MustRegister(m.crawlPages, m.crawlRuns, m.crawlYield, m.mergeEntries, m.conflicts, m.buildTime)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Progress returns a crawl.ProgressFunc that records events and then passes
// them to next, which may be nil.
func (m *Metrics) Progress(next crawl.ProgressFunc) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		m.ObserveCrawl(event)
		if next != nil {
			next(event)
		}
	}
}

// ObserveCrawl records one crawl progress event.
func (m *Metrics) ObserveCrawl(event crawl.ProgressEvent) {
	switch event.Type {
	case crawl.ProgressCompleted:
		m.crawlPages.WithLabelValues("completed").Inc()
	case crawl.ProgressFailed:
		m.crawlPages.WithLabelValues("failed").Inc()
	case crawl.ProgressFinished:
		m.crawlRuns.Inc()
		m.crawlYield.Set(float64(event.Completed))
	}
}

// ObserveMerge records the outcome of a merge.
func (m *Metrics) ObserveMerge(report *merge.Report) {
	m.mergeEntries.WithLabelValues("enhanced").Add(float64(report.Enhanced))
	m.mergeEntries.WithLabelValues("fallback").Add(float64(report.Fallbacks))
	m.mergeEntries.WithLabelValues("rule_based").Add(float64(report.Entries - report.Enhanced - report.Fallbacks))

	counts := map[docsynth.Severity]int{
		docsynth.SeverityHigh:   0,
		docsynth.SeverityMedium: 0,
		docsynth.SeverityLow:    0,
	}
	if report.Artifact != nil {
		for _, c := range report.Artifact.Conflicts {
			counts[c.Severity]++
		}
	}
	for sev, n := range counts {
		m.conflicts.WithLabelValues(string(sev)).Set(float64(n))
	}
}

// ObserveBuild records the duration of a complete build.
func (m *Metrics) ObserveBuild(d time.Duration) {
	m.buildTime.Observe(d.Seconds())
}

// WriteToTextfile writes every metric to path in the textfile collector
// format. The file is replaced atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
