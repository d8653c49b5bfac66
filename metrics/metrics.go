package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts what happened during one timeline run.
type Recorder struct {
	registry     *prometheus.Registry
	chunks       *prometheus.CounterVec
	sortFailures prometheus.Counter
	enhancements *prometheus.CounterVec
	events       prometheus.Gauge
}

// New registers the timeline metrics on a private registry.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}
	r.chunks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline",
		Name:      "chunks_total",
		Help:      "Bulk text chunks seen by the parser, by outcome",
	}, []string{"outcome"})
	r.sortFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeline",
		Name:      "sort_failures_total",
		Help:      "Layout runs that kept input order because events could not be sorted",
	})
	r.enhancements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeline",
		Name:      "enhancements_total",
		Help:      "Enhancement attempts, by outcome",
	}, []string{"outcome"})
	r.events = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timeline",
		Name:      "events",
		Help:      "Events placed on the last rendered timeline",
	})
	r.registry.MustRegister(r.chunks, r.sortFailures, r.enhancements, r.events)
	return r
}

// Registry exposes the underlying gatherer.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveParse records parsed and skipped chunk counts.
func (r *Recorder) ObserveParse(parsed, skipped int) {
	r.chunks.WithLabelValues("parsed").Add(float64(parsed))
	r.chunks.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveLayout records the size of a layout and whether it was sorted.
func (r *Recorder) ObserveLayout(events int, sorted bool) {
	r.events.Set(float64(events))
	if !sorted {
		r.sortFailures.Inc()
	}
}

// ObserveEnhancement records one enhancement attempt.
func (r *Recorder) ObserveEnhancement(ok bool) {
	outcome := "failed"
	if ok {
		outcome = "applied"
	}
	r.enhancements.WithLabelValues(outcome).Inc()
}

// WriteTextfile dumps all metrics in the text exposition format to path,
// for node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
