/*
	metrics.go: Prometheus instrumentation for the transformation module
	(SPEC_FULL.md DOMAIN STACK). Counters track per-feed ingestion and
	parse failures; the registry size is exposed as a gauge sampled by
	the generator on each sweep.
*/

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ItemsIngested counts items pulled off the input datahub queue, by
	// content type (nmea, sbs1, ogn).
	ItemsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightbox",
		Subsystem: "transform",
		Name:      "items_ingested_total",
		Help:      "Items dispatched from the input queue, by content type.",
	}, []string{"content_type"})

	// ParseErrors counts InputFormatError drops, by content type.
	ParseErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightbox",
		Subsystem: "transform",
		Name:      "parse_errors_total",
		Help:      "Rows or sentences dropped for failing to parse, by content type.",
	}, []string{"content_type"})

	// SentencesEmitted counts FLARM sentences pushed to the outbound queue.
	SentencesEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightbox",
		Subsystem: "transform",
		Name:      "sentences_emitted_total",
		Help:      "PFLAA/PFLAU sentences pushed to the outbound queue, by sentence type.",
	}, []string{"sentence"})

	// RegistrySize is the number of aircraft currently tracked, sampled at
	// the start of each generator sweep.
	RegistrySize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flightbox",
		Subsystem: "transform",
		Name:      "registry_size",
		Help:      "Aircraft currently present in the registry.",
	})

	// SweepDuration observes how long one generator sweep takes.
	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flightbox",
		Subsystem: "transform",
		Name:      "sweep_duration_seconds",
		Help:      "Wall-clock time to complete one FLARM generator sweep.",
		Buckets:   prometheus.DefBuckets,
	})
)

// MustRegister registers every metric in this package with reg. Panics on
// a duplicate registration, matching prometheus.MustRegister's contract.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(ItemsIngested, ParseErrors, SentencesEmitted, RegistrySize, SweepDuration)
}
