// Package metrics exports index and transport metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hast"

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Prometheus implements hast.MetricsCollector on a private registry and
// serves it over HTTP.
type Prometheus struct {
	registry *prometheus.Registry

	inserts         *prometheus.CounterVec
	insertDuration  prometheus.Histogram
	duplicates      prometheus.Counter
	lookups         prometheus.Counter
	lookupMisses    prometheus.Counter
	lookupHashes    prometheus.Histogram
	lookupDuration  prometheus.Histogram
	persists        *prometheus.CounterVec
	persistBytes    prometheus.Counter
	persistDuration prometheus.Histogram
	recovered       prometheus.Gauge
	recoverySkipped prometheus.Gauge
	recoverySeconds prometheus.Gauge
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus creates a collector with its own registry, including the Go
// runtime and process collectors. Each call is independent, so tests may
// create as many as they need.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inserts_total",
			Help:      "First-time report inserts by result.",
		}, []string{"result"}),
		insertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "insert_duration_seconds",
			Help:      "Duration of first-time inserts including the file write.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_inserts_total",
			Help:      "Inserts ignored because the report was already present.",
		}),
		lookups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Lookups served.",
		}),
		lookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_misses_total",
			Help:      "Lookups that matched no report.",
		}),
		lookupHashes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_hashes",
			Help:      "Number of hashes per lookup.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of lookups.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persists_total",
			Help:      "Report file writes by result.",
		}, []string{"result"}),
		persistBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_bytes_total",
			Help:      "Bytes written to report files.",
		}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Duration of report file writes.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		recovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recovery_loaded_reports",
			Help:      "Reports loaded by the last recovery.",
		}),
		recoverySkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recovery_skipped_files",
			Help:      "Files skipped by the last recovery.",
		}),
		recoverySeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recovery_duration_seconds",
			Help:      "Wall time of the last recovery.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.inserts, p.insertDuration, p.duplicates,
		p.lookups, p.lookupMisses, p.lookupHashes, p.lookupDuration,
		p.persists, p.persistBytes, p.persistDuration,
		p.recovered, p.recoverySkipped, p.recoverySeconds,
		p.requests, p.requestDuration,
	)

	return p
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// RecordInsert implements hast.MetricsCollector.
func (p *Prometheus) RecordInsert(duration time.Duration, err error) {
	p.inserts.WithLabelValues(result(err)).Inc()
	p.insertDuration.Observe(duration.Seconds())
}

// RecordDuplicate implements hast.MetricsCollector.
func (p *Prometheus) RecordDuplicate() {
	p.duplicates.Inc()
}

// RecordLookup implements hast.MetricsCollector.
func (p *Prometheus) RecordLookup(hashes, matched int, duration time.Duration) {
	p.lookups.Inc()
	if matched == 0 {
		p.lookupMisses.Inc()
	}
	p.lookupHashes.Observe(float64(hashes))
	p.lookupDuration.Observe(duration.Seconds())
}

// RecordPersist implements hast.MetricsCollector.
func (p *Prometheus) RecordPersist(bytes int, duration time.Duration, err error) {
	p.persists.WithLabelValues(result(err)).Inc()
	if err == nil {
		p.persistBytes.Add(float64(bytes))
	}
	p.persistDuration.Observe(duration.Seconds())
}

// RecordRecovery implements hast.MetricsCollector.
func (p *Prometheus) RecordRecovery(loaded, skipped int, duration time.Duration) {
	p.recovered.Set(float64(loaded))
	p.recoverySkipped.Set(float64(skipped))
	p.recoverySeconds.Set(duration.Seconds())
}

// ObserveRequest records a served HTTP request.
func (p *Prometheus) ObserveRequest(route string, code int, duration time.Duration) {
	p.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	p.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
