// Package prom adapts the cache's Metrics interface to Prometheus
// collectors.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/akgit4713/lrucache/cache"
)

// Adapter implements cache.Metrics on top of Prometheus collectors.
// Every underlying collector is safe for concurrent use, so the adapter
// needs no locking of its own.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions *prometheus.CounterVec
	size      prometheus.Gauge
}

var _ cache.Metrics = (*Adapter)(nil)

// New registers the cache collectors with reg and returns the adapter.
// A nil reg falls back to prometheus.DefaultRegisterer. namespace and
// subsystem become the metric name prefix; constLabels may be nil.
// Registering two adapters with identical names and labels on one
// registry fails the usual Prometheus way, with a panic.
func New(reg prometheus.Registerer, namespace, subsystem string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "hits_total",
			Help:        "Cache lookups that found a live entry.",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "misses_total",
			Help:        "Cache lookups that found nothing, including expired entries.",
			ConstLabels: constLabels,
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "evictions_total",
			Help:        "Entries removed by the cache, by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "size_entries",
			Help:        "Resident entries after the last mutating operation.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(a.hits, a.misses, a.evictions, a.size)
	return a
}

func (a *Adapter) Hit()  { a.hits.Inc() }
func (a *Adapter) Miss() { a.misses.Inc() }

func (a *Adapter) Evict(reason cache.EvictReason) {
	a.evictions.WithLabelValues(reason.String()).Inc()
}

func (a *Adapter) Size(entries int) { a.size.Set(float64(entries)) }
