// Package signalmetrics exports hub state as Prometheus metrics.
//
// Metrics collected on every scrape:
//   - signalkit_hub_signals: number of registered signals
//   - signalkit_signal_subscribers: active slots per signal, labelled by name and type
//   - signalkit_signal_stored_slots: stored slots per signal including those
//     awaiting compaction, labelled by name and type
//
// Example:
//
//	hub := signal.NewHub()
//	prometheus.MustRegister(signalmetrics.New(hub))
package signalmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/signalkit/pkg/signal"
)

// Option configures a Collector.
type Option func(*config)

type config struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace sets the metrics namespace (default: "signalkit").
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *config) {
		c.constLabels = labels
	}
}

// Collector reads a hub snapshot on each scrape.
type Collector struct {
	hub *signal.Hub

	signals     *prometheus.Desc
	subscribers *prometheus.Desc
	stored      *prometheus.Desc
}

// New creates a collector for hub.
func New(hub *signal.Hub, opts ...Option) *Collector {
	cfg := config{namespace: "signalkit"}
	for _, opt := range opts {
		opt(&cfg)
	}

	labels := []string{"name", "type"}
	return &Collector{
		hub: hub,
		signals: prometheus.NewDesc(
			prometheus.BuildFQName(cfg.namespace, "hub", "signals"),
			"Number of signals registered in the hub",
			nil, cfg.constLabels,
		),
		subscribers: prometheus.NewDesc(
			prometheus.BuildFQName(cfg.namespace, "signal", "subscribers"),
			"Number of active slots connected to the signal",
			labels, cfg.constLabels,
		),
		stored: prometheus.NewDesc(
			prometheus.BuildFQName(cfg.namespace, "signal", "stored_slots"),
			"Number of stored slots, including disconnected slots awaiting compaction",
			labels, cfg.constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.signals
	ch <- c.subscribers
	ch <- c.stored
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.hub.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.signals, prometheus.GaugeValue, float64(len(snap)))
	for _, info := range snap {
		ch <- prometheus.MustNewConstMetric(c.subscribers, prometheus.GaugeValue,
			float64(info.Subscribers), info.Name, info.Type)
		ch <- prometheus.MustNewConstMetric(c.stored, prometheus.GaugeValue,
			float64(info.Stored), info.Name, info.Type)
	}
}
