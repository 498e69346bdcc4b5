// Package metrics exposes prometheus instrumentation for canvas operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the canvas metrics on a private registry so that several
// canvases (and tests) never collide on the default registry.
type Collector struct {
	registry *prometheus.Registry

	StrokesCommitted prometheus.Counter
	StampsPlaced     prometheus.Counter
	Undos            prometheus.Counter
	Redos            prometheus.Counter
	Clears           prometheus.Counter
	Exports          prometheus.Counter

	RenderDuration prometheus.Histogram

	HistoryStrokes  prometheus.Gauge
	RedoPoolStrokes prometheus.Gauge
}

// NewCollector creates and registers all metrics under namespace.
func NewCollector(namespace string) *Collector {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	c := &Collector{
		registry:         prometheus.NewRegistry(),
		StrokesCommitted: counter("strokes_committed_total", "Freehand strokes committed to history"),
		StampsPlaced:     counter("stamps_placed_total", "Stamps appended to history"),
		Undos:            counter("undo_total", "Undo operations that moved a stroke"),
		Redos:            counter("redo_total", "Redo operations that restored a stroke"),
		Clears:           counter("clears_total", "Canvas clears"),
		Exports:          counter("exports_total", "Raster exports"),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to replay history onto the raster surface",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		HistoryStrokes:  gauge("history_strokes", "Strokes currently in history"),
		RedoPoolStrokes: gauge("redo_pool_strokes", "Strokes currently in the redo pool"),
	}

	c.registry.MustRegister(
		c.StrokesCommitted, c.StampsPlaced, c.Undos, c.Redos, c.Clears, c.Exports,
		c.RenderDuration, c.HistoryStrokes, c.RedoPoolStrokes,
	)
	return c
}

// ObserveRender records how long a render took.
func (c *Collector) ObserveRender(d time.Duration) {
	if c == nil {
		return
	}
	c.RenderDuration.Observe(d.Seconds())
}

// SetDepths records the current stack sizes.
func (c *Collector) SetDepths(history, redo int) {
	if c == nil {
		return
	}
	c.HistoryStrokes.Set(float64(history))
	c.RedoPoolStrokes.Set(float64(redo))
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
