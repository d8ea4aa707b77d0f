// Package metrics exports renderer statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cute/src/render"
)

// Collector is a render.Viewer recording every finished frame.
type Collector struct {
	r        *render.Renderer
	registry *prometheus.Registry
	lastSeen int

	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	cycleDuration prometheus.Histogram
	primitives    prometheus.Gauge
	merges        prometheus.Counter
	inserts       prometheus.Counter
	sortedBatches prometheus.Counter
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cute_frames_total",
			Help: "Total number of rendered frames",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cute_frame_duration_seconds",
			Help:    "Duration of a whole frame: world build, cycles and fill",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cute_cycle_duration_seconds",
			Help:    "Duration of the cycles of a frame",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		primitives: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cute_primitives",
			Help: "Primitives of the last cycled state",
		}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cute_batch_merges_total",
			Help: "Form output batches merged with the two-way merge",
		}),
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cute_inserts_total",
			Help: "Form outputs placed by binary-search insertion",
		}),
		sortedBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cute_sorted_batches_total",
			Help: "Form output batches which needed sorting before the merge",
		}),
	}
	c.registry.MustRegister(c.frames, c.frameDuration, c.cycleDuration, c.primitives, c.merges, c.inserts, c.sortedBatches)
	return c
}

func (c *Collector) Register(r *render.Renderer) {
	c.r = r
}

func (c *Collector) Start() {}

// Refresh records the last frame once.
func (c *Collector) Refresh() {
	st := c.r.Status()
	if st.FrameNum == c.lastSeen {
		return
	}
	c.lastSeen = st.FrameNum
	c.frames.Inc()
	c.frameDuration.Observe(st.FrameTime.Seconds())
	c.cycleDuration.Observe(st.CycleTime.Seconds())
	c.primitives.Set(float64(st.Primitives))
	c.merges.Add(float64(st.Stats.Merges))
	c.inserts.Add(float64(st.Stats.Inserts))
	c.sortedBatches.Add(float64(st.Stats.SortedBatches))
}

// Registry returns the registry holding the collector metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
