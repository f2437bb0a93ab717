package metrics

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lingmeme"

var (
	// RenderDuration 单帧合成耗时
	RenderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "editor",
		Name:      "render_duration_seconds",
		Help:      "Time spent compositing one editor frame.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	InputEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "editor",
		Name:      "input_events_total",
		Help:      "Normalized input events handled, by kind and modality.",
	}, []string{"kind", "modality"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "editor",
		Name:      "active_sessions",
		Help:      "Editor sessions currently held in memory.",
	})

	PersistedArtifacts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gallery",
		Name:      "persisted_total",
		Help:      "Finished memes handed to the gallery store.",
	})

	GallerySize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "gallery",
		Name:      "memes",
		Help:      "Number of memes in the gallery.",
	})

	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limit_decisions_total",
		Help:      "Rate limiter decisions, by route and result.",
	}, []string{"route", "result"})
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// Registry returns the process registry with every collector of this package on it
func Registry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			RenderDuration,
			InputEvents,
			ActiveSessions,
			PersistedArtifacts,
			GallerySize,
			RateLimited,
		)
	})
	return registry
}

// ObserveRender records one render started at start
func ObserveRender(start time.Time) {
	RenderDuration.Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus text format
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
