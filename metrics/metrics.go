package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the quiz service.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionsStarted *prometheus.CounterVec
	Submissions     *prometheus.CounterVec
	LevelUnlocks    *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	DroppedWrites   prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quiz",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SessionsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Name:      "sessions_started_total",
				Help:      "Quiz sessions started per level",
			},
			[]string{"level"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Name:      "submissions_total",
				Help:      "Quiz submissions per level and pass outcome",
			},
			[]string{"level", "passed"},
		),
		LevelUnlocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Name:      "level_unlocks_total",
				Help:      "Levels unlocked by passing the previous tier",
			},
			[]string{"level"},
		),
		PersistFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Name:      "persist_failures_total",
				Help:      "Failed progress or attempt writes",
			},
			[]string{"op"},
		),
		DroppedWrites: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quiz",
				Name:      "persist_dropped_total",
				Help:      "Writes dropped because the persistence queue was full",
			},
		),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) SessionStarted(level int) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (m *Metrics) Submitted(level int, passed bool) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(strconv.Itoa(level), strconv.FormatBool(passed)).Inc()
}

func (m *Metrics) Unlocked(level int) {
	if m == nil {
		return
	}
	m.LevelUnlocks.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (m *Metrics) PersistFailed(op string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) WriteDropped() {
	if m == nil {
		return
	}
	m.DroppedWrites.Inc()
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestCounter.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
