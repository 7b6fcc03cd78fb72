// Package metrics exposes the application metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/QinlinChen/StuHub/core/course"
)

const namespace = "stuhub"

// gpaBuckets covers the 0..5 GPA scale.
var gpaBuckets = []float64{1, 2, 2.5, 3, 3.5, 4, 4.5, 5}

type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	statisticsComputed prometheus.Counter
	comprehensiveGPA   prometheus.Histogram
	coursesImported    *prometheus.CounterVec
}

var _ course.Observer = (*Manager)(nil) // interface compliance check

// NewManager registers the metrics on a dedicated registry, along with the Go and process collectors.
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	m.statisticsComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "courses",
		Name:      "statistics_computed_total",
		Help:      "Total number of statistics computations",
	})
	m.comprehensiveGPA = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "courses",
		Name:      "comprehensive_gpa",
		Help:      "Distribution of the computed comprehensive GPAs",
		Buckets:   gpaBuckets,
	})
	m.coursesImported = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "courses",
			Name:      "imported_total",
			Help:      "Total number of transcript rows imported, by classification",
		},
		[]string{"classification"},
	)
	return m
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) StatisticsComputed(stats course.Statistics) {
	m.statisticsComputed.Inc()
	if stats.CourseCount > 0 {
		m.comprehensiveGPA.Observe(stats.ComprehensiveGPA)
	}
}

func (m *Manager) CoursesImported(classified, unclassified int) {
	m.coursesImported.WithLabelValues("classified").Add(float64(classified))
	m.coursesImported.WithLabelValues("unclassified").Add(float64(unclassified))
}

// Middleware records the count and duration of requests, labelled by route pattern.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unknown"
			}
			method := c.Request().Method

			m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			m.httpRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
