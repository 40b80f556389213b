// Package metrics collects Prometheus metrics for the HTTP surface and the
// authentication flow and exposes them for scraping.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devlink"

// Token rejection reasons.
const (
	ReasonMissing = "missing"
	ReasonInvalid = "invalid"
	ReasonExpired = "expired"
)

// AuthRecorder is what the auth flow reports to. A nil Collector is valid and
// records nothing.
type AuthRecorder interface {
	RecordRegistration()
	RecordLogin(success bool)
	RecordTokenRejected(reason string)
}

type Collector struct {
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	tokenRejected *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
	reqTotal      *prometheus.CounterVec
	reqInFlight   prometheus.Gauge
	gatherer      prometheus.Gatherer
}

// NewCollector registers every metric on reg. Pass a fresh registry in tests.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Accounts registered.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		tokenRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_rejections_total",
			Help:      "Requests to protected routes rejected by reason.",
		}, []string{"reason"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "path", "status"}),
		reqInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.tokenRejected,
		c.reqDuration,
		c.reqTotal,
		c.reqInFlight,
	)
	return c
}

func (c *Collector) RecordRegistration() {
	if c == nil {
		return
	}
	c.registrations.Inc()
}

func (c *Collector) RecordLogin(success bool) {
	if c == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordTokenRejected(reason string) {
	if c == nil {
		return
	}
	c.tokenRejected.WithLabelValues(reason).Inc()
}

// Middleware records latency and status per matched route. Mount it outside
// the error middleware so the rendered status is observed.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if c == nil {
			return ctx.Next()
		}

		start := time.Now()
		c.reqInFlight.Inc()
		defer c.reqInFlight.Dec()

		err := ctx.Next()

		path := ctx.Route().Path
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": ctx.Method(),
			"path":   path,
			"status": strconv.Itoa(ctx.Response().StatusCode()),
		}
		c.reqDuration.With(labels).Observe(time.Since(start).Seconds())
		c.reqTotal.With(labels).Inc()

		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))
}
