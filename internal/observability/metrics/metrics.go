package metrics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/inviteportal/internal/invite"
)

// Config carries the constant labels attached to every series.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics holds the portal's Prometheus instruments.
type Metrics struct {
	gatherer prometheus.Gatherer

	inviteRequests *prometheus.CounterVec
	inviteEmails   *prometheus.CounterVec
	inviteDuration *prometheus.HistogramVec
	rateLimited    prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the instruments on a dedicated registry.
func New(cfg Config) (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegisterer(registry, registry, cfg)
}

func NewWithRegisterer(registerer prometheus.Registerer, gatherer prometheus.Gatherer, cfg Config) (*Metrics, error) {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "inviteportal"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		gatherer: gatherer,
		inviteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invite_requests_total",
			Help:        "Invite batches by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		inviteEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invite_emails_total",
			Help:        "Email addresses submitted, by outcome of their batch.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		inviteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "invite_upstream_duration_seconds",
			Help:        "Latency of invite batches that reached the upstream call.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "invite_rate_limited_total",
			Help:        "Invite requests rejected by the rate limiter.",
			ConstLabels: constLabels,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "HTTP requests by route and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency by route.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{
		m.inviteRequests, m.inviteEmails, m.inviteDuration,
		m.rateLimited, m.httpRequests, m.httpDuration,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

var _ invite.Observer = (*Metrics)(nil)

// ObserveInvite records one finished invite batch.
func (m *Metrics) ObserveInvite(_ context.Context, outcome string, emails int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inviteRequests.WithLabelValues(outcome).Inc()
	if emails > 0 {
		m.inviteEmails.WithLabelValues(outcome).Add(float64(emails))
	}
	if reachedUpstream(outcome) {
		m.inviteDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// GinMiddleware records request counts and latency by matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

func reachedUpstream(outcome string) bool {
	switch outcome {
	case invite.OutcomeSuccess, invite.OutcomeUpstream, invite.OutcomeTransport:
		return true
	default:
		return false
	}
}
