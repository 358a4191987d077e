package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dealersite/internal/domain"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealersite",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dealersite",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	leads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealersite",
			Name:      "leads_total",
			Help:      "Leads recorded, by type and outcome.",
		},
		[]string{"type", "stored"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		leads,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware records count and latency per matched route pattern, so
// /cars/:slug is one series regardless of the slug.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		route := c.Route().Path
		if status == fiber.StatusNotFound {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// leadLabels bounds the type label; the lead endpoint is public and
// accepts any string.
var leadLabels = map[string]bool{
	domain.LeadWhatsAppUnitDetail: true,
	domain.LeadWhatsAppPromo:      true,
	domain.LeadWhatsAppFloating:   true,
	domain.LeadContactForm:        true,
}

// RecordLead counts a lead attempt. Unrecognised types share the OTHER series.
func RecordLead(leadType string, stored bool) {
	if !leadLabels[leadType] {
		leadType = "OTHER"
	}
	leads.WithLabelValues(leadType, strconv.FormatBool(stored)).Inc()
}
