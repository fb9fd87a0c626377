package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by operation name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pyjama_portal_redis_errors_total",
	Help: "Total number of Redis errors by operation type",
}, []string{"operation"})

// NotificationsWritten counts notification rows created by trigger kind.
var NotificationsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pyjama_portal_notifications_written_total",
	Help: "Total number of notification rows written by trigger",
}, []string{"trigger"})

// LinkPreviewFetches counts outbound link-preview fetches by outcome.
var LinkPreviewFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pyjama_portal_link_preview_fetches_total",
	Help: "Total number of link preview fetches by outcome",
}, []string{"outcome"})

var prom *fiberprometheus.FiberPrometheus

// InitMetrics creates the Prometheus HTTP middleware for the service. The
// middleware registers on the default registry, so it is created once and
// reused on subsequent calls.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	if prom == nil {
		prom = fiberprometheus.New(serviceName)
	}
	return prom
}

// MetricsMiddleware adapts the Prometheus middleware into a Fiber handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
