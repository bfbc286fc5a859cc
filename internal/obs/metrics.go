// Package obs содержит метрики Prometheus: HTTP-запросы, отказы шлюза доступа,
// события биллинга и срабатывания ограничителя частоты.
package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Общие HTTP-метрики
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Доменные метрики
var (
	// GateRejections отказы шлюза доступа по причине (missing_token, invalid_token, expired_token, waiting_list).
	GateRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_gate_rejections_total",
			Help: "Requests rejected or redirected by the access gate.",
		},
		[]string{"reason"},
	)

	// BillingEvents обработанные события вебхука по типу и результату.
	BillingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_webhook_events_total",
			Help: "Billing webhook events by type and reconciliation outcome.",
		},
		[]string{"type", "outcome"},
	)

	RateLimitRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Requests rejected with 429.",
	})

	// QueueMessages исход обработки сообщений очереди: acked, dropped, requeued.
	QueueMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_total",
			Help: "Queue messages by queue and settlement result.",
		},
		[]string{"queue", "result"},
	)
)

var registerOnce sync.Once

// Init регистрирует метрики в default-регистре. Повторные вызовы ничего не делают.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			GateRejections, BillingEvents, RateLimitRejections, QueueMessages,
		)
	})
}

// Handler отдаёт метрики Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument считает запросы, их длительность и количество в полёте.
// Путь берётся из шаблона маршрута chi, чтобы id в URL не раздували число серий.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		code := strconv.Itoa(status)
		httpRequestDuration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, path, code).Inc()
	})
}
