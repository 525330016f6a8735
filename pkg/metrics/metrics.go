package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса.
// Все методы безопасны для nil-получателя: если метрики выключены, вызовы ничего не делают.
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbOpenConnections *prometheus.GaugeVec
	dbInUse           *prometheus.GaugeVec
	dbIdle            *prometheus.GaugeVec
	dbWaitCount       *prometheus.GaugeVec
	dbQueryDuration   *prometheus.HistogramVec
	dbQueryErrors     *prometheus.CounterVec

	bookingChecksTotal     *prometheus.CounterVec
	statusTransitionsTotal *prometheus.CounterVec
	notificationsTotal     *prometheus.CounterVec
	outboxPublishedTotal   *prometheus.CounterVec
}

// New регистрирует метрики в глобальном registry (его отдаёт promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registry
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		dbOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),

		dbInUse: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		dbIdle: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		dbWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),

		dbQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		bookingChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_checks_total",
			Help: "Conflict gate decisions by reason",
		}, []string{"service", "reason"}),

		statusTransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_status_transitions_total",
			Help: "Applied appointment status transitions",
		}, []string{"service", "from", "to"}),

		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notification delivery attempts by channel and result",
		}, []string{"service", "channel", "result"}),

		outboxPublishedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Outbox events published to the event bus",
		}, []string{"service"}),
	}
}

// RecordHTTPRequest учитывает обработанный HTTP запрос
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// SetDBStats обновляет метрики пула соединений
func (m *Metrics) SetDBStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbOpenConnections.WithLabelValues(m.serviceName).Set(float64(stats.OpenConnections))
	m.dbInUse.WithLabelValues(m.serviceName).Set(float64(stats.InUse))
	m.dbIdle.WithLabelValues(m.serviceName).Set(float64(stats.Idle))
	m.dbWaitCount.WithLabelValues(m.serviceName).Set(float64(stats.WaitCount))
}

// ObserveDBQuery учитывает выполненный запрос
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(m.serviceName, operation).Inc()
	}
}

// RecordBookingCheck учитывает решение conflict gate ("available" или код причины)
func (m *Metrics) RecordBookingCheck(reason string) {
	if m == nil {
		return
	}
	m.bookingChecksTotal.WithLabelValues(m.serviceName, reason).Inc()
}

// RecordStatusTransition учитывает применённый переход статуса
func (m *Metrics) RecordStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitionsTotal.WithLabelValues(m.serviceName, from, to).Inc()
}

// RecordNotification учитывает попытку доставки уведомления
func (m *Metrics) RecordNotification(channel, result string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(m.serviceName, channel, result).Inc()
}

// RecordOutboxPublished учитывает опубликованные события
func (m *Metrics) RecordOutboxPublished(count int) {
	if m == nil {
		return
	}
	m.outboxPublishedTotal.WithLabelValues(m.serviceName).Add(float64(count))
}
