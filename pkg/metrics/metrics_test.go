package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer("appointments", reg)

	m.RecordBookingCheck("double_booking")
	m.RecordBookingCheck("double_booking")
	m.RecordStatusTransition("confirmed", "completed")
	m.RecordNotification("email", "sent")
	m.RecordOutboxPublished(3)
	m.RecordHTTPRequest("GET", "/api/v1/appointments", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingChecksTotal.WithLabelValues("appointments", "double_booking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransitionsTotal.WithLabelValues("appointments", "confirmed", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsTotal.WithLabelValues("appointments", "email", "sent")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.outboxPublishedTotal.WithLabelValues("appointments")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("appointments", "GET", "/api/v1/appointments", "200")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordBookingCheck("available")
		m.RecordStatusTransition("pending", "confirmed")
		m.RecordNotification("whatsapp", "failed")
		m.RecordOutboxPublished(1)
		m.ObserveDBQuery("query", time.Millisecond, nil)
	})
}
