package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

const (
	DefaultBatchSize = 10
	MaxBatchSize     = 100

	ResultSent   = "sent"
	ResultRetry  = "retry"
	ResultFailed = "failed"
)

// Config параметры рассылки
type Config struct {
	BatchSize    int
	MaxAttempts  int
	Backoff      time.Duration
	PollInterval time.Duration
	// RatePerSecond <= 0 отключает ограничение скорости
	RatePerSecond float64
	Burst         int
}

// DispatchRequest один проход рассылки.
// Пустой Scope означает все организации (фоновый режим).
type DispatchRequest struct {
	Scope          tenant.Scope
	NotificationID *uuid.UUID
	BatchSize      int
}

// Result итог отправки одного уведомления
type Result struct {
	ID      uuid.UUID `json:"id"`
	Channel string    `json:"channel"`
	Success bool      `json:"success"`
	Outcome string    `json:"outcome"` // sent, retry, failed
	Error   string    `json:"error,omitempty"`
}

// DispatchResponse итог прохода
type DispatchResponse struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}
