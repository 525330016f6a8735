package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidPeriod возвращается, когда from не раньше to
	ErrInvalidPeriod = errors.New("invalid period")
)

// Request модели

// ListRequest фильтр списка записей организации
type ListRequest struct {
	From    *time.Time `json:"from,omitempty"` // включительно
	To      *time.Time `json:"to,omitempty"`   // не включительно
	Status  *string    `json:"status,omitempty"`
	StaffID *uuid.UUID `json:"staffId,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		From:    r.From,
		To:      r.To,
		StaffID: r.StaffID,
	}

	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return filter, ErrInvalidPeriod
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organizationId"`
	CustomerID      uuid.UUID  `json:"customerId"`
	ServiceID       uuid.UUID  `json:"serviceId"`
	StaffID         *uuid.UUID `json:"staffId,omitempty"`
	ScheduledAt     time.Time  `json:"scheduledAt"`
	EndsAt          time.Time  `json:"endsAt"`
	DurationMinutes int        `json:"durationMinutes"`
	Price           float64    `json:"price"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// StatusChangeResponse результат смены статуса.
// Applied=false - запись уже была в целевом статусе, побочные эффекты не выполнялись.
type StatusChangeResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
	From        string               `json:"from"`
	Applied     bool                 `json:"applied"`
}

// DayStatsResponse статистика за день
type DayStatsResponse struct {
	Date      string  `json:"date"` // "2025-10-15"
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Confirmed int     `json:"confirmed"`
	Completed int     `json:"completed"`
	Cancelled int     `json:"cancelled"`
	NoShow    int     `json:"noShow"`
	Revenue   float64 `json:"revenue"`
}

// NotificationResponse уведомление после отмены
type NotificationResponse struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	Channel       string     `json:"channel"`
	Template      string     `json:"template"`
	Status        string     `json:"status"`
	ScheduledFor  time.Time  `json:"scheduledFor"`
}

// Методы конвертации

// ToDomainStatus конвертирует строку в domain статус
func ToDomainStatus(s string) (domain.AppointmentStatus, error) {
	status := domain.AppointmentStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:              a.ID,
		OrganizationID:  a.OrganizationID,
		CustomerID:      a.CustomerID,
		ServiceID:       a.ServiceID,
		StaffID:         a.StaffID,
		ScheduledAt:     a.ScheduledAt,
		EndsAt:          a.EndsAt(),
		DurationMinutes: a.Duration,
		Price:           a.Price,
		Status:          string(a.Status),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}

	return resp
}

// FromDomainDayStats конвертирует статистику в DTO
func FromDomainDayStats(s *domain.DayStats) *DayStatsResponse {
	return &DayStatsResponse{
		Date:      s.Date.Format(domain.DateFormat),
		Total:     s.Total,
		Pending:   s.Pending,
		Confirmed: s.Confirmed,
		Completed: s.Completed,
		Cancelled: s.Cancelled,
		NoShow:    s.NoShow,
		Revenue:   s.Revenue,
	}
}

// FromDomainNotification конвертирует уведомление в DTO
func FromDomainNotification(n *domain.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:            n.ID,
		AppointmentID: n.AppointmentID,
		Channel:       string(n.Channel),
		Template:      string(n.Template),
		Status:        string(n.Status),
		ScheduledFor:  n.ScheduledFor,
	}
}
