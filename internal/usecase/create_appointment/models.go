package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// Origin источник запроса
type Origin string

const (
	// OriginPublic страница записи организации
	OriginPublic Origin = "public"
	// OriginStaff кабинет сотрудника
	OriginStaff Origin = "staff"
)

// Request модель запроса на создание записи
type Request struct {
	Scope  tenant.Scope
	Origin Origin
	// IdempotencyKey необязателен; повтор с тем же ключом и телом возвращает созданную запись
	IdempotencyKey string

	ServiceID uuid.UUID
	StaffID   *uuid.UUID
	StartsAt  time.Time
	Notes     *string

	// CustomerID существующий клиент (только для сотрудников), иначе клиент ищется по контакту
	CustomerID *uuid.UUID
	Customer   domain.CustomerContact

	// Status начальный статус: pending или confirmed (только для сотрудников)
	Status *string
}

// Response модель ответа. Ровно одно из Appointment и Rejected не nil.
type Response struct {
	Appointment *domain.Appointment
	Customer    *domain.Customer
	Rejected    *domain.BookingCheck
	// Replayed запись создана предыдущим запросом с тем же ключом
	Replayed bool
}
