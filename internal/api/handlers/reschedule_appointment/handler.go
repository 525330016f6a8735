package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись не найдена"
	msgCannotReschedule     = "перенести можно только ожидающую или подтверждённую запись"
	msgStatusConflict       = "статус записи изменился, обновите данные"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("PATCH /appointments/{id}/reschedule - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	appointmentID, err := handlers.PathUUID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq := req.ToUseCaseRequest(appointmentID)
	ucReq.Scope = scope

	result, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleAppointment.ErrCannotReschedule):
			handlers.RespondConflict(w, "cannot_reschedule", msgCannotReschedule)

		case errors.Is(err, rescheduleAppointment.ErrStatusConflict):
			handlers.RespondConflict(w, "status_conflict", msgStatusConflict)

		default:
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed to reschedule: id=%s, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Rejected != nil {
		h.logger.Info("PATCH /appointments/{id}/reschedule - Rejected: id=%s, reason=%s", appointmentID, result.Rejected.Reason)
		handlers.RespondRejection(w, result.Rejected)
		return
	}

	if result.Changed {
		h.logger.Info("PATCH /appointments/{id}/reschedule - Rescheduled: id=%s, startsAt=%s", appointmentID, result.Appointment.ScheduledAt)
	}
	handlers.RespondJSON(w, http.StatusOK, &RescheduleResponse{
		Appointment: models.FromDomainAppointment(result.Appointment),
		Changed:     result.Changed,
	})
}
