package change_appointment_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStatus        = "некорректный статус"
	msgNotFound             = "запись не найдена"
	msgInvalidTransition    = "переход в этот статус недопустим"
	msgStatusConflict       = "статус записи изменился, обновите данные"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("PATCH /appointments/{id}/status - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	appointmentID, err := handlers.PathUUID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req ChangeStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ChangeStatus(r.Context(), scope, appointmentID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidStatus):
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/status - Appointment not found: id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrInvalidTransition):
			h.logger.Warn("PATCH /appointments/{id}/status - Illegal transition: id=%s, error=%v", appointmentID, err)
			handlers.RespondConflict(w, "invalid_transition", msgInvalidTransition)

		case errors.Is(err, appointments.ErrStatusConflict):
			handlers.RespondConflict(w, "status_conflict", msgStatusConflict)

		default:
			h.logger.Error("PATCH /appointments/{id}/status - Failed to change status: id=%s, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/status - Status changed: id=%s, from=%s, to=%s, applied=%t",
		appointmentID, result.From, req.Status, result.Applied)
	handlers.RespondJSON(w, http.StatusOK, result)
}
