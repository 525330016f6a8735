package delete_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgNotFound             = "запись не найдена"
	msgCannotDelete         = "завершённые записи и неявки удалять нельзя, используйте отмену"
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

// Handle DELETE /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("DELETE /appointments/{id} - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	appointmentID, err := handlers.PathUUID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("DELETE /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	if err := h.service.Delete(r.Context(), scope, appointmentID); err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrCannotDelete):
			h.logger.Warn("DELETE /appointments/{id} - Cannot delete: id=%s", appointmentID)
			handlers.RespondConflict(w, "cannot_delete", msgCannotDelete)

		default:
			h.logger.Error("DELETE /appointments/{id} - Failed to delete: id=%s, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /appointments/{id} - Appointment deleted: id=%s, org=%s", appointmentID, scope.OrganizationID())
	w.WriteHeader(http.StatusNoContent)
}
