package cancel_notification

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidNotificationID = "некорректный ID уведомления"
	msgNotFound              = "уведомление не найдено"
	msgNotPending            = "уведомление уже отправлено или отменено"
)

type Handler struct {
	service NotificationService
	logger  Logger
}

func NewHandler(service NotificationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/notifications/{notificationId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("PATCH /notifications/{id}/cancel - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	notificationID, err := handlers.PathUUID(r, "notificationId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidNotificationID)
		return
	}

	result, err := h.service.CancelNotification(r.Context(), scope, notificationID)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrNotificationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrNotificationNotPending):
			handlers.RespondConflict(w, "not_pending", msgNotPending)

		default:
			h.logger.Error("PATCH /notifications/{id}/cancel - Failed to cancel: id=%s, error=%v", notificationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
