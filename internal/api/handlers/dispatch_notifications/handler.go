package dispatch_notifications

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/worker/notifications"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBatchSize   = "batchSize не может быть отрицательным"
	msgNotFound           = "уведомление не найдено"
	msgNotPending         = "уведомление уже отправлено или отменено"
)

type Handler struct {
	dispatcher Dispatcher
	logger     Logger
}

func NewHandler(dispatcher Dispatcher, logger Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle POST /api/v1/notifications/dispatch
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("POST /notifications/dispatch - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	var req DispatchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /notifications/dispatch - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.BatchSize < 0 {
		handlers.RespondBadRequest(w, msgInvalidBatchSize)
		return
	}

	result, err := h.dispatcher.RunOnce(r.Context(), notifications.DispatchRequest{
		Scope:          scope,
		NotificationID: req.NotificationID,
		BatchSize:      req.BatchSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, notifications.ErrNotificationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, notifications.ErrNotificationNotPending):
			handlers.RespondConflict(w, "not_pending", msgNotPending)

		case errors.Is(err, notifications.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /notifications/dispatch - Dispatch failed: org=%s, error=%v", scope.OrganizationID(), err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /notifications/dispatch - Done: org=%s, processed=%d, sent=%d, failed=%d",
		scope.OrganizationID(), result.Processed, result.Sent, result.Failed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
