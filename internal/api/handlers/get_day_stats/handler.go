package get_day_stats

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgMissingDate = "дата обязательна"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgOrgNotFound = "организация не найдена"
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

// Handle GET /api/v1/appointments/stats?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("GET /appointments/stats - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := handlers.ParseDate(raw)
	if err != nil {
		h.logger.Warn("GET /appointments/stats - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.DayStats(r.Context(), scope, date)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrOrganizationNotFound):
			handlers.RespondNotFound(w, msgOrgNotFound)

		default:
			h.logger.Error("GET /appointments/stats - Failed to get stats: org=%s, date=%s, error=%v", scope.OrganizationID(), raw, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
