package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	listAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/list_available_slots"
)

const (
	msgMissingServiceID = "ID услуги обязателен"
	msgInvalidServiceID = "некорректный ID услуги"
	msgInvalidStaffID   = "некорректный ID сотрудника"
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgServiceNotFound  = "услуга не найдена"
	msgStaffNotFound    = "сотрудник не найден"
	msgOrgNotFound      = "организация не найдена"
)

type Handler struct {
	useCase ListAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase ListAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/public/{slug}/available-slots и GET /api/v1/available-slots
// Query params: serviceId (required), date (required, YYYY-MM-DD), staffId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("GET /available-slots - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	query := r.URL.Query()

	// serviceId
	if query.Get("serviceId") == "" {
		h.logger.Warn("GET /available-slots - Missing service ID")
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}
	serviceID, err := uuid.Parse(query.Get("serviceId"))
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	// staffId
	staffID, err := handlers.QueryUUID(r, "staffId")
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	// date
	if query.Get("date") == "" {
		h.logger.Warn("GET /available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := handlers.ParseDate(query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), &listAvailableSlots.Request{
		Scope:     scope,
		ServiceID: serviceID,
		Date:      date,
		StaffID:   staffID,
	})
	if err != nil {
		switch {
		case errors.Is(err, listAvailableSlots.ErrOrganizationInactive):
			handlers.RespondRejection(w, domain.Reject(domain.ReasonOrganizationInactive))

		case errors.Is(err, listAvailableSlots.ErrTrialExpired):
			handlers.RespondRejection(w, domain.Reject(domain.ReasonTrialExpired))

		case errors.Is(err, listAvailableSlots.ErrOrganizationNotFound):
			handlers.RespondNotFound(w, msgOrgNotFound)

		case errors.Is(err, listAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /available-slots - Service not found: org=%s, service=%s", scope.OrganizationID(), serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, listAvailableSlots.ErrStaffNotFound):
			h.logger.Warn("GET /available-slots - Staff not found: org=%s, staff=%v", scope.OrganizationID(), staffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, listAvailableSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /available-slots - Failed to get slots: org=%s, service=%s, error=%v",
				scope.OrganizationID(), serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-slots - Slots retrieved: org=%s, service=%s, date=%s, slots_count=%d",
		scope.OrganizationID(), serviceID, query.Get("date"), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
