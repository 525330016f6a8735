package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// HeaderIdempotencyKey ключ повтора запроса, генерируется клиентом
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgKeyReused          = "ключ идемпотентности уже использован с другим запросом"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	origin  createAppointment.Origin
	logger  Logger
}

// NewHandler origin различает публичную форму и кабинет сотрудника
func NewHandler(useCase CreateAppointmentUseCase, origin createAppointment.Origin, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		origin:  origin,
		logger:  logger,
	}
}

// Handle POST /api/v1/public/{slug}/appointments и POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		h.logger.Error("POST /appointments - Scope missing in context")
		handlers.RespondInternalError(w)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq := req.ToUseCaseRequest(h.origin, r.Header.Get(HeaderIdempotencyKey))
	useCaseReq.Scope = scope

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Validation failed: org=%s, error=%v", scope.OrganizationID(), err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, createAppointment.ErrIdempotencyKeyReused):
			h.logger.Warn("POST /appointments - Idempotency key reused: org=%s", scope.OrganizationID())
			handlers.RespondError(w, http.StatusUnprocessableEntity, "idempotency_key_reused", msgKeyReused)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: org=%s, error=%v", scope.OrganizationID(), err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Rejected != nil {
		h.logger.Info("POST /appointments - Rejected: org=%s, reason=%s", scope.OrganizationID(), result.Rejected.Reason)
		handlers.RespondRejection(w, result.Rejected)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /appointments - Appointment created: id=%s, org=%s, replayed=%t",
		result.Appointment.ID, scope.OrganizationID(), result.Replayed)
	handlers.RespondJSON(w, status, FromUseCaseResponse(result))
}
