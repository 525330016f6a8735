package check_booking

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgInvalidRequestBody = "некорректное тело запроса"

type Handler struct {
	useCase CheckBookingUseCase
	logger  Logger
}

func NewHandler(useCase CheckBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/check
// Отказ - это результат проверки, поэтому ответ всегда 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CheckBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/check - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		h.logger.Error("POST /bookings/check - Failed to check booking: org=%s, error=%v", req.OrganizationID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
