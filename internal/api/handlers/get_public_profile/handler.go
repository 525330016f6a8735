package get_public_profile

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
)

type Handler struct {
	service TenantService
	logger  Logger
}

func NewHandler(service TenantService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/public/{slug}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.GetResolution(r.Context())
	if !ok {
		h.logger.Error("GET /public/{slug} - Resolution missing in context")
		handlers.RespondInternalError(w)
		return
	}

	result, err := h.service.GetPublicProfile(r.Context(), res)
	if err != nil {
		h.logger.Error("GET /public/{slug} - Failed to build profile: slug=%s, error=%v", res.Organization.Slug, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
