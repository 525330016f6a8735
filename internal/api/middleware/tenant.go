package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// HeaderOrganizationID заголовок организации для маршрутов кабинета
const HeaderOrganizationID = "X-Organization-ID"

const (
	msgMissingOrganization = "не указан заголовок X-Organization-ID"
	msgInvalidOrganization = "некорректный X-Organization-ID"
)

// Tenant кладёт tenant.Scope из X-Organization-ID в контекст запроса
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderOrganizationID)
		if raw == "" {
			handlers.RespondBadRequest(w, msgMissingOrganization)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidOrganization)
			return
		}

		scope, err := tenant.NewScope(id)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidOrganization)
			return
		}

		next.ServeHTTP(w, r.WithContext(tenant.WithScope(r.Context(), scope)))
	})
}

// GetScope scope запроса, положенный Tenant или TenantBySlug
func GetScope(ctx context.Context) (tenant.Scope, bool) {
	return tenant.FromContext(ctx)
}
