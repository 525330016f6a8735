package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/tenants"
	"github.com/m04kA/SMC-AppointmentService/internal/service/tenants/models"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

const msgOrganizationNotFound = "организация не найдена"

// SlugResolver находит организацию публичной страницы
type SlugResolver interface {
	ResolveBySlug(ctx context.Context, slug string) (*models.Resolution, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type resolutionKey struct{}

// TenantBySlug определяет организацию по {slug} маршрута.
// Неизвестный slug - 404, организация без права принимать записи - 403 с причиной.
func TenantBySlug(resolver SlugResolver, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := mux.Vars(r)["slug"]

			res, err := resolver.ResolveBySlug(r.Context(), slug)
			if err != nil {
				switch {
				case errors.Is(err, tenants.ErrOrganizationNotFound), errors.Is(err, tenants.ErrInvalidSlug):
					logger.Warn("TenantBySlug: organization slug=%q not found", slug)
					handlers.RespondNotFound(w, msgOrganizationNotFound)
				default:
					logger.Error("TenantBySlug: failed to resolve slug=%q: %v", slug, err)
					handlers.RespondInternalError(w)
				}
				return
			}

			if !res.Bookable {
				logger.Info("TenantBySlug: organization slug=%q is not bookable: %s", slug, res.Reason)
				handlers.RespondRejection(w, domain.Reject(res.Reason))
				return
			}

			ctx := tenant.WithScope(r.Context(), res.Scope)
			ctx = context.WithValue(ctx, resolutionKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetResolution организация, найденная TenantBySlug
func GetResolution(ctx context.Context) (*models.Resolution, bool) {
	res, ok := ctx.Value(resolutionKey{}).(*models.Resolution)
	return res, ok && res != nil
}
