package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/tenants"
	"github.com/m04kA/SMC-AppointmentService/internal/service/tenants/models"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func scopeEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := GetScope(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(scope.OrganizationID().String()))
	})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var body handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestTenant(t *testing.T) {
	h := Tenant(scopeEcho(t))

	t.Run("valid header", func(t *testing.T) {
		id := uuid.New()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		r.Header.Set(HeaderOrganizationID, id.String())
		w := httptest.NewRecorder()

		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), w.Body.String())
	})

	for name, value := range map[string]string{"missing": "", "garbage": "abc", "nil uuid": uuid.Nil.String()} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
			if value != "" {
				r.Header.Set(HeaderOrganizationID, value)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "validation_error", decodeError(t, w).Reason)
		})
	}
}

type stubResolver map[string]*models.Resolution

func (s stubResolver) ResolveBySlug(_ context.Context, slug string) (*models.Resolution, error) {
	res, ok := s[slug]
	if !ok {
		return nil, tenants.ErrOrganizationNotFound
	}
	return res, nil
}

func resolution(t *testing.T, bookable bool, reason domain.Reason) *models.Resolution {
	scope, err := tenant.NewScope(uuid.New())
	require.NoError(t, err)
	return &models.Resolution{
		Organization: &domain.Organization{ID: scope.OrganizationID()},
		Scope:        scope,
		Bookable:     bookable,
		Reason:       reason,
	}
}

func TestTenantBySlug(t *testing.T) {
	open := resolution(t, true, domain.ReasonNone)
	resolver := stubResolver{
		"open":    open,
		"closed":  resolution(t, false, domain.ReasonOrganizationInactive),
		"expired": resolution(t, false, domain.ReasonTrialExpired),
	}

	router := mux.NewRouter()
	public := router.PathPrefix("/api/v1/public/{slug}").Subrouter()
	public.Use(TenantBySlug(resolver, logger.Nop()))
	public.Handle("/available-slots", scopeEcho(t))

	tests := []struct {
		slug   string
		status int
		reason string
	}{
		{"open", http.StatusOK, ""},
		{"closed", http.StatusForbidden, "organization_inactive"},
		{"expired", http.StatusForbidden, "trial_expired"},
		{"missing", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/public/"+tt.slug+"/available-slots", nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, decodeError(t, w).Reason)
			} else {
				assert.Equal(t, open.Scope.OrganizationID().String(), w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := NewRateLimiter(rdb, 2, time.Minute, "rl:test", false, logger.Nop())
	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/public/barber/appointments", nil)
		r.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call("1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, call("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("1.1.1.1"))

	// у другого клиента своё окно
	assert.Equal(t, http.StatusNoContent, call("2.2.2.2"))

	// окно истекло
	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusNoContent, call("1.1.1.1"))
}

func TestRateLimiter_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	w := httptest.NewRecorder()
	NewRateLimiter(rdb, 1, time.Minute, "rl", true, logger.Nop()).Middleware(next).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	NewRateLimiter(rdb, 1, time.Minute, "rl", false, logger.Nop()).Middleware(next).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type recordedRequest struct {
	method, path string
	status       int
}

type fakeHTTPMetrics struct{ got []recordedRequest }

func (f *fakeHTTPMetrics) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	f.got = append(f.got, recordedRequest{method, path, status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeHTTPMetrics{}
	router := mux.NewRouter()
	router.Use(MetricsMiddleware(m))
	router.HandleFunc("/api/v1/appointments/{appointmentId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil))

	require.Len(t, m.got, 1)
	assert.Equal(t, recordedRequest{http.MethodGet, "/api/v1/appointments/{appointmentId}", http.StatusNotFound}, m.got[0])
}
