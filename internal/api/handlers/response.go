package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const maxBodyBytes = 1 << 20

const (
	msgInternalError = "внутренняя ошибка сервера"
)

// ErrorResponse тело ответа с ошибкой. Reason совпадает с причиной отказа
// conflict gate, клиенты ветвятся по нему.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// DecodeJSON читает тело запроса; неизвестные поля - ошибка
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// RespondJSON пишет payload как JSON
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError ответ с ошибкой и причиной
func RespondError(w http.ResponseWriter, status int, reason domain.Reason, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Reason: string(reason)})
}

// RespondBadRequest 400 validation_error
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, domain.ReasonValidationError, message)
}

// RespondNotFound 404 not_found
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, domain.ReasonNotFound, message)
}

// RespondConflict 409
func RespondConflict(w http.ResponseWriter, reason domain.Reason, message string) {
	RespondError(w, http.StatusConflict, reason, message)
}

// RespondInternalError 500
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, "internal_error", msgInternalError)
}

// RejectionStatus HTTP статус для причины отказа
func RejectionStatus(reason domain.Reason) int {
	switch reason {
	case domain.ReasonOrganizationInactive, domain.ReasonTrialExpired:
		return http.StatusForbidden
	case domain.ReasonDoubleBooking:
		return http.StatusConflict
	case domain.ReasonClosed, domain.ReasonOutsideBusinessHours:
		return http.StatusUnprocessableEntity
	case domain.ReasonNotFound:
		return http.StatusNotFound
	case domain.ReasonValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondRejection ответ на отказ conflict gate
func RespondRejection(w http.ResponseWriter, check *domain.BookingCheck) {
	message := check.Message
	if message == "" {
		message = domain.DefaultMessage(check.Reason)
	}
	RespondError(w, RejectionStatus(check.Reason), check.Reason, message)
}

// PathUUID uuid из переменной маршрута
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// QueryUUID необязательный uuid из query; пустое значение - nil
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseDate дата в формате YYYY-MM-DD
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(domain.DateFormat, raw)
}
