package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestRejectionStatus(t *testing.T) {
	tests := []struct {
		reason domain.Reason
		status int
	}{
		{domain.ReasonOrganizationInactive, http.StatusForbidden},
		{domain.ReasonTrialExpired, http.StatusForbidden},
		{domain.ReasonDoubleBooking, http.StatusConflict},
		{domain.ReasonClosed, http.StatusUnprocessableEntity},
		{domain.ReasonOutsideBusinessHours, http.StatusUnprocessableEntity},
		{domain.ReasonNotFound, http.StatusNotFound},
		{domain.ReasonValidationError, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.status, RejectionStatus(tt.reason))
		})
	}
}

func TestRespondRejection_BodyCarriesReason(t *testing.T) {
	w := httptest.NewRecorder()
	RespondRejection(w, domain.Reject(domain.ReasonDoubleBooking))

	require.Equal(t, http.StatusConflict, w.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "double_booking", body.Reason)
	assert.NotEmpty(t, body.Error)
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Status string `json:"status"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"confirmed","extra":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"confirmed"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "confirmed", dst.Status)
}
