package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

func TestOrganization_CanAcceptBookings(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name       string
		org        Organization
		wantOK     bool
		wantReason Reason
	}{
		{name: "active", org: Organization{Status: OrganizationActive}, wantOK: true},
		{name: "inactive", org: Organization{Status: OrganizationInactive}, wantReason: ReasonOrganizationInactive},
		{name: "inactive with future trial end", org: Organization{Status: OrganizationInactive, TrialEndsAt: &tomorrow}, wantReason: ReasonOrganizationInactive},
		{name: "trial open ended", org: Organization{Status: OrganizationTrial}, wantOK: true},
		{name: "trial running", org: Organization{Status: OrganizationTrial, TrialEndsAt: &tomorrow}, wantOK: true},
		{name: "trial expired", org: Organization{Status: OrganizationTrial, TrialEndsAt: &yesterday}, wantReason: ReasonTrialExpired},
		{name: "unknown status", org: Organization{Status: "suspended"}, wantReason: ReasonOrganizationInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := tt.org.CanAcceptBookings(now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestOrganization_Location(t *testing.T) {
	org := Organization{}
	assert.Equal(t, time.UTC, org.Location(time.UTC))

	org.Timezone = ptr.Ptr("Not/AZone")
	assert.Equal(t, time.UTC, org.Location(time.UTC))

	org.Timezone = ptr.Ptr("America/Sao_Paulo")
	assert.Equal(t, "America/Sao_Paulo", org.Location(time.UTC).String())
}

func TestBookingCheck_Messages(t *testing.T) {
	check := RejectOutsideHours(DayWindow{OpensAt: "09:00", ClosesAt: "17:00"})
	assert.Equal(t, ReasonOutsideBusinessHours, check.Reason)
	assert.Contains(t, check.Message, "09:00")
	assert.Contains(t, check.Message, "17:00")

	assert.Equal(t, "available", Available().MetricLabel())
	assert.Equal(t, "trial_expired", Reject(ReasonTrialExpired).MetricLabel())
	assert.NotEmpty(t, Reject(ReasonDoubleBooking).Message)
}
