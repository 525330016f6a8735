package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusNoShow, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusNoShow, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAppointmentStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
	assert.False(t, AppointmentStatus("archived").IsTerminal())
}

func TestOverlaps_HalfOpen(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC) }
	existing := &Appointment{ScheduledAt: at(10, 0), Duration: 60}

	assert.True(t, existing.Overlaps(at(10, 30), at(11, 0)), "10:30-11:00 overlaps 10:00-11:00")
	assert.False(t, existing.Overlaps(at(11, 0), at(11, 30)), "touching end does not overlap")
	assert.False(t, existing.Overlaps(at(9, 0), at(10, 0)), "touching start does not overlap")
	assert.True(t, existing.Overlaps(at(9, 30), at(12, 0)), "enclosing interval overlaps")
	assert.Equal(t, at(11, 0), existing.EndsAt())
}
