package availability

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestWithoutOccupied(t *testing.T) {
	calc := NewCalculator(Settings{})
	window := calc.Window(time.Monday, mondayHours("09:00", "12:00"))
	at := func(h, m int) time.Time { return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC) }

	busy := []*domain.Appointment{
		{ScheduledAt: at(10, 0), Duration: 60, Status: domain.StatusConfirmed},
		{ScheduledAt: at(9, 0), Duration: 30, Status: domain.StatusCancelled},
	}

	candidates := calc.Candidates(monday, time.UTC, window, 30, monday.AddDate(0, 0, -1))
	free := slices.Collect(WithoutOccupied(candidates, 30, busy, 1))

	assert.Equal(t, []time.Time{at(9, 0), at(9, 30), at(11, 0), at(11, 30)}, free,
		"cancelled appointments do not occupy, touching boundaries stay free")

	pooled := slices.Collect(WithoutOccupied(calc.Candidates(monday, time.UTC, window, 30, monday.AddDate(0, 0, -1)), 30, busy, 2))
	assert.Len(t, pooled, 6, "a second staff member keeps every slot open")
}

func TestCountOverlapping(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC) }
	appointments := []*domain.Appointment{
		{ScheduledAt: at(10, 0), Duration: 60, Status: domain.StatusConfirmed},
		{ScheduledAt: at(10, 30), Duration: 60, Status: domain.StatusPending},
		{ScheduledAt: at(10, 0), Duration: 60, Status: domain.StatusNoShow},
	}

	assert.Equal(t, 2, CountOverlapping(at(10, 30), at(11, 0), appointments))
	assert.Equal(t, 1, CountOverlapping(at(11, 0), at(11, 30), appointments))
	assert.Equal(t, 0, CountOverlapping(at(11, 30), at(12, 0), appointments))
}
