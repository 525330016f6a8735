package availability

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// 10 марта 2025 - понедельник
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func mondayHours(opens, closes types.TimeString) *domain.BusinessHours {
	return &domain.BusinessHours{DayOfWeek: int(time.Monday), OpensAt: opens, ClosesAt: closes}
}

func TestCalculator_Window(t *testing.T) {
	calc := NewCalculator(Settings{})

	explicit := calc.Window(time.Sunday, &domain.BusinessHours{OpensAt: "10:00", ClosesAt: "14:00"})
	assert.False(t, explicit.IsClosed, "explicit row wins over the default closed day")
	assert.False(t, explicit.IsDefault)
	assert.Equal(t, types.TimeString("10:00"), explicit.OpensAt)

	fallback := calc.Window(time.Tuesday, nil)
	assert.True(t, fallback.IsDefault)
	assert.False(t, fallback.IsClosed)
	assert.Equal(t, types.TimeString("09:00"), fallback.OpensAt)
	assert.Equal(t, types.TimeString("18:00"), fallback.ClosesAt)

	sunday := calc.Window(time.Sunday, nil)
	assert.True(t, sunday.IsClosed)
}

func TestCalculator_Candidates_FitInsideWindow(t *testing.T) {
	calc := NewCalculator(Settings{})
	now := monday.AddDate(0, 0, -7)

	windows := []struct {
		opens, closes types.TimeString
	}{
		{"09:00", "17:00"},
		{"08:15", "12:40"},
		{"00:00", "24:00"},
		{"13:00", "13:30"},
	}

	for _, w := range windows {
		window := calc.Window(time.Monday, mondayHours(w.opens, w.closes))
		opensAt := w.opens.On(monday, time.UTC)
		closesAt := w.closes.On(monday, time.UTC)

		for _, duration := range []int{15, 30, 45, 60, 90, 240} {
			slots := calc.Slots(monday, time.UTC, window, duration, now)
			for _, start := range slots {
				assert.False(t, start.Before(opensAt), "%s-%s d=%d start %s before open", w.opens, w.closes, duration, start)
				assert.False(t, start.Add(time.Duration(duration)*time.Minute).After(closesAt),
					"%s-%s d=%d start %s overruns close", w.opens, w.closes, duration, start)
			}
			assert.True(t, slices.IsSortedFunc(slots, func(a, b time.Time) int { return a.Compare(b) }))
		}
	}
}

func TestCalculator_Candidates_Grid(t *testing.T) {
	calc := NewCalculator(Settings{})
	window := calc.Window(time.Monday, mondayHours("09:00", "17:00"))

	slots := calc.Slots(monday, time.UTC, window, 60, monday.AddDate(0, 0, -1))

	require.Len(t, slots, 15)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), slots[0])
	assert.Equal(t, time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC), slots[len(slots)-1])
	assert.NotContains(t, slots, time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC))
}

func TestCalculator_Candidates_Closed(t *testing.T) {
	calc := NewCalculator(Settings{})
	closed := domain.DayWindow{Weekday: time.Monday, OpensAt: "09:00", ClosesAt: "17:00", IsClosed: true}

	assert.Empty(t, calc.Slots(monday, time.UTC, closed, 30, monday.AddDate(0, 0, -1)))
	assert.Empty(t, calc.Slots(monday, time.UTC, calc.Window(time.Sunday, nil), 30, monday.AddDate(0, 0, -7)))
}

func TestCalculator_Candidates_TodayAndPast(t *testing.T) {
	calc := NewCalculator(Settings{})
	window := calc.Window(time.Monday, mondayHours("09:00", "17:00"))

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	slots := calc.Slots(monday, time.UTC, window, 30, now)
	require.NotEmpty(t, slots)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC), slots[0], "start equal to now is not strictly after it")

	assert.Empty(t, calc.Slots(monday, time.UTC, window, 30, monday.AddDate(0, 0, 1)))
}

func TestCalculator_Candidates_Timezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	calc := NewCalculator(Settings{})
	window := calc.Window(time.Monday, mondayHours("09:00", "10:00"))

	slots := calc.Slots(monday, loc, window, 30, monday.AddDate(0, 0, -1))

	require.Len(t, slots, 2)
	assert.Equal(t, 9, slots[0].In(loc).Hour())
	assert.Equal(t, 12, slots[0].UTC().Hour())
}

func TestCalculator_Candidates_Lazy(t *testing.T) {
	calc := NewCalculator(Settings{StepMinutes: 15})
	window := calc.Window(time.Monday, mondayHours("09:00", "17:00"))

	taken := 0
	for range calc.Candidates(monday, time.UTC, window, 30, monday.AddDate(0, 0, -1)) {
		taken++
		if taken == 3 {
			break
		}
	}
	assert.Equal(t, 3, taken)
}

func TestFitsWindow(t *testing.T) {
	calc := NewCalculator(Settings{})
	window := calc.Window(time.Monday, mondayHours("09:00", "17:00"))
	at := func(h, m int) time.Time { return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		start    time.Time
		duration int
		want     domain.Reason
	}{
		{name: "16:30 overruns close", start: at(16, 30), duration: 60, want: domain.ReasonOutsideBusinessHours},
		{name: "16:00 ends exactly at close", start: at(16, 0), duration: 60, want: domain.ReasonNone},
		{name: "before open", start: at(8, 30), duration: 30, want: domain.ReasonOutsideBusinessHours},
		{name: "at open", start: at(9, 0), duration: 30, want: domain.ReasonNone},
		{name: "off grid inside window", start: at(10, 7), duration: 20, want: domain.ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FitsWindow(tt.start, tt.duration, window, time.UTC))
		})
	}

	assert.Equal(t, domain.ReasonClosed, FitsWindow(at(10, 0), 30, domain.DayWindow{IsClosed: true}, time.UTC))
}
