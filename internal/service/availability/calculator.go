// Package availability computes bookable start times from business hours.
// Everything here is pure: no store access, the current instant is an argument.
package availability

import (
	"iter"
	"slices"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Settings grid step and the fallback window used when an organization has no row for a weekday
type Settings struct {
	StepMinutes       int
	DefaultOpensAt    types.TimeString
	DefaultClosesAt   types.TimeString
	DefaultClosedDays []time.Weekday
}

// DefaultSettings 30 minute grid, 09:00-18:00, Sunday closed
func DefaultSettings() Settings {
	return Settings{
		StepMinutes:       domain.DefaultSlotStepMinutes,
		DefaultOpensAt:    domain.DefaultOpensAt,
		DefaultClosesAt:   domain.DefaultClosesAt,
		DefaultClosedDays: domain.DefaultClosedDays,
	}
}

// Calculator produces candidate start times for a day
type Calculator struct {
	settings Settings
}

// NewCalculator zero fields of settings fall back to DefaultSettings
func NewCalculator(settings Settings) *Calculator {
	defaults := DefaultSettings()
	if settings.StepMinutes <= 0 {
		settings.StepMinutes = defaults.StepMinutes
	}
	if settings.DefaultOpensAt.Validate() != nil {
		settings.DefaultOpensAt = defaults.DefaultOpensAt
	}
	if settings.DefaultClosesAt.Validate() != nil {
		settings.DefaultClosesAt = defaults.DefaultClosesAt
	}
	if settings.DefaultClosedDays == nil {
		settings.DefaultClosedDays = defaults.DefaultClosedDays
	}
	return &Calculator{settings: settings}
}

// Window resolves the operating window of weekday. An explicit row wins;
// a missing row means the default window, unless weekday is a default closed day.
func (c *Calculator) Window(weekday time.Weekday, hours *domain.BusinessHours) domain.DayWindow {
	if hours != nil {
		return domain.DayWindow{
			Weekday:  weekday,
			OpensAt:  hours.OpensAt,
			ClosesAt: hours.ClosesAt,
			IsClosed: hours.IsClosed,
		}
	}

	return domain.DayWindow{
		Weekday:   weekday,
		OpensAt:   c.settings.DefaultOpensAt,
		ClosesAt:  c.settings.DefaultClosesAt,
		IsClosed:  slices.Contains(c.settings.DefaultClosedDays, weekday),
		IsDefault: true,
	}
}

// Candidates lazily yields start instants on the step grid of date (a calendar day in loc).
// Each start satisfies opens_at <= start and start+duration <= closes_at, and is strictly
// after now; for past days nothing is yielded.
func (c *Calculator) Candidates(date time.Time, loc *time.Location, window domain.DayWindow, duration int, now time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if window.IsClosed || duration <= 0 {
			return
		}

		opens := window.OpensAt.Minutes()
		if opens < 0 || window.ClosesAt.Minutes() < 0 {
			return
		}

		y, m, d := date.Date()
		closesAt := window.ClosesAt.On(date, loc)
		length := time.Duration(duration) * time.Minute

		if closesAt.Before(now) {
			return
		}

		for offset := opens; ; offset += c.settings.StepMinutes {
			// минуты сверх 59 time.Date нормализует сам
			start := time.Date(y, m, d, 0, offset, 0, 0, loc)
			if start.Add(length).After(closesAt) {
				return
			}
			if !start.After(now) {
				continue
			}
			if !yield(start) {
				return
			}
		}
	}
}

// Slots collected form of Candidates
func (c *Calculator) Slots(date time.Time, loc *time.Location, window domain.DayWindow, duration int, now time.Time) []time.Time {
	slots := slices.Collect(c.Candidates(date, loc, window, duration, now))
	if slots == nil {
		return []time.Time{}
	}
	return slots
}

// FitsWindow checks that [start, start+duration) lies inside window on start's calendar day in loc.
// Returns ReasonClosed, ReasonOutsideBusinessHours or ReasonNone.
func FitsWindow(start time.Time, duration int, window domain.DayWindow, loc *time.Location) domain.Reason {
	if window.IsClosed {
		return domain.ReasonClosed
	}

	local := start.In(loc)
	opensAt := window.OpensAt.On(local, loc)
	closesAt := window.ClosesAt.On(local, loc)
	end := start.Add(time.Duration(duration) * time.Minute)

	if start.Before(opensAt) || end.After(closesAt) {
		return domain.ReasonOutsideBusinessHours
	}
	return domain.ReasonNone
}
