package availability

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// WithoutOccupied drops candidates whose interval overlaps capacity or more busy appointments.
// For a concrete staff member capacity is 1; for an unassigned booking it is the active staff pool.
// Read-only: nothing is reserved.
func WithoutOccupied(candidates iter.Seq[time.Time], duration int, busy []*domain.Appointment, capacity int) iter.Seq[time.Time] {
	if capacity < 1 {
		capacity = 1
	}
	length := time.Duration(duration) * time.Minute

	return func(yield func(time.Time) bool) {
		for start := range candidates {
			if CountOverlapping(start, start.Add(length), busy) >= capacity {
				continue
			}
			if !yield(start) {
				return
			}
		}
	}
}

// CountOverlapping number of blocking appointments intersecting [start, end).
// Touching endpoints are not an overlap.
func CountOverlapping(start, end time.Time, appointments []*domain.Appointment) int {
	count := 0
	for _, a := range appointments {
		if !a.Status.IsBlocking() {
			continue
		}
		if a.Overlaps(start, end) {
			count++
		}
	}
	return count
}
