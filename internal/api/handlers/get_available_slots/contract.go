package get_available_slots

import (
	"context"

	listAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/list_available_slots"
)

type ListAvailableSlotsUseCase interface {
	Execute(ctx context.Context, req *listAvailableSlots.Request) (*listAvailableSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
