package get_public_profile

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/tenants/models"
)

type TenantService interface {
	GetPublicProfile(ctx context.Context, res *models.Resolution) (*models.PublicProfileResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
