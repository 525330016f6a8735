package outbox

import "github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
