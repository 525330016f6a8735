package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена в организации
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrOverlap возвращается, когда вставка или перенос нарушают exclusion constraint
	// (у сотрудника уже есть активная запись на пересекающийся интервал)
	ErrOverlap = errors.New("appointment.repository: overlapping appointment for staff")

	// ErrStatusConflict возвращается, когда статус изменился между чтением и обновлением
	ErrStatusConflict = errors.New("appointment.repository: status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
