package catalog

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в организации
	ErrServiceNotFound = errors.New("catalog.repository: service not found")

	// ErrStaffNotFound возвращается, когда сотрудник не найден в организации
	ErrStaffNotFound = errors.New("catalog.repository: staff not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("catalog.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("catalog.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("catalog.repository: failed to scan row")
)
