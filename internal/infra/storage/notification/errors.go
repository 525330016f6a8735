package notification

import "errors"

var (
	// ErrNotificationNotFound возвращается, когда уведомление не найдено
	ErrNotificationNotFound = errors.New("notification.repository: notification not found")

	// ErrNotPending возвращается, когда уведомление уже отправлено, отменено или занято другим воркером
	ErrNotPending = errors.New("notification.repository: notification is not pending")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("notification.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("notification.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("notification.repository: failed to scan row")
)
