package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена в организации
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrOrganizationNotFound возвращается, когда организация не найдена
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrInvalidStatus возвращается для неизвестного статуса
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusConflict возвращается, когда статус изменился параллельно
	ErrStatusConflict = errors.New("appointment status changed concurrently")

	// ErrCannotDelete возвращается при удалении записи, уже учтённой в статистике клиента
	ErrCannotDelete = errors.New("appointment cannot be deleted")

	// ErrNotificationNotFound возвращается, когда уведомление не найдено
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrNotificationNotPending возвращается при отмене уже обработанного уведомления
	ErrNotificationNotPending = errors.New("notification is not pending")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
