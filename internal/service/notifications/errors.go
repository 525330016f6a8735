package notifications

import "errors"

var (
	// ErrInvalidEvent событие без записи или организации
	ErrInvalidEvent = errors.New("notifications: invalid event")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("notifications: internal error")
)
