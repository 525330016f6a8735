package notifications

import "errors"

var (
	// ErrNotificationNotFound возвращается, когда уведомление не найдено
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrNotificationNotPending возвращается, когда уведомление уже обработано или занято другим воркером
	ErrNotificationNotPending = errors.New("notification is not pending")

	// ErrInvalidInput возвращается при некорректных параметрах рассылки
	ErrInvalidInput = errors.New("invalid dispatch request")

	// ErrUnknownChannel возвращается для канала без отправителя
	ErrUnknownChannel = errors.New("unknown notification channel")

	// ErrInternal возвращается при внутренних ошибках воркера
	ErrInternal = errors.New("dispatcher: internal error")
)
