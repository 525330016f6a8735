package email

import "errors"

var (
	// ErrNotConfigured возвращается, когда SMTP сервер не настроен
	ErrNotConfigured = errors.New("email sender: smtp not configured")

	// ErrNoRecipient возвращается, когда у уведомления нет адреса
	ErrNoRecipient = errors.New("email sender: recipient email is empty")

	// ErrSend возвращается при ошибке отправки через SMTP
	ErrSend = errors.New("email sender: failed to send")
)
