package whatsapp

import "errors"

var (
	// ErrNotConfigured возвращается, когда шлюз не настроен
	ErrNotConfigured = errors.New("whatsapp client: gateway not configured")

	// ErrNoRecipient возвращается, когда у уведомления нет телефона
	ErrNoRecipient = errors.New("whatsapp client: recipient phone is empty")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("whatsapp client: internal error")

	// ErrInvalidResponse возвращается при неуспешном ответе шлюза
	ErrInvalidResponse = errors.New("whatsapp client: invalid response")
)
