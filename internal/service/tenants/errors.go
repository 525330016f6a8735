package tenants

import "errors"

var (
	// ErrOrganizationNotFound возвращается для неизвестного slug
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrInvalidSlug возвращается для пустого или слишком длинного slug
	ErrInvalidSlug = errors.New("invalid organization slug")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("tenants: internal error")
)
