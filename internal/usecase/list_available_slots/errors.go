package list_available_slots

import "errors"

var (
	// ErrOrganizationNotFound возвращается, когда организация не найдена
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrOrganizationInactive возвращается, когда организация не принимает записи
	ErrOrganizationInactive = errors.New("organization is inactive")

	// ErrTrialExpired возвращается, когда пробный период организации истёк
	ErrTrialExpired = errors.New("organization trial expired")

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("service not found")

	// ErrStaffNotFound возвращается, когда сотрудник не найден или неактивен
	ErrStaffNotFound = errors.New("staff not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
