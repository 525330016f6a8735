package customer

import "errors"

var (
	// ErrCustomerNotFound возвращается, когда клиент не найден в организации
	ErrCustomerNotFound = errors.New("customer.repository: customer not found")

	// ErrNoContact возвращается, когда у клиента нет ни телефона, ни email
	ErrNoContact = errors.New("customer.repository: phone or email is required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("customer.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("customer.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("customer.repository: failed to scan row")
)
