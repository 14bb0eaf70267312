package capacity

import "errors"

var (
	// ErrCapacityNotFound возвращается, когда у партнёра нет сохранённых боксов
	ErrCapacityNotFound = errors.New("capacity.repository: capacity plan not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("capacity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("capacity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("capacity.repository: failed to scan row")
)
