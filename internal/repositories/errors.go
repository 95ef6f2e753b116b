package repositories

import "errors"

var (
	// ErrNotFound is wrapped by every repository when a record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict is returned by OrderRepository.UpdateStatus when the
	// stored status no longer matches the expected source status.
	ErrStatusConflict = errors.New("order status changed concurrently")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
)
