package errors

import "errors"

var (
	ErrNotFound = errors.New("property block not found")

	ErrInvalidID = errors.New("invalid block ID format")
)
