package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidTracking = errors.New("invalid_tracking_mode")
	ErrNotFound        = errors.New("not_found")
	ErrCodeExists      = errors.New("product_code_exists")
)
