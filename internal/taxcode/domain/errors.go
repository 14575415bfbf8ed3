package domain

import "errors"

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidCode = errors.New("invalid_tax_code")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidRate = errors.New("invalid_tax_rate")
	ErrNotFound    = errors.New("not_found")
	ErrCodeExists  = errors.New("tax_code_exists")
)
