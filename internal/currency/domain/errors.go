package domain

import "errors"

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidCode = errors.New("invalid_currency_code")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidRate = errors.New("invalid_exchange_rate")
	ErrSamePair    = errors.New("exchange_rate_same_currency")
	ErrNotFound    = errors.New("not_found")
	ErrCodeExists  = errors.New("currency_exists")
)
