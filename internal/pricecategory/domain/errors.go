package domain

import "errors"

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidProduct = errors.New("invalid_product")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrNotFound       = errors.New("not_found")
	ErrNameExists     = errors.New("price_category_exists")
)
