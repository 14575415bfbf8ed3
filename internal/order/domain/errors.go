package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidStore        = errors.New("invalid_store")
	ErrInvalidType         = errors.New("invalid_order_type")
	ErrInvalidCounterparty = errors.New("invalid_counterparty")
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidDiscount     = errors.New("invalid_discount")
	ErrNotesTooLong        = errors.New("notes_too_long")
	ErrNoLineItems         = errors.New("order_requires_line_item")
	ErrNotFound            = errors.New("not_found")
	ErrOrderSubmitted      = errors.New("order_already_submitted")
)
