package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidStore    = errors.New("invalid_store")
	ErrSameStore       = errors.New("transfer_same_store")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrNoLineItems     = errors.New("transfer_requires_line_item")
	ErrInvalidLine     = errors.New("invalid_transfer_line")
	ErrNotFound        = errors.New("not_found")
	ErrNotDraft        = errors.New("transfer_not_draft")
	ErrNotSent         = errors.New("transfer_not_sent")
)
