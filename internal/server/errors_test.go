package server

import (
	"errors"
	"net/http"
	"testing"

	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	transferdomain "github.com/retailgrid/orderdesk/internal/transfer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapError_ValidationErrors(t *testing.T) {
	status, payload := mapError(newValidationError("code", "invalid_code", "invalid code"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "code", payload.Errors[0].Field)
}

func TestMapError_DomainValidation(t *testing.T) {
	cases := []struct {
		err   error
		field string
	}{
		{orderdomain.ErrInvalidStore, "store"},
		{orderdomain.ErrInvalidQuantity, "quantity"},
		{orderdomain.ErrNoLineItems, ""},
		{taxdomain.ErrInvalidRate, "tax_rate"},
		{transferdomain.ErrSameStore, ""},
		{transferdomain.ErrInvalidLine, "transfer_line"},
	}

	for _, tc := range cases {
		status, payload := mapError(tc.err)
		assert.Equal(t, http.StatusBadRequest, status, tc.err.Error())
		require.Len(t, payload.Errors, 1, tc.err.Error())
		assert.Equal(t, tc.err.Error(), payload.Errors[0].Code)
		assert.Equal(t, tc.field, payload.Errors[0].Field)
	}
}

func TestMapError_NotFound(t *testing.T) {
	for _, err := range []error{
		orderdomain.ErrNotFound,
		taxdomain.ErrNotFound,
		gorm.ErrRecordNotFound,
	} {
		status, payload := mapError(err)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not_found", payload.Type)
	}
}

func TestMapError_Conflicts(t *testing.T) {
	for _, err := range []error{
		orderdomain.ErrOrderSubmitted,
		transferdomain.ErrNotDraft,
		transferdomain.ErrNotSent,
		taxdomain.ErrCodeExists,
	} {
		status, payload := mapError(err)
		assert.Equal(t, http.StatusConflict, status, err.Error())
		assert.Equal(t, "conflict", payload.Type)
		assert.Equal(t, err.Error(), payload.Message)
	}
}

func TestMapError_DefaultsToInternal(t *testing.T) {
	status, payload := mapError(errors.New("database exploded"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", payload.Type)
	// Internal details never leak into the response body.
	assert.Equal(t, "internal server error", payload.Message)
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, _ := classifyErrorForLog(orderdomain.ErrOrderSubmitted)
	assert.Equal(t, "conflict", kind)

	kind, _ = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal", kind)

	kind, _ = classifyErrorForLog(orderdomain.ErrInvalidQuantity)
	assert.Equal(t, "validation", kind)
}
