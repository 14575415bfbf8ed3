package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	transferdomain "github.com/retailgrid/orderdesk/internal/transfer/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isTaxCodeValidationError(err),
		isCatalogValidationError(err),
		isPriceCategoryValidationError(err),
		isCurrencyValidationError(err),
		isOrderValidationError(err),
		isTransferValidationError(err):
		return true
	default:
		return false
	}
}

func isTaxCodeValidationError(err error) bool {
	switch {
	case errors.Is(err, taxdomain.ErrInvalidID),
		errors.Is(err, taxdomain.ErrInvalidCode),
		errors.Is(err, taxdomain.ErrInvalidName),
		errors.Is(err, taxdomain.ErrInvalidRate):
		return true
	default:
		return false
	}
}

func isCatalogValidationError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidCode),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, catalogdomain.ErrInvalidTracking):
		return true
	default:
		return false
	}
}

func isPriceCategoryValidationError(err error) bool {
	switch {
	case errors.Is(err, pcdomain.ErrInvalidID),
		errors.Is(err, pcdomain.ErrInvalidName),
		errors.Is(err, pcdomain.ErrInvalidProduct),
		errors.Is(err, pcdomain.ErrInvalidPrice):
		return true
	default:
		return false
	}
}

func isCurrencyValidationError(err error) bool {
	switch {
	case errors.Is(err, currencydomain.ErrInvalidID),
		errors.Is(err, currencydomain.ErrInvalidCode),
		errors.Is(err, currencydomain.ErrInvalidName),
		errors.Is(err, currencydomain.ErrInvalidRate),
		errors.Is(err, currencydomain.ErrSamePair):
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidStore),
		errors.Is(err, orderdomain.ErrInvalidType),
		errors.Is(err, orderdomain.ErrInvalidCounterparty),
		errors.Is(err, orderdomain.ErrInvalidProduct),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidPrice),
		errors.Is(err, orderdomain.ErrInvalidDiscount),
		errors.Is(err, orderdomain.ErrNotesTooLong),
		errors.Is(err, orderdomain.ErrNoLineItems):
		return true
	default:
		return false
	}
}

func isTransferValidationError(err error) bool {
	switch {
	case errors.Is(err, transferdomain.ErrInvalidID),
		errors.Is(err, transferdomain.ErrInvalidStore),
		errors.Is(err, transferdomain.ErrSameStore),
		errors.Is(err, transferdomain.ErrInvalidProduct),
		errors.Is(err, transferdomain.ErrInvalidQuantity),
		errors.Is(err, transferdomain.ErrInvalidLine),
		errors.Is(err, transferdomain.ErrNoLineItems):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, taxdomain.ErrCodeExists),
		errors.Is(err, catalogdomain.ErrCodeExists),
		errors.Is(err, pcdomain.ErrNameExists),
		errors.Is(err, currencydomain.ErrCodeExists),
		errors.Is(err, orderdomain.ErrOrderSubmitted),
		errors.Is(err, transferdomain.ErrNotDraft),
		errors.Is(err, transferdomain.ErrNotSent):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, taxdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, pcdomain.ErrNotFound),
		errors.Is(err, currencydomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, transferdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusConflict:
		return "conflict", payload.Type
	case status == http.StatusNotFound:
		return "not_found", payload.Type
	default:
		return "validation", payload.Type
	}
}
