package tracing

import (
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var allowedSpanKeys = map[attribute.Key]struct{}{
	"request_id":                  {},
	"http.method":                 {},
	"http.route":                  {},
	"http.status_code":            {},
	"http.server_duration_ms":     {},
	"store_id":                    {},
	"order_type":                  {},
	"order_status":                {},
	"transfer_status":             {},
	"db.operation":                {},
	"ratelimit.endpoint":          {},
	"ratelimit.allowed":           {},
	"pricing.discount_mode":       {},
	"pricing.line_count":          {},
	"pricing.exchange_rate_fixed": {},
}

// SafeAttributes drops attributes outside the allow list so spans never
// carry free-form request payloads.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedSpanKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

// SafeError collapses an error chain to its sentinel message before it is
// recorded on a span.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	root := err
	for {
		unwrapped := errors.Unwrap(root)
		if unwrapped == nil {
			break
		}
		root = unwrapped
	}
	msg := strings.TrimSpace(root.Error())
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}
