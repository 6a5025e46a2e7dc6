package telemetry

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Keys naming scanned user content or credentials never become labels.
var denyKeys = []string{
	"prompt",
	"content",
	"authorization",
	"api_key",
	"token",
	"password",
	"email",
	"phone",
	"iban",
	"credit_card",
	"upi",
	"otp",
	"input",
	"message",
	"preview",
	"url",
	"description",
	"requirements",
	"benefits",
	"company_profile",
}

const (
	maxLabelLen   = 512
	maxSliceItems = 32
)

func deniedKey(k string) bool {
	lk := strings.ToLower(k)
	for _, bad := range denyKeys {
		if strings.Contains(lk, bad) {
			return true
		}
	}
	return false
}

// SafeAttributes turns scan labels into OTEL attributes. Denied keys,
// oversized strings and unsupported value types are dropped.
func SafeAttributes(values map[string]any) []attribute.KeyValue {
	if len(values) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(values))
	for k, v := range values {
		if deniedKey(k) {
			continue
		}
		switch val := v.(type) {
		case string:
			if len(val) > maxLabelLen {
				continue
			}
			attrs = append(attrs, attribute.String(k, val))
		case fmt.Stringer:
			// tiers and categories label by display name
			s := val.String()
			if s == "" || len(s) > maxLabelLen {
				continue
			}
			attrs = append(attrs, attribute.String(k, s))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case uint64:
			attrs = append(attrs, attribute.Int64(k, int64(val)))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case []string:
			if len(val) > maxSliceItems {
				val = val[:maxSliceItems]
			}
			attrs = append(attrs, attribute.StringSlice(k, val))
		}
	}
	return attrs
}
