package telemetry

import (
	"testing"

	"github.com/straja-ai/rakshak/internal/safety"
)

func TestSafeAttributesFiltersSecrets(t *testing.T) {
	kvs := map[string]any{
		"prompt":        "should drop",
		"content":       "drop",
		"api_key":       "sk-123",
		"token":         "abc",
		"input":         "share your otp",
		"message_text":  "you won a lottery",
		"upi_id":        "rahul@okhdfc",
		"safe_key":      "ok",
		"long_string":   string(make([]byte, 600)),
		"short_string":  "fine",
		"kind":          "message",
		"authorization": "secret",
	}

	attrs := SafeAttributes(kvs)
	kept := map[string]bool{}
	for _, a := range attrs {
		switch a.Key {
		case "prompt", "content", "api_key", "authorization", "token", "input", "message_text", "upi_id":
			t.Fatalf("unexpected unsafe attribute %s", a.Key)
		case "long_string":
			t.Fatalf("expected long string to be skipped")
		}
		kept[string(a.Key)] = true
	}
	for _, want := range []string{"safe_key", "short_string", "kind"} {
		if !kept[want] {
			t.Fatalf("expected %s to be kept", want)
		}
	}
}

func TestSafeAttributesLabelsTiersByName(t *testing.T) {
	attrs := SafeAttributes(map[string]any{
		"tier":        safety.Critical,
		"scan_url":    "http://bit.ly/x",
		"dropped":     uint64(3),
		"unsupported": struct{}{},
	})
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d: %v", len(attrs), attrs)
	}
	for _, a := range attrs {
		switch a.Key {
		case "tier":
			if a.Value.AsString() != "CRITICAL" {
				t.Fatalf("expected CRITICAL, got %q", a.Value.AsString())
			}
		case "dropped":
			if a.Value.AsInt64() != 3 {
				t.Fatalf("expected 3, got %d", a.Value.AsInt64())
			}
		default:
			t.Fatalf("unexpected attribute %s", a.Key)
		}
	}
}
