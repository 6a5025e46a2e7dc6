package redact

import (
	"strings"
	"testing"
)

func TestStringRedaction(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		disallow []string
		require  []string
	}{
		{
			name:     "email",
			input:    "write to priya.sharma@example.co.in today",
			disallow: []string{"priya.sharma"},
			require:  []string{Email, "today"},
		},
		{
			name:     "upi handle",
			input:    "pay to rahul99@okhdfc now",
			disallow: []string{"rahul99"},
			require:  []string{UPI},
		},
		{
			name:     "phone with country code",
			input:    "call +91 98765 43210 immediately",
			disallow: []string{"98765", "43210"},
			require:  []string{Phone, "immediately"},
		},
		{
			name:     "account number",
			input:    "your account 123456 is blocked",
			disallow: []string{"123456"},
			require:  []string{Number},
		},
		{
			name:     "otp value",
			input:    "your OTP is 4821",
			disallow: []string{"4821"},
			require:  []string{"OTP is " + Secret},
		},
		{
			name:     "bearer",
			input:    "Authorization: Bearer sk-secret-123",
			disallow: []string{"sk-secret-123"},
			require:  []string{Secret},
		},
		{
			name:     "url keeps host",
			input:    "click https://secure-sbi.example.com/kyc/update?id=9912 now",
			disallow: []string{"id=9912", "kyc/update"},
			require:  []string{"https://secure-sbi.example.com/update"},
		},
		{
			name:     "url trailing slash",
			input:    "see http://bit.ly/abc/",
			disallow: []string{"abc"},
			require:  []string{"http://bit.ly/" + URLPath},
		},
		{
			name:     "bare www",
			input:    "visit www.lottery-win.example/claim/42",
			disallow: []string{"claim/42"},
			require:  []string{"http://www.lottery-win.example/42"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := String(tc.input)
			for _, bad := range tc.disallow {
				if bad != "" && contains(out, bad) {
					t.Fatalf("output still contains %q: %s", bad, out)
				}
			}
			for _, want := range tc.require {
				if want == "" {
					continue
				}
				if !contains(out, want) {
					t.Fatalf("output missing required substring %q: %s", want, out)
				}
			}
		})
	}
}

func TestStringKeepsPlainText(t *testing.T) {
	in := "Congratulations! You have WON a lottery prize"
	if out := String(in); out != in {
		t.Fatalf("plain text changed: %q", out)
	}
	if String("") != "" {
		t.Fatal("empty input should stay empty")
	}
}

func TestPreviewTruncatesRunes(t *testing.T) {
	out := Preview("नमस्ते दुनिया", 3)
	if out != "नमस"+Ellipsis {
		t.Fatalf("unexpected preview %q", out)
	}
	if got := Preview("short", 10); got != "short" {
		t.Fatalf("short input truncated: %q", got)
	}
	if got := Preview("no limit at all", 0); got != "no limit at all" {
		t.Fatalf("zero max truncated: %q", got)
	}
}

func contains(s, sub string) bool {
	return s != "" && sub != "" && strings.Contains(s, sub)
}
