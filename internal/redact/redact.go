// Package redact masks personal data in user-submitted content before it
// leaves the process in logs, events or telemetry.
package redact

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Replacement markers.
const (
	Email   = "[REDACTED_EMAIL]"
	UPI     = "[REDACTED_UPI]"
	Phone   = "[REDACTED_PHONE]"
	Number  = "[REDACTED_NUMBER]"
	Secret  = "[REDACTED]"
	URLPath = "[REDACTED_PATH]"
	BadURL  = "[REDACTED_URL]"
)

// Ellipsis is appended to truncated previews.
const Ellipsis = "…"

var (
	urlRe   = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s"'<>]+`)
	emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	// UPI handles look like name@bank with no dot in the provider part.
	upiRe    = regexp.MustCompile(`(?i)\b[a-z0-9._\-]{2,}@[a-z]{2,}\b`)
	phoneRe  = regexp.MustCompile(`(?:\+\d{1,3}[\s\-]?)?\d(?:[\s\-]?\d){9,}`)
	numberRe = regexp.MustCompile(`\b\d{4,}\b`)
	bearerRe = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._\-+/=]+)`)
	keyRe    = regexp.MustCompile(`(?i)\b(api[_-]?key|token|otp|pin|password)(\s*[:=]\s*|\s+is\s+)(\S+)`)
)

// String masks contact details, account-like digit runs, credentials and
// URL paths in s. URL hosts are kept since they are the signal a reviewer
// needs.
func String(s string) string {
	if s == "" {
		return s
	}
	out := bearerRe.ReplaceAllString(s, "${1}"+Secret)
	out = keyRe.ReplaceAllString(out, "${1}${2}"+Secret)
	out = urlRe.ReplaceAllStringFunc(out, redactURL)
	out = emailRe.ReplaceAllString(out, Email)
	out = upiRe.ReplaceAllString(out, UPI)
	out = phoneRe.ReplaceAllString(out, Phone)
	out = numberRe.ReplaceAllString(out, Number)
	return out
}

// Preview redacts s and truncates the result to at most max runes plus an
// ellipsis. A non-positive max disables truncation.
func Preview(s string, max int) string {
	out := String(s)
	if max <= 0 || utf8.RuneCountInString(out) <= max {
		return out
	}
	runes := []rune(out)
	return string(runes[:max]) + Ellipsis
}

// Any formats the value with %+v and redacts it.
func Any(v any) string {
	return String(fmt.Sprintf("%+v", v))
}

// Sprintf formats like fmt.Sprintf and redacts the result.
func Sprintf(format string, args ...any) string {
	return String(fmt.Sprintf(format, args...))
}

func redactURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(trimmed), "www.") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return BadURL
	}
	host := u.Hostname()
	if u.Path == "" && u.RawQuery == "" {
		return fmt.Sprintf("%s://%s", u.Scheme, host)
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	if base == "." || base == "/" || base == "" || strings.HasSuffix(u.Path, "/") {
		return fmt.Sprintf("%s://%s/%s", u.Scheme, host, URLPath)
	}
	return fmt.Sprintf("%s://%s/%s", u.Scheme, host, base)
}
