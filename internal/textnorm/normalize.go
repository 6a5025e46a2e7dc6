// Package textnorm turns raw user text into the canonical form the text
// estimators were fit on. The same transform must run over training corpora
// and live requests; any drift silently shifts probabilities.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// Placeholder tokens. They are lowercase so Normalize is idempotent.
const (
	URLToken   = "url"
	EmailToken = "email"
	MoneyToken = "money"
	PhoneToken = "phone"
	NumToken   = "num"
)

// PhoneMinDigits is the shortest digit run treated as a phone number.
const PhoneMinDigits = 10

// nonSpace matches one character that is not Unicode whitespace. RE2's \S
// only excludes ASCII whitespace.
const nonSpace = `[^\s\v\x1c-\x1f\x{85}\p{Z}]`

var (
	reURL   = regexp.MustCompile(`http` + nonSpace + `+|www` + nonSpace + `+|https` + nonSpace + `+`)
	reEmail = regexp.MustCompile(nonSpace + `+@` + nonSpace + `+`)
	reMoney = regexp.MustCompile(`[₹$€£][\s\v\x1c-\x1f\x{85}\p{Z}]*[\p{Nd},]+`)
)

// Normalize lowercases raw and replaces URLs, emails, currency amounts,
// phone numbers and remaining digit runs with placeholder tokens, then strips
// punctuation and collapses whitespace.
//
// Step order matters: phone-length digit runs are replaced before generic
// digit runs, otherwise the generic rule would absorb them.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	out := strings.ToLower(raw)
	out = reURL.ReplaceAllString(out, " "+URLToken+" ")
	out = reEmail.ReplaceAllString(out, " "+EmailToken+" ")
	out = reMoney.ReplaceAllString(out, " "+MoneyToken+" ")
	out = replaceDigitRuns(out, PhoneMinDigits, PhoneToken)
	out = replaceDigitRuns(out, 1, NumToken)
	out = stripPunctuation(out)
	return strings.Join(strings.FieldsFunc(out, isSpace), " ")
}

// IsWordRune reports whether r counts as a word character: a letter, a
// number or underscore. Combining marks are not word characters, matching
// the tokenizer the estimators were trained with.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// replaceDigitRuns replaces every maximal run of decimal digits of at least
// minLen runes whose neighbours are not word characters. This is the
// Unicode-aware equivalent of \b\d{minLen,}\b.
func replaceDigitRuns(s string, minLen int, token string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); {
		if !unicode.IsDigit(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsDigit(runes[j]) {
			j++
		}
		bounded := (i == 0 || !IsWordRune(runes[i-1])) && (j == len(runes) || !IsWordRune(runes[j]))
		if bounded && j-i >= minLen {
			b.WriteString(" " + token + " ")
		} else {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if IsWordRune(r) || isSpace(r) {
			return r
		}
		return ' '
	}, s)
}
