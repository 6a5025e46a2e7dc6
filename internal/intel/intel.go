// Package intel holds the rule-based scam intelligence: the ordered scam
// pattern bank used for category classification, the explanation battery,
// and small keyword-set helpers shared with the scorers.
package intel

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// Category is a scam category. Declaration order is the classifier's
// tie-break order.
type Category int

const (
	LotteryScam Category = iota
	FakeJobScam
	BankFraud
	OTPFraud
	UPIPaymentScam
	DigitalArrestScam
	InvestmentScam
	PhishingLink
	CryptoScam
	EmailScam
	SocialEngineeringScam
)

// DefaultCategory is reported when no pattern matches.
const DefaultCategory = EmailScam

// SafeLabel replaces the category in outcomes that were not flagged.
const SafeLabel = "Safe"

var categoryNames = [...]string{
	"Lottery Scam",
	"Fake Job Scam",
	"Bank Fraud",
	"OTP Fraud",
	"UPI Payment Scam",
	"Digital Arrest Scam",
	"Investment Scam",
	"Phishing Link",
	"Crypto Scam",
	"Email Scam",
	"Social Engineering Scam",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory resolves a display name back to its Category.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return DefaultCategory, fmt.Errorf("intel: unknown category %q", name)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Status describes the loaded pattern bank.
type Status struct {
	BundleID      string `json:"bundle_id"`
	BundleVersion string `json:"bundle_version"`
	Categories    int    `json:"categories"`
	Patterns      int    `json:"patterns"`
}

// Unicode-aware stand-ins for the ASCII-only RE2 classes. Patterns are
// written against the tokenizer semantics the models were built with.
var classRewrites = strings.NewReplacer(
	`\s`, `[\s\v\x1c-\x1f\x{85}\p{Z}]`,
	`\S`, `[^\s\v\x1c-\x1f\x{85}\p{Z}]`,
	`\d`, `\p{Nd}`,
)

// compilePattern compiles a bank or explanation pattern. Patterns never use
// these escapes inside bracket expressions.
func compilePattern(src string) (*regexp.Regexp, error) {
	return regexp.Compile(classRewrites.Replace(src))
}

func mustCompilePattern(src string) *regexp.Regexp {
	re, err := compilePattern(src)
	if err != nil {
		panic(fmt.Sprintf("intel: compile %q: %v", src, err))
	}
	return re
}
