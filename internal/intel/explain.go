package intel

import (
	"regexp"
	"strings"

	"github.com/straja-ai/rakshak/internal/textnorm"
)

// Message explanation texts.
const (
	ExplainLink          = "Contains suspicious URL/link"
	ExplainClickBait     = "Urges to click on a link (phishing indicator)"
	ExplainUrgency       = "Creates urgency to pressure quick action"
	ExplainPrize         = "Claims you won a prize or reward (common scam tactic)"
	ExplainCredentials   = "Requests sensitive account information"
	ExplainBanking       = "References financial/banking details"
	ExplainOTP           = "Attempts to steal OTP/verification codes"
	ExplainOffers        = "Uses too-good-to-be-true offers"
	ExplainLegalThreat   = "Uses fear/threat of legal action"
	ExplainReturns       = "Promises guaranteed financial returns"
	ExplainCapitals      = "Uses excessive capitalization for attention"
	ExplainExclamations  = "Uses excessive exclamation marks"
	ExplainTemplateMatch = "Text patterns match known scam message templates"
	ExplainModelSignal   = "AI model detected suspicious language patterns"

	// NoSuspiciousPatterns is substituted by scorers when Explain returns nothing.
	NoSuspiciousPatterns = "No suspicious patterns detected"
)

type check struct {
	re   *regexp.Regexp
	text string
}

// lowercase battery, run in order against the lowercased text.
var messageChecks = []check{
	{mustCompilePattern(`http\S+|www\S+|https\S+`), ExplainLink},
	{mustCompilePattern(`click\s+(here|this|below)`), ExplainClickBait},
	{mustCompilePattern(`urgent|immediately|asap|right\s+now|\b(act|claim|call|reply|respond|verify|pay)\s+now\b`), ExplainUrgency},
	{mustCompilePattern(`won|winner|prize|reward|congratulations`), ExplainPrize},
	{mustCompilePattern(`password|account|verify|confirm|login`), ExplainCredentials},
	{mustCompilePattern(`bank|credit\s*card|kyc|upi|payment`), ExplainBanking},
	{mustCompilePattern(`otp|verification\s+code|one\s+time`), ExplainOTP},
	{mustCompilePattern(`free|offer|discount|deal|limited\s+time`), ExplainOffers},
	{mustCompilePattern(`arrest|police|legal|court|fine`), ExplainLegalThreat},
	{mustCompilePattern(`invest|return|profit|double|guaranteed`), ExplainReturns},
}

// Explain returns the rationale strings for raw, in check order. Every
// matching check contributes. When nothing matches and score is above 0.5
// the two generic model explanations are returned instead, so a flagged
// message is never left without a reason. The category does not change the
// battery.
func Explain(raw string, score float64, _ Category) []string {
	lc := strings.ToLower(raw)

	var out []string
	for _, c := range messageChecks {
		if c.re.MatchString(lc) {
			out = append(out, c.text)
		}
	}
	if hasShoutedWord(raw) {
		out = append(out, ExplainCapitals)
	}
	if strings.Contains(raw, "!!") {
		out = append(out, ExplainExclamations)
	}

	if len(out) == 0 && score > 0.5 {
		out = append(out, ExplainTemplateMatch, ExplainModelSignal)
	}
	return out
}

// hasShoutedWord reports whether raw contains a whole word of three or more
// ASCII capitals. Word boundaries follow textnorm.IsWordRune so that
// "ABCé" is one word and does not count.
func hasShoutedWord(raw string) bool {
	words := strings.FieldsFunc(raw, func(r rune) bool { return !textnorm.IsWordRune(r) })
	for _, w := range words {
		if len(w) >= 3 && isASCIIUpper(w) {
			return true
		}
	}
	return false
}

func isASCIIUpper(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
