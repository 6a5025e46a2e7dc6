package intel

import (
	"fmt"
	"regexp"
	"strings"
)

// CategoryPatterns declares the patterns of one category.
type CategoryPatterns struct {
	Category Category
	Patterns []string
}

type bankEntry struct {
	category Category
	patterns []*regexp.Regexp
	sources  []string
}

// PatternBank is the ordered, read-only scam pattern bank. It is safe for
// concurrent use.
type PatternBank struct {
	id      string
	version string
	entries []bankEntry
}

// DefaultPatterns is the built-in bank, in tie-break order.
var DefaultPatterns = []CategoryPatterns{
	{LotteryScam, []string{
		`lottery`, `won\s+(a\s+)?prize`, `congratulations.*win`, `lucky\s+draw`,
		`claim\s+your\s+(prize|reward)`, `million\s+dollar`, `lakh.*prize`,
		`jackpot`, `sweepstake`, `raffle`,
	}},
	{FakeJobScam, []string{
		`work\s+from\s+home`, `earn\s+\$?\d+.*per\s+(day|hour|week)`,
		`no\s+experience\s+needed`, `guaranteed\s+income`, `hiring\s+immediately`,
		`simple\s+task`, `data\s+entry\s+job`, `part\s*time.*earn`,
	}},
	{BankFraud, []string{
		`bank\s+account.*block`, `verify\s+your\s+(account|identity)`,
		`kyc\s+(update|verification|expire)`, `account.*suspend`,
		`unauthorized\s+transaction`, `bank.*alert`, `credit\s+card.*block`,
		`update.*banking\s+details`,
	}},
	{OTPFraud, []string{
		`share\s+(your\s+)?otp`, `otp.*verify`, `send\s+(me\s+)?(the\s+)?otp`,
		`one\s+time\s+password`, `verification\s+code`, `otp.*expired`,
		`resend.*otp`,
	}},
	{UPIPaymentScam, []string{
		`upi.*payment`, `google\s*pay`, `phone\s*pe`, `paytm.*send`,
		`upi\s*id`, `pay.*upi`, `qr\s+code.*scan`, `payment.*link`,
		`send\s+money.*upi`,
	}},
	{DigitalArrestScam, []string{
		`digital\s+arrest`, `cyber\s+(crime|police|cell)`,
		`arrest\s+warrant`, `legal\s+action`, `police\s+complaint`,
		`fir\s+registered`, `court\s+notice`, `narcotics`, `money\s+laundering`,
	}},
	{InvestmentScam, []string{
		`invest.*guaranteed\s+returns`, `double\s+your\s+money`,
		`high\s+return`, `investment\s+opportunity`, `roi.*\d+%`,
		`mutual\s+fund.*guaranteed`, `stock\s+tip`, `trading\s+signal`,
		`forex.*profit`,
	}},
	{PhishingLink, []string{
		`click\s+(here|this\s+link|below)`, `verify.*link`,
		`update.*password.*link`, `confirm.*account.*link`,
		`bit\.ly|tinyurl|goo\.gl`, `login.*expire`, `suspended.*click`,
	}},
	{CryptoScam, []string{
		`bitcoin`, `crypto.*invest`, `blockchain.*opportunity`,
		`nft.*free`, `airdrop`, `crypto.*double`, `ethereum.*free`,
		`mining.*profit`, `wallet.*crypto`,
	}},
	{EmailScam, []string{
		`dear\s+(sir|madam|friend|beneficiary)`, `confidential.*business`,
		`next\s+of\s+kin`, `inheritance`, `million.*transfer`,
		`foreign\s+fund`, `dying\s+wish`, `unclaimed\s+fund`,
		`prince.*nigeria`, `diplomat.*consignment`,
	}},
	{SocialEngineeringScam, []string{
		`urgent.*action\s+required`, `your\s+account.*compromise`,
		`security\s+alert`, `unusual\s+activity`, `someone\s+logged`,
		`password.*reset`, `suspicious.*login`, `immediate\s+attention`,
	}},
}

// NewPatternBank compiles the built-in bank.
func NewPatternBank() *PatternBank {
	b, err := NewPatternBankFrom(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return b
}

// NewPatternBankFrom compiles defs in order. Categories must be unique.
func NewPatternBankFrom(defs []CategoryPatterns) (*PatternBank, error) {
	seen := make(map[Category]struct{}, len(defs))
	b := &PatternBank{
		id:      "rakshak-scam-patterns",
		version: "1.0.0",
		entries: make([]bankEntry, 0, len(defs)),
	}
	for _, def := range defs {
		if _, dup := seen[def.Category]; dup {
			return nil, fmt.Errorf("intel: duplicate category %q in pattern bank", def.Category)
		}
		seen[def.Category] = struct{}{}

		e := bankEntry{category: def.Category}
		for _, src := range def.Patterns {
			re, err := compilePattern(src)
			if err != nil {
				return nil, fmt.Errorf("intel: %s pattern %q: %w", def.Category, src, err)
			}
			e.patterns = append(e.patterns, re)
			e.sources = append(e.sources, src)
		}
		b.entries = append(b.entries, e)
	}
	return b, nil
}

func (b *PatternBank) Status() Status {
	n := 0
	for _, e := range b.entries {
		n += len(e.patterns)
	}
	return Status{
		BundleID:      b.id,
		BundleVersion: b.version,
		Categories:    len(b.entries),
		Patterns:      n,
	}
}

// Classify scores every category by the number of non-overlapping pattern
// matches in the lowercased text. The highest score wins; ties go to the
// category declared first. The evidence lists the source of every pattern
// of the winning category that matched, in declaration order.
//
// When nothing matches Classify returns DefaultCategory and no evidence.
func (b *PatternBank) Classify(raw string) (Category, []string) {
	lc := strings.ToLower(raw)

	best := -1
	bestScore := 0
	var bestEvidence []string

	for i, e := range b.entries {
		score := 0
		var evidence []string
		for j, re := range e.patterns {
			if n := len(re.FindAllStringIndex(lc, -1)); n > 0 {
				score += n
				evidence = append(evidence, e.sources[j])
			}
		}
		if score > bestScore {
			best, bestScore, bestEvidence = i, score, evidence
		}
	}

	if best < 0 {
		return DefaultCategory, nil
	}
	return b.entries[best].category, bestEvidence
}
