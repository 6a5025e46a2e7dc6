package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLotteryWinsTieByDeclarationOrder(t *testing.T) {
	bank := NewPatternBank()

	cat, evidence := bank.Classify("Congratulations! You have WON a lottery prize of $50000. Click here to claim now!!")

	assert.Equal(t, LotteryScam, cat)
	assert.Equal(t, []string{`lottery`}, evidence)
}

func TestClassifyNoMatchFallsBackToDefault(t *testing.T) {
	cat, evidence := NewPatternBank().Classify("see you at lunch tomorrow")

	assert.Equal(t, EmailScam, cat)
	assert.Empty(t, evidence)
}

func TestClassifyCountsEveryOccurrence(t *testing.T) {
	bank, err := NewPatternBankFrom([]CategoryPatterns{
		{PhishingLink, []string{`click`}},
		{CryptoScam, []string{`bitcoin`, `wallet`}},
	})
	require.NoError(t, err)

	// click x3 beats bitcoin+wallet x2 even though crypto matched more patterns.
	cat, evidence := bank.Classify("click click CLICK your bitcoin wallet")
	assert.Equal(t, PhishingLink, cat)
	assert.Equal(t, []string{`click`}, evidence)
}

func TestClassifyTieBreakFollowsBankOrder(t *testing.T) {
	defs := []CategoryPatterns{
		{CryptoScam, []string{`bitcoin`}},
		{LotteryScam, []string{`jackpot`}},
	}
	bank, err := NewPatternBankFrom(defs)
	require.NoError(t, err)

	cat, _ := bank.Classify("jackpot bitcoin")
	assert.Equal(t, CryptoScam, cat)
}

func TestClassifyEvidenceInDeclarationOrder(t *testing.T) {
	cat, evidence := NewPatternBank().Classify("Your KYC update is pending, bank account will be blocked. Verify your account now.")

	assert.Equal(t, BankFraud, cat)
	assert.Equal(t, []string{
		`bank\s+account.*block`,
		`verify\s+your\s+(account|identity)`,
		`kyc\s+(update|verification|expire)`,
	}, evidence)
}

func TestClassifyUnicodeWhitespace(t *testing.T) {
	cat, evidence := NewPatternBank().Classify("i won prize")

	assert.Equal(t, LotteryScam, cat)
	assert.Equal(t, []string{`won\s+(a\s+)?prize`}, evidence)
}

func TestNewPatternBankFromRejectsDuplicates(t *testing.T) {
	_, err := NewPatternBankFrom([]CategoryPatterns{
		{CryptoScam, []string{`a`}},
		{CryptoScam, []string{`b`}},
	})
	assert.Error(t, err)
}

func TestNewPatternBankFromRejectsBadPattern(t *testing.T) {
	_, err := NewPatternBankFrom([]CategoryPatterns{{CryptoScam, []string{`(`}}})
	assert.Error(t, err)
}

func TestDefaultBankCoversEveryCategory(t *testing.T) {
	bank := NewPatternBank()
	st := bank.Status()

	assert.Equal(t, len(Categories()), st.Categories)
	assert.Greater(t, st.Patterns, st.Categories)
	for i, e := range bank.entries {
		assert.Equal(t, Category(i), e.category)
	}
}

func TestCategoryNames(t *testing.T) {
	assert.Equal(t, "Phishing Link", PhishingLink.String())
	got, err := ParseCategory("Digital Arrest Scam")
	require.NoError(t, err)
	assert.Equal(t, DigitalArrestScam, got)

	_, err = ParseCategory("Nope")
	assert.Error(t, err)
}
