package urlfeat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(v Vector) []string {
	out := make([]string, 0, v.Len())
	for _, f := range v.Features() {
		out = append(out, f.Name)
	}
	return out
}

func TestExtractIsTotal(t *testing.T) {
	for _, in := range []string{"", "not a url", "http://", "//", "////", "@@@", "https://", "ftp://a-b/c", "💥://💥"} {
		v := Extract(in)
		assert.Equal(t, Schema, names(v), "input %q", in)
		for _, f := range v.Features() {
			assert.Contains(t, []int{Suspicious, Neutral, Benign}, f.Value, "input %q feature %s", in, f.Name)
		}
	}
}

func TestSchemaHasThirtyUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range Schema {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
	assert.Len(t, Schema, 30)
}

func TestExtractIPLogin(t *testing.T) {
	v := Extract("http://192.168.1.1/login")

	assert.True(t, v.Suspicious(UsingIP))
	assert.True(t, v.Suspicious(HTTPS))
	got := v.Map()
	assert.Equal(t, Benign, got[LongURL])
	assert.Equal(t, Benign, got[ShortURL])
	assert.Equal(t, Benign, got[SymbolAt])
	assert.Equal(t, Benign, got[Redirecting])
	assert.Equal(t, Benign, got[PrefixSuffix])
	// three dots minus one
	assert.Equal(t, Neutral, got[SubDomains])
	assert.Equal(t, Benign, got[HTTPSDomainURL])
}

func TestExtractEmptyHostDegradesToNeutral(t *testing.T) {
	v := Extract("http://")
	got := v.Map()
	assert.Equal(t, Neutral, got[PrefixSuffix])
	assert.Equal(t, Neutral, got[SubDomains])

	v = Extract("http:///path-with-hyphen")
	got = v.Map()
	assert.Equal(t, Neutral, got[PrefixSuffix])
	assert.Equal(t, Neutral, got[SubDomains])
}

func TestExtractWithoutSeparator(t *testing.T) {
	got := Extract("a.b.c.d.example/some-path").Map()

	// the hyphen check scans the whole string, the subdomain check only the host
	assert.Equal(t, Suspicious, got[PrefixSuffix])
	assert.Equal(t, Suspicious, got[SubDomains])
	assert.Equal(t, Benign, got[HTTPSDomainURL])
}

func TestExtractLengthClasses(t *testing.T) {
	base := "https://e.example/"
	pad := func(n int) string { return base + strings.Repeat("a", n-len(base)) }

	assert.Equal(t, Benign, Extract(pad(53)).Map()[LongURL])
	assert.Equal(t, Neutral, Extract(pad(54)).Map()[LongURL])
	assert.Equal(t, Neutral, Extract(pad(75)).Map()[LongURL])
	assert.Equal(t, Suspicious, Extract(pad(76)).Map()[LongURL])

	// runes, not bytes
	assert.Equal(t, Benign, Extract("https://e.example/"+strings.Repeat("é", 35)).Map()[LongURL])
}

func TestExtractIndicators(t *testing.T) {
	got := Extract("https://secure-login.a.b.c.example/x//http://bit.ly@evil").Map()

	assert.Equal(t, Benign, got[HTTPS])
	assert.Equal(t, Suspicious, got[ShortURL])
	assert.Equal(t, Suspicious, got[SymbolAt])
	assert.Equal(t, Suspicious, got[Redirecting])
	assert.Equal(t, Suspicious, got[PrefixSuffix])
	assert.Equal(t, Suspicious, got[SubDomains])
}

func TestExtractShortenerSubstringQuirk(t *testing.T) {
	assert.True(t, Extract("https://www.microsoft.com").Suspicious(ShortURL))
}

func TestExtractHTTPSInHost(t *testing.T) {
	assert.True(t, Extract("http://HTTPS-paypal.example/login").Suspicious(HTTPSDomainURL))
	assert.False(t, Extract("https://paypal.example/login").Suspicious(HTTPSDomainURL))
}

func TestExtractFixedBlock(t *testing.T) {
	got := Extract("https://example.com").Map()
	assert.Equal(t, Neutral, got[DomainRegLen])
	assert.Equal(t, Neutral, got[LinksPointingToPage])
	assert.Equal(t, Benign, got[PageRank])
	assert.Equal(t, Benign, got[StatsReport])
}

func TestAlignDefaultsMissingColumnsToZero(t *testing.T) {
	v := Extract("http://192.168.1.1/login")

	cols := []string{HTTPS, "Unknown", UsingIP, PageRank}
	assert.Equal(t, []float32{1, 0, 1, -1}, v.Align(cols))
	assert.Empty(t, v.Align(nil))
}

func TestVectorGet(t *testing.T) {
	v := Extract("https://example.com")
	val, ok := v.Get(HTTPS)
	require.True(t, ok)
	assert.Equal(t, Benign, val)

	_, ok = v.Get("nope")
	assert.False(t, ok)
}
