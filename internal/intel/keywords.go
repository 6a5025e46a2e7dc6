package intel

import (
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// KeywordSet matches a fixed list of literal substrings in one pass.
// Matching is byte-wise and case-sensitive; callers lowercase first when
// they need case folding.
type KeywordSet struct {
	// The matcher keeps per-call scratch state, so Match must not run
	// concurrently.
	mu       sync.Mutex
	keywords []string
	matcher  *ahocorasick.Matcher
}

// NewKeywordSet builds a set over keywords. Empty and repeated keywords
// are ignored.
func NewKeywordSet(keywords ...string) *KeywordSet {
	kept := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		if _, dup := seen[kw]; dup || kw == "" {
			continue
		}
		seen[kw] = struct{}{}
		kept = append(kept, kw)
	}
	ks := &KeywordSet{keywords: kept}
	if len(kept) > 0 {
		ks.matcher = ahocorasick.NewStringMatcher(kept)
	}
	return ks
}

// Matches returns the keywords found in text, in declaration order.
func (k *KeywordSet) Matches(text string) []string {
	if k.matcher == nil || text == "" {
		return nil
	}

	k.mu.Lock()
	hits := k.matcher.Match([]byte(text))
	k.mu.Unlock()

	if len(hits) == 0 {
		return nil
	}
	found := make([]bool, len(k.keywords))
	for _, h := range hits {
		if h >= 0 && h < len(found) {
			found[h] = true
		}
	}
	out := make([]string, 0, len(hits))
	for i, kw := range k.keywords {
		if found[i] {
			out = append(out, kw)
		}
	}
	return out
}

// ContainsAny reports whether any keyword occurs in text.
func (k *KeywordSet) ContainsAny(text string) bool {
	return len(k.Matches(text)) > 0
}

// Keywords returns a copy of the configured keywords.
func (k *KeywordSet) Keywords() []string {
	return append([]string(nil), k.keywords...)
}
