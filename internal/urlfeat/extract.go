// Package urlfeat derives the lexical phishing indicators of a URL.
//
// Values are tri-state: 1 is suspicious, 0 neutral, -1 benign. Indicators
// that would need a network or page fetch are fixed constants; they exist
// because the URL estimator was fit on the full column set, and callers must
// not read them as measurements.
//
// A URL with an empty host after "//" (e.g. "http://") reports 0 for
// PrefixSuffix- and SubDomains. The estimator never saw that value for those
// columns during training, so it is a neutral placeholder, not a signal.
package urlfeat

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/straja-ai/rakshak/internal/intel"
)

// Feature names, in schema order.
const (
	UsingIP             = "UsingIP"
	LongURL             = "LongURL"
	ShortURL            = "ShortURL"
	SymbolAt            = "Symbol@"
	Redirecting         = "Redirecting//"
	PrefixSuffix        = "PrefixSuffix-"
	SubDomains          = "SubDomains"
	HTTPS               = "HTTPS"
	DomainRegLen        = "DomainRegLen"
	Favicon             = "Favicon"
	NonStdPort          = "NonStdPort"
	HTTPSDomainURL      = "HTTPSDomainURL"
	RequestURL          = "RequestURL"
	AnchorURL           = "AnchorURL"
	LinksInScriptTags   = "LinksInScriptTags"
	ServerFormHandler   = "ServerFormHandler"
	InfoEmail           = "InfoEmail"
	AbnormalURL         = "AbnormalURL"
	WebsiteForwarding   = "WebsiteForwarding"
	StatusBarCust       = "StatusBarCust"
	DisableRightClick   = "DisableRightClick"
	UsingPopupWindow    = "UsingPopupWindow"
	IframeRedirection   = "IframeRedirection"
	AgeofDomain         = "AgeofDomain"
	DNSRecording        = "DNSRecording"
	WebsiteTraffic      = "WebsiteTraffic"
	PageRank            = "PageRank"
	GoogleIndex         = "GoogleIndex"
	LinksPointingToPage = "LinksPointingToPage"
	StatsReport         = "StatsReport"
)

// Tri-state values.
const (
	Suspicious = 1
	Neutral    = 0
	Benign     = -1
)

// Length classes, in runes.
const (
	longURLMin  = 76
	shortURLMax = 53
)

// Shorteners lists the URL shortening hosts checked by ShortURL. Matching
// is a plain substring test, so "t.co" also fires inside "microsoft.com";
// the estimator was fit with that behaviour.
var Shorteners = []string{"bit.ly", "goo.gl", "tinyurl", "t.co", "is.gd", "ow.ly"}

// fixed is the constant block, in schema order.
var fixed = []Feature{
	{DomainRegLen, Neutral},
	{Favicon, Benign},
	{NonStdPort, Benign},
	// HTTPSDomainURL is derived and slots in here.
	{RequestURL, Benign},
	{AnchorURL, Benign},
	{LinksInScriptTags, Benign},
	{ServerFormHandler, Benign},
	{InfoEmail, Benign},
	{AbnormalURL, Benign},
	{WebsiteForwarding, Benign},
	{StatusBarCust, Benign},
	{DisableRightClick, Benign},
	{UsingPopupWindow, Benign},
	{IframeRedirection, Benign},
	{AgeofDomain, Benign},
	{DNSRecording, Benign},
	{WebsiteTraffic, Benign},
	{PageRank, Benign},
	{GoogleIndex, Benign},
	{LinksPointingToPage, Neutral},
	{StatsReport, Benign},
}

var (
	reDottedQuad = regexp.MustCompile(`\p{Nd}{1,3}\.\p{Nd}{1,3}\.\p{Nd}{1,3}\.\p{Nd}{1,3}`)
	shorteners   = intel.NewKeywordSet(Shorteners...)
)

// Extract computes the full feature vector of url. It never fails: a
// missing host after the scheme separator degrades the host-derived
// features to Neutral.
func Extract(url string) Vector {
	v := make([]Feature, 0, len(Schema))

	v = append(v,
		Feature{UsingIP, flag(reDottedQuad.MatchString(url))},
		Feature{LongURL, lengthClass(utf8.RuneCountInString(url))},
		Feature{ShortURL, flag(shorteners.ContainsAny(url))},
		Feature{SymbolAt, flag(strings.Contains(url, "@"))},
		Feature{Redirecting, flag(strings.Count(url, "//") > 1)},
	)

	if host, ok := hostPortion(url); ok {
		hyphenScope := url
		if strings.Contains(url, "//") {
			hyphenScope = host
		}
		v = append(v,
			Feature{PrefixSuffix, flag(strings.Contains(hyphenScope, "-"))},
			Feature{SubDomains, subdomainClass(host)},
		)
	} else {
		v = append(v, Feature{PrefixSuffix, Neutral}, Feature{SubDomains, Neutral})
	}

	// HTTPS has inverted polarity: a missing https scheme is the suspicious side.
	v = append(v, Feature{HTTPS, flag(!strings.HasPrefix(url, "https"))})
	v = append(v, fixed[:3]...)
	v = append(v, Feature{HTTPSDomainURL, flag(httpsAfterScheme(url))})
	v = append(v, fixed[3:]...)

	return Vector{features: v}
}

// hostPortion returns the text between the first "//" and the next "/".
// Without a separator the host is everything before the first "/". A
// separator followed directly by "/" or the end of input yields no host.
//
// The hyphen check looks at the whole string when there is no separator,
// which is why Extract keeps its own scope for it.
func hostPortion(url string) (string, bool) {
	if _, rest, found := strings.Cut(url, "//"); found {
		host, _, _ := strings.Cut(rest, "/")
		return host, host != ""
	}
	host, _, _ := strings.Cut(url, "/")
	return host, true
}

func subdomainClass(host string) int {
	switch n := strings.Count(host, ".") - 1; {
	case n > 2:
		return Suspicious
	case n == 2:
		return Neutral
	default:
		return Benign
	}
}

func lengthClass(n int) int {
	switch {
	case n >= longURLMin:
		return Suspicious
	case n <= shortURLMax:
		return Benign
	default:
		return Neutral
	}
}

// httpsAfterScheme reports whether "https" occurs anywhere after the first
// "//", e.g. "http://https-login.example".
func httpsAfterScheme(url string) bool {
	_, rest, found := strings.Cut(strings.ToLower(url), "//")
	if !found {
		return false
	}
	rest, _, _ = strings.Cut(rest, "//")
	return strings.Contains(rest, "https")
}

func flag(b bool) int {
	if b {
		return Suspicious
	}
	return Benign
}
