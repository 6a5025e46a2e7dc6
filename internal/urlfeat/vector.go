package urlfeat

// Feature is one named indicator value.
type Feature struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Vector is an ordered feature vector. It always carries every name in
// Schema, in Schema order.
type Vector struct {
	features []Feature
}

// Schema is the full ordered list of feature names produced by Extract.
var Schema = []string{
	UsingIP, LongURL, ShortURL, SymbolAt, Redirecting, PrefixSuffix,
	SubDomains, HTTPS, DomainRegLen, Favicon, NonStdPort, HTTPSDomainURL,
	RequestURL, AnchorURL, LinksInScriptTags, ServerFormHandler, InfoEmail,
	AbnormalURL, WebsiteForwarding, StatusBarCust, DisableRightClick,
	UsingPopupWindow, IframeRedirection, AgeofDomain, DNSRecording,
	WebsiteTraffic, PageRank, GoogleIndex, LinksPointingToPage, StatsReport,
}

// Get returns the value of name and whether the vector has it.
func (v Vector) Get(name string) (int, bool) {
	for _, f := range v.features {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Suspicious reports whether name is present with the suspicious value.
func (v Vector) Suspicious(name string) bool {
	val, ok := v.Get(name)
	return ok && val == Suspicious
}

// Features returns a copy of the ordered features.
func (v Vector) Features() []Feature {
	return append([]Feature(nil), v.features...)
}

// Map returns the features keyed by name.
func (v Vector) Map() map[string]int {
	out := make(map[string]int, len(v.features))
	for _, f := range v.features {
		out[f.Name] = f.Value
	}
	return out
}

func (v Vector) Len() int { return len(v.features) }

// Align lays the vector out in the given column order for an estimator.
// Columns the vector does not carry are filled with 0. That default is the
// estimator's, not the extractor's: the extractor never omits a feature.
func (v Vector) Align(columns []string) []float32 {
	values := v.Map()
	out := make([]float32, len(columns))
	for i, col := range columns {
		out[i] = float32(values[col])
	}
	return out
}
