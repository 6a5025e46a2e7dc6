// Package safety maps fused scam probabilities onto the coarse risk tiers
// reported to callers.
package safety

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Tier is an ordinal risk bucket. The zero value is Safe.
type Tier int

const (
	Safe Tier = iota
	Low
	Medium
	High
	Critical
)

// Tier lower bounds. A probability at or above the bound maps to the tier.
const (
	LowThreshold      = 0.2
	MediumThreshold   = 0.4
	HighThreshold     = 0.6
	CriticalThreshold = 0.8
)

// VerdictThreshold is the probability at or above which content is flagged.
const VerdictThreshold = 0.5

var tierNames = [...]string{"SAFE", "LOW", "MEDIUM", "HIGH", "CRITICAL"}

// TierFor maps p onto a tier. Inputs outside [0,1] clamp to the nearest
// end; NaN maps to Safe.
func TierFor(p float64) Tier {
	switch {
	case p >= CriticalThreshold:
		return Critical
	case p >= HighThreshold:
		return High
	case p >= MediumThreshold:
		return Medium
	case p >= LowThreshold:
		return Low
	default:
		return Safe
	}
}

// Flagged reports whether p crosses the verdict threshold.
func Flagged(p float64) bool {
	return p >= VerdictThreshold
}

// Tiers lists every tier in ascending order.
func Tiers() []Tier {
	return []Tier{Safe, Low, Medium, High, Critical}
}

func (t Tier) String() string {
	if t < Safe || t > Critical {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseTier is the inverse of String; matching is case-insensitive.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return Safe, fmt.Errorf("safety: unknown tier %q", s)
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
