package safety

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForBoundaries(t *testing.T) {
	cases := []struct {
		p    float64
		want Tier
	}{
		{0, Safe},
		{0.1999999, Safe},
		{0.2, Low},
		{0.3999999, Low},
		{0.4, Medium},
		{0.5999999, Medium},
		{0.6, High},
		{0.7999999, High},
		{0.8, Critical},
		{1, Critical},
		{-0.5, Safe},
		{1.5, Critical},
		{math.NaN(), Safe},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.p), "p=%v", tc.p)
	}
}

func TestTierForMonotonic(t *testing.T) {
	prev := TierFor(0)
	for i := 1; i <= 1000; i++ {
		cur := TierFor(float64(i) / 1000)
		assert.GreaterOrEqual(t, int(cur), int(prev), "tier decreased at %d/1000", i)
		prev = cur
	}
}

func TestFlagged(t *testing.T) {
	assert.False(t, Flagged(0.4999))
	assert.True(t, Flagged(0.5))
	assert.True(t, Flagged(1))
}

func TestTierJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Tier{"risk_level": High})
	require.NoError(t, err)
	assert.JSONEq(t, `{"risk_level":"HIGH"}`, string(data))

	var got Tier
	require.NoError(t, json.Unmarshal([]byte(`"critical"`), &got))
	assert.Equal(t, Critical, got)

	assert.Error(t, json.Unmarshal([]byte(`"EXTREME"`), &got))
}

func TestTierString(t *testing.T) {
	for i, tier := range Tiers() {
		assert.Equal(t, tierNames[i], tier.String())
	}
	assert.Equal(t, "Tier(9)", Tier(9).String())
}
