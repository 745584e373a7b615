package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/brand-estimator/internal/types"
)

func TestFocusAreas_OrderAndCopy(t *testing.T) {
	areas := FocusAreas()
	require.Len(t, areas, 6)
	assert.Equal(t, types.FocusFundingReadiness, areas[0].ID)
	assert.Equal(t, types.FocusMarketExpansion, areas[5].ID)

	for i := 1; i < len(areas); i++ {
		assert.Less(t, areas[i].BaseImpact, areas[i-1].BaseImpact)
	}

	areas[0].Name = "mutated"
	assert.Equal(t, "Funding Readiness", FocusAreas()[0].Name)
}

func TestFocusAreaLookup(t *testing.T) {
	fa, ok := FocusArea(types.FocusPartnerships)
	require.True(t, ok)
	assert.Equal(t, "Strategic Partnerships", fa.Name)

	_, ok = FocusArea("unknown")
	assert.False(t, ok)
}

func TestServiceLookup(t *testing.T) {
	s, ok := Service("website")
	require.True(t, ok)
	assert.Equal(t, int64(10000), s.BasePrice)

	_, ok = Service("podcast")
	assert.False(t, ok)
	assert.Len(t, Services(), 6)
}

func TestMultipliersCoverEveryValue(t *testing.T) {
	for _, stage := range types.FundingStages {
		_, ok := StageMultipliers[stage]
		assert.True(t, ok, "missing stage multiplier for %s", stage)
	}
	assert.Len(t, ComplexityMultipliers, 3)
	assert.Len(t, TimelineMultipliers, 3)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		total int64
		want  string
	}{
		{0, "Foundation"},
		{15000, "Foundation"},
		{15001, "Growth"},
		{30000, "Growth"},
		{30001, "Enterprise"},
		{1_000_000, "Enterprise"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.total).Name, "total %d", tt.total)
	}
}
