// Package catalog holds the fixed, table-driven catalogs shared by the ROI and pricing estimators.
package catalog

import (
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
)

// focusAreas is ordered; projections are emitted in this order.
var focusAreas = []model.FocusArea{
	{
		ID:          types.FocusFundingReadiness,
		Name:        "Funding Readiness",
		BaseImpact:  0.9,
		Description: "Investor-ready positioning, pitch narrative and valuation story",
	},
	{
		ID:          types.FocusCustomerAcquisition,
		Name:        "Customer Acquisition",
		BaseImpact:  0.8,
		Description: "Lower acquisition cost and higher conversion through clearer messaging",
	},
	{
		ID:          types.FocusPricingPremium,
		Name:        "Pricing Premium",
		BaseImpact:  0.7,
		Description: "Brand perception that supports premium pricing",
	},
	{
		ID:          types.FocusTalentAcquisition,
		Name:        "Talent Acquisition",
		BaseImpact:  0.6,
		Description: "Employer brand that cuts hiring cost and lifts productivity",
	},
	{
		ID:          types.FocusPartnerships,
		Name:        "Strategic Partnerships",
		BaseImpact:  0.5,
		Description: "Credibility that opens partnership and channel revenue",
	},
	{
		ID:          types.FocusMarketExpansion,
		Name:        "Market Expansion",
		BaseImpact:  0.4,
		Description: "Positioning for new segments and geographies",
	},
}

// FocusAreas returns a copy of the focus-area catalog in canonical order
func FocusAreas() []model.FocusArea {
	out := make([]model.FocusArea, len(focusAreas))
	copy(out, focusAreas)
	return out
}

// FocusArea looks up a catalog entry by id
func FocusArea(id types.FocusAreaID) (model.FocusArea, bool) {
	for _, fa := range focusAreas {
		if fa.ID == id {
			return fa, true
		}
	}
	return model.FocusArea{}, false
}

var services = []model.Service{
	{ID: "brand-strategy", Name: "Brand Strategy", BasePrice: 8000, Description: "Positioning, audience and competitive strategy"},
	{ID: "visual-identity", Name: "Visual Identity", BasePrice: 6000, Description: "Logo, palette, typography and brand guidelines"},
	{ID: "messaging", Name: "Messaging Framework", BasePrice: 4000, Description: "Voice, tagline and core narrative"},
	{ID: "website", Name: "Website Design", BasePrice: 10000, Description: "Marketing site design and build"},
	{ID: "investor-deck", Name: "Investor Deck", BasePrice: 5000, Description: "Fundraising narrative and pitch deck design"},
	{ID: "content-strategy", Name: "Content Strategy", BasePrice: 3000, Description: "Editorial plan and launch content"},
}

// Services returns a copy of the service catalog in canonical order
func Services() []model.Service {
	out := make([]model.Service, len(services))
	copy(out, services)
	return out
}

// Service looks up a service by id
func Service(id string) (model.Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return model.Service{}, false
}

// StageMultipliers scale pricing by funding stage
var StageMultipliers = map[types.FundingStage]float64{
	types.StagePreSeed:     0.8,
	types.StageSeed:        1.0,
	types.StageSeriesAPrep: 1.2,
	types.StageSeriesA:     1.4,
	types.StageSeriesBPlus: 1.6,
}

// ComplexityMultipliers scale pricing by engagement complexity
var ComplexityMultipliers = map[types.Complexity]float64{
	types.ComplexitySimple:   0.9,
	types.ComplexityStandard: 1.0,
	types.ComplexityComplex:  1.3,
}

// TimelineMultipliers scale pricing by delivery timeline
var TimelineMultipliers = map[types.Timeline]float64{
	types.TimelineExtended: 0.9,
	types.TimelineStandard: 1.0,
	types.TimelineRush:     1.25,
}

// PackageTier maps a price ceiling to a package name and equity share
type PackageTier struct {
	Name string `json:"name"`

	// MaxTotal is inclusive; zero means unbounded
	MaxTotal int64 `json:"max_total"`

	EquityPercent float64 `json:"equity_percent"`
}

// PackageTiers are checked in order; the last tier is unbounded
var PackageTiers = []PackageTier{
	{Name: "Foundation", MaxTotal: 15000, EquityPercent: 0.5},
	{Name: "Growth", MaxTotal: 30000, EquityPercent: 1.0},
	{Name: "Enterprise", MaxTotal: 0, EquityPercent: 1.5},
}

// TierFor returns the package tier for a total price
func TierFor(total int64) PackageTier {
	for _, t := range PackageTiers {
		if t.MaxTotal == 0 || total <= t.MaxTotal {
			return t
		}
	}
	return PackageTiers[len(PackageTiers)-1]
}
