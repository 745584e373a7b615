package estimate

import (
	"fmt"

	"github.com/yourorg/brand-estimator/internal/types"
)

// Phase spreads a year-three figure over the first two years.
// Year three is always 100%.
type Phase struct {
	YearOne float64 `json:"year_one" yaml:"year_one"`
	YearTwo float64 `json:"year_two" yaml:"year_two"`
}

func (p Phase) validate(name string) error {
	if p.YearOne < 0 || p.YearOne > p.YearTwo || p.YearTwo > 1 {
		return fmt.Errorf("%s: phase must satisfy 0 <= year_one <= year_two <= 1, got %g/%g", name, p.YearOne, p.YearTwo)
	}
	return nil
}

// FundingReadinessCoefficients drive the valuation uplift:
// min(current revenue * RevenueMultiple, investment * InvestmentMultiple)
type FundingReadinessCoefficients struct {
	RevenueMultiple    float64          `json:"revenue_multiple" yaml:"revenue_multiple"`
	InvestmentMultiple float64          `json:"investment_multiple" yaml:"investment_multiple"`
	Phase              Phase            `json:"phase" yaml:"phase"`
	Confidence         types.Confidence `json:"confidence" yaml:"confidence"`
}

// CustomerAcquisitionCoefficients drive CAC savings plus conversion lift
type CustomerAcquisitionCoefficients struct {
	CACReduction          float64          `json:"cac_reduction" yaml:"cac_reduction"`
	ConversionImprovement float64          `json:"conversion_improvement" yaml:"conversion_improvement"`
	Phase                 Phase            `json:"phase" yaml:"phase"`
	Confidence            types.Confidence `json:"confidence" yaml:"confidence"`
}

// TalentCoefficients drive hiring savings plus productivity lift
type TalentCoefficients struct {
	PerHeadSavings float64          `json:"per_head_savings" yaml:"per_head_savings"`
	Productivity   float64          `json:"productivity" yaml:"productivity"`
	Phase          Phase            `json:"phase" yaml:"phase"`
	Confidence     types.Confidence `json:"confidence" yaml:"confidence"`
}

// PartnershipCoefficients drive capped partnership revenue
type PartnershipCoefficients struct {
	Fraction   float64          `json:"fraction" yaml:"fraction"`
	Cap        int64            `json:"cap" yaml:"cap"`
	Phase      Phase            `json:"phase" yaml:"phase"`
	Confidence types.Confidence `json:"confidence" yaml:"confidence"`
}

// FractionCoefficients are used by categories that are a single fraction of one input
type FractionCoefficients struct {
	Fraction   float64          `json:"fraction" yaml:"fraction"`
	Phase      Phase            `json:"phase" yaml:"phase"`
	Confidence types.Confidence `json:"confidence" yaml:"confidence"`
}

// Coefficients is the full constant table behind the projections.
// The values are marketing heuristics rather than a fitted model, so they are
// loadable from a file instead of being baked into the formulas.
type Coefficients struct {
	FundingReadiness    FundingReadinessCoefficients    `json:"funding_readiness" yaml:"funding_readiness"`
	CustomerAcquisition CustomerAcquisitionCoefficients `json:"customer_acquisition" yaml:"customer_acquisition"`
	PricingPremium      FractionCoefficients            `json:"pricing_premium" yaml:"pricing_premium"`
	TalentAcquisition   TalentCoefficients              `json:"talent_acquisition" yaml:"talent_acquisition"`
	Partnerships        PartnershipCoefficients         `json:"partnerships" yaml:"partnerships"`
	MarketExpansion     FractionCoefficients            `json:"market_expansion" yaml:"market_expansion"`
	MarketingEfficiency FractionCoefficients            `json:"marketing_efficiency" yaml:"marketing_efficiency"`
}

// DefaultCoefficients returns the stock coefficient table
func DefaultCoefficients() Coefficients {
	return Coefficients{
		FundingReadiness: FundingReadinessCoefficients{
			RevenueMultiple:    0.3,
			InvestmentMultiple: 8,
			Phase:              Phase{YearOne: 0.3, YearTwo: 0.6},
			Confidence:         types.ConfidenceMedium,
		},
		CustomerAcquisition: CustomerAcquisitionCoefficients{
			CACReduction:          0.25,
			ConversionImprovement: 0.15,
			Phase:                 Phase{YearOne: 0.4, YearTwo: 0.7},
			Confidence:            types.ConfidenceHigh,
		},
		PricingPremium: FractionCoefficients{
			Fraction:   0.08,
			Phase:      Phase{YearOne: 0.5, YearTwo: 0.8},
			Confidence: types.ConfidenceHigh,
		},
		TalentAcquisition: TalentCoefficients{
			PerHeadSavings: 2000,
			Productivity:   0.02,
			Phase:          Phase{YearOne: 0.3, YearTwo: 0.6},
			Confidence:     types.ConfidenceMedium,
		},
		Partnerships: PartnershipCoefficients{
			Fraction:   0.1,
			Cap:        500_000,
			Phase:      Phase{YearOne: 0.25, YearTwo: 0.6},
			Confidence: types.ConfidenceLow,
		},
		MarketExpansion: FractionCoefficients{
			Fraction:   0.05,
			Phase:      Phase{YearOne: 0.2, YearTwo: 0.5},
			Confidence: types.ConfidenceLow,
		},
		MarketingEfficiency: FractionCoefficients{
			Fraction:   0.2,
			Phase:      Phase{YearOne: 0.4, YearTwo: 0.7},
			Confidence: types.ConfidenceHigh,
		},
	}
}

// Validate checks that every fraction is non-negative, every phase is monotonic
// and every confidence label is known
func (c Coefficients) Validate() error {
	type entry struct {
		name       string
		values     []float64
		phase      Phase
		confidence types.Confidence
	}
	entries := []entry{
		{"funding_readiness", []float64{c.FundingReadiness.RevenueMultiple, c.FundingReadiness.InvestmentMultiple}, c.FundingReadiness.Phase, c.FundingReadiness.Confidence},
		{"customer_acquisition", []float64{c.CustomerAcquisition.CACReduction, c.CustomerAcquisition.ConversionImprovement}, c.CustomerAcquisition.Phase, c.CustomerAcquisition.Confidence},
		{"pricing_premium", []float64{c.PricingPremium.Fraction}, c.PricingPremium.Phase, c.PricingPremium.Confidence},
		{"talent_acquisition", []float64{c.TalentAcquisition.PerHeadSavings, c.TalentAcquisition.Productivity}, c.TalentAcquisition.Phase, c.TalentAcquisition.Confidence},
		{"partnerships", []float64{c.Partnerships.Fraction, float64(c.Partnerships.Cap)}, c.Partnerships.Phase, c.Partnerships.Confidence},
		{"market_expansion", []float64{c.MarketExpansion.Fraction}, c.MarketExpansion.Phase, c.MarketExpansion.Confidence},
		{"marketing_efficiency", []float64{c.MarketingEfficiency.Fraction}, c.MarketingEfficiency.Phase, c.MarketingEfficiency.Confidence},
	}

	for _, e := range entries {
		for _, v := range e.values {
			if v < 0 {
				return fmt.Errorf("%s: coefficients must not be negative, got %g", e.name, v)
			}
		}
		if err := e.phase.validate(e.name); err != nil {
			return err
		}
		if e.confidence.Weight() == 0 {
			return fmt.Errorf("%s: unknown confidence label %q", e.name, e.confidence)
		}
	}
	return nil
}
