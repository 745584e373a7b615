package estimate

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/brand-estimator/internal/catalog"
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
)

// Projection category labels
const (
	CategoryValuation           = "Valuation Increase"
	CategoryCustomerAcquisition = "Customer Acquisition"
	CategoryPricingPremium      = "Pricing Premium"
	CategoryTalentAcquisition   = "Talent Acquisition"
	CategoryPartnerships        = "Partnership Revenue"
	CategoryMarketExpansion     = "Market Expansion"
	CategoryMarketingEfficiency = "Marketing Efficiency"
)

// ComputeProjections returns one projection per selected focus area, in catalog
// order, followed by the marketing efficiency projection which is always present.
// Unknown or duplicate focus area ids are ignored.
func (e *Engine) ComputeProjections(m model.BusinessMetrics, cfg model.InvestmentConfig) []model.ROIProjection {
	c := e.coeffs
	projections := make([]model.ROIProjection, 0, len(cfg.FocusAreas)+1)
	logIgnoredFocusAreas(cfg.FocusAreas)

	for _, fa := range catalog.FocusAreas() {
		if !cfg.HasFocus(fa.ID) {
			continue
		}

		var p model.ROIProjection
		switch fa.ID {
		case types.FocusFundingReadiness:
			uplift := math.Min(
				float64(m.CurrentRevenue)*c.FundingReadiness.RevenueMultiple,
				float64(cfg.InvestmentAmount)*c.FundingReadiness.InvestmentMultiple,
			)
			p = phased(CategoryValuation, uplift, c.FundingReadiness.Phase, c.FundingReadiness.Confidence,
				"Valuation uplift from investor-ready positioning and narrative")

		case types.FocusCustomerAcquisition:
			cacSavings := float64(m.CustomerAcquisitionCost) * c.CustomerAcquisition.CACReduction * 12
			conversionLift := float64(m.CurrentRevenue) * c.CustomerAcquisition.ConversionImprovement / 3
			p = phased(CategoryCustomerAcquisition, cacSavings+conversionLift, c.CustomerAcquisition.Phase, c.CustomerAcquisition.Confidence,
				"Lower acquisition cost and higher conversion from clearer messaging")

		case types.FocusPricingPremium:
			premium := float64(m.CurrentRevenue) * c.PricingPremium.Fraction
			p = phased(CategoryPricingPremium, premium, c.PricingPremium.Phase, c.PricingPremium.Confidence,
				"Additional revenue from premium price positioning")

		case types.FocusTalentAcquisition:
			hiring := float64(m.EmployeeCount) * c.TalentAcquisition.PerHeadSavings
			productivity := float64(m.CurrentRevenue) * c.TalentAcquisition.Productivity
			p = phased(CategoryTalentAcquisition, hiring+productivity, c.TalentAcquisition.Phase, c.TalentAcquisition.Confidence,
				"Hiring savings and productivity gains from a stronger employer brand")

		case types.FocusPartnerships:
			revenue := math.Min(float64(m.CurrentRevenue)*c.Partnerships.Fraction, float64(c.Partnerships.Cap))
			p = phased(CategoryPartnerships, revenue, c.Partnerships.Phase, c.Partnerships.Confidence,
				"Partnership and channel revenue unlocked by brand credibility")

		case types.FocusMarketExpansion:
			expansion := float64(m.TargetRevenue) * c.MarketExpansion.Fraction
			p = phased(CategoryMarketExpansion, expansion, c.MarketExpansion.Phase, c.MarketExpansion.Confidence,
				"Revenue from new segments and geographies, with a longer payback")
		}
		projections = append(projections, p)
	}

	efficiency := float64(m.MarketingSpend) * c.MarketingEfficiency.Fraction
	projections = append(projections, phased(CategoryMarketingEfficiency, efficiency, c.MarketingEfficiency.Phase, c.MarketingEfficiency.Confidence,
		"Better return on existing marketing spend from consistent brand execution"))

	return projections
}

// logIgnoredFocusAreas reports selections that produce no projection of their own
func logIgnoredFocusAreas(ids []types.FocusAreaID) {
	seen := make(map[types.FocusAreaID]bool, len(ids))
	for _, id := range ids {
		switch _, known := catalog.FocusArea(id); {
		case !known:
			logrus.WithField("focus_area", id).Debug("Ignoring unknown focus area")
		case seen[id]:
			logrus.WithField("focus_area", id).Debug("Ignoring duplicate focus area")
		}
		seen[id] = true
	}
}

// phased builds a projection whose year-three impact is base. Rounding is monotonic,
// so year one <= year two <= year three holds whenever the phase is valid.
func phased(category string, base float64, ph Phase, conf types.Confidence, description string) model.ROIProjection {
	if base < 0 || math.IsNaN(base) {
		base = 0
	}
	return model.ROIProjection{
		Category:        category,
		YearOneImpact:   int64(math.Round(base * ph.YearOne)),
		YearTwoImpact:   int64(math.Round(base * ph.YearTwo)),
		YearThreeImpact: int64(math.Round(base)),
		Description:     description,
		Confidence:      conf,
	}
}
