// Package types contains shared enum definitions used across multiple packages
package types

// FocusAreaID identifies one of the fixed business-impact categories a visitor can opt into
type FocusAreaID string

// Focus areas offered by the ROI calculator
const (
	FocusFundingReadiness    FocusAreaID = "funding-readiness"
	FocusCustomerAcquisition FocusAreaID = "customer-acquisition"
	FocusPricingPremium      FocusAreaID = "pricing-premium"
	FocusTalentAcquisition   FocusAreaID = "talent-acquisition"
	FocusPartnerships        FocusAreaID = "partnerships"
	FocusMarketExpansion     FocusAreaID = "market-expansion"
)

// FundingStage is the company's current fundraising stage
type FundingStage string

// Supported funding stages
const (
	StagePreSeed     FundingStage = "pre-seed"
	StageSeed        FundingStage = "seed"
	StageSeriesAPrep FundingStage = "series-a-prep"
	StageSeriesA     FundingStage = "series-a"
	StageSeriesBPlus FundingStage = "series-b-plus"
)

// FundingStages lists every stage in ascending order
var FundingStages = []FundingStage{
	StagePreSeed,
	StageSeed,
	StageSeriesAPrep,
	StageSeriesA,
	StageSeriesBPlus,
}

// Valid reports whether s is a known funding stage
func (s FundingStage) Valid() bool {
	for _, known := range FundingStages {
		if s == known {
			return true
		}
	}
	return false
}

// Confidence is the fixed certainty label attached to a projection category
type Confidence string

// Confidence labels
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Weight returns the aggregate weighting for the label (0 for unknown labels)
func (c Confidence) Weight() float64 {
	switch c {
	case ConfidenceHigh:
		return 1.0
	case ConfidenceMedium:
		return 0.7
	case ConfidenceLow:
		return 0.4
	default:
		return 0
	}
}

// Complexity describes how involved a pricing engagement is
type Complexity string

// Engagement complexity levels
const (
	ComplexitySimple   Complexity = "simple"
	ComplexityStandard Complexity = "standard"
	ComplexityComplex  Complexity = "complex"
)

// Timeline describes how quickly an engagement must be delivered
type Timeline string

// Delivery timelines
const (
	TimelineExtended Timeline = "extended"
	TimelineStandard Timeline = "standard"
	TimelineRush     Timeline = "rush"
)

// LeadKind identifies which form produced a lead
type LeadKind string

// Lead-capture form kinds
const (
	LeadContact    LeadKind = "contact"
	LeadNewsletter LeadKind = "newsletter"
	LeadAssessment LeadKind = "assessment"
	LeadPricing    LeadKind = "pricing"
)

// Valid reports whether k is a known lead kind
func (k LeadKind) Valid() bool {
	switch k {
	case LeadContact, LeadNewsletter, LeadAssessment, LeadPricing:
		return true
	}
	return false
}
