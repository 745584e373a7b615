// Package model defines the core data structures for the brand-estimator.
package model

import (
	"time"

	"github.com/yourorg/brand-estimator/internal/types"
)

// BusinessMetrics is the visitor-supplied snapshot of their business.
// Currency fields are whole units of the smallest currency denomination.
type BusinessMetrics struct {
	// CurrentRevenue is annual revenue today
	CurrentRevenue int64 `json:"current_revenue" yaml:"current_revenue"`

	// TargetRevenue is the annual revenue the business is aiming for
	TargetRevenue int64 `json:"target_revenue" yaml:"target_revenue"`

	CustomerAcquisitionCost int64 `json:"customer_acquisition_cost" yaml:"customer_acquisition_cost"`
	CustomerLifetimeValue   int64 `json:"customer_lifetime_value" yaml:"customer_lifetime_value"`

	// ConversionRate is a percentage, e.g. 2.5 for 2.5%
	ConversionRate float64 `json:"conversion_rate" yaml:"conversion_rate"`

	// BrandAwareness is a percentage between 1 and 100
	BrandAwareness int `json:"brand_awareness" yaml:"brand_awareness"`

	EmployeeCount  int   `json:"employee_count" yaml:"employee_count"`
	MarketingSpend int64 `json:"marketing_spend" yaml:"marketing_spend"`
}

// InvestmentConfig describes the brand investment being evaluated
type InvestmentConfig struct {
	InvestmentAmount int64               `json:"investment_amount" yaml:"investment_amount"`
	FundingStage     types.FundingStage  `json:"funding_stage" yaml:"funding_stage"`
	FocusAreas       []types.FocusAreaID `json:"focus_areas" yaml:"focus_areas"`
	IncludeEquity    bool                `json:"include_equity" yaml:"include_equity"`
}

// HasFocus reports whether id is among the selected focus areas
func (c InvestmentConfig) HasFocus(id types.FocusAreaID) bool {
	for _, f := range c.FocusAreas {
		if f == id {
			return true
		}
	}
	return false
}

// FocusArea is an entry of the fixed focus-area catalog
type FocusArea struct {
	ID   types.FocusAreaID `json:"id"`
	Name string            `json:"name"`

	// BaseImpact is the catalog coefficient, 0 < c <= 1
	BaseImpact float64 `json:"base_impact"`

	Description string `json:"description"`
}

// ROIProjection is the three-year financial impact for one category
type ROIProjection struct {
	Category        string           `json:"category"`
	YearOneImpact   int64            `json:"year_one_impact"`
	YearTwoImpact   int64            `json:"year_two_impact"`
	YearThreeImpact int64            `json:"year_three_impact"`
	Description     string           `json:"description"`
	Confidence      types.Confidence `json:"confidence"`
}

// AggregateROI summarises a set of projections against the investment
type AggregateROI struct {
	ThreeYearReturnPercent    float64 `json:"three_year_return_percent"`
	BreakEvenMonths           int     `json:"break_even_months"`
	ConfidenceScorePercent    float64 `json:"confidence_score_percent"`
	RiskAdjustedReturnPercent float64 `json:"risk_adjusted_return_percent"`
}

// Estimate is the full engine output for one set of inputs
type Estimate struct {
	Projections []ROIProjection `json:"projections"`
	Aggregate   AggregateROI    `json:"aggregate"`

	// TotalThreeYearImpact is the sum of YearThreeImpact across projections
	TotalThreeYearImpact int64 `json:"total_three_year_impact"`
}

// Service is an entry of the fixed service catalog used for pricing
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	BasePrice   int64  `json:"base_price"`
	Description string `json:"description"`
}

// PricingInput is the configuration submitted to the pricing estimator
type PricingInput struct {
	Services      []string           `json:"services"`
	FundingStage  types.FundingStage `json:"funding_stage"`
	Complexity    types.Complexity   `json:"complexity"`
	Timeline      types.Timeline     `json:"timeline"`
	IncludeEquity bool               `json:"include_equity"`
}

// PricingQuote is the pricing estimator output
type PricingQuote struct {
	// LineItems are the selected services at base price, in catalog order
	LineItems []Service `json:"line_items"`

	BasePrice int64 `json:"base_price"`
	Total     int64 `json:"total"`

	// CashComponent is what the client pays in cash once equity is accounted for
	CashComponent int64 `json:"cash_component"`

	EquityPercent float64 `json:"equity_percent"`
	Package       string  `json:"package"`

	StageMultiplier      float64 `json:"stage_multiplier"`
	ComplexityMultiplier float64 `json:"complexity_multiplier"`
	TimelineMultiplier   float64 `json:"timeline_multiplier"`
}

// Lead is a lead-capture form submission
type Lead struct {
	ID      string            `json:"id"`
	Kind    types.LeadKind    `json:"kind"`
	Name    string            `json:"name,omitempty"`
	Email   string            `json:"email"`
	Company string            `json:"company,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`

	// Source is the page or widget the form was submitted from
	Source string `json:"source,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// CategoryScore is the average answer score for one assessment category
type CategoryScore struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Percent  float64 `json:"percent"`
}

// AssessmentResult is the scored brand assessment
type AssessmentResult struct {
	TotalScore      int                 `json:"total_score"`
	MaxScore        int                 `json:"max_score"`
	Percent         float64             `json:"percent"`
	Tier            string              `json:"tier"`
	Categories      []CategoryScore     `json:"categories"`
	Recommendations []types.FocusAreaID `json:"recommendations"`
}
