// Package pricing implements the engagement pricing estimator: selected services at
// catalog prices, scaled by stage, complexity and timeline multipliers.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourorg/brand-estimator/internal/catalog"
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
	"github.com/yourorg/brand-estimator/internal/validation"
)

// Options configures the estimator
type Options struct {
	// EquityCashDiscount is the share of the total taken as equity instead of cash
	EquityCashDiscount float64 `json:"equity_cash_discount" yaml:"equity_cash_discount"`
}

// DefaultOptions returns the stock pricing options
func DefaultOptions() Options {
	return Options{EquityCashDiscount: 0.4}
}

// Estimator produces pricing quotes. It is stateless and safe for concurrent use.
type Estimator struct {
	opts Options
}

// NewEstimator creates an estimator, rejecting a discount outside [0, 1)
func NewEstimator(opts Options) (*Estimator, error) {
	if opts.EquityCashDiscount < 0 || opts.EquityCashDiscount >= 1 {
		return nil, fmt.Errorf("equity cash discount must be in [0, 1), got %g", opts.EquityCashDiscount)
	}
	return &Estimator{opts: opts}, nil
}

var defaultEstimator = &Estimator{opts: DefaultOptions()}

// Quote prices the input with the default options
func Quote(in model.PricingInput) (model.PricingQuote, error) {
	return defaultEstimator.Quote(in)
}

// Quote prices the selected services. Duplicate service ids are counted once and
// an empty complexity or timeline means standard.
func (e *Estimator) Quote(in model.PricingInput) (model.PricingQuote, error) {
	complexity := in.Complexity
	if complexity == "" {
		complexity = types.ComplexityStandard
	}
	timeline := in.Timeline
	if timeline == "" {
		timeline = types.TimelineStandard
	}

	var errs validation.Errors
	if len(in.Services) == 0 {
		errs = append(errs, &validation.Error{Field: "services", Reason: "select at least one service"})
	}
	for _, id := range in.Services {
		if _, ok := catalog.Service(id); !ok {
			errs = append(errs, &validation.Error{Field: "services", Reason: fmt.Sprintf("unknown service %q", id)})
		}
	}
	stageMult, ok := catalog.StageMultipliers[in.FundingStage]
	if !ok {
		errs = append(errs, &validation.Error{Field: "funding_stage", Reason: fmt.Sprintf("unknown stage %q", in.FundingStage)})
	}
	complexityMult, ok := catalog.ComplexityMultipliers[complexity]
	if !ok {
		errs = append(errs, &validation.Error{Field: "complexity", Reason: fmt.Sprintf("unknown complexity %q", complexity)})
	}
	timelineMult, ok := catalog.TimelineMultipliers[timeline]
	if !ok {
		errs = append(errs, &validation.Error{Field: "timeline", Reason: fmt.Sprintf("unknown timeline %q", timeline)})
	}
	if len(errs) > 0 {
		return model.PricingQuote{}, errs
	}

	var lineItems []model.Service
	base := decimal.Zero
	for _, svc := range catalog.Services() {
		if !selected(in.Services, svc.ID) {
			continue
		}
		lineItems = append(lineItems, svc)
		base = base.Add(decimal.NewFromInt(svc.BasePrice))
	}

	total := base.
		Mul(decimal.NewFromFloat(stageMult)).
		Mul(decimal.NewFromFloat(complexityMult)).
		Mul(decimal.NewFromFloat(timelineMult)).
		Round(0)

	tier := catalog.TierFor(total.IntPart())

	quote := model.PricingQuote{
		LineItems:            lineItems,
		BasePrice:            base.IntPart(),
		Total:                total.IntPart(),
		CashComponent:        total.IntPart(),
		Package:              tier.Name,
		StageMultiplier:      stageMult,
		ComplexityMultiplier: complexityMult,
		TimelineMultiplier:   timelineMult,
	}

	if in.IncludeEquity {
		cashShare := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(e.opts.EquityCashDiscount))
		quote.CashComponent = total.Mul(cashShare).Round(0).IntPart()
		quote.EquityPercent = tier.EquityPercent
	}

	return quote, nil
}

func selected(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}
