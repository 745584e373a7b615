package estimate

import (
	"errors"

	"github.com/yourorg/brand-estimator/internal/model"
)

// ErrInvalidInvestment is returned when the investment amount cannot anchor a return
var ErrInvalidInvestment = errors.New("investment amount must be positive")

// BreakEvenHorizonMonths is both the projection horizon and the break-even ceiling
const BreakEvenHorizonMonths = 36

// Aggregate computes the headline ROI statistics for a set of projections.
// An empty set yields a zero-valued result.
func Aggregate(projections []model.ROIProjection, investmentAmount int64) (model.AggregateROI, error) {
	if investmentAmount <= 0 {
		return model.AggregateROI{}, ErrInvalidInvestment
	}
	if len(projections) == 0 {
		return model.AggregateROI{}, nil
	}

	totalImpact := TotalYearThree(projections)
	investment := float64(investmentAmount)
	total := float64(totalImpact)

	var weights float64
	for _, p := range projections {
		weights += p.Confidence.Weight()
	}

	threeYearReturn := (total - investment) / investment * 100
	confidence := weights / float64(len(projections)) * 100

	return model.AggregateROI{
		ThreeYearReturnPercent:    threeYearReturn,
		BreakEvenMonths:           breakEvenMonths(investmentAmount, totalImpact),
		ConfidenceScorePercent:    confidence,
		RiskAdjustedReturnPercent: threeYearReturn * (confidence / 100),
	}, nil
}

// TotalYearThree sums the year-three impact of every projection
func TotalYearThree(projections []model.ROIProjection) int64 {
	var total int64
	for _, p := range projections {
		total += p.YearThreeImpact
	}
	return total
}

// breakEvenMonths spreads the year-three total evenly over the horizon and
// clamps the result to [1, BreakEvenHorizonMonths]. Integer ceiling division
// keeps whole-month break-evens exact.
func breakEvenMonths(investment, total int64) int {
	if total <= 0 {
		return BreakEvenHorizonMonths
	}
	months := (investment*BreakEvenHorizonMonths + total - 1) / total
	if months > BreakEvenHorizonMonths {
		return BreakEvenHorizonMonths
	}
	if months < 1 {
		return 1
	}
	return int(months)
}
