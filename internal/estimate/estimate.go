// Package estimate implements the ROI estimation engine: per-category projections
// from business metrics plus aggregate return statistics.
package estimate

import (
	"fmt"

	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/validation"
)

// Engine computes estimates from a fixed coefficient table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	coeffs Coefficients
	opts   validation.ValidationOptions
}

// NewEngine validates the coefficient table and returns an engine using it
func NewEngine(c Coefficients) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coefficients: %w", err)
	}
	return &Engine{
		coeffs: c,
		opts:   validation.DefaultValidationOptions(),
	}, nil
}

// WithValidationOptions replaces the input ranges enforced by Estimate
func (e *Engine) WithValidationOptions(opts validation.ValidationOptions) *Engine {
	e.opts = opts
	return e
}

// Coefficients returns the engine's coefficient table
func (e *Engine) Coefficients() Coefficients {
	return e.coeffs
}

// Estimate validates the inputs, then computes projections and their aggregate
func (e *Engine) Estimate(m model.BusinessMetrics, cfg model.InvestmentConfig) (model.Estimate, error) {
	if err := validation.ValidateInputs(m, cfg, e.opts); err != nil {
		return model.Estimate{}, err
	}

	projections := e.ComputeProjections(m, cfg)
	agg, err := Aggregate(projections, cfg.InvestmentAmount)
	if err != nil {
		return model.Estimate{}, err
	}

	return model.Estimate{
		Projections:          projections,
		Aggregate:            agg,
		TotalThreeYearImpact: TotalYearThree(projections),
	}, nil
}

// SweepPoint is the aggregate outcome at one investment amount
type SweepPoint struct {
	InvestmentAmount int64              `json:"investment_amount"`
	Aggregate        model.AggregateROI `json:"aggregate"`
}

// Sweep re-runs the estimate across investment amounts, keeping everything else fixed.
// It backs the investment slider preview.
func (e *Engine) Sweep(m model.BusinessMetrics, cfg model.InvestmentConfig, amounts []int64) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(amounts))
	for _, amount := range amounts {
		c := cfg
		c.InvestmentAmount = amount
		est, err := e.Estimate(m, c)
		if err != nil {
			return nil, fmt.Errorf("sweep at %d: %w", amount, err)
		}
		points = append(points, SweepPoint{InvestmentAmount: amount, Aggregate: est.Aggregate})
	}
	return points, nil
}

var defaultEngine = mustDefault()

func mustDefault() *Engine {
	e, err := NewEngine(DefaultCoefficients())
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns the engine backed by DefaultCoefficients
func Default() *Engine {
	return defaultEngine
}

// ComputeProjections runs the default engine's projections
func ComputeProjections(m model.BusinessMetrics, cfg model.InvestmentConfig) []model.ROIProjection {
	return defaultEngine.ComputeProjections(m, cfg)
}

// Estimate runs the default engine
func Estimate(m model.BusinessMetrics, cfg model.InvestmentConfig) (model.Estimate, error) {
	return defaultEngine.Estimate(m, cfg)
}
