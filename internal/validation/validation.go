// Package validation provides range checks for estimator inputs and lead submissions.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/brand-estimator/internal/catalog"
	"github.com/yourorg/brand-estimator/internal/model"
)

// ErrOutOfRange is wrapped by every validation failure
var ErrOutOfRange = errors.New("value out of range")

// Error describes a single rejected field
type Error struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrOutOfRange)
func (e *Error) Unwrap() error {
	return ErrOutOfRange
}

// Errors collects every failing field of one input record
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field errors to errors.Is / errors.As
func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Int64Range is an inclusive bound
type Int64Range struct {
	Min int64 `json:"min" yaml:"min"`
	Max int64 `json:"max" yaml:"max"`
}

func (r Int64Range) contains(v int64) bool {
	return v >= r.Min && v <= r.Max
}

// FloatRange is an inclusive bound
type FloatRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r FloatRange) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ValidationOptions holds the accepted input ranges
type ValidationOptions struct {
	CurrentRevenue          Int64Range
	MaxTargetRevenue        int64
	CustomerAcquisitionCost Int64Range
	CustomerLifetimeValue   Int64Range
	ConversionRate          FloatRange
	BrandAwareness          Int64Range
	MarketingSpend          Int64Range
	InvestmentAmount        Int64Range

	// MaxMessageLength bounds free-text lead fields
	MaxMessageLength int
}

// DefaultValidationOptions returns the ranges the calculator sliders enforce
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		CurrentRevenue:          Int64Range{Min: 100_000, Max: 50_000_000},
		MaxTargetRevenue:        200_000_000,
		CustomerAcquisitionCost: Int64Range{Min: 10, Max: 1_000},
		CustomerLifetimeValue:   Int64Range{Min: 100, Max: 10_000},
		ConversionRate:          FloatRange{Min: 0.1, Max: 20.0},
		BrandAwareness:          Int64Range{Min: 1, Max: 100},
		MarketingSpend:          Int64Range{Min: 10_000, Max: 2_000_000},
		InvestmentAmount:        Int64Range{Min: 5_000, Max: 200_000},
		MaxMessageLength:        5_000,
	}
}

// ValidateMetrics checks business metrics against the default ranges
func ValidateMetrics(m model.BusinessMetrics) error {
	return ValidateMetricsWithOptions(m, DefaultValidationOptions())
}

// ValidateMetricsWithOptions checks business metrics against custom ranges
func ValidateMetricsWithOptions(m model.BusinessMetrics, opts ValidationOptions) error {
	var errs Errors

	if !opts.CurrentRevenue.contains(m.CurrentRevenue) {
		errs = append(errs, rangeError("current_revenue", m.CurrentRevenue, opts.CurrentRevenue))
	}
	if m.TargetRevenue < m.CurrentRevenue {
		errs = append(errs, &Error{Field: "target_revenue", Reason: "must not be below current_revenue"})
	} else if m.TargetRevenue > opts.MaxTargetRevenue {
		errs = append(errs, &Error{Field: "target_revenue", Reason: fmt.Sprintf("%d exceeds maximum %d", m.TargetRevenue, opts.MaxTargetRevenue)})
	}
	if !opts.CustomerAcquisitionCost.contains(m.CustomerAcquisitionCost) {
		errs = append(errs, rangeError("customer_acquisition_cost", m.CustomerAcquisitionCost, opts.CustomerAcquisitionCost))
	}
	if !opts.CustomerLifetimeValue.contains(m.CustomerLifetimeValue) {
		errs = append(errs, rangeError("customer_lifetime_value", m.CustomerLifetimeValue, opts.CustomerLifetimeValue))
	}
	if !opts.ConversionRate.contains(m.ConversionRate) {
		errs = append(errs, &Error{
			Field:  "conversion_rate",
			Reason: fmt.Sprintf("%g not in [%g, %g]", m.ConversionRate, opts.ConversionRate.Min, opts.ConversionRate.Max),
		})
	}
	if !opts.BrandAwareness.contains(int64(m.BrandAwareness)) {
		errs = append(errs, rangeError("brand_awareness", int64(m.BrandAwareness), opts.BrandAwareness))
	}
	if m.EmployeeCount < 0 {
		errs = append(errs, &Error{Field: "employee_count", Reason: "must not be negative"})
	}
	if !opts.MarketingSpend.contains(m.MarketingSpend) {
		errs = append(errs, rangeError("marketing_spend", m.MarketingSpend, opts.MarketingSpend))
	}

	return finish("metrics", errs)
}

// ValidateInvestment checks an investment configuration against the default ranges
func ValidateInvestment(c model.InvestmentConfig) error {
	return ValidateInvestmentWithOptions(c, DefaultValidationOptions())
}

// ValidateInvestmentWithOptions checks an investment configuration against custom ranges
func ValidateInvestmentWithOptions(c model.InvestmentConfig, opts ValidationOptions) error {
	var errs Errors

	if !opts.InvestmentAmount.contains(c.InvestmentAmount) {
		errs = append(errs, rangeError("investment_amount", c.InvestmentAmount, opts.InvestmentAmount))
	}
	if !c.FundingStage.Valid() {
		errs = append(errs, &Error{Field: "funding_stage", Reason: fmt.Sprintf("unknown stage %q", c.FundingStage)})
	}
	for _, id := range c.FocusAreas {
		if _, ok := catalog.FocusArea(id); !ok {
			errs = append(errs, &Error{Field: "focus_areas", Reason: fmt.Sprintf("unknown focus area %q", id)})
		}
	}

	return finish("investment", errs)
}

// ValidateInputs validates both estimator inputs and reports every failure at once
func ValidateInputs(m model.BusinessMetrics, c model.InvestmentConfig, opts ValidationOptions) error {
	var errs Errors
	for _, err := range []error{
		ValidateMetricsWithOptions(m, opts),
		ValidateInvestmentWithOptions(c, opts),
	} {
		var fieldErrs Errors
		if errors.As(err, &fieldErrs) {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func rangeError(field string, v int64, r Int64Range) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf("%d not in [%d, %d]", v, r.Min, r.Max)}
}

func finish(record string, errs Errors) error {
	if len(errs) == 0 {
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"record":   record,
		"failures": len(errs),
		"first":    errs[0].Field,
	}).Debug("Rejected invalid input")
	return errs
}
