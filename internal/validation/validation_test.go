package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
)

func validMetrics() model.BusinessMetrics {
	return model.BusinessMetrics{
		CurrentRevenue:          1_000_000,
		TargetRevenue:           5_000_000,
		CustomerAcquisitionCost: 150,
		CustomerLifetimeValue:   2_000,
		ConversionRate:          2.5,
		BrandAwareness:          20,
		EmployeeCount:           25,
		MarketingSpend:          200_000,
	}
}

func validInvestment() model.InvestmentConfig {
	return model.InvestmentConfig{
		InvestmentAmount: 25_000,
		FundingStage:     types.StageSeed,
		FocusAreas:       []types.FocusAreaID{types.FocusFundingReadiness},
	}
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var errs Errors
	require.True(t, errors.As(err, &errs), "expected validation.Errors, got %T", err)
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestValidateMetrics(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.BusinessMetrics)
		fields []string
	}{
		{"valid", func(*model.BusinessMetrics) {}, nil},
		{"lower bounds inclusive", func(m *model.BusinessMetrics) {
			m.CurrentRevenue = 100_000
			m.TargetRevenue = 100_000
			m.CustomerAcquisitionCost = 10
			m.ConversionRate = 0.1
			m.BrandAwareness = 1
			m.MarketingSpend = 10_000
		}, nil},
		{"revenue too low", func(m *model.BusinessMetrics) { m.CurrentRevenue = 99_999 }, []string{"current_revenue"}},
		{"target below current", func(m *model.BusinessMetrics) { m.TargetRevenue = 500_000 }, []string{"target_revenue"}},
		{"target too high", func(m *model.BusinessMetrics) { m.TargetRevenue = 300_000_000 }, []string{"target_revenue"}},
		{"conversion out of range", func(m *model.BusinessMetrics) { m.ConversionRate = 25 }, []string{"conversion_rate"}},
		{"negative employees", func(m *model.BusinessMetrics) { m.EmployeeCount = -1 }, []string{"employee_count"}},
		{"several failures", func(m *model.BusinessMetrics) {
			m.CustomerAcquisitionCost = 5
			m.BrandAwareness = 0
			m.MarketingSpend = 3_000_000
		}, []string{"customer_acquisition_cost", "brand_awareness", "marketing_spend"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetrics()
			tt.mutate(&m)
			err := ValidateMetrics(m)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)
			assert.Equal(t, tt.fields, fields(t, err))
		})
	}
}

func TestValidateInvestment(t *testing.T) {
	assert.NoError(t, ValidateInvestment(validInvestment()))

	c := validInvestment()
	c.InvestmentAmount = 1_000
	c.FundingStage = "series-z"
	c.FocusAreas = append(c.FocusAreas, "telepathy")
	err := ValidateInvestment(c)
	require.Error(t, err)
	assert.Equal(t, []string{"investment_amount", "funding_stage", "focus_areas"}, fields(t, err))
}

func TestValidateInputs_MergesBothRecords(t *testing.T) {
	m := validMetrics()
	m.CurrentRevenue = 1
	m.TargetRevenue = 1
	c := validInvestment()
	c.InvestmentAmount = 500_000

	err := ValidateInputs(m, c, DefaultValidationOptions())
	require.Error(t, err)
	assert.Equal(t, []string{"current_revenue", "investment_amount"}, fields(t, err))
	assert.Contains(t, err.Error(), "current_revenue")
	assert.Contains(t, err.Error(), "investment_amount")

	assert.NoError(t, ValidateInputs(validMetrics(), validInvestment(), DefaultValidationOptions()))
}

func TestValidateWithCustomOptions(t *testing.T) {
	opts := DefaultValidationOptions()
	opts.InvestmentAmount = Int64Range{Min: 1, Max: 1_000_000}
	c := validInvestment()
	c.InvestmentAmount = 500_000
	assert.NoError(t, ValidateInvestmentWithOptions(c, opts))
}

func TestValidateLead(t *testing.T) {
	tests := []struct {
		name   string
		lead   model.Lead
		fields []string
	}{
		{"contact", model.Lead{Kind: types.LeadContact, Name: "Ada", Email: "ada@example.com"}, nil},
		{"newsletter without name", model.Lead{Kind: types.LeadNewsletter, Email: "ada@example.com"}, nil},
		{"missing email", model.Lead{Kind: types.LeadContact, Name: "Ada"}, []string{"email"}},
		{"display name form rejected", model.Lead{Kind: types.LeadContact, Name: "Ada", Email: "Ada <ada@example.com>"}, []string{"email"}},
		{"unknown kind", model.Lead{Kind: "fax", Name: "Ada", Email: "ada@example.com"}, []string{"kind"}},
		{"contact without name", model.Lead{Kind: types.LeadPricing, Email: "ada@example.com"}, []string{"name"}},
		{"message too long", model.Lead{Kind: types.LeadContact, Name: "Ada", Email: "ada@example.com", Message: strings.Repeat("x", 5_001)}, []string{"message"}},
		{"field too long", model.Lead{Kind: types.LeadAssessment, Name: "Ada", Email: "ada@example.com", Fields: map[string]string{"notes": strings.Repeat("x", 5_001)}}, []string{"fields.notes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLead(tt.lead)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.fields, fields(t, err))
		})
	}
}
