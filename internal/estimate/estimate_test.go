package estimate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/brand-estimator/internal/catalog"
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
	"github.com/yourorg/brand-estimator/internal/validation"
)

func exampleMetrics() model.BusinessMetrics {
	return model.BusinessMetrics{
		CurrentRevenue:          1_000_000,
		TargetRevenue:           5_000_000,
		CustomerAcquisitionCost: 150,
		CustomerLifetimeValue:   800,
		ConversionRate:          2.5,
		BrandAwareness:          15,
		EmployeeCount:           25,
		MarketingSpend:          200_000,
	}
}

func exampleConfig() model.InvestmentConfig {
	return model.InvestmentConfig{
		InvestmentAmount: 25_000,
		FundingStage:     types.StageSeed,
		FocusAreas:       []types.FocusAreaID{types.FocusFundingReadiness, types.FocusCustomerAcquisition},
		IncludeEquity:    false,
	}
}

// allFocusSubsets enumerates every subset of the focus-area catalog
func allFocusSubsets() [][]types.FocusAreaID {
	areas := catalog.FocusAreas()
	subsets := make([][]types.FocusAreaID, 0, 1<<len(areas))
	for mask := 0; mask < 1<<len(areas); mask++ {
		var subset []types.FocusAreaID
		for i, fa := range areas {
			if mask&(1<<i) != 0 {
				subset = append(subset, fa.ID)
			}
		}
		subsets = append(subsets, subset)
	}
	return subsets
}

func categories(projections []model.ROIProjection) []string {
	out := make([]string, len(projections))
	for i, p := range projections {
		out[i] = p.Category
	}
	return out
}

func TestEstimate_ExampleScenario(t *testing.T) {
	est, err := Estimate(exampleMetrics(), exampleConfig())
	require.NoError(t, err)

	require.Len(t, est.Projections, 3)
	assert.Equal(t, []string{CategoryValuation, CategoryCustomerAcquisition, CategoryMarketingEfficiency}, categories(est.Projections))

	valuation := est.Projections[0]
	assert.Equal(t, int64(60_000), valuation.YearOneImpact)
	assert.Equal(t, int64(120_000), valuation.YearTwoImpact)
	assert.Equal(t, int64(200_000), valuation.YearThreeImpact)
	assert.Equal(t, types.ConfidenceMedium, valuation.Confidence)

	acquisition := est.Projections[1]
	assert.Equal(t, int64(50_450), acquisition.YearThreeImpact) // 150*0.25*12 + 1,000,000*0.15/3

	efficiency := est.Projections[2]
	assert.Equal(t, int64(40_000), efficiency.YearThreeImpact)

	assert.Equal(t, int64(290_450), est.TotalThreeYearImpact)
	assert.Greater(t, est.Aggregate.ThreeYearReturnPercent, 0.0)
	assert.InDelta(t, 1061.8, est.Aggregate.ThreeYearReturnPercent, 1e-9)
	assert.InDelta(t, 90.0, est.Aggregate.ConfidenceScorePercent, 1e-9)
	assert.InDelta(t, 955.62, est.Aggregate.RiskAdjustedReturnPercent, 1e-6)
	assert.Equal(t, 4, est.Aggregate.BreakEvenMonths)
	assert.LessOrEqual(t, est.Aggregate.BreakEvenMonths, 36)
}

func TestEstimate_WholeMonthBreakEven(t *testing.T) {
	m := exampleMetrics()
	m.MarketingSpend = 195_000
	cfg := exampleConfig()
	cfg.FocusAreas = nil
	cfg.InvestmentAmount = 16_250

	est, err := Estimate(m, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(39_000), est.TotalThreeYearImpact)
	assert.Equal(t, 15, est.Aggregate.BreakEvenMonths)
}

func TestComputeProjections_Monotonic(t *testing.T) {
	for _, subset := range allFocusSubsets() {
		cfg := exampleConfig()
		cfg.FocusAreas = subset
		for _, p := range ComputeProjections(exampleMetrics(), cfg) {
			assert.LessOrEqual(t, p.YearOneImpact, p.YearTwoImpact, "%v: %s", subset, p.Category)
			assert.LessOrEqual(t, p.YearTwoImpact, p.YearThreeImpact, "%v: %s", subset, p.Category)
			assert.GreaterOrEqual(t, p.YearOneImpact, int64(0), "%v: %s", subset, p.Category)
		}
	}
}

func TestComputeProjections_MarketingEfficiencyAlwaysPresent(t *testing.T) {
	for _, subset := range allFocusSubsets() {
		cfg := exampleConfig()
		cfg.FocusAreas = subset

		projections := ComputeProjections(exampleMetrics(), cfg)
		require.Len(t, projections, len(subset)+1)
		assert.Equal(t, CategoryMarketingEfficiency, projections[len(projections)-1].Category)
	}
}

func TestComputeProjections_CatalogOrderAndDuplicates(t *testing.T) {
	cfg := exampleConfig()
	cfg.FocusAreas = []types.FocusAreaID{
		types.FocusMarketExpansion,
		types.FocusPricingPremium,
		types.FocusMarketExpansion,
		types.FocusAreaID("unknown"),
	}

	hook := test.NewGlobal()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer func() {
		logrus.SetLevel(level)
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	}()

	projections := ComputeProjections(exampleMetrics(), cfg)
	assert.Equal(t, []string{CategoryPricingPremium, CategoryMarketExpansion, CategoryMarketingEfficiency}, categories(projections))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Ignoring duplicate focus area", entries[0].Message)
	assert.Equal(t, types.FocusMarketExpansion, entries[0].Data["focus_area"])
	assert.Equal(t, "Ignoring unknown focus area", entries[1].Message)
}

func TestComputeProjections_CategoryFormulas(t *testing.T) {
	m := exampleMetrics()
	cfg := exampleConfig()
	cfg.FocusAreas = []types.FocusAreaID{
		types.FocusPricingPremium,
		types.FocusTalentAcquisition,
		types.FocusPartnerships,
		types.FocusMarketExpansion,
	}

	got := map[string]model.ROIProjection{}
	for _, p := range ComputeProjections(m, cfg) {
		got[p.Category] = p
	}

	tests := []struct {
		category   string
		yearThree  int64
		yearOne    int64
		confidence types.Confidence
	}{
		{CategoryPricingPremium, 80_000, 40_000, types.ConfidenceHigh},        // 8% of revenue
		{CategoryTalentAcquisition, 70_000, 21_000, types.ConfidenceMedium},   // 25*2000 + 2% of revenue
		{CategoryPartnerships, 100_000, 25_000, types.ConfidenceLow},          // min(10% of revenue, 500k)
		{CategoryMarketExpansion, 250_000, 50_000, types.ConfidenceLow},       // 5% of target revenue
		{CategoryMarketingEfficiency, 40_000, 16_000, types.ConfidenceHigh},   // 20% of marketing spend
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			p, ok := got[tt.category]
			require.True(t, ok)
			assert.Equal(t, tt.yearThree, p.YearThreeImpact)
			assert.Equal(t, tt.yearOne, p.YearOneImpact)
			assert.Equal(t, tt.confidence, p.Confidence)
			assert.NotEmpty(t, p.Description)
		})
	}
}

func TestComputeProjections_PartnershipCap(t *testing.T) {
	m := exampleMetrics()
	m.CurrentRevenue = 40_000_000
	m.TargetRevenue = 40_000_000
	cfg := exampleConfig()
	cfg.FocusAreas = []types.FocusAreaID{types.FocusPartnerships}

	projections := ComputeProjections(m, cfg)
	require.Len(t, projections, 2)
	assert.Equal(t, int64(500_000), projections[0].YearThreeImpact)
}

func TestComputeProjections_MarketExpansionPhasedConservatively(t *testing.T) {
	c := DefaultCoefficients()
	for _, ph := range []Phase{
		c.FundingReadiness.Phase,
		c.CustomerAcquisition.Phase,
		c.PricingPremium.Phase,
		c.TalentAcquisition.Phase,
		c.Partnerships.Phase,
		c.MarketingEfficiency.Phase,
	} {
		assert.Less(t, c.MarketExpansion.Phase.YearOne, ph.YearOne)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	cfg := exampleConfig()
	cfg.FocusAreas = []types.FocusAreaID{
		types.FocusPartnerships, types.FocusFundingReadiness, types.FocusTalentAcquisition,
	}

	first, err := Estimate(exampleMetrics(), cfg)
	require.NoError(t, err)
	second, err := Estimate(exampleMetrics(), cfg)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Estimate not deterministic (-first +second):\n%s", diff)
	}
}

func TestEstimate_InvestmentSensitivity(t *testing.T) {
	m := exampleMetrics()
	cfg := exampleConfig()
	cfg.FocusAreas = []types.FocusAreaID{types.FocusFundingReadiness}

	var previous int64 = -1
	for amount := int64(5_000); amount <= 200_000; amount += 5_000 {
		cfg.InvestmentAmount = amount
		projections := ComputeProjections(m, cfg)
		valuation := projections[0]
		require.Equal(t, CategoryValuation, valuation.Category)
		assert.GreaterOrEqual(t, valuation.YearThreeImpact, previous, "amount %d", amount)
		assert.LessOrEqual(t, valuation.YearThreeImpact, int64(300_000), "capped by revenue at %d", amount)
		previous = valuation.YearThreeImpact
	}
}

func TestEstimate_BoundsAcrossInputGrid(t *testing.T) {
	revenues := []int64{100_000, 1_000_000, 50_000_000}
	spends := []int64{10_000, 200_000, 2_000_000}
	amounts := []int64{5_000, 50_000, 200_000}

	for _, revenue := range revenues {
		for _, spend := range spends {
			for _, amount := range amounts {
				for _, subset := range allFocusSubsets() {
					m := exampleMetrics()
					m.CurrentRevenue = revenue
					m.TargetRevenue = revenue * 2
					m.MarketingSpend = spend
					cfg := exampleConfig()
					cfg.InvestmentAmount = amount
					cfg.FocusAreas = subset

					est, err := Estimate(m, cfg)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, est.Aggregate.BreakEvenMonths, 1)
					assert.LessOrEqual(t, est.Aggregate.BreakEvenMonths, 36)
					assert.GreaterOrEqual(t, est.Aggregate.ConfidenceScorePercent, 40.0-1e-9)
					assert.LessOrEqual(t, est.Aggregate.ConfidenceScorePercent, 100.0+1e-9)
				}
			}
		}
	}
}

func TestEstimate_RejectsInvalidInput(t *testing.T) {
	m := exampleMetrics()
	m.CurrentRevenue = 50
	cfg := exampleConfig()
	cfg.InvestmentAmount = 0

	_, err := Estimate(m, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrOutOfRange))

	var fieldErrs validation.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Len(t, fieldErrs, 2)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		projections []model.ROIProjection
		investment  int64
		want        model.AggregateROI
		wantErr     error
	}{
		{
			name:        "empty projections",
			projections: nil,
			investment:  10_000,
			want:        model.AggregateROI{},
		},
		{
			name:        "zero investment",
			projections: []model.ROIProjection{{YearThreeImpact: 100, Confidence: types.ConfidenceHigh}},
			investment:  0,
			wantErr:     ErrInvalidInvestment,
		},
		{
			name: "break-even clamps to horizon",
			projections: []model.ROIProjection{
				{YearThreeImpact: 1_000, Confidence: types.ConfidenceLow},
			},
			investment: 100_000,
			want: model.AggregateROI{
				ThreeYearReturnPercent:    -99,
				BreakEvenMonths:           36,
				ConfidenceScorePercent:    40,
				RiskAdjustedReturnPercent: -39.6,
			},
		},
		{
			name: "zero impact never breaks even",
			projections: []model.ROIProjection{
				{YearThreeImpact: 0, Confidence: types.ConfidenceHigh},
			},
			investment: 5_000,
			want: model.AggregateROI{
				ThreeYearReturnPercent:    -100,
				BreakEvenMonths:           36,
				ConfidenceScorePercent:    100,
				RiskAdjustedReturnPercent: -100,
			},
		},
		{
			name: "whole-month break-even is exact",
			projections: []model.ROIProjection{
				{YearThreeImpact: 39_000, Confidence: types.ConfidenceHigh},
			},
			investment: 16_250,
			want: model.AggregateROI{
				ThreeYearReturnPercent:    140,
				BreakEvenMonths:           15,
				ConfidenceScorePercent:    100,
				RiskAdjustedReturnPercent: 140,
			},
		},
		{
			name: "fast payback clamps to one month",
			projections: []model.ROIProjection{
				{YearThreeImpact: 3_600_000, Confidence: types.ConfidenceHigh},
				{YearThreeImpact: 0, Confidence: types.ConfidenceMedium},
			},
			investment: 10_000,
			want: model.AggregateROI{
				ThreeYearReturnPercent:    35_900,
				BreakEvenMonths:           1,
				ConfidenceScorePercent:    85,
				RiskAdjustedReturnPercent: 30_515,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.projections, tt.investment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.ThreeYearReturnPercent, got.ThreeYearReturnPercent, 1e-6)
			assert.Equal(t, tt.want.BreakEvenMonths, got.BreakEvenMonths)
			assert.InDelta(t, tt.want.ConfidenceScorePercent, got.ConfidenceScorePercent, 1e-6)
			assert.InDelta(t, tt.want.RiskAdjustedReturnPercent, got.RiskAdjustedReturnPercent, 1e-6)
		})
	}
}

func TestNewEngine_RejectsBadCoefficients(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Coefficients)
	}{
		{"negative fraction", func(c *Coefficients) { c.PricingPremium.Fraction = -0.1 }},
		{"year one above year two", func(c *Coefficients) { c.MarketExpansion.Phase = Phase{YearOne: 0.6, YearTwo: 0.5} }},
		{"year two above 1.0", func(c *Coefficients) { c.Partnerships.Phase = Phase{YearOne: 0.5, YearTwo: 1.2} }},
		{"unknown confidence", func(c *Coefficients) { c.MarketingEfficiency.Confidence = "certain" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCoefficients()
			tt.mutate(&c)
			_, err := NewEngine(c)
			assert.Error(t, err)
		})
	}
}

func TestEngine_CustomCoefficients(t *testing.T) {
	c := DefaultCoefficients()
	c.MarketingEfficiency.Fraction = 0.5

	e, err := NewEngine(c)
	require.NoError(t, err)

	cfg := exampleConfig()
	cfg.FocusAreas = nil
	projections := e.ComputeProjections(exampleMetrics(), cfg)
	require.Len(t, projections, 1)
	assert.Equal(t, int64(100_000), projections[0].YearThreeImpact)
}

func TestEngine_Sweep(t *testing.T) {
	cfg := exampleConfig()
	points, err := Default().Sweep(exampleMetrics(), cfg, []int64{10_000, 25_000, 50_000})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, int64(25_000), points[1].InvestmentAmount)
	assert.Equal(t, 4, points[1].Aggregate.BreakEvenMonths)

	_, err = Default().Sweep(exampleMetrics(), cfg, []int64{1})
	assert.ErrorIs(t, err, validation.ErrOutOfRange)
}
