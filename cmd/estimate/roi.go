package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yourorg/brand-estimator/internal/config"
	"github.com/yourorg/brand-estimator/internal/estimate"
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
)

type roiFlags struct {
	metrics      model.BusinessMetrics
	investment   int64
	stage        string
	focus        []string
	equity       bool
	sweep        []int64
	coefficients string
	json         bool
}

func newROICmd() *cobra.Command {
	f := &roiFlags{}
	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Project the three-year return of a brand investment",
		Example: `  estimate roi --revenue 1000000 --investment 25000 \
    --focus funding-readiness --focus customer-acquisition`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runROI(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&f.metrics.CurrentRevenue, "revenue", 1_000_000, "current annual revenue")
	flags.Int64Var(&f.metrics.TargetRevenue, "target-revenue", 5_000_000, "target annual revenue")
	flags.Int64Var(&f.metrics.CustomerAcquisitionCost, "cac", 150, "customer acquisition cost")
	flags.Int64Var(&f.metrics.CustomerLifetimeValue, "ltv", 800, "customer lifetime value")
	flags.Float64Var(&f.metrics.ConversionRate, "conversion-rate", 2.5, "conversion rate in percent")
	flags.IntVar(&f.metrics.BrandAwareness, "awareness", 15, "brand awareness in percent")
	flags.IntVar(&f.metrics.EmployeeCount, "employees", 25, "employee count")
	flags.Int64Var(&f.metrics.MarketingSpend, "marketing-spend", 200_000, "annual marketing spend")
	flags.Int64Var(&f.investment, "investment", 25_000, "brand investment amount")
	flags.StringVar(&f.stage, "stage", string(types.StageSeed), "funding stage")
	flags.StringSliceVar(&f.focus, "focus", nil, "focus area id, repeatable")
	flags.BoolVar(&f.equity, "equity", false, "engagement includes equity participation")
	flags.Int64SliceVar(&f.sweep, "sweep", nil, "also estimate at these investment amounts")
	flags.StringVar(&f.coefficients, "coefficients", "", "YAML file overriding projection coefficients")
	flags.BoolVar(&f.json, "json", false, "print JSON instead of a table")
	return cmd
}

func runROI(cmd *cobra.Command, f *roiFlags) error {
	coeffs, err := config.LoadCoefficients(f.coefficients)
	if err != nil {
		return err
	}
	engine, err := estimate.NewEngine(coeffs)
	if err != nil {
		return err
	}

	cfg := model.InvestmentConfig{
		InvestmentAmount: f.investment,
		FundingStage:     types.FundingStage(f.stage),
		IncludeEquity:    f.equity,
	}
	for _, id := range f.focus {
		cfg.FocusAreas = append(cfg.FocusAreas, types.FocusAreaID(id))
	}

	est, err := engine.Estimate(f.metrics, cfg)
	if err != nil {
		return err
	}
	var sweep []estimate.SweepPoint
	if len(f.sweep) > 0 {
		if sweep, err = engine.Sweep(f.metrics, cfg, f.sweep); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if f.json {
		return writeJSON(out, struct {
			Config   model.InvestmentConfig `json:"config"`
			Estimate model.Estimate         `json:"estimate"`
			Sweep    []estimate.SweepPoint  `json:"sweep,omitempty"`
		}{cfg, est, sweep})
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tYEAR 1\tYEAR 2\tYEAR 3\tCONFIDENCE\t")
	for _, p := range est.Projections {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", p.Category, p.YearOneImpact, p.YearTwoImpact, p.YearThreeImpact, p.Confidence)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	agg := est.Aggregate
	fmt.Fprintf(out, "\nTotal three-year impact: %d\n", est.TotalThreeYearImpact)
	fmt.Fprintf(out, "Three-year return:       %.1f%%\n", agg.ThreeYearReturnPercent)
	fmt.Fprintf(out, "Break-even:              %d months\n", agg.BreakEvenMonths)
	fmt.Fprintf(out, "Confidence score:        %.1f%%\n", agg.ConfidenceScorePercent)
	fmt.Fprintf(out, "Risk-adjusted return:    %.1f%%\n", agg.RiskAdjustedReturnPercent)
	if cfg.IncludeEquity {
		fmt.Fprintln(out, "Equity participation:    yes")
	}

	if len(sweep) > 0 {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "INVESTMENT\tRETURN\tBREAK-EVEN\t")
		for _, pt := range sweep {
			fmt.Fprintf(tw, "%d\t%.1f%%\t%d\t\n", pt.InvestmentAmount, pt.Aggregate.ThreeYearReturnPercent, pt.Aggregate.BreakEvenMonths)
		}
		return tw.Flush()
	}
	return nil
}
