package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/pricing"
	"github.com/yourorg/brand-estimator/internal/types"
)

type pricingFlags struct {
	services   []string
	stage      string
	complexity string
	timeline   string
	equity     bool
	json       bool
}

func newPricingCmd() *cobra.Command {
	f := &pricingFlags{}
	cmd := &cobra.Command{
		Use:     "pricing",
		Short:   "Price a brand engagement",
		Example: `  estimate pricing --service brand-strategy --service website --stage series-a --timeline rush`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPricing(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&f.services, "service", nil, "service id, repeatable")
	flags.StringVar(&f.stage, "stage", string(types.StageSeed), "funding stage")
	flags.StringVar(&f.complexity, "complexity", string(types.ComplexityStandard), "simple, standard or complex")
	flags.StringVar(&f.timeline, "timeline", string(types.TimelineStandard), "extended, standard or rush")
	flags.BoolVar(&f.equity, "equity", false, "include equity participation")
	flags.BoolVar(&f.json, "json", false, "print JSON instead of a table")
	return cmd
}

func runPricing(cmd *cobra.Command, f *pricingFlags) error {
	quote, err := pricing.Quote(model.PricingInput{
		Services:      f.services,
		FundingStage:  types.FundingStage(f.stage),
		Complexity:    types.Complexity(f.complexity),
		Timeline:      types.Timeline(f.timeline),
		IncludeEquity: f.equity,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.json {
		return writeJSON(out, quote)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tBASE PRICE")
	for _, s := range quote.LineItems {
		fmt.Fprintf(tw, "%s\t%d\n", s.Name, s.BasePrice)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nMultipliers: stage %.2f, complexity %.2f, timeline %.2f\n",
		quote.StageMultiplier, quote.ComplexityMultiplier, quote.TimelineMultiplier)
	fmt.Fprintf(out, "Package:     %s\n", quote.Package)
	fmt.Fprintf(out, "Total:       %d\n", quote.Total)
	if f.equity {
		fmt.Fprintf(out, "Cash:        %d\n", quote.CashComponent)
		fmt.Fprintf(out, "Equity:      %.1f%%\n", quote.EquityPercent)
	}
	return nil
}
