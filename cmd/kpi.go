package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mineral-insights/mineralboard/internal/model"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
	"github.com/mineral-insights/mineralboard/internal/render"
)

var (
	kpiMineral   string
	kpiScenarios []string
	kpiJSON      bool
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Print the headline risk indicators for one mineral",
	Long: `Filters the summary table to the selected mineral and scenarios and prints
the four indicators: first deficit year, maximum deficit, and the 2030/2040
supply gaps. With several scenarios selected, each indicator is the worst
case across them.

Examples:
  # Worst case across all scenarios
  mineralboard kpi --mineral Lithium

  # One scenario
  mineralboard kpi --mineral Cobalt --scenario STEPS

  # Machine-readable
  mineralboard kpi --mineral Lithium --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snap, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		p := selectionParams(snap, kpiMineral, kpiScenarios, "")
		rows := pipeline.FilterSummary(snap.Summary, p.Mineral, p.Scenarios)
		kpis := pipeline.ComputeKPIs(rows)

		if kpiJSON {
			return printJSON(os.Stdout, struct {
				Mineral   string       `json:"mineral"`
				Scenarios []string     `json:"scenarios"`
				KPIs      model.KPISet `json:"kpis"`
			}{p.Mineral, p.Scenarios, kpis})
		}

		writeKPIText(os.Stdout, p, kpis)
		return nil
	},
}

func init() {
	kpiCmd.Flags().StringVar(&kpiMineral, "mineral", "", "mineral to report on (default: first in catalog)")
	kpiCmd.Flags().StringArrayVar(&kpiScenarios, "scenario", nil, "scenario to include, repeatable (default: all)")
	kpiCmd.Flags().BoolVar(&kpiJSON, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(kpiCmd)
}

func writeKPIText(w io.Writer, p pipeline.Params, kpis model.KPISet) {
	display := render.FormatKPIs(kpis)
	fmt.Fprintf(w, "Mineral:   %s\n", p.Mineral)
	fmt.Fprintf(w, "Scenarios: %s\n\n", strings.Join(p.Scenarios, ", "))
	fmt.Fprintf(w, "%-20s %s\n", "First deficit year:", display.FirstDeficitYear)
	fmt.Fprintf(w, "%-20s %s kt\n", "Max deficit:", display.MaxDeficitKT)
	fmt.Fprintf(w, "%-20s %s kt\n", "Gap 2030:", display.Gap2030KT)
	fmt.Fprintf(w, "%-20s %s kt\n", "Gap 2040:", display.Gap2040KT)
}

// printJSON writes indented JSON, the shape shared by every --json flag.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
