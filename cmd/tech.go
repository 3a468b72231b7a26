package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mineral-insights/mineralboard/internal/model"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
	"github.com/mineral-insights/mineralboard/internal/render"
)

var (
	techMineral   string
	techScenarios []string
	techJSON      bool
)

var techCmd = &cobra.Command{
	Use:   "tech",
	Short: "Print the technology demand breakdown for one mineral",
	Long: `Matches technology demand rows against the selection's base mineral (the
label before the first "-") and prints demand by technology and year. Not
every mineral has a technology split; that prints a notice, not an error.

Examples:
  mineralboard tech --mineral Lithium
  mineralboard tech --mineral "Graphite-natural flake" --scenario APS`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snap, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		p := selectionParams(snap, techMineral, techScenarios, "")
		base := pipeline.BaseMineral(p.Mineral)
		rows := pipeline.FilterTech(snap.Tech, p.Mineral, p.Scenarios)

		if techJSON {
			return printJSON(os.Stdout, struct {
				Mineral      string                   `json:"mineral"`
				BaseMineral  string                   `json:"base_mineral"`
				Scenarios    []string                 `json:"scenarios"`
				TechReported bool                     `json:"tech_reported"`
				Rows         []model.TechDemandRecord `json:"rows"`
			}{p.Mineral, base, p.Scenarios, len(rows) > 0, rows})
		}

		writeTechText(os.Stdout, base, rows)
		return nil
	},
}

func init() {
	techCmd.Flags().StringVar(&techMineral, "mineral", "", "mineral to report on (default: first in catalog)")
	techCmd.Flags().StringArrayVar(&techScenarios, "scenario", nil, "scenario to include, repeatable (default: all)")
	techCmd.Flags().BoolVar(&techJSON, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(techCmd)
}

func writeTechText(w io.Writer, base string, rows []model.TechDemandRecord) {
	if len(rows) == 0 {
		fmt.Fprintf(w, "No technology breakdown reported for %q.\n", base)
		return
	}

	sorted := make([]model.TechDemandRecord, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Technology != sorted[j].Technology {
			return sorted[i].Technology < sorted[j].Technology
		}
		if sorted[i].Scenario != sorted[j].Scenario {
			return sorted[i].Scenario < sorted[j].Scenario
		}
		return sorted[i].Year < sorted[j].Year
	})

	fmt.Fprintf(w, "Technology demand for %s (%d rows)\n\n", base, len(rows))
	fmt.Fprintf(w, "%-28s %-24s %-6s %12s\n", "Technology", "Scenario", "Year", "Demand (kt)")
	for _, r := range sorted {
		fmt.Fprintf(w, "%-28s %-24s %-6d %12s\n", r.Technology, r.Scenario, r.Year, render.KT(r.DemandKT))
	}
}
