package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mineral-insights/mineralboard/internal/health"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the dataset files and report on data coverage",
	Long: `Loads the three dataset files exactly as serve would and prints a coverage
report: row counts, catalog sizes, missing optional values, minerals without
a technology split, and series rows whose gap disagrees with supply minus
demand. Exits non-zero if any file fails to load.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snap, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		report := health.Collect(snap)

		if validateJSON {
			return printJSON(os.Stdout, report)
		}

		writeReportText(os.Stdout, report)
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(validateCmd)
}

func writeReportText(w io.Writer, r health.Report) {
	fmt.Fprintf(w, "Snapshot %s loaded at %s\n\n", r.SnapshotID, r.LoadedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(w, "%-28s %6d\n", "Series rows:", r.SeriesRows)
	fmt.Fprintf(w, "%-28s %6d\n", "Summary rows:", r.SummaryRows)
	fmt.Fprintf(w, "%-28s %6d\n", "Technology rows:", r.TechRows)
	fmt.Fprintf(w, "%-28s %6d\n", "Minerals:", r.Minerals)
	fmt.Fprintf(w, "%-28s %6d\n", "Scenarios:", r.Scenarios)
	fmt.Fprintf(w, "%-28s %6d\n\n", "Ranking scenarios:", r.RankScenarios)

	fmt.Fprintln(w, "Missing optional summary values:")
	fmt.Fprintf(w, "  %-26s %6d\n", "first_deficit_year:", r.MissingFirstDeficitYear)
	fmt.Fprintf(w, "  %-26s %6d\n", "max_deficit_kt:", r.MissingMaxDeficitKT)
	fmt.Fprintf(w, "  %-26s %6d\n", "gap_2030_kt:", r.MissingGap2030KT)
	fmt.Fprintf(w, "  %-26s %6d\n\n", "gap_2040_kt:", r.MissingGap2040KT)

	if len(r.MineralsWithoutTech) > 0 {
		fmt.Fprintf(w, "No technology breakdown: %s\n", strings.Join(r.MineralsWithoutTech, ", "))
	} else {
		fmt.Fprintln(w, "Every mineral has a technology breakdown.")
	}

	if r.InconsistentGapRows > 0 {
		fmt.Fprintf(w, "WARNING: %d series rows have gap_kt != supply_kt - demand_kt\n", r.InconsistentGapRows)
	} else {
		fmt.Fprintln(w, "All series rows have consistent gaps.")
	}
}
