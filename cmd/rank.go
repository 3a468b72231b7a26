package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mineral-insights/mineralboard/internal/export"
	"github.com/mineral-insights/mineralboard/internal/model"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
	"github.com/mineral-insights/mineralboard/internal/render"
)

var (
	rankScenario string
	rankFormat   string
	rankOutput   string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the cross-mineral risk ranking for one scenario",
	Long: `Ranks every mineral in the summary table under one scenario, most at risk
first: ascending by maximum deficit (deficits are negative gaps), ties broken
by earlier first deficit year. Minerals with no reported deficit rank last.

Examples:
  # Ranking for the first scenario in the summary table
  mineralboard rank

  # Specific scenario as a table
  mineralboard rank --scenario "Net Zero 2050"

  # Export to CSV
  mineralboard rank --scenario STEPS --format csv --output ranking.csv

  # Full workbook (ranking, KPIs, time series)
  mineralboard rank --scenario STEPS --format xlsx --output ranking.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := validRankFormat(rankFormat); err != nil {
			return err
		}
		if rankFormat == "xlsx" && rankOutput == "" {
			return eris.New("rank: --format xlsx requires --output")
		}

		snap, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		p := selectionParams(snap, "", nil, rankScenario)
		ranking := pipeline.RankRisk(snap.Summary, p.RankScenario)
		zap.L().Info("ranking computed",
			zap.String("scenario", p.RankScenario),
			zap.Int("minerals", len(ranking)),
		)

		out := os.Stdout
		if rankOutput != "" {
			f, err := os.Create(rankOutput)
			if err != nil {
				return eris.Wrapf(err, "rank: create output file %s", rankOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		switch rankFormat {
		case "table":
			return writeRankingTable(out, p.RankScenario, ranking)
		case "csv":
			data, err := export.RankingCSV(ranking)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		case "json":
			return printJSON(out, struct {
				Scenario string                   `json:"scenario"`
				Ranking  []model.RankedSummaryRow `json:"ranking"`
			}{p.RankScenario, ranking})
		case "xlsx":
			data, err := export.RankingWorkbook(pipeline.Run(snap, p))
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}

		return nil
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankScenario, "scenario", "", "ranking scenario (default: first in summary table)")
	rankCmd.Flags().StringVar(&rankFormat, "format", "table", "output format: table, csv, json, or xlsx")
	rankCmd.Flags().StringVar(&rankOutput, "output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(rankCmd)
}

func validRankFormat(format string) error {
	switch format {
	case "table", "csv", "json", "xlsx":
		return nil
	}
	return eris.Errorf("rank: unsupported format %q", format)
}

func writeRankingTable(w io.Writer, scenario string, ranking []model.RankedSummaryRow) error {
	if len(ranking) == 0 {
		_, err := fmt.Fprintf(w, "No summary rows for scenario %q.\n", scenario)
		return err
	}

	if _, err := fmt.Fprintf(w, "Risk ranking for %s\n\n", scenario); err != nil {
		return eris.Wrap(err, "rank: write table title")
	}
	if _, err := fmt.Fprintf(w, "%-5s %-24s %-14s %14s %14s %14s\n",
		"Rank", "Mineral", "First Deficit", "Max Deficit", "Gap 2030", "Gap 2040"); err != nil {
		return eris.Wrap(err, "rank: write table header")
	}

	for _, row := range ranking {
		name := row.Mineral
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		_, err := fmt.Fprintf(w, "%-5d %-24s %-14s %14s %14s %14s\n",
			row.RiskRank,
			name,
			render.DeficitYear(row.FirstDeficitYear),
			render.OptionalKT(row.MaxDeficitKT),
			render.OptionalKT(row.Gap2030KT),
			render.OptionalKT(row.Gap2040KT),
		)
		if err != nil {
			return eris.Wrap(err, "rank: write table row")
		}
	}

	return nil
}
