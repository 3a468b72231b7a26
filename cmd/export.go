package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mineral-insights/mineralboard/internal/export"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
	"github.com/mineral-insights/mineralboard/internal/render"
)

var (
	exportMineral      string
	exportScenarios    []string
	exportRankScenario string
	exportOut          string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dashboard outputs for one selection to a directory",
	Long: `Runs the pipeline once for the selection and writes everything the
dashboard would show: ranking.xlsx (ranking, KPIs, time series), ranking.csv,
and the three charts as PNG. Charts with no data for the selection are
skipped with a notice; the technology chart in particular is not reported
for every mineral.

Example:
  mineralboard export --mineral Lithium --rank-scenario STEPS --out exports/lithium`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snap, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		p := selectionParams(snap, exportMineral, exportScenarios, exportRankScenario)
		result := pipeline.Run(snap, p)

		dir := exportOut
		if dir == "" {
			dir = cfg.Export.Dir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "export: create output dir %s", dir)
		}

		workbook, err := export.RankingWorkbook(result)
		if err != nil {
			return err
		}
		if err := writeExportFile(dir, "ranking.xlsx", workbook); err != nil {
			return err
		}

		csvData, err := export.RankingCSV(result.Ranking)
		if err != nil {
			return err
		}
		if err := writeExportFile(dir, "ranking.csv", csvData); err != nil {
			return err
		}

		charts := []struct {
			name   string
			render func() ([]byte, error)
		}{
			{"supply_demand.png", func() ([]byte, error) {
				return render.SupplyDemandLines(result.Series, p.Mineral)
			}},
			{"gap.png", func() ([]byte, error) {
				return render.GapBars(result.Series, p.Mineral)
			}},
			{"technology.png", func() ([]byte, error) {
				return render.TechArea(result.Tech, result.BaseMineral)
			}},
		}
		for _, chart := range charts {
			png, err := chart.render()
			if errors.Is(err, render.ErrNoData) {
				fmt.Printf("Skipped %s: not reported for this selection.\n", chart.name)
				continue
			}
			if err != nil {
				return err
			}
			if err := writeExportFile(dir, chart.name, png); err != nil {
				return err
			}
		}

		zap.L().Info("export complete",
			zap.String("dir", dir),
			zap.String("mineral", p.Mineral),
			zap.String("rank_scenario", p.RankScenario),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportMineral, "mineral", "", "mineral to export (default: first in catalog)")
	exportCmd.Flags().StringArrayVar(&exportScenarios, "scenario", nil, "scenario to include, repeatable (default: all)")
	exportCmd.Flags().StringVar(&exportRankScenario, "rank-scenario", "", "ranking scenario (default: first in summary table)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}

func writeExportFile(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
