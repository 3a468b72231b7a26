package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mineral-insights/mineralboard/internal/fetcher"
)

var (
	fetchSeriesURL  string
	fetchSummaryURL string
	fetchTechURL    string
	fetchDir        string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset files from the publisher",
	Long: `One-shot download of the three dataset files into the data directory,
named per the manifest. URLs come from config (fetch.series_url and friends)
or flags; http(s) and ftp are supported. Datasets without a URL are skipped.
The serve command never fetches; run this, then restart serve.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if fetchSeriesURL != "" {
			cfg.Fetch.SeriesURL = fetchSeriesURL
		}
		if fetchSummaryURL != "" {
			cfg.Fetch.SummaryURL = fetchSummaryURL
		}
		if fetchTechURL != "" {
			cfg.Fetch.TechURL = fetchTechURL
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		manifest, err := loadManifest()
		if err != nil {
			return err
		}

		dir := fetchDir
		if dir == "" {
			dir = cfg.Data.Dir
		}

		return fetcher.Datasets(ctx, cfg.Fetch, manifest, dir)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSeriesURL, "series-url", "", "time-series dataset URL (overrides config)")
	fetchCmd.Flags().StringVar(&fetchSummaryURL, "summary-url", "", "summary dataset URL (overrides config)")
	fetchCmd.Flags().StringVar(&fetchTechURL, "tech-url", "", "technology dataset URL (overrides config)")
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "destination directory (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
