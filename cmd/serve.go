package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mineral-insights/mineralboard/internal/dashboard"
	"github.com/mineral-insights/mineralboard/internal/health"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Loads the three dataset files once, then serves the dashboard over HTTP:
pipeline results and the catalog as JSON, charts as PNG, the ranking as
xlsx/csv downloads, plus /metrics and data-health endpoints. The snapshot
is immutable for the life of the process; restart to pick up new files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		snap, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		metrics := health.NewMetrics()
		metrics.ObserveSnapshot(snap)

		return dashboard.New(snap, metrics, cfg.Server).Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
