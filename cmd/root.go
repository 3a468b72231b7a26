package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mineral-insights/mineralboard/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mineralboard",
	Short: "Critical-minerals supply/demand dashboard",
	Long:  "Loads mineral supply/demand projections from flat files, derives risk indicators and a cross-mineral risk ranking, and serves them as a dashboard API, charts, and exports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
