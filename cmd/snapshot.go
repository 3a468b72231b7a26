package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/mineral-insights/mineralboard/internal/dataset"
	"github.com/mineral-insights/mineralboard/internal/model"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
)

// loadManifest returns the dataset manifest: the configured YAML file when
// set, the conventional CSV layout otherwise.
func loadManifest() (dataset.Manifest, error) {
	if cfg.Data.Manifest == "" {
		return dataset.DefaultManifest(), nil
	}
	return dataset.LoadManifest(cfg.Data.Manifest)
}

// loadSnapshot reads the three tables from the configured source into one
// immutable snapshot. Every command that computes anything starts here; the
// snapshot is never reloaded within a process.
func loadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := cfg.Validate("pipeline"); err != nil {
		return nil, err
	}

	manifest, err := loadManifest()
	if err != nil {
		return nil, err
	}

	src, err := dataset.Open(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}

	return dataset.NewLoader(src, manifest).LoadSnapshot(ctx)
}

// selectionParams resolves the mineral/scenario selection against the
// snapshot's catalogs the way the dashboard selectors do: an unset mineral
// becomes the first mineral, an empty scenario set selects all scenarios,
// and an unset ranking scenario becomes the first ranking scenario.
func selectionParams(snap *model.Snapshot, mineral string, scenarios []string, rankScenario string) pipeline.Params {
	p := pipeline.Params{
		Mineral:      mineral,
		Scenarios:    scenarios,
		RankScenario: rankScenario,
	}

	if p.Mineral == "" {
		if minerals := snap.Minerals(); len(minerals) > 0 {
			p.Mineral = minerals[0]
		}
	}
	if len(p.Scenarios) == 0 {
		p.Scenarios = snap.Scenarios()
	}
	if p.RankScenario == "" {
		if scenarios := snap.RankScenarios(); len(scenarios) > 0 {
			p.RankScenario = scenarios[0]
		}
	}

	zap.L().Debug("selection resolved",
		zap.String("mineral", p.Mineral),
		zap.Strings("scenarios", p.Scenarios),
		zap.String("rank_scenario", p.RankScenario),
	)

	return p
}
