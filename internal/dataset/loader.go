package dataset

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mineral-insights/mineralboard/internal/model"
)

// Loader reads the three dashboard tables from a Source per a Manifest.
type Loader struct {
	src      Source
	manifest Manifest
}

// NewLoader creates a Loader over the given source and manifest.
func NewLoader(src Source, manifest Manifest) *Loader {
	return &Loader{src: src, manifest: manifest}
}

// LoadSnapshot loads the three tables concurrently and returns an immutable
// snapshot. A failure in any table fails the whole load; the dashboard never
// starts on a partial snapshot.
func (l *Loader) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		series, err := l.LoadSeries(ctx)
		if err != nil {
			return err
		}
		snap.Series = series
		return nil
	})
	g.Go(func() error {
		summary, err := l.LoadSummary(ctx)
		if err != nil {
			return err
		}
		snap.Summary = summary
		return nil
	})
	g.Go(func() error {
		tech, err := l.LoadTech(ctx)
		if err != nil {
			return err
		}
		snap.Tech = tech
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("snapshot loaded",
		zap.String("snapshot_id", snap.ID),
		zap.Int("series_rows", len(snap.Series)),
		zap.Int("summary_rows", len(snap.Summary)),
		zap.Int("tech_rows", len(snap.Tech)),
	)

	return snap, nil
}

// LoadSeries loads the supply/demand time-series table.
func (l *Loader) LoadSeries(ctx context.Context) ([]model.SupplyDemandRecord, error) {
	spec, header, rows, err := l.read(ctx, NameSeries)
	if err != nil {
		return nil, err
	}
	return parseSeriesTable(spec.Path, header, rows)
}

// LoadSummary loads the per-mineral/scenario summary table.
func (l *Loader) LoadSummary(ctx context.Context) ([]model.SummaryRecord, error) {
	spec, header, rows, err := l.read(ctx, NameSummary)
	if err != nil {
		return nil, err
	}
	return parseSummaryTable(spec.Path, header, rows)
}

// LoadTech loads the technology demand table.
func (l *Loader) LoadTech(ctx context.Context) ([]model.TechDemandRecord, error) {
	spec, header, rows, err := l.read(ctx, NameTech)
	if err != nil {
		return nil, err
	}
	return parseTechTable(spec.Path, header, rows)
}

func (l *Loader) read(ctx context.Context, name string) (FileSpec, []string, [][]string, error) {
	spec, err := l.manifest.Spec(name)
	if err != nil {
		return FileSpec{}, nil, nil, err
	}

	rc, err := l.src.Open(ctx, spec.Path)
	if err != nil {
		return FileSpec{}, nil, nil, &LoadError{Dataset: name, Path: spec.Path, Err: err}
	}
	defer rc.Close() //nolint:errcheck

	header, rows, err := readRows(rc, spec)
	if err != nil {
		return FileSpec{}, nil, nil, &LoadError{Dataset: name, Path: spec.Path, Err: err}
	}

	return spec, header, rows, nil
}
