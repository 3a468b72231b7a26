// Package health reports on the loaded snapshot: row counts, catalog sizes,
// missing-value tallies, and consistency checks. The same Report backs the
// validate command and the /api/health/data endpoint.
package health

import (
	"math"
	"strings"
	"time"

	"github.com/mineral-insights/mineralboard/internal/model"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
)

// gapTolerance is the allowed drift between GapKT and SupplyKT-DemandKT
// before a series row counts as inconsistent.
const gapTolerance = 1e-6

// Report is a point-in-time view of data coverage and consistency.
type Report struct {
	SnapshotID string    `json:"snapshot_id"`
	LoadedAt   time.Time `json:"loaded_at"`

	SeriesRows  int `json:"series_rows"`
	SummaryRows int `json:"summary_rows"`
	TechRows    int `json:"tech_rows"`

	Minerals      int `json:"minerals"`
	Scenarios     int `json:"scenarios"`
	RankScenarios int `json:"rank_scenarios"`

	// Missing optional values in the summary table, per column.
	MissingFirstDeficitYear int `json:"missing_first_deficit_year"`
	MissingMaxDeficitKT     int `json:"missing_max_deficit_kt"`
	MissingGap2030KT        int `json:"missing_gap_2030_kt"`
	MissingGap2040KT        int `json:"missing_gap_2040_kt"`

	// Series minerals with no technology rows under the base-mineral match.
	MineralsWithoutTech []string `json:"minerals_without_tech"`

	// Series rows whose GapKT disagrees with SupplyKT-DemandKT.
	InconsistentGapRows int `json:"inconsistent_gap_rows"`

	CollectedAt time.Time `json:"collected_at"`
}

// Collect builds a Report over a loaded snapshot.
func Collect(snap *model.Snapshot) Report {
	report := Report{
		SnapshotID:  snap.ID,
		LoadedAt:    snap.LoadedAt,
		SeriesRows:  len(snap.Series),
		SummaryRows: len(snap.Summary),
		TechRows:    len(snap.Tech),
		CollectedAt: time.Now().UTC(),
	}

	report.Minerals = len(snap.Minerals())
	report.Scenarios = len(snap.Scenarios())
	report.RankScenarios = len(snap.RankScenarios())

	for _, r := range snap.Summary {
		if r.FirstDeficitYear == nil {
			report.MissingFirstDeficitYear++
		}
		if r.MaxDeficitKT == nil {
			report.MissingMaxDeficitKT++
		}
		if r.Gap2030KT == nil {
			report.MissingGap2030KT++
		}
		if r.Gap2040KT == nil {
			report.MissingGap2040KT++
		}
	}

	for _, mineral := range snap.Minerals() {
		if !hasTechCoverage(snap.Tech, mineral) {
			report.MineralsWithoutTech = append(report.MineralsWithoutTech, mineral)
		}
	}

	for _, r := range snap.Series {
		if math.Abs(r.GapKT-(r.SupplyKT-r.DemandKT)) > gapTolerance {
			report.InconsistentGapRows++
		}
	}

	return report
}

// hasTechCoverage applies the same base-mineral containment match the tech
// filter uses, across all scenarios.
func hasTechCoverage(tech []model.TechDemandRecord, mineral string) bool {
	base := strings.ToLower(pipeline.BaseMineral(mineral))
	for _, r := range tech {
		if strings.Contains(strings.ToLower(r.Mineral), base) {
			return true
		}
	}
	return false
}
