package pipeline

import (
	"sort"

	"github.com/mineral-insights/mineralboard/internal/model"
)

// Substitution values for missing sort keys. A mineral that never goes into
// deficit sorts as a zero deficit with a deficit year past the horizon.
const (
	noDeficitKT   = 0.0
	noDeficitYear = 9999
)

// RankRisk ranks every mineral in the summary table under one scenario,
// independent of the mineral selector. Rows sort ascending on
// (max_deficit_kt, first_deficit_year) with missing values substituted by
// noDeficitKT and noDeficitYear for ordering only; the returned rows keep
// their original nil fields. The sort is stable, so ties keep table order,
// and ranks run 1..N without collapsing.
func RankRisk(summary []model.SummaryRecord, scenario string) []model.RankedSummaryRow {
	selected := make([]model.SummaryRecord, 0, len(summary))
	for _, r := range summary {
		if r.Scenario == scenario {
			selected = append(selected, r)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		di, dj := deficitKey(selected[i]), deficitKey(selected[j])
		if di != dj {
			return di < dj
		}
		return yearKey(selected[i]) < yearKey(selected[j])
	})

	ranked := make([]model.RankedSummaryRow, len(selected))
	for i, r := range selected {
		ranked[i] = model.RankedSummaryRow{SummaryRecord: r, RiskRank: i + 1}
	}
	return ranked
}

func deficitKey(r model.SummaryRecord) float64 {
	if r.MaxDeficitKT == nil {
		return noDeficitKT
	}
	return *r.MaxDeficitKT
}

func yearKey(r model.SummaryRecord) int {
	if r.FirstDeficitYear == nil {
		return noDeficitYear
	}
	return *r.FirstDeficitYear
}
