package pipeline

import (
	"github.com/mineral-insights/mineralboard/internal/model"
)

// Params selects what one dashboard interaction shows: the mineral under
// inspection, the scenarios to compare, and the scenario the risk ranking
// is computed for. The ranking scenario is independent of the mineral.
type Params struct {
	Mineral      string   `json:"mineral"`
	Scenarios    []string `json:"scenarios"`
	RankScenario string   `json:"rank_scenario"`
}

// Result bundles everything the presentation layer needs for one
// interaction. Presenters render it as-is; no filtering or aggregation
// happens past this point.
type Result struct {
	Params      Params `json:"params"`
	BaseMineral string `json:"base_mineral"`

	Series  []model.SupplyDemandRecord `json:"series"`
	Summary []model.SummaryRecord      `json:"summary"`
	Tech    []model.TechDemandRecord   `json:"tech"`

	// TechReported distinguishes "the source has no technology split for
	// this mineral" from an error. False means render a notice, not a chart.
	TechReported bool `json:"tech_reported"`

	KPIs    model.KPISet             `json:"kpis"`
	Ranking []model.RankedSummaryRow `json:"ranking"`
}

// Run executes one full pipeline pass over the snapshot: filter the three
// tables, aggregate KPIs from the filtered summary, and rank all minerals
// under the ranking scenario. Pure and deterministic; running it twice on
// the same inputs yields identical results.
func Run(snap *model.Snapshot, p Params) Result {
	res := Result{
		Params:      p,
		BaseMineral: BaseMineral(p.Mineral),
	}

	res.Series = FilterSeries(snap.Series, p.Mineral, p.Scenarios)
	res.Summary = FilterSummary(snap.Summary, p.Mineral, p.Scenarios)
	res.Tech = FilterTech(snap.Tech, p.Mineral, p.Scenarios)
	res.TechReported = len(res.Tech) > 0

	res.KPIs = ComputeKPIs(res.Summary)
	res.Ranking = RankRisk(snap.Summary, p.RankScenario)

	return res
}
