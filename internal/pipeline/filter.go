// Package pipeline derives the dashboard views from a loaded snapshot:
// filtered tables, headline KPIs, and the cross-mineral risk ranking.
// Every function is pure over its inputs and never mutates the snapshot.
package pipeline

import (
	"strings"

	"github.com/mineral-insights/mineralboard/internal/model"
)

// BaseMineral derives the family label used to match technology rows:
// everything before the first "-", trimmed. "Graphite-natural flake" and
// "Graphite-synthetic" both map to "Graphite".
func BaseMineral(mineral string) string {
	base, _, _ := strings.Cut(mineral, "-")
	return strings.TrimSpace(base)
}

// FilterSeries returns the series rows for one mineral under the selected
// scenarios. Matches are exact; keys were normalized at load.
func FilterSeries(series []model.SupplyDemandRecord, mineral string, scenarios []string) []model.SupplyDemandRecord {
	want := scenarioSet(scenarios)
	out := make([]model.SupplyDemandRecord, 0, len(series))
	for _, r := range series {
		if r.Mineral == mineral && want[r.Scenario] {
			out = append(out, r)
		}
	}
	return out
}

// FilterSummary returns the summary rows for one mineral under the selected
// scenarios, with the same predicate as FilterSeries.
func FilterSummary(summary []model.SummaryRecord, mineral string, scenarios []string) []model.SummaryRecord {
	want := scenarioSet(scenarios)
	out := make([]model.SummaryRecord, 0, len(summary))
	for _, r := range summary {
		if r.Mineral == mineral && want[r.Scenario] {
			out = append(out, r)
		}
	}
	return out
}

// FilterTech returns the technology rows whose mineral label contains the
// selection's base mineral, case-insensitively, under the selected scenarios.
// Tech labels are finer-grained than series labels ("Lithium carbonate",
// "Nickel-class 1"), so containment, not equality. An empty result is a
// valid state: the source reports no technology split for this mineral.
func FilterTech(tech []model.TechDemandRecord, mineral string, scenarios []string) []model.TechDemandRecord {
	base := strings.ToLower(BaseMineral(mineral))
	want := scenarioSet(scenarios)
	out := make([]model.TechDemandRecord, 0, len(tech))
	for _, r := range tech {
		if want[r.Scenario] && strings.Contains(strings.ToLower(r.Mineral), base) {
			out = append(out, r)
		}
	}
	return out
}

func scenarioSet(scenarios []string) map[string]bool {
	set := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		set[s] = true
	}
	return set
}
