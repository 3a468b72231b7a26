package model

import (
	"sort"
	"time"
)

// Snapshot is one immutable load of the three dashboard tables. All pipeline
// operations read from a Snapshot and never write back to it, so a single
// Snapshot is safe to share across concurrent requests.
type Snapshot struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loaded_at"`

	Series  []SupplyDemandRecord `json:"-"`
	Summary []SummaryRecord      `json:"-"`
	Tech    []TechDemandRecord   `json:"-"`
}

// Minerals returns the distinct minerals in the series table, sorted.
func (s *Snapshot) Minerals() []string {
	seen := make(map[string]bool, len(s.Series))
	for _, r := range s.Series {
		seen[r.Mineral] = true
	}
	return sortedKeys(seen)
}

// Scenarios returns the distinct scenarios in the series table, sorted.
func (s *Snapshot) Scenarios() []string {
	seen := make(map[string]bool, len(s.Series))
	for _, r := range s.Series {
		seen[r.Scenario] = true
	}
	return sortedKeys(seen)
}

// RankScenarios returns the distinct scenarios in the summary table, sorted.
// The ranking view offers these, which may differ from the series scenarios.
func (s *Snapshot) RankScenarios() []string {
	seen := make(map[string]bool, len(s.Summary))
	for _, r := range s.Summary {
		seen[r.Scenario] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
