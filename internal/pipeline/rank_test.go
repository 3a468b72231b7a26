package pipeline

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mineral-insights/mineralboard/internal/model"
)

func TestRankRisk_MissingValuesSortAsZeroAndFarYear(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Cobalt", Scenario: "STEPS", FirstDeficitYear: iptr(2031), MaxDeficitKT: fptr(120)},
		{Mineral: "Lithium", Scenario: "STEPS", FirstDeficitYear: nil, MaxDeficitKT: nil},
	}

	ranked := RankRisk(summary, "STEPS")

	require.Len(t, ranked, 2)
	// Lithium's missing deficit sorts as 0, ahead of Cobalt's 120.
	assert.Equal(t, "Lithium", ranked[0].Mineral)
	assert.Equal(t, 1, ranked[0].RiskRank)
	assert.Equal(t, "Cobalt", ranked[1].Mineral)
	assert.Equal(t, 2, ranked[1].RiskRank)
}

func TestRankRisk_KeepsOriginalMissingValues(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Lithium", Scenario: "STEPS"},
	}

	ranked := RankRisk(summary, "STEPS")

	require.Len(t, ranked, 1)
	// Substitution is for ordering only; the row still reads as missing.
	assert.Nil(t, ranked[0].MaxDeficitKT)
	assert.Nil(t, ranked[0].FirstDeficitYear)
}

func TestRankRisk_SelectsScenario(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Lithium", Scenario: "STEPS", MaxDeficitKT: fptr(-70)},
		{Mineral: "Lithium", Scenario: "APS", MaxDeficitKT: fptr(-140)},
		{Mineral: "Cobalt", Scenario: "APS", MaxDeficitKT: fptr(-40)},
	}

	ranked := RankRisk(summary, "APS")

	require.Len(t, ranked, 2)
	for _, row := range ranked {
		assert.Equal(t, "APS", row.Scenario)
	}
}

func TestRankRisk_NegativeDeficitsRankFirst(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Copper", Scenario: "NZE", FirstDeficitYear: iptr(2038), MaxDeficitKT: fptr(-15)},
		{Mineral: "Lithium", Scenario: "NZE", FirstDeficitYear: iptr(2028), MaxDeficitKT: fptr(-140)},
		{Mineral: "Nickel", Scenario: "NZE"},
	}

	ranked := RankRisk(summary, "NZE")

	require.Len(t, ranked, 3)
	// -140 < -15 < 0 (substituted): largest deficit is most at risk.
	assert.Equal(t, "Lithium", ranked[0].Mineral)
	assert.Equal(t, "Copper", ranked[1].Mineral)
	assert.Equal(t, "Nickel", ranked[2].Mineral)
}

func TestRankRisk_YearBreaksDeficitTies(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Cobalt", Scenario: "STEPS", FirstDeficitYear: iptr(2035), MaxDeficitKT: fptr(-50)},
		{Mineral: "Lithium", Scenario: "STEPS", FirstDeficitYear: iptr(2027), MaxDeficitKT: fptr(-50)},
	}

	ranked := RankRisk(summary, "STEPS")

	require.Len(t, ranked, 2)
	assert.Equal(t, "Lithium", ranked[0].Mineral)
	assert.Equal(t, "Cobalt", ranked[1].Mineral)
}

func TestRankRisk_TiesKeepTableOrderAndDistinctRanks(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Cobalt", Scenario: "STEPS", FirstDeficitYear: iptr(2030), MaxDeficitKT: fptr(-50)},
		{Mineral: "Lithium", Scenario: "STEPS", FirstDeficitYear: iptr(2030), MaxDeficitKT: fptr(-50)},
	}

	ranked := RankRisk(summary, "STEPS")

	require.Len(t, ranked, 2)
	assert.Equal(t, "Cobalt", ranked[0].Mineral)
	assert.Equal(t, 1, ranked[0].RiskRank)
	assert.Equal(t, "Lithium", ranked[1].Mineral)
	assert.Equal(t, 2, ranked[1].RiskRank)
}

func TestRankRisk_RanksAreDense(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Lithium", Scenario: "STEPS", MaxDeficitKT: fptr(-140)},
		{Mineral: "Cobalt", Scenario: "STEPS", MaxDeficitKT: fptr(-40)},
		{Mineral: "Nickel", Scenario: "STEPS", MaxDeficitKT: fptr(-40)},
		{Mineral: "Copper", Scenario: "STEPS"},
	}

	ranked := RankRisk(summary, "STEPS")

	require.Len(t, ranked, 4)
	for i, row := range ranked {
		assert.Equal(t, i+1, row.RiskRank)
	}
}

func TestRankRisk_OutputIsPermutationOfScenarioRows(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Lithium", Scenario: "STEPS", MaxDeficitKT: fptr(-140)},
		{Mineral: "Cobalt", Scenario: "STEPS", MaxDeficitKT: fptr(-40)},
		{Mineral: "Nickel", Scenario: "STEPS"},
		{Mineral: "Lithium", Scenario: "APS", MaxDeficitKT: fptr(-200)},
	}

	ranked := RankRisk(summary, "STEPS")

	var got []string
	for _, row := range ranked {
		got = append(got, row.Mineral)
	}
	sort.Strings(got)
	assert.Equal(t, []string{"Cobalt", "Lithium", "Nickel"}, got)
}

func TestRankRisk_OrderLawOnSubstitutedKeys(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Lithium", Scenario: "STEPS", FirstDeficitYear: iptr(2028), MaxDeficitKT: fptr(-140)},
		{Mineral: "Cobalt", Scenario: "STEPS", FirstDeficitYear: iptr(2031), MaxDeficitKT: fptr(120)},
		{Mineral: "Nickel", Scenario: "STEPS"},
		{Mineral: "Copper", Scenario: "STEPS", FirstDeficitYear: iptr(2044), MaxDeficitKT: fptr(-15)},
		{Mineral: "Graphite", Scenario: "STEPS", FirstDeficitYear: nil, MaxDeficitKT: fptr(-15)},
	}

	ranked := RankRisk(summary, "STEPS")
	require.Len(t, ranked, 5)

	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		dPrev, dCur := deficitKey(prev.SummaryRecord), deficitKey(cur.SummaryRecord)
		if dPrev == dCur {
			assert.LessOrEqual(t, yearKey(prev.SummaryRecord), yearKey(cur.SummaryRecord))
		} else {
			assert.Less(t, dPrev, dCur)
		}
	}
}

func TestRankRisk_UnknownScenario(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Lithium", Scenario: "STEPS"},
	}

	ranked := RankRisk(summary, "SSP5")

	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRankRisk_DoesNotMutateInput(t *testing.T) {
	summary := []model.SummaryRecord{
		{Mineral: "Cobalt", Scenario: "STEPS", MaxDeficitKT: fptr(120)},
		{Mineral: "Lithium", Scenario: "STEPS"},
	}

	_ = RankRisk(summary, "STEPS")

	assert.Equal(t, "Cobalt", summary[0].Mineral)
	assert.Equal(t, "Lithium", summary[1].Mineral)
	assert.Nil(t, summary[1].MaxDeficitKT)
}
