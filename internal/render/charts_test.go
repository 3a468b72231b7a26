package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mineral-insights/mineralboard/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func chartSeries() []model.SupplyDemandRecord {
	return []model.SupplyDemandRecord{
		{Mineral: "Lithium", Scenario: "STEPS", Year: 2025, DemandKT: 500, SupplyKT: 520, GapKT: 20},
		{Mineral: "Lithium", Scenario: "STEPS", Year: 2030, DemandKT: 950, SupplyKT: 820, GapKT: -130},
		{Mineral: "Lithium", Scenario: "STEPS", Year: 2040, DemandKT: 1400, SupplyKT: 1100, GapKT: -300},
		{Mineral: "Lithium", Scenario: "NZE", Year: 2030, DemandKT: 1200, SupplyKT: 820, GapKT: -380},
		{Mineral: "Lithium", Scenario: "NZE", Year: 2040, DemandKT: 2100, SupplyKT: 1100, GapKT: -1000},
	}
}

func chartTech() []model.TechDemandRecord {
	return []model.TechDemandRecord{
		{Mineral: "Lithium", Scenario: "STEPS", Technology: "EV batteries", Year: 2030, DemandKT: 600},
		{Mineral: "Lithium", Scenario: "STEPS", Technology: "EV batteries", Year: 2040, DemandKT: 1000},
		{Mineral: "Lithium", Scenario: "STEPS", Technology: "Grid storage", Year: 2030, DemandKT: 150},
		{Mineral: "Lithium", Scenario: "STEPS", Technology: "Grid storage", Year: 2040, DemandKT: 280},
		{Mineral: "Lithium", Scenario: "NZE", Technology: "EV batteries", Year: 2030, DemandKT: 800},
	}
}

func TestSupplyDemandLines_RendersPNG(t *testing.T) {
	png, err := SupplyDemandLines(chartSeries(), "Lithium")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, pngMagic, png[:4])
}

func TestSupplyDemandLines_NoData(t *testing.T) {
	_, err := SupplyDemandLines(nil, "Lithium")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGapBars_RendersPNG(t *testing.T) {
	png, err := GapBars(chartSeries(), "Lithium")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, pngMagic, png[:4])
}

func TestGapBars_NoData(t *testing.T) {
	_, err := GapBars([]model.SupplyDemandRecord{}, "Lithium")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTechArea_RendersPNG(t *testing.T) {
	png, err := TechArea(chartTech(), "Lithium")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, pngMagic, png[:4])
}

func TestTechArea_NoData(t *testing.T) {
	_, err := TechArea(nil, "Lithium")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTechArea_SumsScenarios(t *testing.T) {
	// Two scenarios for EV batteries in 2030 must not break rendering; the
	// layer sums them into one band.
	png, err := TechArea(chartTech(), "Lithium")
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestSeriesYears_SortedDistinct(t *testing.T) {
	years := seriesYears(chartSeries())
	assert.Equal(t, []int{2025, 2030, 2040}, years)
}
