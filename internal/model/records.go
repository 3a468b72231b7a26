package model

// SupplyDemandRecord is one projected year of supply and demand for a
// mineral under a scenario. GapKT is supply minus demand, so a negative
// gap is a deficit.
type SupplyDemandRecord struct {
	Mineral  string  `json:"mineral"`
	Scenario string  `json:"scenario"`
	Year     int     `json:"year"`
	DemandKT float64 `json:"demand_kt"`
	SupplyKT float64 `json:"supply_kt"`
	GapKT    float64 `json:"gap_kt"`
}

// SummaryRecord is the precomputed risk summary for one (mineral, scenario)
// pair. Nil pointer fields mean the source reported no value: no deficit in
// the projection horizon, or the column absent from the file entirely.
type SummaryRecord struct {
	Mineral          string   `json:"mineral"`
	Scenario         string   `json:"scenario"`
	FirstDeficitYear *int     `json:"first_deficit_year"`
	MaxDeficitKT     *float64 `json:"max_deficit_kt"`
	Gap2030KT        *float64 `json:"gap_2030_kt"`
	Gap2040KT        *float64 `json:"gap_2040_kt"`
}

// TechDemandRecord is demand attributed to a single technology. Mineral
// labels here are finer-grained than in the series table (grades, compounds),
// so they are matched by base mineral, not equality.
type TechDemandRecord struct {
	Mineral    string  `json:"mineral"`
	Scenario   string  `json:"scenario"`
	Technology string  `json:"technology"`
	Year       int     `json:"year"`
	DemandKT   float64 `json:"demand_kt"`
}

// RankedSummaryRow is a summary row with its position in the risk ranking
// for one scenario. RiskRank starts at 1; ties keep distinct ranks in file
// order. The embedded fields keep their original values: nil stays nil even
// though the ranking sorted it as zero.
type RankedSummaryRow struct {
	SummaryRecord
	RiskRank int `json:"risk_rank"`
}

// KPISet holds the four headline indicators for the current mineral and
// scenario selection. Each is the minimum of the reported values across the
// selected summary rows; nil means no row reported one.
type KPISet struct {
	FirstDeficitYear *int     `json:"first_deficit_year"`
	MaxDeficitKT     *float64 `json:"max_deficit_kt"`
	Gap2030KT        *float64 `json:"gap_2030_kt"`
	Gap2040KT        *float64 `json:"gap_2040_kt"`
}
