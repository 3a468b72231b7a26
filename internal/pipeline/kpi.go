package pipeline

import (
	"github.com/mineral-insights/mineralboard/internal/model"
)

// ComputeKPIs returns the four headline indicators over the filtered summary
// rows. Each indicator is the minimum of the values present for it: deficits
// are stored as negative gaps, so the minimum is the most severe case, and
// the earliest deficit year is the soonest trouble. A field nobody reports
// stays nil. Zero input rows give all-nil KPIs, never an error.
func ComputeKPIs(rows []model.SummaryRecord) model.KPISet {
	var kpis model.KPISet
	for _, r := range rows {
		kpis.FirstDeficitYear = minIntPtr(kpis.FirstDeficitYear, r.FirstDeficitYear)
		kpis.MaxDeficitKT = minFloatPtr(kpis.MaxDeficitKT, r.MaxDeficitKT)
		kpis.Gap2030KT = minFloatPtr(kpis.Gap2030KT, r.Gap2030KT)
		kpis.Gap2040KT = minFloatPtr(kpis.Gap2040KT, r.Gap2040KT)
	}
	return kpis
}

// minIntPtr folds v into the running minimum, ignoring nils. The result is
// a fresh pointer so KPI values never alias snapshot rows.
func minIntPtr(cur, v *int) *int {
	if v == nil {
		return cur
	}
	if cur == nil || *v < *cur {
		val := *v
		return &val
	}
	return cur
}

func minFloatPtr(cur, v *float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v < *cur {
		val := *v
		return &val
	}
	return cur
}
