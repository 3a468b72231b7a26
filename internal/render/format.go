// Package render turns pipeline results into presentation artifacts: display
// strings with locale-aware number formatting and PNG charts.
package render

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mineral-insights/mineralboard/internal/model"
)

var printer = message.NewPrinter(language.English)

// KT formats a tonnage value with thousands separators, e.g. "1,400".
func KT(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// OptionalKT formats an optional tonnage value. A missing value reads as "0":
// no deficit on record means nothing owed.
func OptionalKT(v *float64) string {
	if v == nil {
		return "0"
	}
	return KT(*v)
}

// DeficitYear formats an optional first-deficit year.
func DeficitYear(y *int) string {
	if y == nil {
		return "No deficit"
	}
	return strconv.Itoa(*y)
}

// KPIDisplay is the display rendering of a KPI set, one string per card.
type KPIDisplay struct {
	FirstDeficitYear string `json:"first_deficit_year"`
	MaxDeficitKT     string `json:"max_deficit_kt"`
	Gap2030KT        string `json:"gap_2030_kt"`
	Gap2040KT        string `json:"gap_2040_kt"`
}

// FormatKPIs renders a KPI set for display. The underlying values keep their
// nils; only the rendering substitutes "No deficit" and "0".
func FormatKPIs(k model.KPISet) KPIDisplay {
	return KPIDisplay{
		FirstDeficitYear: DeficitYear(k.FirstDeficitYear),
		MaxDeficitKT:     OptionalKT(k.MaxDeficitKT),
		Gap2030KT:        OptionalKT(k.Gap2030KT),
		Gap2040KT:        OptionalKT(k.Gap2040KT),
	}
}
