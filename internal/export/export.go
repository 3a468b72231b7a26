// Package export renders pipeline results into downloadable artifacts: an
// xlsx workbook and a flat CSV. Both keep missing values visibly missing
// (blank cells, empty strings) rather than substituting zeros.
package export

import (
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/mineral-insights/mineralboard/internal/model"
	"github.com/mineral-insights/mineralboard/internal/pipeline"
	"github.com/mineral-insights/mineralboard/internal/render"
)

const (
	sheetRanking = "Risk Ranking"
	sheetKPIs    = "KPIs"
	sheetSeries  = "Time Series"
)

// RankingWorkbook builds an xlsx with three sheets: the risk ranking, the KPI
// cards for the selected mineral, and the filtered time series.
func RankingWorkbook(result pipeline.Result) ([]byte, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetRanking)

	w := &sheetWriter{f: f, sheet: sheetRanking}
	w.setRow(1, "Rank", "Mineral", "Scenario", "First Deficit Year", "Max Deficit (kt)", "Gap 2030 (kt)", "Gap 2040 (kt)")
	for i, row := range result.Ranking {
		r := i + 2
		w.set(1, r, row.RiskRank)
		w.set(2, r, row.Mineral)
		w.set(3, r, row.Scenario)
		w.setOptionalInt(4, r, row.FirstDeficitYear)
		w.setOptionalFloat(5, r, row.MaxDeficitKT)
		w.setOptionalFloat(6, r, row.Gap2030KT)
		w.setOptionalFloat(7, r, row.Gap2040KT)
	}
	w.colWidth("A", "G", 18)

	if _, err := f.NewSheet(sheetKPIs); err != nil {
		return nil, eris.Wrap(err, "export: add kpi sheet")
	}
	kpis := render.FormatKPIs(result.KPIs)
	w = &sheetWriter{f: f, sheet: sheetKPIs}
	w.setRow(1, "Mineral", result.Params.Mineral)
	w.setRow(2, "Scenarios", strings.Join(result.Params.Scenarios, ", "))
	w.setRow(3, "Ranking Scenario", result.Params.RankScenario)
	w.setRow(5, "Indicator", "Value")
	w.setRow(6, "First Deficit Year", kpis.FirstDeficitYear)
	w.setRow(7, "Max Deficit (kt)", kpis.MaxDeficitKT)
	w.setRow(8, "Gap 2030 (kt)", kpis.Gap2030KT)
	w.setRow(9, "Gap 2040 (kt)", kpis.Gap2040KT)
	w.colWidth("A", "B", 22)

	if _, err := f.NewSheet(sheetSeries); err != nil {
		return nil, eris.Wrap(err, "export: add series sheet")
	}
	w = &sheetWriter{f: f, sheet: sheetSeries}
	w.setRow(1, "Mineral", "Scenario", "Year", "Demand (kt)", "Supply (kt)", "Gap (kt)")
	for i, rec := range result.Series {
		r := i + 2
		w.set(1, r, rec.Mineral)
		w.set(2, r, rec.Scenario)
		w.set(3, r, rec.Year)
		w.set(4, r, rec.DemandKT)
		w.set(5, r, rec.SupplyKT)
		w.set(6, r, rec.GapKT)
	}
	w.colWidth("A", "F", 14)

	if w.err != nil {
		return nil, eris.Wrap(w.err, "export: build workbook")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, eris.Wrap(err, "export: write workbook")
	}
	return buf.Bytes(), nil
}

// rankingRow is the flat CSV shape of one ranking entry. Pointer fields
// marshal to empty strings when nil.
type rankingRow struct {
	Rank             int      `csv:"rank"`
	Mineral          string   `csv:"mineral"`
	Scenario         string   `csv:"scenario"`
	FirstDeficitYear *int     `csv:"first_deficit_year"`
	MaxDeficitKT     *float64 `csv:"max_deficit_kt"`
	Gap2030KT        *float64 `csv:"gap_2030_kt"`
	Gap2040KT        *float64 `csv:"gap_2040_kt"`
}

// RankingCSV renders the ranking as CSV with a header row.
func RankingCSV(ranking []model.RankedSummaryRow) ([]byte, error) {
	rows := make([]rankingRow, len(ranking))
	for i, r := range ranking {
		rows[i] = rankingRow{
			Rank:             r.RiskRank,
			Mineral:          r.Mineral,
			Scenario:         r.Scenario,
			FirstDeficitYear: r.FirstDeficitYear,
			MaxDeficitKT:     r.MaxDeficitKT,
			Gap2030KT:        r.Gap2030KT,
			Gap2040KT:        r.Gap2040KT,
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal ranking csv")
	}
	return data, nil
}

// sheetWriter batches cell writes to one sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) setRow(row int, values ...any) {
	for i, v := range values {
		w.set(i+1, row, v)
	}
}

func (w *sheetWriter) setOptionalInt(col, row int, v *int) {
	if v == nil {
		return
	}
	w.set(col, row, *v)
}

func (w *sheetWriter) setOptionalFloat(col, row int, v *float64) {
	if v == nil {
		return
	}
	w.set(col, row, *v)
}

func (w *sheetWriter) colWidth(from, to string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(w.sheet, from, to, width)
}
