package dataset

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mineral-insights/mineralboard/internal/model"
)

// Required columns per table. The summary's numeric columns are optional:
// a file without them still loads, with every field nil.
var (
	seriesColumns  = []string{"mineral", "scenario", "year", "demand_kt", "supply_kt", "gap_kt"}
	summaryColumns = []string{"mineral", "scenario"}
	techColumns    = []string{"mineral", "scenario", "technology", "year", "demand_kt"}
)

func rowErr(dataset, path string, row int, err error) *LoadError {
	return &LoadError{Dataset: dataset, Path: path, Row: row, Err: err}
}

func parseSeriesTable(path string, header []string, rows [][]string) ([]model.SupplyDemandRecord, error) {
	colIdx := mapColumns(header)
	if err := requireColumns(colIdx, seriesColumns...); err != nil {
		return nil, &LoadError{Dataset: NameSeries, Path: path, Err: err}
	}

	records := make([]model.SupplyDemandRecord, 0, len(rows))
	for i, row := range rows {
		fileRow := i + 2 // header is row 1

		year, err := parseYearCell(getCol(row, colIdx, "year"))
		if err != nil {
			return nil, rowErr(NameSeries, path, fileRow, eris.Wrap(err, "year"))
		}
		demand, err := parseFloatCell(getCol(row, colIdx, "demand_kt"))
		if err != nil {
			return nil, rowErr(NameSeries, path, fileRow, eris.Wrap(err, "demand_kt"))
		}
		supply, err := parseFloatCell(getCol(row, colIdx, "supply_kt"))
		if err != nil {
			return nil, rowErr(NameSeries, path, fileRow, eris.Wrap(err, "supply_kt"))
		}
		gap, err := parseFloatCell(getCol(row, colIdx, "gap_kt"))
		if err != nil {
			return nil, rowErr(NameSeries, path, fileRow, eris.Wrap(err, "gap_kt"))
		}

		records = append(records, model.SupplyDemandRecord{
			Mineral:  strings.TrimSpace(getCol(row, colIdx, "mineral")),
			Scenario: strings.TrimSpace(getCol(row, colIdx, "scenario")),
			Year:     year,
			DemandKT: demand,
			SupplyKT: supply,
			GapKT:    gap,
		})
	}

	return records, nil
}

func parseSummaryTable(path string, header []string, rows [][]string) ([]model.SummaryRecord, error) {
	colIdx := mapColumns(header)
	if err := requireColumns(colIdx, summaryColumns...); err != nil {
		return nil, &LoadError{Dataset: NameSummary, Path: path, Err: err}
	}

	_, hasFirstYear := colIdx["first_deficit_year"]
	_, hasMaxDeficit := colIdx["max_deficit_kt"]
	_, hasGap2030 := colIdx["gap_2030_kt"]
	_, hasGap2040 := colIdx["gap_2040_kt"]

	records := make([]model.SummaryRecord, 0, len(rows))
	for i, row := range rows {
		fileRow := i + 2

		rec := model.SummaryRecord{
			Mineral:  strings.TrimSpace(getCol(row, colIdx, "mineral")),
			Scenario: strings.TrimSpace(getCol(row, colIdx, "scenario")),
		}

		var err error
		if hasFirstYear {
			rec.FirstDeficitYear, err = parseOptionalYear(getCol(row, colIdx, "first_deficit_year"))
			if err != nil {
				return nil, rowErr(NameSummary, path, fileRow, eris.Wrap(err, "first_deficit_year"))
			}
		}
		if hasMaxDeficit {
			rec.MaxDeficitKT, err = parseOptionalFloat(getCol(row, colIdx, "max_deficit_kt"))
			if err != nil {
				return nil, rowErr(NameSummary, path, fileRow, eris.Wrap(err, "max_deficit_kt"))
			}
		}
		if hasGap2030 {
			rec.Gap2030KT, err = parseOptionalFloat(getCol(row, colIdx, "gap_2030_kt"))
			if err != nil {
				return nil, rowErr(NameSummary, path, fileRow, eris.Wrap(err, "gap_2030_kt"))
			}
		}
		if hasGap2040 {
			rec.Gap2040KT, err = parseOptionalFloat(getCol(row, colIdx, "gap_2040_kt"))
			if err != nil {
				return nil, rowErr(NameSummary, path, fileRow, eris.Wrap(err, "gap_2040_kt"))
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

func parseTechTable(path string, header []string, rows [][]string) ([]model.TechDemandRecord, error) {
	colIdx := mapColumns(header)
	if err := requireColumns(colIdx, techColumns...); err != nil {
		return nil, &LoadError{Dataset: NameTech, Path: path, Err: err}
	}

	records := make([]model.TechDemandRecord, 0, len(rows))
	for i, row := range rows {
		fileRow := i + 2

		year, err := parseYearCell(getCol(row, colIdx, "year"))
		if err != nil {
			return nil, rowErr(NameTech, path, fileRow, eris.Wrap(err, "year"))
		}
		demand, err := parseFloatCell(getCol(row, colIdx, "demand_kt"))
		if err != nil {
			return nil, rowErr(NameTech, path, fileRow, eris.Wrap(err, "demand_kt"))
		}

		records = append(records, model.TechDemandRecord{
			Mineral:    strings.TrimSpace(getCol(row, colIdx, "mineral")),
			Scenario:   strings.TrimSpace(getCol(row, colIdx, "scenario")),
			Technology: strings.TrimSpace(getCol(row, colIdx, "technology")),
			Year:       year,
			DemandKT:   demand,
		})
	}

	return records, nil
}
