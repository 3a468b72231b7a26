package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readRows decodes one dataset file into a header and data rows.
func readRows(r io.Reader, spec FileSpec) ([]string, [][]string, error) {
	switch spec.Format {
	case "", "csv":
		return readCSVRows(r, spec.Delimiter)
	case "xlsx":
		return readXLSXRows(r, spec.Sheet)
	default:
		return nil, nil, eris.Errorf("dataset: unsupported format %q", spec.Format)
	}
}

func readCSVRows(r io.Reader, delimiter string) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	if delimiter != "" {
		runes := []rune(delimiter)
		if len(runes) != 1 {
			return nil, nil, eris.Errorf("dataset: delimiter must be one character, got %q", delimiter)
		}
		reader.Comma = runes[0]
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("dataset: file is empty")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: read header")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "dataset: read row")
		}
		rows = append(rows, record)
	}

	return header, rows, nil
}

func readXLSXRows(r io.Reader, sheetName string) ([]string, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: read xlsx")
	}

	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, eris.Wrap(err, "dataset: open xlsx")
	}

	var sheet *xlsx.Sheet
	if sheetName != "" {
		s, ok := f.Sheet[sheetName]
		if !ok {
			return nil, nil, eris.Errorf("dataset: sheet %q not found", sheetName)
		}
		sheet = s
	} else {
		if len(f.Sheets) == 0 {
			return nil, nil, eris.New("dataset: xlsx has no sheets")
		}
		sheet = f.Sheets[0]
	}

	if len(sheet.Rows) == 0 {
		return nil, nil, eris.New("dataset: xlsx sheet is empty")
	}

	header := rowStrings(sheet.Rows[0])
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowStrings(row))
	}

	return header, rows, nil
}

func rowStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = c.String()
	}
	return cells
}

// mapColumns builds a case-insensitive column name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// getCol gets a column value by name from a row, empty string if absent.
func getCol(row []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// requireColumns verifies that every named column exists in the header.
func requireColumns(colIdx map[string]int, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := colIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// isNA reports whether a cell value spells out a missing value.
func isNA(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}

// parseFloatCell parses a required numeric cell.
func parseFloatCell(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, eris.Errorf("not a number: %q", s)
	}
	return v, nil
}

// parseOptionalFloat parses an optional numeric cell: NA spellings become
// nil, anything else must parse.
func parseOptionalFloat(s string) (*float64, error) {
	if isNA(s) {
		return nil, nil
	}
	v, err := parseFloatCell(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseYearCell parses an integer year, tolerating float renderings such as
// "2030.0" that spreadsheet exports produce.
func parseYearCell(s string) (int, error) {
	t := strings.TrimSpace(s)
	if y, err := strconv.Atoi(t); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, eris.Errorf("not a year: %q", s)
	}
	return int(f), nil
}

// parseOptionalYear parses an optional integer year cell.
func parseOptionalYear(s string) (*int, error) {
	if isNA(s) {
		return nil, nil
	}
	y, err := parseYearCell(s)
	if err != nil {
		return nil, err
	}
	return &y, nil
}
