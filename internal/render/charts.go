package render

import (
	"bytes"
	"image/color"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mineral-insights/mineralboard/internal/model"
)

// ErrNoData marks a chart request whose filtered input has no rows. Callers
// show an explicit "not reported" state instead of an empty image.
var ErrNoData = eris.New("render: no data for chart")

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
)

var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

func paletteColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

// SupplyDemandLines draws demand (solid) and supply (dashed) lines per
// scenario for one mineral.
func SupplyDemandLines(series []model.SupplyDemandRecord, mineral string) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = mineral + ": Supply vs Demand"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "kt"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	byScenario := groupSeries(series)
	for i, scenario := range scenarioNames(byScenario) {
		rows := byScenario[scenario]
		demand := make(plotter.XYs, len(rows))
		supply := make(plotter.XYs, len(rows))
		for j, r := range rows {
			demand[j] = plotter.XY{X: float64(r.Year), Y: r.DemandKT}
			supply[j] = plotter.XY{X: float64(r.Year), Y: r.SupplyKT}
		}

		demandLine, err := plotter.NewLine(demand)
		if err != nil {
			return nil, eris.Wrap(err, "render: demand line")
		}
		demandLine.Color = paletteColor(i)
		demandLine.Width = vg.Points(2)
		p.Add(demandLine)
		p.Legend.Add(scenario+" demand", demandLine)

		supplyLine, err := plotter.NewLine(supply)
		if err != nil {
			return nil, eris.Wrap(err, "render: supply line")
		}
		supplyLine.Color = paletteColor(i)
		supplyLine.Width = vg.Points(2)
		supplyLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(supplyLine)
		p.Legend.Add(scenario+" supply", supplyLine)
	}

	return pngBytes(p)
}

// GapBars draws grouped bars of the supply gap by year, one bar per scenario.
// Negative bars are deficits.
func GapBars(series []model.SupplyDemandRecord, mineral string) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	years := seriesYears(series)
	byScenario := groupSeries(series)
	scenarios := scenarioNames(byScenario)

	p := plot.New()
	p.Title.Text = mineral + ": Supply Gap by Year"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Gap (kt)"
	p.Legend.Top = true

	barWidth := vg.Points(18)
	for i, scenario := range scenarios {
		gaps := make(map[int]float64, len(byScenario[scenario]))
		for _, r := range byScenario[scenario] {
			gaps[r.Year] = r.GapKT
		}
		values := make(plotter.Values, len(years))
		for j, y := range years {
			values[j] = gaps[y]
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, eris.Wrap(err, "render: gap bars")
		}
		bars.Color = paletteColor(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(len(scenarios)-1)/2) * barWidth
		p.Add(bars)
		p.Legend.Add(scenario, bars)
	}

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	p.NominalX(labels...)

	return pngBytes(p)
}

// TechArea draws a stacked area of demand by technology. Demand is summed by
// (technology, year) across whatever scenarios the rows carry. Layers are
// cumulative filled lines painted top down, so each band stays visible.
func TechArea(tech []model.TechDemandRecord, baseMineral string) ([]byte, error) {
	if len(tech) == 0 {
		return nil, ErrNoData
	}

	years := techYears(tech)
	totals := make(map[string]map[int]float64)
	for _, r := range tech {
		if totals[r.Technology] == nil {
			totals[r.Technology] = make(map[int]float64)
		}
		totals[r.Technology][r.Year] += r.DemandKT
	}
	techs := make([]string, 0, len(totals))
	for name := range totals {
		techs = append(techs, name)
	}
	sort.Strings(techs)

	p := plot.New()
	p.Title.Text = "Demand by Technology: " + baseMineral
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Demand (kt)"
	p.Legend.Top = true
	p.Legend.Left = true

	layerTops := make([][]float64, len(techs))
	cum := make([]float64, len(years))
	for i, name := range techs {
		tops := make([]float64, len(years))
		for j, y := range years {
			cum[j] += totals[name][y]
			tops[j] = cum[j]
		}
		layerTops[i] = tops
	}

	lines := make([]*plotter.Line, len(techs))
	for i := len(techs) - 1; i >= 0; i-- {
		xys := make(plotter.XYs, len(years))
		for j, y := range years {
			xys[j] = plotter.XY{X: float64(y), Y: layerTops[i][j]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, eris.Wrap(err, "render: technology area")
		}
		line.Color = paletteColor(i)
		line.FillColor = paletteColor(i)
		lines[i] = line
		p.Add(line)
	}
	for i, name := range techs {
		p.Legend.Add(name, lines[i])
	}

	return pngBytes(p)
}

func pngBytes(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, eris.Wrap(err, "render: encode png")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, eris.Wrap(err, "render: write png")
	}
	return buf.Bytes(), nil
}

func groupSeries(series []model.SupplyDemandRecord) map[string][]model.SupplyDemandRecord {
	byScenario := make(map[string][]model.SupplyDemandRecord)
	for _, r := range series {
		byScenario[r.Scenario] = append(byScenario[r.Scenario], r)
	}
	for _, rows := range byScenario {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	}
	return byScenario
}

func scenarioNames(byScenario map[string][]model.SupplyDemandRecord) []string {
	names := make([]string, 0, len(byScenario))
	for name := range byScenario {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func seriesYears(series []model.SupplyDemandRecord) []int {
	seen := make(map[int]bool)
	for _, r := range series {
		seen[r.Year] = true
	}
	return sortedYears(seen)
}

func techYears(tech []model.TechDemandRecord) []int {
	seen := make(map[int]bool)
	for _, r := range tech {
		seen[r.Year] = true
	}
	return sortedYears(seen)
}

func sortedYears(seen map[int]bool) []int {
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
