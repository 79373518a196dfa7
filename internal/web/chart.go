package web

import (
	"bytes"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/fuelcast/dataset"
	"github.com/ezoic/fuelcast/forecast"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch

	// chartSteps is the number of segments in the prediction line.
	chartSteps = 60
)

// renderChart draws the observed prices of fuel in district and the model's
// prediction line from the first observation up to until, as PNG.
func renderChart(m *forecast.Model, until time.Time, district string, ft dataset.FuelType) ([]byte, error) {
	p := plot.New()
	p.Title.Text = ft.String() + " prices in " + district
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Price (₹)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	p.Add(plotter.NewGrid())

	observed := m.Observations(district, ft)
	start, _ := m.History.DateRange()
	if len(observed) > 0 {
		start = observed[0].Date
		for _, r := range observed {
			if r.Date.Before(start) {
				start = r.Date
			}
		}
	}
	if until.Before(start) {
		start, until = until, start
	}

	if len(observed) > 0 {
		pts := make(plotter.XYs, len(observed))
		for i, r := range observed {
			pts[i].X = float64(r.Date.Unix())
			pts[i].Y = r.Price
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Color = color.RGBA{R: 33, G: 150, B: 243, A: 255}
		p.Add(scatter)
		p.Legend.Add("observed", scatter)
	}

	dates := make([]time.Time, chartSteps+1)
	step := until.Sub(start) / chartSteps
	for i := range dates {
		dates[i] = start.Add(step * time.Duration(i))
	}
	prices, err := m.Pipeline.PredictSeries(dates, district, ft.String())
	if err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, len(dates))
	for i, d := range dates {
		pts[i].X = float64(d.Unix())
		pts[i].Y = prices[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(2)
	line.Color = color.RGBA{R: 229, G: 57, B: 53, A: 255}
	line.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	p.Add(line)
	p.Legend.Add("model ("+string(m.Pipeline.Mode())+" fit)", line)
	p.Legend.Top = true

	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
