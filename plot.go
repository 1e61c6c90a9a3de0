package backcast

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNothingToPlot = errors.New("report has no ranked models to plot")

// WritePlot renders an HTML page charting the best-ranked model's point
// forecasts and interval band against the actuals across every fold it
// completed.
func (r *Report) WritePlot(w io.Writer) error {
	best, ok := r.Best()
	if !ok {
		return ErrNothingToPlot
	}

	page := components.NewPage()
	page.AddCharts(lineBand("Best model: "+best.ModelID, r.ModelRecords(best.ModelID)))
	return page.Render(w)
}

// lineBand builds a line chart of actual, forecast, upper, and lower series
// over the records' timestamps. Records without actuals skip that series
// point.
func lineBand(title string, records []ForecastRecord) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	t := make([]time.Time, 0, len(records))
	actual := make([]opts.LineData, 0, len(records))
	forecast := make([]opts.LineData, 0, len(records))
	upper := make([]opts.LineData, 0, len(records))
	lower := make([]opts.LineData, 0, len(records))

	for _, rec := range records {
		t = append(t, rec.T)
		if math.IsNaN(rec.Actual) {
			actual = append(actual, opts.LineData{})
		} else {
			actual = append(actual, opts.LineData{Value: rec.Actual})
		}
		forecast = append(forecast, opts.LineData{Value: rec.Forecast})
		upper = append(upper, opts.LineData{Value: rec.Upper})
		lower = append(lower, opts.LineData{Value: rec.Lower})
	}

	line.SetXAxis(t).
		AddSeries("Actual", actual).
		AddSeries("Forecast", forecast).
		AddSeries("Upper", upper).
		AddSeries("Lower", lower)
	return line
}
