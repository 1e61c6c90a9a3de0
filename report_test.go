package backcast

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/forecastlab/backcast/accuracy"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReport() *Report {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return &Report{
		Records: []ForecastRecord{
			{ModelID: "m1", SplitID: 0, T: base, Forecast: 10, Lower: 8, Upper: 12, Actual: 9.5},
			{ModelID: "m1", SplitID: 0, T: base.Add(time.Hour), Forecast: 11, Lower: 9, Upper: 13, Actual: math.NaN()},
		},
		Folds: []accuracy.Fold{
			{ModelID: "m1", SplitID: 0, N: 1, MAPE: 0.05, RMSE: 0.5, MAE: 0.5},
		},
		Summaries: []accuracy.Summary{
			{ModelID: "m1", Folds: 1, MAPE: 0.05, RMSE: 0.5, MAE: 0.5},
		},
		Failures: []PairFailure{
			{ModelID: "m2", SplitID: -1, Err: ErrFitFailed},
		},
	}
}

func TestWriteJSONNullsMissingActuals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestReport().WriteJSON(&buf))

	var decoded struct {
		Records []struct {
			ModelID  string   `json:"model_id"`
			Forecast float64  `json:"forecast"`
			Actual   *float64 `json:"actual"`
		} `json:"records"`
		Summaries []struct {
			ModelID string  `json:"model_id"`
			RMSE    float64 `json:"rmse"`
		} `json:"summaries"`
		Failures []struct {
			SplitID int    `json:"split_id"`
			Error   string `json:"error"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Records, 2)
	require.NotNil(t, decoded.Records[0].Actual)
	assert.InDelta(t, 9.5, *decoded.Records[0].Actual, 1e-12)
	assert.Nil(t, decoded.Records[1].Actual)

	require.Len(t, decoded.Summaries, 1)
	assert.Equal(t, "m1", decoded.Summaries[0].ModelID)

	require.Len(t, decoded.Failures, 1)
	assert.Equal(t, -1, decoded.Failures[0].SplitID)
	assert.Contains(t, decoded.Failures[0].Error, "fit failed")
}

func TestReportAccessors(t *testing.T) {
	r := newTestReport()

	best, ok := r.Best()
	require.True(t, ok)
	assert.Equal(t, "m1", best.ModelID)

	assert.Len(t, r.ModelRecords("m1"), 2)
	assert.Empty(t, r.ModelRecords("m2"))
	assert.Len(t, r.FoldRecords(0), 2)
	assert.Empty(t, r.FoldRecords(1))
	assert.Len(t, r.ModelFolds("m1"), 1)
}

func TestBestEmptyReport(t *testing.T) {
	r := &Report{}
	_, ok := r.Best()
	assert.False(t, ok)
}

func TestWritePlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestReport().WritePlot(&buf))
	assert.Contains(t, buf.String(), "Best model: m1")
}

func TestWritePlotEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, (&Report{}).WritePlot(&buf), ErrNothingToPlot)
}
