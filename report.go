package backcast

import (
	"io"
	"math"
	"time"

	"github.com/forecastlab/backcast/accuracy"
	"github.com/goccy/go-json"
)

// Report assembles everything a run produced: flattened forecast records,
// per-fold metrics, the cross-fold summaries in ranked order, and the pairs
// that failed. It is a read-only result structure; downstream presentation
// and export consume it without further computation.
type Report struct {
	Records   []ForecastRecord
	Folds     []accuracy.Fold
	Summaries []accuracy.Summary
	Failures  []PairFailure
}

// Best returns the top-ranked model summary, ordered by ascending mean RMSE
// with MAPE breaking ties. ok is false when no model completed any fold.
func (r *Report) Best() (accuracy.Summary, bool) {
	if len(r.Summaries) == 0 {
		return accuracy.Summary{}, false
	}
	return r.Summaries[0], true
}

// ModelRecords returns all of one model's forecast records across folds in
// chronological order per fold.
func (r *Report) ModelRecords(modelID string) []ForecastRecord {
	var out []ForecastRecord
	for _, rec := range r.Records {
		if rec.ModelID == modelID {
			out = append(out, rec)
		}
	}
	return out
}

// FoldRecords returns every model's forecast records for one fold.
func (r *Report) FoldRecords(splitID int) []ForecastRecord {
	var out []ForecastRecord
	for _, rec := range r.Records {
		if rec.SplitID == splitID {
			out = append(out, rec)
		}
	}
	return out
}

// ModelFolds returns one model's per-fold metrics.
func (r *Report) ModelFolds(modelID string) []accuracy.Fold {
	var out []accuracy.Fold
	for _, f := range r.Folds {
		if f.ModelID == modelID {
			out = append(out, f)
		}
	}
	return out
}

// recordExport mirrors ForecastRecord with a nullable actual so records
// without observed values survive JSON encoding.
type recordExport struct {
	ModelID  string    `json:"model_id"`
	SplitID  int       `json:"split_id"`
	T        time.Time `json:"timestamp"`
	Forecast float64   `json:"forecast"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
	Actual   *float64  `json:"actual"`
}

type summaryExport struct {
	ModelID string   `json:"model_id"`
	Folds   int      `json:"folds"`
	MAPE    *float64 `json:"mape"`
	RMSE    float64  `json:"rmse"`
	MAE     float64  `json:"mae"`
}

type foldExport struct {
	ModelID string   `json:"model_id"`
	SplitID int      `json:"split_id"`
	N       int      `json:"n"`
	MAPE    *float64 `json:"mape"`
	RMSE    float64  `json:"rmse"`
	MAE     float64  `json:"mae"`
}

type failureExport struct {
	ModelID string `json:"model_id"`
	SplitID int    `json:"split_id"`
	Error   string `json:"error"`
}

type reportExport struct {
	Records   []recordExport  `json:"records"`
	Folds     []foldExport    `json:"folds"`
	Summaries []summaryExport `json:"summaries"`
	Failures  []failureExport `json:"failures"`
}

// WriteJSON streams the flattened report for external consumers.
func (r *Report) WriteJSON(w io.Writer) error {
	exp := reportExport{
		Records:   make([]recordExport, 0, len(r.Records)),
		Folds:     make([]foldExport, 0, len(r.Folds)),
		Summaries: make([]summaryExport, 0, len(r.Summaries)),
		Failures:  make([]failureExport, 0, len(r.Failures)),
	}
	for _, rec := range r.Records {
		exp.Records = append(exp.Records, recordExport{
			ModelID:  rec.ModelID,
			SplitID:  rec.SplitID,
			T:        rec.T,
			Forecast: rec.Forecast,
			Lower:    rec.Lower,
			Upper:    rec.Upper,
			Actual:   nullable(rec.Actual),
		})
	}
	for _, f := range r.Folds {
		exp.Folds = append(exp.Folds, foldExport{
			ModelID: f.ModelID,
			SplitID: f.SplitID,
			N:       f.N,
			MAPE:    nullable(f.MAPE),
			RMSE:    f.RMSE,
			MAE:     f.MAE,
		})
	}
	for _, s := range r.Summaries {
		exp.Summaries = append(exp.Summaries, summaryExport{
			ModelID: s.ModelID,
			Folds:   s.Folds,
			MAPE:    nullable(s.MAPE),
			RMSE:    s.RMSE,
			MAE:     s.MAE,
		})
	}
	for _, f := range r.Failures {
		exp.Failures = append(exp.Failures, failureExport{
			ModelID: f.ModelID,
			SplitID: f.SplitID,
			Error:   f.Err.Error(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exp)
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
