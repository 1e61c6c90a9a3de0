// Package accuracy computes per-fold forecast error metrics and reduces
// them across folds into per-model summaries and a ranking.
package accuracy

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoValidPoints  = errors.New("no records with usable actuals")
)

// Fold holds one model's error metrics over a single fold. MAPE is NaN when
// every actual in the fold is zero; such folds are skipped in the MAPE
// cross-fold mean.
type Fold struct {
	ModelID string  `json:"model_id"`
	SplitID int     `json:"split_id"`
	N       int     `json:"n"`
	MAPE    float64 `json:"mape"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
}

// Summary is a model's cross-fold mean metrics over the folds where it
// produced records. Models with no successful folds never get a summary.
type Summary struct {
	ModelID string  `json:"model_id"`
	Folds   int     `json:"folds"`
	MAPE    float64 `json:"mape"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
}

// NewFold computes the fold metrics from aligned predicted and actual
// slices. Points with a NaN actual or prediction are excluded; a fold with
// no usable points is an error so it never enters aggregation.
func NewFold(modelID string, splitID int, predicted, actual []float64) (Fold, error) {
	if len(predicted) != len(actual) {
		return Fold{}, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	var (
		sqSum  float64
		absSum float64
		n      int
		pctSum float64
		pctN   int
	)
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		diff := actual[i] - predicted[i]
		sqSum += diff * diff
		absSum += math.Abs(diff)
		n++
		if actual[i] != 0 {
			pctSum += math.Abs(diff / actual[i])
			pctN++
		}
	}
	if n == 0 {
		return Fold{}, ErrNoValidPoints
	}

	mape := math.NaN()
	if pctN > 0 {
		mape = pctSum / float64(pctN)
	}
	return Fold{
		ModelID: modelID,
		SplitID: splitID,
		N:       n,
		MAPE:    mape,
		RMSE:    math.Sqrt(sqSum / float64(n)),
		MAE:     absSum / float64(n),
	}, nil
}

// Aggregate reduces fold metrics into per-model summaries, ranked by
// ascending mean RMSE with ties broken by ascending mean MAPE. Only folds a
// model actually completed contribute to its means; failed folds were never
// recorded as Folds and so cannot drag an average toward zero.
func Aggregate(folds []Fold) []Summary {
	type acc struct {
		rmse, mae float64
		mape      float64
		mapeFolds int
		folds     int
	}
	byModel := make(map[string]*acc)
	var order []string
	for _, f := range folds {
		a, ok := byModel[f.ModelID]
		if !ok {
			a = &acc{}
			byModel[f.ModelID] = a
			order = append(order, f.ModelID)
		}
		a.rmse += f.RMSE
		a.mae += f.MAE
		a.folds++
		if !math.IsNaN(f.MAPE) {
			a.mape += f.MAPE
			a.mapeFolds++
		}
	}

	summaries := make([]Summary, 0, len(byModel))
	for _, id := range order {
		a := byModel[id]
		mape := math.NaN()
		if a.mapeFolds > 0 {
			mape = a.mape / float64(a.mapeFolds)
		}
		summaries = append(summaries, Summary{
			ModelID: id,
			Folds:   a.folds,
			MAPE:    mape,
			RMSE:    a.rmse / float64(a.folds),
			MAE:     a.mae / float64(a.folds),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].RMSE != summaries[j].RMSE {
			return summaries[i].RMSE < summaries[j].RMSE
		}
		mi, mj := summaries[i].MAPE, summaries[j].MAPE
		switch {
		case math.IsNaN(mi):
			return false
		case math.IsNaN(mj):
			return true
		default:
			return mi < mj
		}
	})
	return summaries
}
