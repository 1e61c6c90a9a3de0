package accuracy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFoldMetrics(t *testing.T) {
	actual := []float64{10, 20, 40}
	predicted := []float64{12, 18, 44}

	fold, err := NewFold("m", 0, predicted, actual)
	require.NoError(t, err)

	assert.Equal(t, 3, fold.N)
	// |2/10| + |2/20| + |4/40| over 3
	assert.InDelta(t, 0.4/3.0, fold.MAPE, 1e-12)
	assert.InDelta(t, math.Sqrt(24.0/3.0), fold.RMSE, 1e-12)
	assert.InDelta(t, 8.0/3.0, fold.MAE, 1e-12)
}

func TestNewFoldZeroActualsExcludedFromMAPE(t *testing.T) {
	actual := []float64{0, 0, 10}
	predicted := []float64{1, 1, 11}

	fold, err := NewFold("m", 0, predicted, actual)
	require.NoError(t, err)

	assert.Equal(t, 3, fold.N)
	assert.InDelta(t, 0.1, fold.MAPE, 1e-12)
}

func TestNewFoldAllZeroActuals(t *testing.T) {
	fold, err := NewFold("m", 0, []float64{1, 2}, []float64{0, 0})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(fold.MAPE))
	assert.False(t, math.IsNaN(fold.RMSE))
}

func TestNewFoldSkipsNaNPoints(t *testing.T) {
	actual := []float64{math.NaN(), 10}
	predicted := []float64{5, 10}

	fold, err := NewFold("m", 1, predicted, actual)
	require.NoError(t, err)
	assert.Equal(t, 1, fold.N)
	assert.Zero(t, fold.RMSE)
	assert.Zero(t, fold.MAPE)
}

func TestNewFoldErrors(t *testing.T) {
	_, err := NewFold("m", 0, []float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrResLenMismatch)

	_, err = NewFold("m", 0, []float64{math.NaN()}, []float64{1})
	assert.ErrorIs(t, err, ErrNoValidPoints)
}

func TestAggregateMeansAndRanking(t *testing.T) {
	folds := []Fold{
		{ModelID: "worse", SplitID: 0, N: 10, MAPE: 0.30, RMSE: 3.0, MAE: 2.0},
		{ModelID: "worse", SplitID: 1, N: 10, MAPE: 0.50, RMSE: 5.0, MAE: 4.0},
		{ModelID: "better", SplitID: 0, N: 10, MAPE: 0.10, RMSE: 1.0, MAE: 0.5},
		{ModelID: "better", SplitID: 1, N: 10, MAPE: 0.20, RMSE: 2.0, MAE: 1.5},
	}

	summaries := Aggregate(folds)
	require.Len(t, summaries, 2)

	assert.Equal(t, "better", summaries[0].ModelID)
	assert.Equal(t, 2, summaries[0].Folds)
	assert.InDelta(t, 1.5, summaries[0].RMSE, 1e-12)
	assert.InDelta(t, 0.15, summaries[0].MAPE, 1e-12)
	assert.InDelta(t, 1.0, summaries[0].MAE, 1e-12)

	assert.Equal(t, "worse", summaries[1].ModelID)
	assert.InDelta(t, 4.0, summaries[1].RMSE, 1e-12)
}

func TestAggregateMAPESkipsNaNFolds(t *testing.T) {
	folds := []Fold{
		{ModelID: "m", SplitID: 0, MAPE: math.NaN(), RMSE: 1.0},
		{ModelID: "m", SplitID: 1, MAPE: 0.2, RMSE: 1.0},
	}

	summaries := Aggregate(folds)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Folds)
	assert.InDelta(t, 0.2, summaries[0].MAPE, 1e-12)
}

func TestAggregateRMSETieBrokenByMAPE(t *testing.T) {
	folds := []Fold{
		{ModelID: "nan-mape", MAPE: math.NaN(), RMSE: 2.0},
		{ModelID: "high-mape", MAPE: 0.9, RMSE: 2.0},
		{ModelID: "low-mape", MAPE: 0.1, RMSE: 2.0},
	}

	summaries := Aggregate(folds)
	require.Len(t, summaries, 3)
	assert.Equal(t, "low-mape", summaries[0].ModelID)
	assert.Equal(t, "high-mape", summaries[1].ModelID)
	assert.Equal(t, "nan-mape", summaries[2].ModelID)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestDegenerateBaselinePerfectFit(t *testing.T) {
	// a constant forecast over constant actuals is a zero error fold
	actual := []float64{5, 5, 5}
	fold, err := NewFold("mean", 0, []float64{5, 5, 5}, actual)
	require.NoError(t, err)
	assert.Zero(t, fold.RMSE)
	assert.Zero(t, fold.MAE)
	assert.Zero(t, fold.MAPE)
}
