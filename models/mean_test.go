package models

import (
	"math"
	"testing"

	"github.com/forecastlab/backcast/timeframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanBaseline(t *testing.T) {
	target := func(i int) float64 { return float64(i % 5) }
	f := buildFrame(t, 100, &timeframe.Config{}, target, nil)

	adapter := NewMean()
	assert.Nil(t, adapter.Requires())

	fitted, err := adapter.Fit(window(t, f, timeframe.Range{Start: 0, End: 80}))
	require.NoError(t, err)

	pred, err := fitted.Predict(window(t, f, timeframe.Range{Start: 80, End: 100}))
	require.NoError(t, err)
	require.Len(t, pred, 20)
	for _, p := range pred {
		assert.InDelta(t, 2.0, p, 1e-9)
	}
}

func TestMeanSkipsMissingTargets(t *testing.T) {
	target := func(i int) float64 {
		if i%2 == 0 {
			return math.NaN()
		}
		return 4.0
	}
	f := buildFrame(t, 40, &timeframe.Config{}, target, nil)

	fitted, err := NewMean().Fit(window(t, f, timeframe.Range{Start: 0, End: 40}))
	require.NoError(t, err)

	pred, err := fitted.Predict(window(t, f, timeframe.Range{Start: 0, End: 4}))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, pred[0], 1e-9)
}

func TestMeanEmptyHorizon(t *testing.T) {
	f := buildFrame(t, 10, &timeframe.Config{}, func(i int) float64 { return 1 }, nil)
	fitted, err := NewMean().Fit(window(t, f, timeframe.Range{Start: 0, End: 10}))
	require.NoError(t, err)

	_, err = fitted.Predict(window(t, f, timeframe.Range{Start: 5, End: 5}))
	assert.ErrorIs(t, err, ErrEmptyHorizon)
}
