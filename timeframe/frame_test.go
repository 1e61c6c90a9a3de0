package timeframe

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyObs(n int, target func(i int) float64, covar func(i int) float64) []Observation {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]Observation, n)
	for i := 0; i < n; i++ {
		obs[i] = Observation{
			T:      start.Add(time.Duration(i) * time.Hour),
			Target: target(i),
			Covariates: map[string]float64{
				"no2": covar(i),
			},
		}
	}
	return obs
}

func TestBuildValidation(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		obs      []Observation
		expected error
	}{
		"empty": {
			obs:      nil,
			expected: ErrNoObservations,
		},
		"duplicate": {
			obs: []Observation{
				{T: start, Target: 1.0},
				{T: start, Target: 2.0},
			},
			expected: ErrDuplicateTimestamp,
		},
		"non-monotonic": {
			obs: []Observation{
				{T: start.Add(time.Hour), Target: 1.0},
				{T: start, Target: 2.0},
			},
			expected: ErrNonMonotonicTime,
		},
		"gap": {
			obs: []Observation{
				{T: start, Target: 1.0},
				{T: start.Add(48 * time.Hour), Target: 2.0},
			},
			expected: ErrTimestampGap,
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Build(td.obs, NewDefaultConfig())
			assert.ErrorIs(t, err, td.expected)
		})
	}
}

func TestBuildLagFeatures(t *testing.T) {
	obs := hourlyObs(48, func(i int) float64 { return float64(i) }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{LagOrders: []int{1, 24}})
	require.NoError(t, err)

	lag1, err := f.column(LagColumn(1))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(lag1[0]))
	assert.Equal(t, 0.0, lag1[1])
	assert.Equal(t, 46.0, lag1[47])

	lag24, err := f.column(LagColumn(24))
	require.NoError(t, err)
	for i := 0; i < 24; i++ {
		assert.True(t, math.IsNaN(lag24[i]), "row %d should be undefined", i)
	}
	assert.Equal(t, 0.0, lag24[24])
	assert.Equal(t, 23.0, lag24[47])
}

func TestBuildCalendarSignature(t *testing.T) {
	obs := hourlyObs(48, func(i int) float64 { return 1.0 }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{Calendar: true})
	require.NoError(t, err)

	hour, err := f.column(ColHourOfDay)
	require.NoError(t, err)
	assert.Equal(t, 0.0, hour[0])
	assert.Equal(t, 23.0, hour[23])
	assert.Equal(t, 0.0, hour[24])

	dow, err := f.column(ColDayOfWeek)
	require.NoError(t, err)
	// 2023-06-01 is a Thursday
	assert.Equal(t, float64(time.Thursday), dow[0])
	assert.Equal(t, float64(time.Friday), dow[24])

	month, err := f.column(ColMonth)
	require.NoError(t, err)
	assert.Equal(t, 6.0, month[0])

	biz, err := f.column(ColBusinessDay)
	require.NoError(t, err)
	assert.Equal(t, 1.0, biz[0])
}

func TestBuildInvalidLagOrder(t *testing.T) {
	obs := hourlyObs(10, func(i int) float64 { return 1.0 }, func(i int) float64 { return 0 })
	_, err := Build(obs, &Config{LagOrders: []int{0}})
	assert.ErrorIs(t, err, ErrInvalidLagOrder)
}

func TestHasColumns(t *testing.T) {
	obs := hourlyObs(10, func(i int) float64 { return 1.0 }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{LagOrders: []int{1}})
	require.NoError(t, err)

	assert.NoError(t, f.HasColumns([]string{"no2", LagColumn(1)}))
	assert.ErrorIs(t, f.HasColumns([]string{"nope"}), ErrUnknownColumn)
}

func TestScalableColumnsExcludeCalendar(t *testing.T) {
	obs := hourlyObs(10, func(i int) float64 { return 1.0 }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{LagOrders: []int{1}, Calendar: true})
	require.NoError(t, err)

	scalable := f.ScalableColumns()
	assert.ElementsMatch(t, []string{"no2", LagColumn(1)}, scalable)
}
