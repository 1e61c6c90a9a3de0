package timeframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowDesignExcludesUndefinedRows(t *testing.T) {
	obs := hourlyObs(30, func(i int) float64 { return float64(i) }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{LagOrders: []int{3}})
	require.NoError(t, err)

	win, err := f.Window(Range{Start: 0, End: 30}, nil)
	require.NoError(t, err)

	x, y, times, err := win.Design([]string{LagColumn(3)})
	require.NoError(t, err)

	// the first 3 rows have no lag value and are excluded, not imputed
	rows, _ := x.Dims()
	assert.Equal(t, 27, rows)
	assert.Len(t, y, 27)
	assert.Equal(t, 3.0, y[0])
	assert.Equal(t, 0.0, x.At(0, 0))
	assert.Equal(t, obs[3].T, times[0])
}

func TestWindowColumnUnknown(t *testing.T) {
	obs := hourlyObs(10, func(i int) float64 { return 1.0 }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{})
	require.NoError(t, err)

	win, err := f.Window(Range{Start: 0, End: 10}, nil)
	require.NoError(t, err)

	_, err = win.Column("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestWindowOutOfBounds(t *testing.T) {
	obs := hourlyObs(10, func(i int) float64 { return 1.0 }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{})
	require.NoError(t, err)

	_, err = f.Window(Range{Start: 0, End: 11}, nil)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestWindowAllRowsUndefined(t *testing.T) {
	obs := hourlyObs(5, func(i int) float64 { return 1.0 }, func(i int) float64 { return 0 })
	f, err := Build(obs, &Config{LagOrders: []int{4}})
	require.NoError(t, err)

	win, err := f.Window(Range{Start: 0, End: 4}, nil)
	require.NoError(t, err)

	_, _, _, err = win.Design([]string{LagColumn(4)})
	assert.ErrorIs(t, err, ErrNoUsableRows)
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Start: 2, End: 5}
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.True(t, r.Overlaps(Range{Start: 4, End: 6}))
	assert.False(t, r.Overlaps(Range{Start: 5, End: 7}))
}
