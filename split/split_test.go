package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWeeklyFolds(t *testing.T) {
	// 1440 hourly training observations, one week of assessment,
	// advancing a week per fold
	opt := &Options{
		InitialWindow: 1440,
		AssessWindow:  168,
		Step:          168,
		MaxSplits:     4,
	}
	splits, err := Generate(2112, opt)
	require.NoError(t, err)
	require.Len(t, splits, 4)

	for i, sp := range splits {
		assert.Equal(t, 1440, sp.Train.Len(), "split %d train window", i)
		assert.Equal(t, 168, sp.Test.Len(), "split %d test window", i)
		// test range starts exactly one period after training ends
		assert.Equal(t, sp.Train.End, sp.Test.Start, "split %d adjacency", i)
		assert.False(t, sp.Train.Overlaps(sp.Test), "split %d disjoint", i)
	}

	// chronologically ordered, non-overlapping test windows covering
	// four consecutive weeks
	for i := 1; i < len(splits); i++ {
		assert.Equal(t, splits[i-1].Test.End, splits[i].Test.Start)
	}
	assert.Equal(t, 1440, splits[0].Test.Start)
	assert.Equal(t, 2112, splits[3].Test.End)
}

func TestGenerateInsufficientData(t *testing.T) {
	opt := &Options{
		InitialWindow: 1440,
		AssessWindow:  168,
		Step:          168,
	}
	splits, err := Generate(1000, opt)
	require.NoError(t, err)
	assert.Empty(t, splits)
}

func TestGenerateNoCap(t *testing.T) {
	opt := &Options{
		InitialWindow: 10,
		AssessWindow:  5,
		Step:          5,
	}
	splits, err := Generate(40, opt)
	require.NoError(t, err)
	// origins 0, 5, 10, 15, 20, 25 all fit a span of 15 within 40
	assert.Len(t, splits, 6)
}

func TestGenerateDeterministic(t *testing.T) {
	opt := &Options{
		InitialWindow: 24,
		AssessWindow:  12,
		Step:          6,
		MaxSplits:     3,
	}
	a, err := Generate(100, opt)
	require.NoError(t, err)
	b, err := Generate(100, opt)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      Options
		expected error
	}{
		"zero train window":  {opt: Options{AssessWindow: 1, Step: 1}, expected: ErrNonPositiveWindow},
		"zero assess window": {opt: Options{InitialWindow: 1, Step: 1}, expected: ErrNonPositiveWindow},
		"zero step":          {opt: Options{InitialWindow: 1, AssessWindow: 1}, expected: ErrNonPositiveStep},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Generate(100, &td.opt)
			assert.ErrorIs(t, err, td.expected)
		})
	}
}
