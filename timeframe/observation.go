// Package timeframe stores an ordered, time-indexed table of observations
// along with features derived from it such as target lags, calendar signature
// columns, and split-aware centered/scaled numeric columns.
package timeframe

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoObservations     = errors.New("no observations")
	ErrNonMonotonicTime   = errors.New("observation timestamps are not strictly increasing")
	ErrDuplicateTimestamp = errors.New("duplicate observation timestamp")
	ErrTimestampGap       = errors.New("observation gap exceeds tolerance")
)

// Observation is a single time-indexed measurement of the target series
// along with any covariate measurements recorded at the same instant.
// Missing covariate measurements may simply be absent from the map.
type Observation struct {
	T          time.Time
	Target     float64
	Covariates map[string]float64
}

// validateObservations checks the frame invariants before any feature
// derivation: strictly increasing timestamps, no duplicates, and no gap
// larger than maxGap. A maxGap of zero disables the gap check.
func validateObservations(obs []Observation, maxGap time.Duration) error {
	if len(obs) == 0 {
		return ErrNoObservations
	}
	for i := 1; i < len(obs); i++ {
		prev := obs[i-1].T
		curr := obs[i].T
		if curr.Equal(prev) {
			return fmt.Errorf("at index %d (%s), %w", i, curr, ErrDuplicateTimestamp)
		}
		if curr.Before(prev) {
			return fmt.Errorf("at index %d (%s), %w", i, curr, ErrNonMonotonicTime)
		}
		if maxGap > 0 {
			if gap := curr.Sub(prev); gap > maxGap {
				return fmt.Errorf("gap of %s at index %d, %w", gap, i, ErrTimestampGap)
			}
		}
	}
	return nil
}
