// Package split generates rolling-origin cross-validation folds: fixed-size
// training and assessment windows that advance forward in time by a fixed
// step, preserving temporal order.
package split

import (
	"errors"
	"fmt"

	"github.com/forecastlab/backcast/timeframe"
)

var (
	ErrNonPositiveWindow = errors.New("window size must be positive")
	ErrNonPositiveStep   = errors.New("step must be positive")
)

// Split is one fold: two disjoint contiguous index ranges with the training
// range entirely preceding the test range. The test range begins immediately
// after the training range ends.
type Split struct {
	Train timeframe.Range
	Test  timeframe.Range
}

// Options configures fold generation.
type Options struct {
	// InitialWindow is the number of training observations per fold.
	InitialWindow int

	// AssessWindow is the number of test observations per fold.
	AssessWindow int

	// Step is how many observations each fold's origin advances by.
	Step int

	// MaxSplits caps the number of folds. Zero or negative means no cap.
	MaxSplits int
}

// Validate checks the window and step sizes.
func (o *Options) Validate() error {
	if o.InitialWindow <= 0 {
		return fmt.Errorf("initial window %d, %w", o.InitialWindow, ErrNonPositiveWindow)
	}
	if o.AssessWindow <= 0 {
		return fmt.Errorf("assess window %d, %w", o.AssessWindow, ErrNonPositiveWindow)
	}
	if o.Step <= 0 {
		return fmt.Errorf("step %d, %w", o.Step, ErrNonPositiveStep)
	}
	return nil
}

// Generate produces the fold sequence for a frame of n observations. The
// first training window starts at index 0; each subsequent origin advances
// by Step. Generation stops when the train+test span would run past n or
// MaxSplits is reached. If even the first span does not fit, the result is
// an empty slice, not an error. Identical inputs always yield identical
// boundaries.
func Generate(n int, opt *Options) ([]Split, error) {
	if opt == nil {
		return nil, errors.New("no split options")
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	span := opt.InitialWindow + opt.AssessWindow
	var splits []Split
	for origin := 0; origin+span <= n; origin += opt.Step {
		if opt.MaxSplits > 0 && len(splits) >= opt.MaxSplits {
			break
		}
		trainEnd := origin + opt.InitialWindow
		splits = append(splits, Split{
			Train: timeframe.Range{Start: origin, End: trainEnd},
			Test:  timeframe.Range{Start: trainEnd, End: trainEnd + opt.AssessWindow},
		})
	}
	return splits, nil
}
