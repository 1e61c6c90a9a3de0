package models

import (
	"github.com/forecastlab/backcast/timeframe"
)

// Mean is the degenerate baseline adapter: it forecasts the training-window
// target mean at every horizon step. Useful as an accuracy floor.
type Mean struct{}

// NewMean returns the training-mean baseline adapter.
func NewMean() *Mean {
	return &Mean{}
}

// Requires returns nil; the baseline needs only the target itself.
func (m *Mean) Requires() []string {
	return nil
}

// Fit records the mean of the training targets.
func (m *Mean) Fit(train *timeframe.Window) (Fitted, error) {
	mu, n := meanOf(train.Target())
	if n == 0 {
		return nil, ErrInsufficientData
	}
	return &meanFitted{mu: mu}, nil
}

type meanFitted struct {
	mu float64
}

func (f *meanFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	if horizon.Len() == 0 {
		return nil, ErrEmptyHorizon
	}
	out := make([]float64, horizon.Len())
	for i := range out {
		out[i] = f.mu
	}
	return out, nil
}
