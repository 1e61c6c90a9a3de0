// Package models holds the forecasting model adapters driven by the
// back-testing engine. Every adapter exposes the same fit/predict contract
// over frame windows; the concrete strategies range from penalized linear
// regression to tree ensembles, vector autoregression, and dynamic
// regression with autoregressive errors.
package models

import (
	"errors"

	"github.com/forecastlab/backcast/timeframe"
)

var (
	ErrNoOptions           = errors.New("no initialized model options")
	ErrMissingFeature      = errors.New("required feature missing from frame")
	ErrInsufficientData    = errors.New("insufficient training rows for model")
	ErrEmptyHorizon        = errors.New("empty prediction horizon")
	ErrHorizonBeforeFit    = errors.New("horizon starts before the fitted history ends")
	ErrInvalidCoefficients = errors.New("fit produced non-finite coefficients")
)

// Adapter wraps one forecasting strategy. Adapters are stateless and safe to
// share across concurrent fits; all state produced by a fit lives in the
// returned Fitted value, which is owned exclusively by the caller and never
// mutated after Fit returns.
type Adapter interface {
	// Fit trains on the window and returns the fitted state. Fitting
	// only reads the window.
	Fit(train *timeframe.Window) (Fitted, error)

	// Requires declares the frame columns the adapter needs so the engine
	// can validate availability before any fitting happens.
	Requires() []string
}

// Fitted is the opaque result of a fit, able to forecast any horizon window.
// Predictions must align 1:1 with the horizon timestamps.
type Fitted interface {
	Predict(horizon *timeframe.Window) ([]float64, error)
}
