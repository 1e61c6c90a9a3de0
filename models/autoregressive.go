package models

import (
	"errors"

	"github.com/forecastlab/backcast/timeframe"
)

var ErrNoLags = errors.New("no lag orders provided")

// AROptions configures the autoregressive adapter, which regresses the
// target on its own lag columns and nothing else.
type AROptions struct {
	// Lags lists the lag orders; the frame must have been built with
	// matching lag columns.
	Lags []int
}

// NewDefaultAROptions uses the previous hour, day, and week, matching the
// default frame lag derivation for hourly series.
func NewDefaultAROptions() *AROptions {
	return &AROptions{Lags: []int{1, 24, 168}}
}

// AR is a univariate autoregressive adapter fit by ordinary least squares
// on the frame's lag features.
type AR struct {
	opt *AROptions
}

// NewAR initializes an autoregressive adapter.
func NewAR(opt *AROptions) (*AR, error) {
	if opt == nil {
		opt = NewDefaultAROptions()
	}
	if len(opt.Lags) == 0 {
		return nil, ErrNoLags
	}
	return &AR{opt: opt}, nil
}

// Requires returns the lag column names for the configured orders.
func (a *AR) Requires() []string {
	return timeframe.LagColumns(a.opt.Lags)
}

// Fit regresses the target on its lags over the window.
func (a *AR) Fit(train *timeframe.Window) (Fitted, error) {
	feats := a.Requires()
	x, y, _, err := train.Design(feats)
	if err != nil {
		return nil, err
	}
	intercept, coef, err := olsFit(x, y)
	if err != nil {
		return nil, err
	}
	return &lassoFitted{features: feats, intercept: intercept, coef: coef}, nil
}
