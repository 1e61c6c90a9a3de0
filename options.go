package backcast

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

var (
	ErrInvalidConfidence  = errors.New("confidence level must be in (0, 1)")
	ErrInvalidCalibration = errors.New("calibration fraction must be in (0, 1)")
)

// Options configures a back-testing run.
type Options struct {
	// InitialWindow is the number of training observations per fold.
	InitialWindow int

	// AssessWindow is the number of test observations per fold.
	AssessWindow int

	// Step is how many observations each fold's origin advances by.
	Step int

	// MaxSplits caps the number of folds. Zero means no cap.
	MaxSplits int

	// ConfidenceLevel sizes the prediction intervals.
	ConfidenceLevel float64

	// CalibrationFraction is the portion of each training window held
	// out from fitting and used for residual calibration.
	CalibrationFraction float64

	// Calibration is the default interval method. Adapters exposing a
	// CalibrationMethod of their own, and entries in
	// CalibrationOverrides, take precedence in that order reversed:
	// override beats adapter beats default.
	Calibration CalibrationMethod

	// CalibrationOverrides forces a method per registered model ID.
	CalibrationOverrides map[string]CalibrationMethod

	// Parallelism bounds concurrent (model, split) pairs. Zero or
	// negative uses GOMAXPROCS.
	Parallelism int

	// PairTimeout abandons a pair still fitting or predicting after this
	// long, recording it as a fit failure. Zero disables the timeout.
	PairTimeout time.Duration

	// Logger receives per-pair failure warnings. Nil uses slog.Default.
	Logger *slog.Logger
}

// NewDefaultOptions returns a weekly-assessment setup for hourly series:
// 60 days of training, one week of assessment, advancing a week per fold.
func NewDefaultOptions() *Options {
	return &Options{
		InitialWindow:       1440,
		AssessWindow:        168,
		Step:                168,
		ConfidenceLevel:     0.95,
		CalibrationFraction: 0.2,
		Calibration:         CalibrationEmpirical,
	}
}

// Validate checks option ranges, filling zero values with defaults.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.ConfidenceLevel == 0 {
		o.ConfidenceLevel = 0.95
	}
	if o.CalibrationFraction == 0 {
		o.CalibrationFraction = 0.2
	}
	if o.Calibration == "" {
		o.Calibration = CalibrationEmpirical
	}
	if o.ConfidenceLevel <= 0 || o.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("got %f, %w", o.ConfidenceLevel, ErrInvalidConfidence)
	}
	if o.CalibrationFraction <= 0 || o.CalibrationFraction >= 1 {
		return nil, fmt.Errorf("got %f, %w", o.CalibrationFraction, ErrInvalidCalibration)
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}
