package backcast

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CalibrationMethod selects how held-out residuals are turned into an
// interval half-width.
type CalibrationMethod string

const (
	// CalibrationEmpirical takes symmetric tail quantiles of the
	// residual distribution at the configured confidence level.
	CalibrationEmpirical CalibrationMethod = "empirical"

	// CalibrationNormal uses a gaussian approximation of the residuals.
	CalibrationNormal CalibrationMethod = "normal"
)

const (
	// MinResidualSize is the fewest calibration residuals any method can
	// work with.
	MinResidualSize = 2

	// MinEmpiricalResiduals is the fewest residuals worth reading tail
	// quantiles from; below it the empirical method falls back to the
	// normal approximation.
	MinEmpiricalResiduals = 30
)

var (
	ErrInsufficientResidual = errors.New("insufficient calibration residuals")
	ErrUnknownCalibration   = errors.New("unknown calibration method")
)

// calibrationMethoder is optionally implemented by adapters that know the
// shape of their own residual distribution.
type calibrationMethoder interface {
	CalibrationMethod() string
}

// halfWidth derives the interval half-width from held-out residuals. The
// residuals must come from the training window's tail, never the test
// range; the engine enforces that before calling.
func halfWidth(residuals []float64, confidence float64, method CalibrationMethod) (float64, error) {
	vals := make([]float64, 0, len(residuals))
	for _, v := range residuals {
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) < MinResidualSize {
		return 0, fmt.Errorf("%d residuals, %w", len(vals), ErrInsufficientResidual)
	}

	if method == CalibrationEmpirical && len(vals) < MinEmpiricalResiduals {
		method = CalibrationNormal
	}

	switch method {
	case CalibrationEmpirical:
		sort.Float64s(vals)
		alpha := 1.0 - confidence
		qLo := stat.Quantile(alpha/2.0, stat.Empirical, vals, nil)
		qHi := stat.Quantile(1.0-alpha/2.0, stat.Empirical, vals, nil)
		return (qHi - qLo) / 2.0, nil
	case CalibrationNormal:
		_, std := stat.MeanStdDev(vals, nil)
		z := distuv.UnitNormal.Quantile(0.5 + confidence/2.0)
		return z * std, nil
	default:
		return 0, fmt.Errorf("%q, %w", method, ErrUnknownCalibration)
	}
}
