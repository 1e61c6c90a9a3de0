package backcast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/forecastlab/backcast/accuracy"
	"github.com/forecastlab/backcast/models"
	"github.com/forecastlab/backcast/split"
	"github.com/forecastlab/backcast/timeframe"
)

var (
	ErrFitFailed            = errors.New("model fit failed")
	ErrPredictionMisaligned = errors.New("predictions not aligned 1:1 with horizon")
	ErrLeakageViolation     = errors.New("scaling statistics computed over test-range indices")
)

// ForecastRecord is one calibrated forecast for one test timestamp of one
// (model, fold) pair. Actual is NaN when the horizon has no observed value,
// in which case the record still carries bounds but is withheld from
// accuracy metrics.
type ForecastRecord struct {
	ModelID  string
	SplitID  int
	T        time.Time
	Forecast float64
	Lower    float64
	Upper    float64
	Actual   float64
}

// PairFailure records a (model, split) pair that contributed no forecasts.
// A SplitID of -1 denotes an adapter-level failure covering every fold,
// such as a missing required feature.
type PairFailure struct {
	ModelID string
	SplitID int
	Err     error
}

// runPair drives one (adapter, split) pair end to end: carve the calibration
// tail off the training window, fit on the remainder with scaling statistics
// from that sub-range only, collect held-out residuals, forecast the test
// window, and attach calibrated bounds. The returned fold metrics are nil
// when the horizon carried no actuals.
func (b *Backtester) runPair(modelID string, adapter models.Adapter, splitID int, sp split.Split) ([]ForecastRecord, *accuracy.Fold, error) {
	trainLen := sp.Train.Len()
	calibLen := int(math.Round(float64(trainLen) * b.opt.CalibrationFraction))
	if calibLen < MinResidualSize {
		calibLen = MinResidualSize
	}
	if trainLen-calibLen < MinResidualSize {
		return nil, nil, fmt.Errorf("training window of %d cannot spare %d calibration rows, %w", trainLen, calibLen, ErrInsufficientResidual)
	}

	fitRange := timeframe.Range{Start: sp.Train.Start, End: sp.Train.End - calibLen}
	calibRange := timeframe.Range{Start: fitRange.End, End: sp.Train.End}

	scaler, err := b.frame.FitScaler(b.frame.ScalableColumns(), fitRange)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	if err := checkLeakage(scaler, sp); err != nil {
		return nil, nil, err
	}

	trainWin, err := b.frame.Window(fitRange, scaler)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	fitted, err := adapter.Fit(trainWin)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}

	calibWin, err := b.frame.Window(calibRange, scaler)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	calibPred, err := fitted.Predict(calibWin)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: calibration predict: %v", ErrFitFailed, err)
	}
	if len(calibPred) != calibRange.Len() {
		return nil, nil, fmt.Errorf("calibration got %d of %d, %w", len(calibPred), calibRange.Len(), ErrPredictionMisaligned)
	}

	calibActual := b.frame.Target(calibRange)
	residuals := make([]float64, len(calibActual))
	for i := range calibActual {
		residuals[i] = calibActual[i] - calibPred[i]
	}

	hw, err := halfWidth(residuals, b.opt.ConfidenceLevel, b.calibrationFor(modelID, adapter))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}

	testWin, err := b.frame.Window(sp.Test, scaler)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	pred, err := fitted.Predict(testWin)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: horizon predict: %v", ErrFitFailed, err)
	}
	if len(pred) != sp.Test.Len() {
		return nil, nil, fmt.Errorf("horizon got %d of %d, %w", len(pred), sp.Test.Len(), ErrPredictionMisaligned)
	}

	times := b.frame.Times(sp.Test)
	actual := b.frame.Target(sp.Test)
	records := make([]ForecastRecord, len(pred))
	for i := range pred {
		records[i] = ForecastRecord{
			ModelID:  modelID,
			SplitID:  splitID,
			T:        times[i],
			Forecast: pred[i],
			Lower:    pred[i] - hw,
			Upper:    pred[i] + hw,
			Actual:   actual[i],
		}
	}

	fold, err := accuracy.NewFold(modelID, splitID, pred, actual)
	if err != nil {
		if errors.Is(err, accuracy.ErrNoValidPoints) {
			// live horizon with no actuals yet: keep the forecasts,
			// withhold the metrics
			return records, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	return records, &fold, nil
}

// checkLeakage verifies the scaler's fitted statistics never saw the fold's
// test indices or the calibration tail's future relative to training.
func checkLeakage(sc *timeframe.Scaler, sp split.Split) error {
	r := sc.FitRange()
	if r.Overlaps(sp.Test) || r.End > sp.Train.End || r.Start < sp.Train.Start {
		return fmt.Errorf("scaler fit over [%d, %d) against train [%d, %d), %w",
			r.Start, r.End, sp.Train.Start, sp.Train.End, ErrLeakageViolation)
	}
	return nil
}

// calibrationFor resolves the interval method: run-level override, then the
// adapter's own preference, then the run default.
func (b *Backtester) calibrationFor(modelID string, adapter models.Adapter) CalibrationMethod {
	if m, ok := b.opt.CalibrationOverrides[modelID]; ok {
		return m
	}
	if cm, ok := adapter.(calibrationMethoder); ok {
		return CalibrationMethod(cm.CalibrationMethod())
	}
	return b.opt.Calibration
}
