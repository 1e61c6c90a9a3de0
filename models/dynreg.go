package models

import (
	"fmt"
	"math"

	"github.com/forecastlab/backcast/timeframe"
	"gonum.org/v1/gonum/mat"
)

// DynamicRegressionOptions configures the dynamic regression adapter.
type DynamicRegressionOptions struct {
	// Features lists the exogenous regressor columns.
	Features []string

	// ErrorOrder is the autoregressive order fit on the regression
	// residuals.
	ErrorOrder int
}

// NewDefaultDynamicRegressionOptions uses an AR(2) error structure over the
// default hourly lag features.
func NewDefaultDynamicRegressionOptions() *DynamicRegressionOptions {
	return &DynamicRegressionOptions{
		Features:   timeframe.LagColumns([]int{1, 24, 168}),
		ErrorOrder: 2,
	}
}

// DynamicRegression regresses the target on exogenous features by ordinary
// least squares and then models the remaining serial correlation with an
// autoregressive process estimated from the residuals by Yule-Walker. The
// horizon forecast adds the iterated error forecast, which decays toward
// zero, to the regression component.
type DynamicRegression struct {
	opt *DynamicRegressionOptions
}

// NewDynamicRegression initializes the adapter.
func NewDynamicRegression(opt *DynamicRegressionOptions) (*DynamicRegression, error) {
	if opt == nil {
		opt = NewDefaultDynamicRegressionOptions()
	}
	if len(opt.Features) == 0 {
		return nil, ErrMissingFeature
	}
	if opt.ErrorOrder <= 0 {
		return nil, ErrNonPositiveOrder
	}
	return &DynamicRegression{opt: opt}, nil
}

// Requires returns the exogenous regressor columns.
func (d *DynamicRegression) Requires() []string {
	return d.opt.Features
}

// CalibrationMethod prefers the normal approximation; with the AR error
// term absorbed the calibration residuals are near gaussian.
func (d *DynamicRegression) CalibrationMethod() string {
	return "normal"
}

// Fit estimates the regression and the residual AR process.
func (d *DynamicRegression) Fit(train *timeframe.Window) (Fitted, error) {
	x, y, _, err := train.Design(d.opt.Features)
	if err != nil {
		return nil, err
	}
	intercept, coef, err := olsFit(x, y)
	if err != nil {
		return nil, err
	}

	fittedVals, err := predictLinear(x, intercept, coef)
	if err != nil {
		return nil, err
	}
	resid := make([]float64, len(y))
	for i := range y {
		resid[i] = y[i] - fittedVals[i]
	}

	p := d.opt.ErrorOrder
	if len(resid) < p*4 {
		return nil, fmt.Errorf("%d residuals for error order %d, %w", len(resid), p, ErrInsufficientData)
	}
	phi, err := yuleWalker(resid, p)
	if err != nil {
		return nil, err
	}

	// most recent residual first
	state := make([]float64, p)
	for j := 0; j < p; j++ {
		state[j] = resid[len(resid)-1-j]
	}

	return &dynregFitted{
		features:  d.opt.Features,
		intercept: intercept,
		coef:      coef,
		phi:       phi,
		state:     state,
		fitEnd:    train.Range().End,
	}, nil
}

type dynregFitted struct {
	features  []string
	intercept float64
	coef      []float64
	phi       []float64
	state     []float64
	fitEnd    int
}

// Predict adds the iterated error forecast to the regression component. The
// error state belongs to the fit window's last row, so any gap between the
// fit window and the horizon is stepped through before the first output.
func (f *dynregFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	gap := horizon.Range().Start - f.fitEnd
	if gap < 0 {
		return nil, fmt.Errorf("horizon starts %d rows early, %w", -gap, ErrHorizonBeforeFit)
	}

	x, _, err := horizon.Matrix(f.features)
	if err != nil {
		return nil, err
	}
	base, err := predictLinear(x, f.intercept, f.coef)
	if err != nil {
		return nil, err
	}

	state := append([]float64(nil), f.state...)
	step := func() float64 {
		var e float64
		for j, p := range f.phi {
			e += p * state[j]
		}
		copy(state[1:], state[:len(state)-1])
		state[0] = e
		return e
	}
	for i := 0; i < gap; i++ {
		step()
	}
	for i := range base {
		base[i] += step()
	}
	return base, nil
}

// yuleWalker solves the Yule-Walker equations for AR(p) coefficients from
// the sample autocovariances of the series.
func yuleWalker(series []float64, p int) ([]float64, error) {
	n := len(series)
	mean, _ := meanOf(series)

	acov := make([]float64, p+1)
	for h := 0; h <= p; h++ {
		var sum float64
		for t := h; t < n; t++ {
			sum += (series[t] - mean) * (series[t-h] - mean)
		}
		acov[h] = sum / float64(n)
	}
	if acov[0] == 0 {
		// perfectly fit residuals carry no error process
		return make([]float64, p), nil
	}

	r := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			r.Set(i, j, acov[int(math.Abs(float64(i-j)))])
		}
	}
	rhs := mat.NewVecDense(p, acov[1:p+1])

	var phiVec mat.VecDense
	if err := phiVec.SolveVec(r, rhs); err != nil {
		return nil, fmt.Errorf("yule-walker system is singular, %w", err)
	}

	phi := make([]float64, p)
	for i := 0; i < p; i++ {
		v := phiVec.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrInvalidCoefficients
		}
		phi[i] = v
	}
	return phi, nil
}
