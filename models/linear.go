package models

import (
	"errors"
	"math"

	"github.com/forecastlab/backcast/timeframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLassoLambda     = 1.0
	DefaultLassoIterations = 1000
	DefaultLassoTolerance  = 1e-4
)

var (
	ErrNegativeLambda     = errors.New("negative lambda")
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
)

// LassoOptions configures the penalized linear regression adapter.
type LassoOptions struct {
	// Features lists the frame columns used as regressors. Empty means
	// every column available in the training window.
	Features []string

	// Lambda is the L1 multiplier controlling regularization. 0.0
	// converges to ordinary least squares.
	Lambda float64

	// Iterations caps the coordinate descent passes.
	Iterations int

	// Tolerance is the smallest relative coefficient change that keeps
	// the descent iterating.
	Tolerance float64
}

// Validate runs basic validation on lasso options.
func (o *LassoOptions) Validate() (*LassoOptions, error) {
	if o == nil {
		o = NewDefaultLassoOptions()
	}
	if o.Lambda < 0 {
		return nil, ErrNegativeLambda
	}
	if o.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if o.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultLassoIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultLassoTolerance
	}
	return o, nil
}

// NewDefaultLassoOptions returns a default set of lasso options.
func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		Lambda:     DefaultLassoLambda,
		Iterations: DefaultLassoIterations,
		Tolerance:  DefaultLassoTolerance,
	}
}

// Lasso is a penalized linear regression adapter fit by coordinate descent
// over the window's scaled feature columns.
type Lasso struct {
	opt *LassoOptions
}

// NewLasso initializes a lasso adapter ready for fitting.
func NewLasso(opt *LassoOptions) (*Lasso, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Lasso{opt: opt}, nil
}

// Requires returns the configured regressor columns.
func (l *Lasso) Requires() []string {
	return l.opt.Features
}

// Fit trains the regression on the window and returns the fitted
// coefficients.
func (l *Lasso) Fit(train *timeframe.Window) (Fitted, error) {
	feats := l.opt.Features
	if len(feats) == 0 {
		feats = train.Columns()
	}
	x, y, _, err := train.Design(feats)
	if err != nil {
		return nil, err
	}
	intercept, coef, err := coordinateDescent(x, y, l.opt)
	if err != nil {
		return nil, err
	}
	return &lassoFitted{features: feats, intercept: intercept, coef: coef}, nil
}

type lassoFitted struct {
	features  []string
	intercept float64
	coef      []float64
}

func (f *lassoFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	x, _, err := horizon.Matrix(f.features)
	if err != nil {
		return nil, err
	}
	return predictLinear(x, f.intercept, f.coef)
}

// coordinateDescent minimizes the L1-penalized least squares loss. The
// intercept column is prepended and left unpenalized through the soft
// threshold on index 0 being skipped.
func coordinateDescent(x *mat.Dense, y []float64, opt *LassoOptions) (float64, []float64, error) {
	m, nFeat := x.Dims()
	if m != len(y) {
		return 0, nil, ErrInsufficientData
	}
	n := nFeat + 1

	xcols := make([][]float64, n)
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	xcols[0] = ones
	for j := 0; j < nFeat; j++ {
		xcols[j+1] = mat.Col(nil, j, x)
	}

	// per-feature dot products are loop invariant
	xdot := make([]float64, n)
	for j := 0; j < n; j++ {
		xdot[j] = floats.Dot(xcols[j], xcols[j])
	}

	beta := make([]float64, n)
	residual := make([]float64, m)
	betaX := make([]float64, m)
	betaXDelta := make([]float64, m)

	for i := 0; i < opt.Iterations; i++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		for j := 0; j < n; j++ {
			betaCurr := beta[j]
			if i != 0 && betaCurr == 0 && j != 0 {
				continue
			}

			floats.Add(betaX, betaXDelta)
			floats.SubTo(residual, y, betaX)

			num := floats.Dot(xcols[j], residual)
			betaNext := num/xdot[j] + betaCurr

			if j != 0 {
				gamma := opt.Lambda / xdot[j]
				betaNext = softThreshold(betaNext, gamma)
			}

			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
			floats.ScaleTo(betaXDelta, betaNext-betaCurr, xcols[j])
			beta[j] = betaNext
		}

		if maxUpdate < opt.Tolerance*maxCoef {
			break
		}
	}

	for _, v := range beta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil, ErrInvalidCoefficients
		}
	}
	return beta[0], beta[1:], nil
}

// softThreshold shrinks x toward zero by gamma, returning 0 inside the band.
func softThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}
