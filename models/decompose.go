package models

import (
	"errors"
	"math"
	"time"

	"github.com/forecastlab/backcast/timeframe"
	"gonum.org/v1/gonum/mat"
)

const (
	secondsPerDay  = 86400.0
	secondsPerWeek = 604800.0
)

var ErrNoSeasonality = errors.New("at least one fourier order required")

// DecomposeOptions configures the additive decomposition adapter.
type DecomposeOptions struct {
	// DailyOrders is the number of fourier orders for the daily cycle.
	DailyOrders int

	// WeeklyOrders is the number of fourier orders for the weekly cycle.
	WeeklyOrders int

	// Trend adds a linear-in-time component.
	Trend bool
}

// NewDefaultDecomposeOptions models daily and weekly cycles with a linear
// trend.
func NewDefaultDecomposeOptions() *DecomposeOptions {
	return &DecomposeOptions{
		DailyOrders:  3,
		WeeklyOrders: 3,
		Trend:        true,
	}
}

// Decompose is an additive model: intercept, optional linear trend, and
// fourier seasonal components at daily and weekly periods, fit by ordinary
// least squares on functions of the timestamp alone.
type Decompose struct {
	opt *DecomposeOptions
}

// NewDecompose initializes the decomposition adapter.
func NewDecompose(opt *DecomposeOptions) (*Decompose, error) {
	if opt == nil {
		opt = NewDefaultDecomposeOptions()
	}
	if opt.DailyOrders <= 0 && opt.WeeklyOrders <= 0 {
		return nil, ErrNoSeasonality
	}
	return &Decompose{opt: opt}, nil
}

// Requires returns nil; every component derives from the timestamp.
func (d *Decompose) Requires() []string {
	return nil
}

// CalibrationMethod prefers the normal approximation: residuals of the
// additive fit are close to gaussian once the cycles are removed.
func (d *Decompose) CalibrationMethod() string {
	return "normal"
}

// Fit builds the fourier/trend design over the training timestamps and
// solves it by least squares.
func (d *Decompose) Fit(train *timeframe.Window) (Fitted, error) {
	t := train.Times()
	y := train.Target()

	keptT := make([]time.Time, 0, len(t))
	keptY := make([]float64, 0, len(y))
	for i := range y {
		if math.IsNaN(y[i]) {
			continue
		}
		keptT = append(keptT, t[i])
		keptY = append(keptY, y[i])
	}
	if len(keptT) == 0 {
		return nil, ErrInsufficientData
	}

	epoch := keptT[0]
	x := d.design(keptT, epoch)
	intercept, coef, err := olsFit(x, keptY)
	if err != nil {
		return nil, err
	}
	return &decomposeFitted{opt: d.opt, epoch: epoch, intercept: intercept, coef: coef}, nil
}

// design lays out [trend?, daily sin/cos..., weekly sin/cos...] per row.
func (d *Decompose) design(t []time.Time, epoch time.Time) *mat.Dense {
	cols := 2*d.opt.DailyOrders + 2*d.opt.WeeklyOrders
	if d.opt.Trend {
		cols++
	}
	x := mat.NewDense(len(t), cols, nil)
	for i, ts := range t {
		j := 0
		if d.opt.Trend {
			x.Set(i, j, ts.Sub(epoch).Hours())
			j++
		}
		unix := float64(ts.Unix())
		for o := 1; o <= d.opt.DailyOrders; o++ {
			arg := 2.0 * math.Pi * float64(o) * unix / secondsPerDay
			x.Set(i, j, math.Sin(arg))
			x.Set(i, j+1, math.Cos(arg))
			j += 2
		}
		for o := 1; o <= d.opt.WeeklyOrders; o++ {
			arg := 2.0 * math.Pi * float64(o) * unix / secondsPerWeek
			x.Set(i, j, math.Sin(arg))
			x.Set(i, j+1, math.Cos(arg))
			j += 2
		}
	}
	return x
}

type decomposeFitted struct {
	opt       *DecomposeOptions
	epoch     time.Time
	intercept float64
	coef      []float64
}

func (f *decomposeFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	t := horizon.Times()
	if len(t) == 0 {
		return nil, ErrEmptyHorizon
	}
	d := Decompose{opt: f.opt}
	x := d.design(t, f.epoch)
	return predictLinear(x, f.intercept, f.coef)
}
