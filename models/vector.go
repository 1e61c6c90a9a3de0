package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/forecastlab/backcast/timeframe"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoEndogenousSeries = errors.New("vector autoregression needs at least one covariate series")
	ErrNonPositiveOrder   = errors.New("autoregressive order must be positive")
)

// VAROptions configures the vector autoregression adapter.
type VAROptions struct {
	// Series names the covariate columns treated as endogenous series
	// alongside the target. The target is always the first series.
	Series []string

	// Order is the number of lagged steps of every series entering each
	// equation.
	Order int
}

// VAR fits a vector autoregression by per-equation ordinary least squares on
// the lagged joint history of the target and the named covariate series.
// Multi-step horizon forecasts iterate the fitted recursion.
type VAR struct {
	opt *VAROptions
}

// NewVAR initializes a vector autoregression adapter.
func NewVAR(opt *VAROptions) (*VAR, error) {
	if opt == nil {
		return nil, ErrNoOptions
	}
	if len(opt.Series) == 0 {
		return nil, ErrNoEndogenousSeries
	}
	if opt.Order <= 0 {
		return nil, ErrNonPositiveOrder
	}
	return &VAR{opt: opt}, nil
}

// Requires returns the endogenous covariate columns.
func (v *VAR) Requires() []string {
	return v.opt.Series
}

// Fit estimates one equation per series over the longest trailing stretch of
// the window where every series is defined.
func (v *VAR) Fit(train *timeframe.Window) (Fitted, error) {
	p := v.opt.Order
	k := 1 + len(v.opt.Series)

	series := make([][]float64, k)
	series[0] = train.Target()
	for i, name := range v.opt.Series {
		col, err := train.Column(name)
		if err != nil {
			return nil, err
		}
		series[i+1] = col
	}

	// iterate back from the window end to the most recent NaN in any
	// series; the recursion needs contiguous joint history
	m := train.Len()
	start := 0
	for t := m - 1; t >= 0; t-- {
		bad := false
		for _, s := range series {
			if math.IsNaN(s[t]) {
				bad = true
				break
			}
		}
		if bad {
			start = t + 1
			break
		}
	}
	eff := m - start
	if eff < p+k*p+2 {
		return nil, fmt.Errorf("%d contiguous rows for order %d over %d series, %w", eff, p, k, ErrInsufficientData)
	}

	rows := eff - p
	x := mat.NewDense(rows, k*p, nil)
	for t := 0; t < rows; t++ {
		abs := start + p + t
		j := 0
		for lag := 1; lag <= p; lag++ {
			for l := 0; l < k; l++ {
				x.Set(t, j, series[l][abs-lag])
				j++
			}
		}
	}

	intercepts := make([]float64, k)
	coefs := make([][]float64, k)
	for l := 0; l < k; l++ {
		y := make([]float64, rows)
		for t := 0; t < rows; t++ {
			y[t] = series[l][start+p+t]
		}
		b0, b, err := olsFit(x, y)
		if err != nil {
			return nil, fmt.Errorf("equation %d, %w", l, err)
		}
		intercepts[l] = b0
		coefs[l] = b
	}

	// state[j][l] is series l observed j+1 steps before the window end
	state := make([][]float64, p)
	for j := 0; j < p; j++ {
		row := make([]float64, k)
		for l := 0; l < k; l++ {
			row[l] = series[l][m-1-j]
		}
		state[j] = row
	}

	return &varFitted{
		k:          k,
		p:          p,
		intercepts: intercepts,
		coefs:      coefs,
		state:      state,
		fitEnd:     train.Range().End,
	}, nil
}

type varFitted struct {
	k          int
	p          int
	intercepts []float64
	coefs      [][]float64
	state      [][]float64
	fitEnd     int
}

// Predict iterates the recursion from the fit window's end. When the horizon
// does not start right there, the gap is stepped through first so each output
// lands on its own timestamp.
func (f *varFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	n := horizon.Len()
	if n == 0 {
		return nil, ErrEmptyHorizon
	}
	gap := horizon.Range().Start - f.fitEnd
	if gap < 0 {
		return nil, fmt.Errorf("horizon starts %d rows early, %w", -gap, ErrHorizonBeforeFit)
	}

	state := make([][]float64, f.p)
	for j := range state {
		state[j] = append([]float64(nil), f.state[j]...)
	}

	out := make([]float64, n)
	for step := 0; step < gap+n; step++ {
		next := make([]float64, f.k)
		for l := 0; l < f.k; l++ {
			val := f.intercepts[l]
			j := 0
			for lag := 1; lag <= f.p; lag++ {
				for s := 0; s < f.k; s++ {
					val += f.coefs[l][j] * state[lag-1][s]
					j++
				}
			}
			next[l] = val
		}
		if step >= gap {
			out[step-gap] = next[0]
		}

		copy(state[1:], state[:len(state)-1])
		state[0] = next
	}
	return out, nil
}
