package timeframe

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

var ErrNoUsableRows = errors.New("no rows with fully defined features")

// Window is a read-only view over a contiguous range of the frame, with an
// optional scaler applied to the columns it was fit on. Model adapters only
// ever see windows; they may read but never mutate the underlying frame.
type Window struct {
	f  *Frame
	r  Range
	sc *Scaler
}

// Window creates a view over r. sc may be nil for unscaled access.
func (f *Frame) Window(r Range, sc *Scaler) (*Window, error) {
	if err := f.checkRange(r); err != nil {
		return nil, err
	}
	return &Window{f: f, r: r, sc: sc}, nil
}

// Len returns the number of rows in the window.
func (w *Window) Len() int {
	return w.r.Len()
}

// Range returns the frame index range this window covers.
func (w *Window) Range() Range {
	return w.r
}

// Scaler returns the scaler attached to the window, which may be nil.
func (w *Window) Scaler() *Scaler {
	return w.sc
}

// Times returns a copy of the window timestamps.
func (w *Window) Times() []time.Time {
	return w.f.Times(w.r)
}

// Target returns a copy of the window target values, never scaled.
func (w *Window) Target() []float64 {
	return w.f.Target(w.r)
}

// Columns returns the available column names in deterministic order.
func (w *Window) Columns() []string {
	return w.f.Columns()
}

// Column returns a copy of a column over the window with the window scaler
// applied.
func (w *Window) Column(name string) ([]float64, error) {
	col, err := w.f.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, w.r.Len())
	for i := w.r.Start; i < w.r.End; i++ {
		out[i-w.r.Start] = w.sc.transform(name, col[i])
	}
	return out, nil
}

// Design assembles a scaled training design matrix plus the aligned target
// and timestamps. Rows where any requested feature or the target is NaN are
// excluded rather than imputed.
func (w *Window) Design(features []string) (*mat.Dense, []float64, []time.Time, error) {
	return w.assemble(features, true)
}

// Matrix assembles a scaled design matrix for prediction, dropping only rows
// with a NaN feature. The target may be absent at prediction time.
func (w *Window) Matrix(features []string) (*mat.Dense, []time.Time, error) {
	x, _, t, err := w.assemble(features, false)
	return x, t, err
}

func (w *Window) assemble(features []string, needTarget bool) (*mat.Dense, []float64, []time.Time, error) {
	cols := make([][]float64, len(features))
	for j, name := range features {
		col, err := w.f.column(name)
		if err != nil {
			return nil, nil, nil, err
		}
		cols[j] = col
	}

	var (
		rows []float64
		y    []float64
		t    []time.Time
	)
	for i := w.r.Start; i < w.r.End; i++ {
		keep := true
		for _, col := range cols {
			if math.IsNaN(col[i]) {
				keep = false
				break
			}
		}
		if needTarget && math.IsNaN(w.f.target[i]) {
			keep = false
		}
		if !keep {
			continue
		}
		for j, col := range cols {
			rows = append(rows, w.sc.transform(features[j], col[i]))
		}
		y = append(y, w.f.target[i])
		t = append(t, w.f.t[i])
	}
	if len(t) == 0 {
		return nil, nil, nil, ErrNoUsableRows
	}
	x := mat.NewDense(len(t), len(features), rows)
	return x, y, t, nil
}
