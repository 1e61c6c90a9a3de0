package timeframe

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrEmptyFitRange = errors.New("scaler fit range has no rows")

// Scaler centers and scales numeric columns using statistics computed over a
// designated fitting sub-range only. The same fitted statistics are applied
// to any sub-range passed later, so test values can never influence how
// training rows are transformed.
type Scaler struct {
	fitRange Range
	mean     map[string]float64
	std      map[string]float64
}

// FitScaler computes per-column mean and standard deviation over the given
// range, skipping NaN entries. A column with zero variance scales by 1 so
// constant columns center without blowing up.
func (f *Frame) FitScaler(cols []string, r Range) (*Scaler, error) {
	if err := f.checkRange(r); err != nil {
		return nil, err
	}
	if r.Len() == 0 {
		return nil, ErrEmptyFitRange
	}
	s := &Scaler{
		fitRange: r,
		mean:     make(map[string]float64, len(cols)),
		std:      make(map[string]float64, len(cols)),
	}
	for _, name := range cols {
		col, err := f.column(name)
		if err != nil {
			return nil, err
		}
		vals := make([]float64, 0, r.Len())
		for i := r.Start; i < r.End; i++ {
			if math.IsNaN(col[i]) {
				continue
			}
			vals = append(vals, col[i])
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("column %q all NaN over fit range, %w", name, ErrEmptyFitRange)
		}
		mean, std := stat.MeanStdDev(vals, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1.0
		}
		s.mean[name] = mean
		s.std[name] = std
	}
	return s, nil
}

// FitRange returns the index range the statistics were computed over.
func (s *Scaler) FitRange() Range {
	return s.fitRange
}

// Stats returns the fitted mean and standard deviation for a column and
// whether the column was covered by the fit.
func (s *Scaler) Stats(name string) (mean, std float64, ok bool) {
	if s == nil {
		return 0, 0, false
	}
	mean, ok = s.mean[name]
	if !ok {
		return 0, 0, false
	}
	return mean, s.std[name], true
}

// transform applies the fitted statistics to a single value. Columns the
// scaler was not fit on pass through unchanged.
func (s *Scaler) transform(name string, v float64) float64 {
	if s == nil {
		return v
	}
	mean, ok := s.mean[name]
	if !ok {
		return v
	}
	return (v - mean) / s.std[name]
}
