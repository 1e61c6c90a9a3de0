package timeframe

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrUnknownColumn   = errors.New("unknown column in frame")
	ErrInvalidLagOrder = errors.New("lag order must be positive")
	ErrInvalidRange    = errors.New("range out of frame bounds")
)

// Calendar signature column names. These are derived purely from the
// timestamp and carry no missing-value risk.
const (
	ColHourOfDay   = "hour_of_day"
	ColDayOfWeek   = "day_of_week"
	ColMonth       = "month"
	ColBusinessDay = "business_day"
)

// LagColumn returns the column name of the target lagged by k periods.
func LagColumn(k int) string {
	return fmt.Sprintf("lag_%d", k)
}

// LagColumns returns the column names for a set of lag orders.
func LagColumns(ks []int) []string {
	names := make([]string, 0, len(ks))
	for _, k := range ks {
		names = append(names, LagColumn(k))
	}
	return names
}

// Range is a half-open index interval [Start, End) into a Frame.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether idx falls within the range.
func (r Range) Contains(idx int) bool {
	return idx >= r.Start && idx < r.End
}

// Overlaps reports whether two ranges share any index.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Config controls frame validation and feature derivation.
type Config struct {
	// GapTolerance is the largest allowed gap between successive
	// observations. Zero disables the check.
	GapTolerance time.Duration

	// LagOrders lists the target lags to derive. The first k rows of
	// lag k are NaN and are excluded from model-visible windows rather
	// than imputed.
	LagOrders []int

	// Calendar derives hour-of-day, day-of-week, month, and business-day
	// columns from the timestamps.
	Calendar bool
}

// NewDefaultConfig returns a config suitable for hourly series: a one day
// gap tolerance, one hour/day/week of target lags, and calendar columns.
func NewDefaultConfig() *Config {
	return &Config{
		GapTolerance: 24 * time.Hour,
		LagOrders:    []int{1, 24, 168},
		Calendar:     true,
	}
}

// Frame is an ordered time-indexed table of observations plus derived
// feature columns. A built frame is read-only and safe for concurrent use.
type Frame struct {
	cfg *Config

	t      []time.Time
	target []float64

	cols     map[string][]float64
	order    []string
	scalable map[string]bool
}

// Build validates the raw observations and derives the configured feature
// columns. The covariate column set is the union of all covariate names seen
// across observations; rows missing a covariate hold NaN there.
func Build(obs []Observation, cfg *Config) (*Frame, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := validateObservations(obs, cfg.GapTolerance); err != nil {
		return nil, err
	}
	for _, k := range cfg.LagOrders {
		if k <= 0 {
			return nil, fmt.Errorf("lag order %d, %w", k, ErrInvalidLagOrder)
		}
	}

	n := len(obs)
	f := &Frame{
		cfg:      cfg,
		t:        make([]time.Time, n),
		target:   make([]float64, n),
		cols:     make(map[string][]float64),
		scalable: make(map[string]bool),
	}

	covarNames := make(map[string]struct{})
	for i, o := range obs {
		f.t[i] = o.T
		f.target[i] = o.Target
		for name := range o.Covariates {
			covarNames[name] = struct{}{}
		}
	}
	for name := range covarNames {
		col := make([]float64, n)
		for i, o := range obs {
			v, ok := o.Covariates[name]
			if !ok {
				v = math.NaN()
			}
			col[i] = v
		}
		f.cols[name] = col
		f.scalable[name] = true
	}

	f.deriveLags()
	if cfg.Calendar {
		f.deriveCalendar()
	}

	f.order = make([]string, 0, len(f.cols))
	for name := range f.cols {
		f.order = append(f.order, name)
	}
	sort.Strings(f.order)

	return f, nil
}

func (f *Frame) deriveLags() {
	n := len(f.t)
	for _, k := range f.cfg.LagOrders {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			if i < k {
				col[i] = math.NaN()
				continue
			}
			col[i] = f.target[i-k]
		}
		f.cols[LagColumn(k)] = col
		f.scalable[LagColumn(k)] = true
	}
}

func (f *Frame) deriveCalendar() {
	n := len(f.t)
	hour := make([]float64, n)
	dow := make([]float64, n)
	month := make([]float64, n)
	biz := make([]float64, n)

	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)

	for i, ts := range f.t {
		hour[i] = float64(ts.Hour())
		dow[i] = float64(ts.Weekday())
		month[i] = float64(ts.Month())
		if c.IsWorkday(ts) {
			biz[i] = 1.0
		}
	}
	f.cols[ColHourOfDay] = hour
	f.cols[ColDayOfWeek] = dow
	f.cols[ColMonth] = month
	f.cols[ColBusinessDay] = biz
}

// Len returns the number of observations in the frame.
func (f *Frame) Len() int {
	return len(f.t)
}

// Times returns a copy of the timestamps within the range.
func (f *Frame) Times(r Range) []time.Time {
	out := make([]time.Time, r.Len())
	copy(out, f.t[r.Start:r.End])
	return out
}

// Target returns a copy of the target values within the range.
func (f *Frame) Target(r Range) []float64 {
	out := make([]float64, r.Len())
	copy(out, f.target[r.Start:r.End])
	return out
}

// Columns returns the derived and covariate column names in deterministic
// order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// ScalableColumns returns the column names eligible for centering/scaling:
// covariates and target lags. Calendar signature columns are excluded.
func (f *Frame) ScalableColumns() []string {
	out := make([]string, 0, len(f.order))
	for _, name := range f.order {
		if f.scalable[name] {
			out = append(out, name)
		}
	}
	return out
}

// HasColumns reports whether all named columns exist, returning
// ErrUnknownColumn naming the first missing one otherwise.
func (f *Frame) HasColumns(names []string) error {
	for _, name := range names {
		if _, ok := f.cols[name]; !ok {
			return fmt.Errorf("%q, %w", name, ErrUnknownColumn)
		}
	}
	return nil
}

func (f *Frame) checkRange(r Range) error {
	if r.Start < 0 || r.End > len(f.t) || r.Start > r.End {
		return fmt.Errorf("[%d, %d) with %d rows, %w", r.Start, r.End, len(f.t), ErrInvalidRange)
	}
	return nil
}

// column returns the raw backing slice. Callers must not mutate it.
func (f *Frame) column(name string) ([]float64, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownColumn)
	}
	return col, nil
}
