package timeframe

import (
	"math"
	"math/rand/v2"
	"time"
)

// Series is a synthetic value sequence used to compose test and benchmark
// inputs out of waves, noise, and level shifts.
type Series []float64

// GenerateT creates n timestamps at a fixed interval ending near nowFunc().
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/3600*3600, 0).Add(-time.Duration(n) * interval)
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

// GenerateConst creates a constant series of length n.
func GenerateConst(n int, val float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = val
	}
	return Series(y)
}

// GenerateWave creates a sinusoid over the given timestamps with the period
// expressed in seconds.
func GenerateWave(t []time.Time, amp, periodSec, order, timeOffset float64) Series {
	y := make([]float64, 0, len(t))
	for i := 0; i < len(t); i++ {
		val := amp * math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset))
		y = append(y, val)
	}
	return Series(y)
}

// GenerateNoise creates seeded gaussian noise so simulations stay
// reproducible across runs.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Series(y)
}

// Add sums src into the receiver elementwise and returns the receiver for
// chaining.
func (s Series) Add(src Series) Series {
	for i := range s {
		s[i] += src[i]
	}
	return s
}

// Observations pairs the series with timestamps and optional covariate
// series to produce frame input.
func (s Series) Observations(t []time.Time, covariates map[string]Series) []Observation {
	obs := make([]Observation, len(s))
	for i := range s {
		var cv map[string]float64
		if len(covariates) > 0 {
			cv = make(map[string]float64, len(covariates))
			for name, series := range covariates {
				cv[name] = series[i]
			}
		}
		obs[i] = Observation{T: t[i], Target: s[i], Covariates: cv}
	}
	return obs
}
