package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// olsFit solves ordinary least squares with an intercept using QR
// factorization and back substitution.
func olsFit(x *mat.Dense, y []float64) (intercept float64, coef []float64, err error) {
	m, n := x.Dims()
	if m != len(y) {
		return 0, nil, fmt.Errorf("design has %d rows and target has %d, %w", m, len(y), ErrInsufficientData)
	}
	if m < n+1 {
		return 0, nil, fmt.Errorf("%d rows for %d coefficients, %w", m, n+1, ErrInsufficientData)
	}

	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	onesMx := mat.NewDense(1, m, ones)

	var withOnesT mat.Dense
	withOnesT.Stack(onesMx, x.T())
	design := mat.DenseCopyOf(withOnesT.T())
	_, n = design.Dims()

	yMx := mat.NewDense(1, m, y)

	qr := new(mat.QR)
	qr.Factorize(design)

	q := new(mat.Dense)
	r := new(mat.Dense)
	qr.QTo(q)
	qr.RTo(r)

	yq := new(mat.Dense)
	yq.Mul(yMx, q)

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}

	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil, ErrInvalidCoefficients
		}
	}
	return c[0], c[1:], nil
}

// predictLinear evaluates intercept + x*coef row by row.
func predictLinear(x *mat.Dense, intercept float64, coef []float64) ([]float64, error) {
	m, n := x.Dims()
	if n != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, expected %d, %w", n, len(coef), ErrMissingFeature)
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = intercept + floats.Dot(x.RawRowView(i), coef)
	}
	return out, nil
}

// meanOf computes the arithmetic mean skipping NaN entries.
func meanOf(vals []float64) (float64, int) {
	var sum float64
	var n int
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), 0
	}
	return sum / float64(n), n
}
