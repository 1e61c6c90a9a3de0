package models

import (
	"github.com/forecastlab/backcast/timeframe"
)

// BoostOptions configures the gradient-boosted trees adapter.
type BoostOptions struct {
	// Features lists the regressor columns. Empty means every column in
	// the training window.
	Features []string

	// Rounds is the number of boosting stages.
	Rounds int

	// LearningRate shrinks each stage's contribution.
	LearningRate float64

	// MaxDepth limits the stage trees; boosting wants them shallow.
	MaxDepth int

	// MinLeaf is the smallest allowed partition per leaf.
	MinLeaf int
}

// NewDefaultBoostOptions returns a conservative boosting setup.
func NewDefaultBoostOptions() *BoostOptions {
	return &BoostOptions{
		Rounds:       100,
		LearningRate: 0.1,
		MaxDepth:     3,
		MinLeaf:      5,
	}
}

// Boost is a gradient-boosted regression-tree adapter: each stage fits a
// shallow tree to the current residuals under squared-error loss.
type Boost struct {
	opt *BoostOptions
}

// NewBoost initializes the gradient boosting adapter.
func NewBoost(opt *BoostOptions) (*Boost, error) {
	if opt == nil {
		opt = NewDefaultBoostOptions()
	}
	if opt.Rounds <= 0 || opt.MaxDepth <= 0 || opt.MinLeaf <= 0 {
		return nil, ErrNoOptions
	}
	if opt.LearningRate <= 0 || opt.LearningRate > 1 {
		opt.LearningRate = 0.1
	}
	return &Boost{opt: opt}, nil
}

// Requires returns the configured regressor columns.
func (b *Boost) Requires() []string {
	return b.opt.Features
}

// Fit runs the boosting stages over the window design.
func (b *Boost) Fit(train *timeframe.Window) (Fitted, error) {
	feats := b.opt.Features
	if len(feats) == 0 {
		feats = train.Columns()
	}
	x, y, _, err := train.Design(feats)
	if err != nil {
		return nil, err
	}
	m, _ := x.Dims()
	if m < 2*b.opt.MinLeaf {
		return nil, ErrInsufficientData
	}

	base, _ := meanOf(y)

	idx := make([]int, m)
	for i := range idx {
		idx[i] = i
	}
	resid := make([]float64, m)
	for i := range resid {
		resid[i] = y[i] - base
	}

	trees := make([]*treeNode, 0, b.opt.Rounds)
	for round := 0; round < b.opt.Rounds; round++ {
		tr := growTree(x, resid, idx, 0, b.opt.MaxDepth, b.opt.MinLeaf)
		trees = append(trees, tr)
		for i := 0; i < m; i++ {
			resid[i] -= b.opt.LearningRate * tr.predict(x.RawRowView(i))
		}
	}

	return &boostFitted{
		features: feats,
		base:     base,
		rate:     b.opt.LearningRate,
		trees:    trees,
	}, nil
}

type boostFitted struct {
	features []string
	base     float64
	rate     float64
	trees    []*treeNode
}

func (f *boostFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	x, _, err := horizon.Matrix(f.features)
	if err != nil {
		return nil, err
	}
	m, _ := x.Dims()
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		row := x.RawRowView(i)
		val := f.base
		for _, tr := range f.trees {
			val += f.rate * tr.predict(row)
		}
		out[i] = val
	}
	return out, nil
}
