package models

import (
	"math/rand/v2"
	"sort"

	"github.com/forecastlab/backcast/timeframe"
	"gonum.org/v1/gonum/mat"
)

// treeNode is one node of a variance-reduction regression tree. Leaves have
// a nil left child and carry the mean response of their partition.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

func (n *treeNode) predict(row []float64) float64 {
	for n.left != nil {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// growTree recursively partitions idx by the split that most reduces the
// summed squared error, stopping at maxDepth or when a side would fall
// below minLeaf rows.
func growTree(x *mat.Dense, y []float64, idx []int, depth, maxDepth, minLeaf int) *treeNode {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	node := &treeNode{value: sum / float64(len(idx))}

	if depth >= maxDepth || len(idx) < 2*minLeaf {
		return node
	}

	_, nFeat := x.Dims()
	bestScore := sseOf(y, idx)
	var bestFeat int
	var bestThresh float64
	var found bool

	sorted := make([]int, len(idx))
	for j := 0; j < nFeat; j++ {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool {
			return x.At(sorted[a], j) < x.At(sorted[b], j)
		})

		var leftSum, leftSq float64
		totalSum, totalSq := sumsOf(y, sorted)
		for k := 0; k < len(sorted)-1; k++ {
			v := y[sorted[k]]
			leftSum += v
			leftSq += v * v

			nLeft := k + 1
			if nLeft < minLeaf || len(sorted)-nLeft < minLeaf {
				continue
			}
			// no threshold exists between equal feature values
			if x.At(sorted[k], j) == x.At(sorted[k+1], j) {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			nRight := len(sorted) - nLeft
			score := (leftSq - leftSum*leftSum/float64(nLeft)) +
				(rightSq - rightSum*rightSum/float64(nRight))
			if score < bestScore {
				bestScore = score
				bestFeat = j
				bestThresh = (x.At(sorted[k], j) + x.At(sorted[k+1], j)) / 2.0
				found = true
			}
		}
	}

	if !found {
		return node
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if x.At(i, bestFeat) <= bestThresh {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	node.feature = bestFeat
	node.threshold = bestThresh
	node.left = growTree(x, y, leftIdx, depth+1, maxDepth, minLeaf)
	node.right = growTree(x, y, rightIdx, depth+1, maxDepth, minLeaf)
	return node
}

func sumsOf(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func sseOf(y []float64, idx []int) float64 {
	sum, sq := sumsOf(y, idx)
	return sq - sum*sum/float64(len(idx))
}

// ForestOptions configures the bagged tree-ensemble adapter.
type ForestOptions struct {
	// Features lists the regressor columns. Empty means every column in
	// the training window.
	Features []string

	// Trees is the ensemble size.
	Trees int

	// MaxDepth limits each tree.
	MaxDepth int

	// MinLeaf is the smallest allowed partition per leaf.
	MinLeaf int

	// SampleRatio is the bootstrap sample size relative to the training
	// rows.
	SampleRatio float64

	// Seed makes the bootstrap draws reproducible.
	Seed uint64
}

// NewDefaultForestOptions returns a moderately sized ensemble.
func NewDefaultForestOptions() *ForestOptions {
	return &ForestOptions{
		Trees:       50,
		MaxDepth:    6,
		MinLeaf:     3,
		SampleRatio: 0.8,
		Seed:        1,
	}
}

// Forest is a bagged regression-tree ensemble adapter.
type Forest struct {
	opt *ForestOptions
}

// NewForest initializes the tree-ensemble adapter.
func NewForest(opt *ForestOptions) (*Forest, error) {
	if opt == nil {
		opt = NewDefaultForestOptions()
	}
	if opt.Trees <= 0 || opt.MaxDepth <= 0 || opt.MinLeaf <= 0 {
		return nil, ErrNoOptions
	}
	if opt.SampleRatio <= 0 || opt.SampleRatio > 1 {
		opt.SampleRatio = 0.8
	}
	return &Forest{opt: opt}, nil
}

// Requires returns the configured regressor columns.
func (f *Forest) Requires() []string {
	return f.opt.Features
}

// Fit grows the ensemble on bootstrap samples of the window rows.
func (f *Forest) Fit(train *timeframe.Window) (Fitted, error) {
	feats := f.opt.Features
	if len(feats) == 0 {
		feats = train.Columns()
	}
	x, y, _, err := train.Design(feats)
	if err != nil {
		return nil, err
	}
	m, _ := x.Dims()
	if m < 2*f.opt.MinLeaf {
		return nil, ErrInsufficientData
	}

	r := rand.New(rand.NewPCG(f.opt.Seed, f.opt.Seed<<1|1))
	sampleSize := int(float64(m) * f.opt.SampleRatio)
	if sampleSize < 2*f.opt.MinLeaf {
		sampleSize = m
	}

	trees := make([]*treeNode, f.opt.Trees)
	for t := range trees {
		idx := make([]int, sampleSize)
		for i := range idx {
			idx[i] = r.IntN(m)
		}
		trees[t] = growTree(x, y, idx, 0, f.opt.MaxDepth, f.opt.MinLeaf)
	}
	return &forestFitted{features: feats, trees: trees}, nil
}

type forestFitted struct {
	features []string
	trees    []*treeNode
}

func (f *forestFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	x, _, err := horizon.Matrix(f.features)
	if err != nil {
		return nil, err
	}
	m, _ := x.Dims()
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		row := x.RawRowView(i)
		var sum float64
		for _, tr := range f.trees {
			sum += tr.predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}
