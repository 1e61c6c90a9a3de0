package models

import (
	"math"
	"math/rand/v2"

	"github.com/forecastlab/backcast/timeframe"
)

// NeuralAROptions configures the autoregressive neural network adapter.
type NeuralAROptions struct {
	// Lags lists the target lag orders fed to the network.
	Lags []int

	// Hidden is the hidden layer width.
	Hidden int

	// Epochs is the number of full-batch gradient descent passes.
	Epochs int

	// LearningRate scales the gradient step.
	LearningRate float64

	// Seed makes weight initialization reproducible.
	Seed uint64
}

// NewDefaultNeuralAROptions sizes the network for hourly series.
func NewDefaultNeuralAROptions() *NeuralAROptions {
	return &NeuralAROptions{
		Lags:         []int{1, 24, 168},
		Hidden:       8,
		Epochs:       200,
		LearningRate: 0.05,
		Seed:         1,
	}
}

// NeuralAR is a single-hidden-layer tanh perceptron over the target's scaled
// lag features, trained by full-batch gradient descent on squared error. The
// target is standardized internally during training and restored on predict.
type NeuralAR struct {
	opt *NeuralAROptions
}

// NewNeuralAR initializes the neural autoregressor.
func NewNeuralAR(opt *NeuralAROptions) (*NeuralAR, error) {
	if opt == nil {
		opt = NewDefaultNeuralAROptions()
	}
	if len(opt.Lags) == 0 {
		return nil, ErrNoLags
	}
	if opt.Hidden <= 0 || opt.Epochs <= 0 || opt.LearningRate <= 0 {
		return nil, ErrNoOptions
	}
	return &NeuralAR{opt: opt}, nil
}

// Requires returns the lag columns for the configured orders.
func (n *NeuralAR) Requires() []string {
	return timeframe.LagColumns(n.opt.Lags)
}

// Fit trains the network on the window design.
func (n *NeuralAR) Fit(train *timeframe.Window) (Fitted, error) {
	feats := n.Requires()
	x, y, _, err := train.Design(feats)
	if err != nil {
		return nil, err
	}
	m, in := x.Dims()
	if m < in*2 {
		return nil, ErrInsufficientData
	}

	yMean, _ := meanOf(y)
	var yVar float64
	for _, v := range y {
		yVar += (v - yMean) * (v - yMean)
	}
	yStd := math.Sqrt(yVar / float64(m))
	if yStd == 0 {
		yStd = 1.0
	}
	yn := make([]float64, m)
	for i, v := range y {
		yn[i] = (v - yMean) / yStd
	}

	h := n.opt.Hidden
	r := rand.New(rand.NewPCG(n.opt.Seed, n.opt.Seed^0x9e3779b97f4a7c15))
	scale := 1.0 / math.Sqrt(float64(in))

	w1 := make([][]float64, h) // hidden x in
	b1 := make([]float64, h)
	w2 := make([]float64, h)
	var b2 float64
	for j := 0; j < h; j++ {
		w1[j] = make([]float64, in)
		for k := 0; k < in; k++ {
			w1[j][k] = r.NormFloat64() * scale
		}
		w2[j] = r.NormFloat64() / math.Sqrt(float64(h))
	}

	hid := make([]float64, h)
	gw1 := make([][]float64, h)
	for j := range gw1 {
		gw1[j] = make([]float64, in)
	}
	gb1 := make([]float64, h)
	gw2 := make([]float64, h)

	for epoch := 0; epoch < n.opt.Epochs; epoch++ {
		for j := 0; j < h; j++ {
			for k := 0; k < in; k++ {
				gw1[j][k] = 0
			}
			gb1[j] = 0
			gw2[j] = 0
		}
		var gb2 float64

		for i := 0; i < m; i++ {
			row := x.RawRowView(i)
			out := b2
			for j := 0; j < h; j++ {
				s := b1[j]
				for k := 0; k < in; k++ {
					s += w1[j][k] * row[k]
				}
				hid[j] = math.Tanh(s)
				out += w2[j] * hid[j]
			}

			d := out - yn[i]
			gb2 += d
			for j := 0; j < h; j++ {
				gw2[j] += d * hid[j]
				dh := d * w2[j] * (1 - hid[j]*hid[j])
				gb1[j] += dh
				for k := 0; k < in; k++ {
					gw1[j][k] += dh * row[k]
				}
			}
		}

		step := n.opt.LearningRate / float64(m)
		b2 -= step * gb2
		for j := 0; j < h; j++ {
			w2[j] -= step * gw2[j]
			b1[j] -= step * gb1[j]
			for k := 0; k < in; k++ {
				w1[j][k] -= step * gw1[j][k]
			}
		}
	}

	return &neuralFitted{
		features: feats,
		w1:       w1,
		b1:       b1,
		w2:       w2,
		b2:       b2,
		yMean:    yMean,
		yStd:     yStd,
	}, nil
}

type neuralFitted struct {
	features []string
	w1       [][]float64
	b1       []float64
	w2       []float64
	b2       float64
	yMean    float64
	yStd     float64
}

func (f *neuralFitted) Predict(horizon *timeframe.Window) ([]float64, error) {
	x, _, err := horizon.Matrix(f.features)
	if err != nil {
		return nil, err
	}
	m, in := x.Dims()
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		row := x.RawRowView(i)
		val := f.b2
		for j := range f.w2 {
			s := f.b1[j]
			for k := 0; k < in; k++ {
				s += f.w1[j][k] * row[k]
			}
			val += f.w2[j] * math.Tanh(s)
		}
		out[i] = val*f.yStd + f.yMean
	}
	return out, nil
}
