package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gorgonia.org/tensor"
)

// Model is a single-hidden-layer classifier:
//
//	hidden = relu(x·W1 + b1)
//	output = softmax(hidden·W2 + b2)
//
// W1 is [inputs, hidden], b1 is [hidden], W2 is [hidden, classes] and b2 is
// [classes]. The dimensions are fixed when the model is built.
type Model struct {
	w1, b1, w2, b2 *tensor.Dense

	inputs  int
	hidden  int
	classes int
}

// NewRand returns the deterministic generator used for weight
// initialisation and per-epoch shuffling.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Build returns an untrained model with Glorot-uniform weights drawn from
// rng and zero biases. A nil rng draws a random seed.
func Build(inputs, hidden, classes int, rng *rand.Rand) (*Model, error) {
	if inputs <= 0 || hidden <= 0 || classes <= 0 {
		return nil, fmt.Errorf("%w: inputs=%d hidden=%d classes=%d must all be positive", ErrInvalidArchitecture, inputs, hidden, classes)
	}
	if rng == nil {
		rng = NewRand(rand.Uint64())
	}

	return &Model{
		w1: tensor.New(
			tensor.WithShape(inputs, hidden),
			tensor.WithBacking(glorotUniform(rng, inputs, hidden))),
		b1: tensor.New(
			tensor.WithShape(hidden),
			tensor.WithBacking(make([]float64, hidden))),
		w2: tensor.New(
			tensor.WithShape(hidden, classes),
			tensor.WithBacking(glorotUniform(rng, hidden, classes))),
		b2: tensor.New(
			tensor.WithShape(classes),
			tensor.WithBacking(make([]float64, classes))),
		inputs:  inputs,
		hidden:  hidden,
		classes: classes,
	}, nil
}

func glorotUniform(rng *rand.Rand, fanIn, fanOut int) []float64 {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	out := make([]float64, fanIn*fanOut)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * limit
	}
	return out
}

func (m *Model) Inputs() int  { return m.inputs }
func (m *Model) Hidden() int  { return m.hidden }
func (m *Model) Classes() int { return m.classes }

// Weights returns copies of W1, b1, W2 and b2, in that order.
func (m *Model) Weights() []tensor.Tensor {
	return []tensor.Tensor{
		m.w1.Clone().(tensor.Tensor),
		m.b1.Clone().(tensor.Tensor),
		m.w2.Clone().(tensor.Tensor),
		m.b2.Clone().(tensor.Tensor),
	}
}

func (m *Model) parameters() []*tensor.Dense {
	return []*tensor.Dense{m.w1, m.b1, m.w2, m.b2}
}

func denseData(t *tensor.Dense) []float64 {
	return t.Data().([]float64)
}

