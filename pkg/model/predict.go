package model

import (
	"fmt"
	"slices"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Predict completes one forward pass for a single feature vector and returns
// the probability of every class in class-index order. The model is not
// modified.
func (m *Model) Predict(features []float64) (Prediction, error) {
	if len(features) != m.inputs {
		return nil, fmt.Errorf("%w: got %d features, model expects %d", ErrShapeMismatch, len(features), m.inputs)
	}

	net, err := newNetwork(m, 1)
	if err != nil {
		return nil, err
	}

	xVal := tensor.New(
		tensor.WithShape(1, m.inputs),
		tensor.Of(tensor.Float64),
		tensor.WithBacking(slices.Clone(features)),
	)
	if err := gorgonia.Let(net.x, xVal); err != nil {
		return nil, fmt.Errorf("failed to bind input: %v", err)
	}

	vm := gorgonia.NewTapeMachine(net.g)
	defer vm.Close()

	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward pass failed: %v", err)
	}

	output, err := nodeData(net.probs)
	if err != nil {
		return nil, fmt.Errorf("reading probabilities: %v", err)
	}

	prediction := make(Prediction, m.classes)
	for i := range m.classes {
		prediction[i] = Probability{Class: i, Probability: output[i]}
	}
	return prediction, nil
}

// Predict is the free-function form of Model.Predict.
func Predict(m *Model, features []float64) (Prediction, error) {
	return m.Predict(features)
}
