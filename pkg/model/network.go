package model

import (
	"fmt"
	"slices"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// network is the expression graph of a Model's forward pass for a fixed
// batch size. Parameter nodes are bound to copies of the model's tensors,
// so running the graph never touches the model itself.
type network struct {
	g *gorgonia.ExprGraph

	x      *gorgonia.Node
	w1, b1 *gorgonia.Node
	w2, b2 *gorgonia.Node
	probs  *gorgonia.Node
}

func newNetwork(m *Model, batchSize int) (*network, error) {
	g := gorgonia.NewGraph()
	n := &network{g: g}

	n.x = gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(batchSize, m.inputs),
		gorgonia.WithName("x"))

	n.w1 = gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(m.inputs, m.hidden),
		gorgonia.WithValue(m.w1.Clone().(*tensor.Dense)),
		gorgonia.WithName("w1"))
	n.b1 = gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(1, m.hidden),
		gorgonia.WithValue(rowVector(m.b1)),
		gorgonia.WithName("b1"))
	n.w2 = gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(m.hidden, m.classes),
		gorgonia.WithValue(m.w2.Clone().(*tensor.Dense)),
		gorgonia.WithName("w2"))
	n.b2 = gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(1, m.classes),
		gorgonia.WithValue(rowVector(m.b2)),
		gorgonia.WithName("b2"))

	l0, err := gorgonia.Mul(n.x, n.w1)
	if err != nil {
		return nil, fmt.Errorf("hidden layer: %v", err)
	}
	l0, err = gorgonia.BroadcastAdd(l0, n.b1, nil, []byte{0})
	if err != nil {
		return nil, fmt.Errorf("hidden bias: %v", err)
	}
	l0Act, err := gorgonia.Rectify(l0)
	if err != nil {
		return nil, fmt.Errorf("hidden activation: %v", err)
	}

	l1, err := gorgonia.Mul(l0Act, n.w2)
	if err != nil {
		return nil, fmt.Errorf("output layer: %v", err)
	}
	l1, err = gorgonia.BroadcastAdd(l1, n.b2, nil, []byte{0})
	if err != nil {
		return nil, fmt.Errorf("output bias: %v", err)
	}
	if n.probs, err = softmaxRows(l1); err != nil {
		return nil, fmt.Errorf("output activation: %v", err)
	}

	return n, nil
}

// softmaxRows normalises each row of a [batch, classes] matrix, subtracting
// the row's own maximum before exponentiating so every exponent is <= 0 and
// every row sum is >= 1. gorgonia.SoftMax is not used because the tensor
// kernel seeds every row's max with the first element of the whole tensor.
func softmaxRows(logits *gorgonia.Node) (*gorgonia.Node, error) {
	rowMax, err := gorgonia.Max(logits, 1)
	if err != nil {
		return nil, fmt.Errorf("row max: %v", err)
	}
	shifted, err := gorgonia.BroadcastSub(logits, rowMax, nil, []byte{1})
	if err != nil {
		return nil, fmt.Errorf("shift: %v", err)
	}
	exps, err := gorgonia.Exp(shifted)
	if err != nil {
		return nil, fmt.Errorf("exp: %v", err)
	}
	sums, err := gorgonia.Sum(exps, 1)
	if err != nil {
		return nil, fmt.Errorf("row sum: %v", err)
	}
	return gorgonia.BroadcastHadamardDiv(exps, sums, nil, []byte{1})
}

func (n *network) learnables() gorgonia.Nodes {
	return gorgonia.Nodes{n.w1, n.b1, n.w2, n.b2}
}

// commit copies the graph's current parameter values into m.
func (n *network) commit(m *Model) error {
	for i, node := range n.learnables() {
		data, err := nodeData(node)
		if err != nil {
			return fmt.Errorf("reading %s: %v", node.Name(), err)
		}
		copy(denseData(m.parameters()[i]), data)
	}
	return nil
}

// rowVector reshapes a bias vector of length n into a fresh [1, n] matrix.
func rowVector(t *tensor.Dense) *tensor.Dense {
	data := denseData(t)
	return tensor.New(
		tensor.WithShape(1, len(data)),
		tensor.WithBacking(slices.Clone(data)))
}

func nodeData(n *gorgonia.Node) ([]float64, error) {
	v := n.Value()
	if v == nil {
		return nil, fmt.Errorf("node has nil value")
	}
	t, ok := v.(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("value is not a tensor")
	}
	data, ok := t.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("tensor is not float64")
	}
	return data, nil
}
