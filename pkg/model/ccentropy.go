package model

import (
	"fmt"

	"gorgonia.org/gorgonia"
)

// crossEntropyEpsilon keeps log away from zero probabilities.
const crossEntropyEpsilon = 1e-7

// CategoricalCrossEntropy is -Σ target·log(pred+ε) over every element,
// divided by count. Rows of target that are all zero contribute neither
// loss nor gradient, so count should be the number of real rows.
func CategoricalCrossEntropy(pred, target, count *gorgonia.Node) (*gorgonia.Node, error) {
	safePred, err := gorgonia.Add(pred, gorgonia.NewConstant(crossEntropyEpsilon))
	if err != nil {
		return nil, fmt.Errorf("failed to add epsilon: %v", err)
	}

	logPred, err := gorgonia.Log(safePred)
	if err != nil {
		return nil, fmt.Errorf("failed to compute log: %v", err)
	}

	losses, err := gorgonia.HadamardProd(target, logPred)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hadamard product: %v", err)
	}

	sumLosses, err := gorgonia.Sum(losses)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sum: %v", err)
	}

	meanLoss, err := gorgonia.Div(sumLosses, count)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean: %v", err)
	}

	return gorgonia.Neg(meanLoss)
}
