package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type Probability struct {
	Class       int
	Probability float64
}

// Prediction holds one Probability per class. As returned by Predict it is
// in class-index order; Rank reorders a copy.
type Prediction []Probability

// Rank returns a copy sorted by descending probability, ties broken by the
// smaller class index.
func (p Prediction) Rank() Prediction {
	ranked := slices.Clone(p)
	slices.SortStableFunc(ranked, func(a, b Probability) int {
		if c := cmp.Compare(b.Probability, a.Probability); c != 0 {
			return c
		}
		return cmp.Compare(a.Class, b.Class)
	})
	return ranked
}

// Best is the most probable class.
func (p Prediction) Best() Probability {
	if len(p) == 0 {
		return Probability{Class: -1}
	}
	return p.Rank()[0]
}

// Probabilities returns the probabilities in the prediction's current order.
func (p Prediction) Probabilities() []float64 {
	out := make([]float64, len(p))
	for i, e := range p {
		out[i] = e.Probability
	}
	return out
}

// Format renders the ranking as "<label> (<percent>%)" lines, most probable
// first, e.g. "basic (97.12%)".
func (p Prediction) Format(labels []string) string {
	lines := make([]string, 0, len(p))
	for _, e := range p.Rank() {
		label := fmt.Sprintf("#%d", e.Class)
		if e.Class >= 0 && e.Class < len(labels) {
			label = labels[e.Class]
		}
		lines = append(lines, fmt.Sprintf("%s (%.2f%%)", label, e.Probability*100))
	}
	return strings.Join(lines, "\n")
}
