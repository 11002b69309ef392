package model_test

import (
	"testing"

	"github.com/grexie/categorize/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	p := model.Prediction{
		{Class: 0, Probability: 0.2},
		{Class: 1, Probability: 0.5},
		{Class: 2, Probability: 0.2},
		{Class: 3, Probability: 0.1},
	}

	ranked := p.Rank()
	assert.Equal(t, []int{1, 0, 2, 3}, classes(ranked))
	assert.Equal(t, []int{0, 1, 2, 3}, classes(p))
	assert.Equal(t, 1, p.Best().Class)
	assert.Equal(t, -1, model.Prediction{}.Best().Class)
}

func classes(p model.Prediction) []int {
	out := make([]int, len(p))
	for i, e := range p {
		out[i] = e.Class
	}
	return out
}

func TestFormat(t *testing.T) {
	p := model.Prediction{
		{Class: 0, Probability: 0.0123},
		{Class: 1, Probability: 0.00456},
		{Class: 2, Probability: 0.98314},
	}

	assert.Equal(t, "basic (98.31%)\npremium (1.23%)\nmedium (0.46%)", p.Format([]string{"premium", "medium", "basic"}))
	assert.Equal(t, "#2 (98.31%)\npremium (1.23%)\n#1 (0.46%)", p.Format([]string{"premium"}))
}
