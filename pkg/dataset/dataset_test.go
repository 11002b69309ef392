package dataset_test

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/grexie/categorize/pkg/dataset"
	"github.com/grexie/categorize/pkg/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toy(t *testing.T) *dataset.Dataset {
	d, err := dataset.New([]dataset.Sample{
		{Features: []float64{0.33, 1, 0, 0, 1, 0, 0}, Label: []float64{1, 0, 0}},
		{Features: []float64{0, 0, 1, 0, 0, 1, 0}, Label: []float64{0, 1, 0}},
		{Features: []float64{1, 0, 0, 1, 0, 0, 1}, Label: []float64{0, 0, 1}},
	})
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	d := toy(t)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 7, d.Inputs())
	assert.Equal(t, 3, d.Classes())
	assert.Equal(t, 2, d.Class(2))
}

func TestNewCopiesSamples(t *testing.T) {
	x := []float64{1, 2}
	d, err := dataset.New([]dataset.Sample{{Features: x, Label: []float64{0, 1}}})
	require.NoError(t, err)

	x[0] = 99
	assert.Equal(t, []float64{1, 2}, d.At(0).Features)

	s := d.At(0)
	s.Features[1] = 42
	assert.Equal(t, []float64{1, 2}, d.At(0).Features)
}

func TestNewRejectsInvalidSamples(t *testing.T) {
	tests := map[string][]dataset.Sample{
		"ragged features": {
			{Features: []float64{1, 2}, Label: []float64{1, 0}},
			{Features: []float64{1}, Label: []float64{1, 0}},
		},
		"ragged labels": {
			{Features: []float64{1}, Label: []float64{1, 0}},
			{Features: []float64{1}, Label: []float64{1, 0, 0}},
		},
		"label not one-hot": {{Features: []float64{1}, Label: []float64{0.5, 0.5}}},
		"label all zero":    {{Features: []float64{1}, Label: []float64{0, 0}}},
		"label two hot":     {{Features: []float64{1}, Label: []float64{1, 1}}},
		"nan feature":       {{Features: []float64{math.NaN()}, Label: []float64{1}}},
		"no features":       {{Label: []float64{1}}},
		"no label":          {{Features: []float64{1}}},
	}

	for name, samples := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := dataset.New(samples)
			require.ErrorIs(t, err, dataset.ErrInvalidSample)
		})
	}
}

func TestEmpty(t *testing.T) {
	d, err := dataset.New(nil)
	require.NoError(t, err)
	assert.Zero(t, d.Len())
	assert.Zero(t, d.Inputs())
}

func TestPermutation(t *testing.T) {
	d := toy(t)

	p1 := d.Permutation(rand.New(rand.NewPCG(1, 2)))
	p2 := d.Permutation(rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, p1, p2)

	sorted := slices.Clone(p1)
	slices.Sort(sorted)
	assert.Equal(t, []int{0, 1, 2}, sorted)

	assert.Equal(t, []float64{0.33, 1, 0, 0, 1, 0, 0}, d.At(0).Features)
}

func TestFlattenBatchPadsWithZeros(t *testing.T) {
	d := toy(t)

	x, y := d.FlattenBatch([]int{2, 0}, 3)
	require.Len(t, x, 21)
	require.Len(t, y, 9)

	assert.Equal(t, []float64{1, 0, 0, 1, 0, 0, 1}, x[0:7])
	assert.Equal(t, []float64{0.33, 1, 0, 0, 1, 0, 0}, x[7:14])
	assert.Equal(t, make([]float64, 7), x[14:])
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0, 0, 0, 0}, y)
}

func TestFromRecords(t *testing.T) {
	spec := features.NewSpec(
		features.ContinuousAttribute("age", 25, 40),
		features.CategoricalAttribute("colour", "azul", "vermelho", "verde"),
	)
	labels := features.NewLabelSpec("premium", "basic")

	d, err := dataset.FromRecords(
		[]features.Record{{"age": 25, "colour": "verde"}, {"age": 40, "colour": "azul"}},
		[]string{"basic", "premium"},
		spec, labels,
	)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Inputs())
	assert.Equal(t, 2, d.Classes())
	assert.Equal(t, 1, d.Class(0))

	_, err = dataset.FromRecords([]features.Record{{"age": 25, "colour": "verde"}}, []string{"gold"}, spec, labels)
	require.ErrorIs(t, err, features.ErrEncoding)

	_, err = dataset.FromRecords([]features.Record{{"age": 25, "colour": "verde"}}, nil, spec, labels)
	require.ErrorIs(t, err, dataset.ErrInvalidSample)
}
