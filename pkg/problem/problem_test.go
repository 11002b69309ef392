package problem_test

import (
	"context"
	"testing"

	"github.com/grexie/categorize/pkg/features"
	"github.com/grexie/categorize/pkg/fixtures"
	"github.com/grexie/categorize/pkg/model"
	"github.com/grexie/categorize/pkg/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	names, err := problem.List(fixtures.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "triage"}, names)
}

func TestCustomersEncoding(t *testing.T) {
	def, err := problem.Load(fixtures.FS, "customers")
	require.NoError(t, err)

	ds, err := def.Dataset()
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	require.Equal(t, 7, ds.Inputs())

	assert.InDeltaSlice(t, []float64{0.333, 1, 0, 0, 1, 0, 0}, ds.At(0).Features, 0.01)
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 1, 0}, ds.At(1).Features)
	assert.Equal(t, []float64{1, 0, 0, 1, 0, 0, 1}, ds.At(2).Features)
	assert.Equal(t, []float64{0, 0, 1}, ds.At(2).Label)
}

func TestTriageEncoding(t *testing.T) {
	def, err := problem.Load(fixtures.FS, "triage.yaml")
	require.NoError(t, err)

	ds, err := def.Dataset()
	require.NoError(t, err)
	require.Equal(t, 8, ds.Len())
	assert.InDeltaSlice(t, []float64{0.455, 0.134, 0.4, 0.95}, ds.At(0).Features, 0.001)
	assert.InDeltaSlice(t, []float64{0.818, 1, 1, 0}, ds.At(3).Features, 0.001)

	spec, err := def.Spec()
	require.NoError(t, err)
	x, err := features.Encode(def.Queries[0].Record, spec)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.11, 0.95, 0.55}, x, 0.001)
}

func TestRunCustomers(t *testing.T) {
	def, err := problem.Load(fixtures.FS, "customers")
	require.NoError(t, err)

	epochs := 0
	result, err := problem.Run(context.Background(), def, problem.RunOptions{
		OnEpochEnd: func(model.EpochStats) { epochs++ },
	})
	require.NoError(t, err)
	assert.Equal(t, def.Epochs, epochs)
	assert.Equal(t, 100.0, result.Metrics.Accuracy)

	require.Len(t, result.Queries, 1)
	q := result.Queries[0]
	assert.Equal(t, "Zé", q.Name)
	assert.Equal(t, 2, q.Prediction.Best().Class, result.Format())
	assert.Regexp(t, `^basic \(\d+\.\d{2}%\)\n(premium|medium) \(\d+\.\d{2}%\)\n(premium|medium) \(\d+\.\d{2}%\)$`, result.Format())

	ranked, err := result.Rank(features.Record{"age": 39, "colour": "verde", "location": "Curitiba"})
	require.NoError(t, err)
	assert.Equal(t, 2, ranked[0].Class)

	_, err = result.Rank(features.Record{"age": 39, "colour": "roxo", "location": "Curitiba"})
	require.ErrorIs(t, err, features.ErrEncoding)
}

func TestRunTriage(t *testing.T) {
	def, err := problem.Load(fixtures.FS, "triage")
	require.NoError(t, err)

	result, err := problem.Run(context.Background(), def, problem.RunOptions{})
	require.NoError(t, err)

	require.Len(t, result.Queries, 1)
	best := result.Queries[0].Prediction.Best()
	assert.NotEqual(t, "azul", def.Labels[best.Class], result.Format())
}

func TestRunIsDeterministic(t *testing.T) {
	def, err := problem.Load(fixtures.FS, "customers")
	require.NoError(t, err)

	opts := problem.RunOptions{Seed: 11, Epochs: 20}
	a, err := problem.Run(context.Background(), def, opts)
	require.NoError(t, err)
	b, err := problem.Run(context.Background(), def, opts)
	require.NoError(t, err)

	assert.Equal(t, a.History.Losses(), b.History.Losses())
	assert.Equal(t, a.Format(), b.Format())
	assert.Len(t, a.History.Epochs, 20)
}

func toyDefinition(labels, attrs, clamp, training string) string {
	return "name: toy\n" +
		"labels: " + labels + "\n" +
		"features: " + attrs + "\n" +
		"clamp: " + clamp + "\n" +
		"hidden: 4\n" +
		"epochs: 10\n" +
		"learn_rate: 0.01\n" +
		"training: " + training + "\n"
}

func TestParseInvalid(t *testing.T) {
	const (
		labels   = "[a, b]"
		attrs    = "[{name: x, kind: continuous, min: 0, max: 1}]"
		training = "[{label: a, record: {x: 0}}]"
	)

	def, err := problem.Parse([]byte(toyDefinition(labels, attrs, "extrapolate", training)))
	require.NoError(t, err)
	spec, err := def.Spec()
	require.NoError(t, err)
	assert.Equal(t, features.Extrapolate, spec.Clamp)

	tests := map[string]string{
		"not yaml":         "name: [",
		"no name":          "hidden: 1\nepochs: 1\nlearn_rate: 0.1",
		"no hidden":        "name: toy\nepochs: 1\nlearn_rate: 0.1",
		"no epochs":        "name: toy\nhidden: 1\nlearn_rate: 0.1",
		"no learn rate":    "name: toy\nhidden: 1\nepochs: 1",
		"no training":      toyDefinition(labels, attrs, "clamp", "[]"),
		"unknown kind":     toyDefinition(labels, "[{name: x, kind: ordinal}]", "clamp", training),
		"inverted range":   toyDefinition(labels, "[{name: x, kind: continuous, min: 1, max: 0}]", "clamp", training),
		"bad clamp":        toyDefinition(labels, attrs, "sometimes", training),
		"duplicate labels": toyDefinition("[a, a]", attrs, "clamp", training),
		"unlabeled record": toyDefinition(labels, attrs, "clamp", "[{record: {x: 0}}]"),
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := problem.Parse([]byte(doc))
			require.ErrorIs(t, err, problem.ErrInvalidDefinition)
		})
	}
}

func TestRunEncodingError(t *testing.T) {
	def, err := problem.Parse([]byte(`
name: toy
labels: [a, b]
features:
  - {name: colour, kind: categorical, values: [red, blue]}
hidden: 4
epochs: 1
learn_rate: 0.01
training:
  - {label: a, record: {colour: green}}
`))
	require.NoError(t, err)

	_, err = problem.Run(context.Background(), def, problem.RunOptions{})
	require.ErrorIs(t, err, features.ErrEncoding)
}
