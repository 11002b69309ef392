package problem

import (
	"context"
	"fmt"
	"strings"

	"github.com/grexie/categorize/pkg/features"
	"github.com/grexie/categorize/pkg/model"
	"github.com/jedib0t/go-pretty/v6/progress"
)

type RunOptions struct {
	// Seed, when non-zero, replaces the definition's seed.
	Seed uint64
	// Epochs, when positive, replaces the definition's epoch count.
	Epochs int

	Progress   progress.Writer
	OnEpochEnd model.EpochFunc
}

type QueryResult struct {
	Name       string
	Features   []float64
	Prediction model.Prediction
}

type Result struct {
	Definition *Definition
	Model      *model.Model
	History    *model.History
	Metrics    model.Metrics
	Queries    []QueryResult
}

// Run encodes the training records, builds and trains a fresh model, then
// ranks every query.
func Run(ctx context.Context, def *Definition, opts RunOptions) (*Result, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	seed := def.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}
	epochs := def.Epochs
	if opts.Epochs > 0 {
		epochs = opts.Epochs
	}

	spec, err := def.Spec()
	if err != nil {
		return nil, err
	}
	ds, err := def.Dataset()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}

	m, err := model.Build(ds.Inputs(), def.Hidden, ds.Classes(), model.NewRand(seed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}

	history, err := model.Train(ctx, m, ds, model.TrainOptions{
		Epochs:     epochs,
		LearnRate:  def.LearnRate,
		BatchSize:  def.BatchSize,
		Seed:       seed,
		Progress:   opts.Progress,
		OnEpochEnd: opts.OnEpochEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}

	metrics, err := model.Evaluate(m, ds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}

	result := &Result{
		Definition: def,
		Model:      m,
		History:    history,
		Metrics:    metrics,
		Queries:    make([]QueryResult, len(def.Queries)),
	}
	for i, q := range def.Queries {
		x, err := features.Encode(q.Record, spec)
		if err != nil {
			return nil, fmt.Errorf("%s: query %d: %w", def.Name, i, err)
		}
		p, err := m.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("%s: query %d: %w", def.Name, i, err)
		}
		result.Queries[i] = QueryResult{Name: q.Name, Features: x, Prediction: p}
	}

	return result, nil
}

// Rank ranks a record that was not part of the definition.
func (r *Result) Rank(record features.Record) (model.Prediction, error) {
	spec, err := r.Definition.Spec()
	if err != nil {
		return nil, err
	}
	x, err := features.Encode(record, spec)
	if err != nil {
		return nil, err
	}
	p, err := r.Model.Predict(x)
	if err != nil {
		return nil, err
	}
	return p.Rank(), nil
}

// Format renders the ranking of every query, one block per query.
func (r *Result) Format() string {
	blocks := make([]string, len(r.Queries))
	for i, q := range r.Queries {
		blocks[i] = q.Prediction.Format(r.Definition.Labels)
	}
	return strings.Join(blocks, "\n\n")
}
