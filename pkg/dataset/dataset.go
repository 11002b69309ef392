// Package dataset holds labeled, encoded samples ready for training.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/grexie/categorize/pkg/features"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidSample = errors.New("dataset: invalid sample")
	// ErrEmpty indicates an operation that needs at least one sample.
	ErrEmpty = errors.New("dataset: empty")
)

// Sample pairs an encoded feature vector with its one-hot label.
type Sample struct {
	Features []float64
	Label    []float64
}

// Dataset is an immutable, ordered collection of samples with uniform
// feature width D and class count K.
type Dataset struct {
	samples []Sample
	inputs  int
	classes int
}

// New validates and copies samples into a Dataset.
func New(samples []Sample) (*Dataset, error) {
	d := &Dataset{samples: make([]Sample, len(samples))}

	for i, s := range samples {
		if len(s.Features) == 0 {
			return nil, fmt.Errorf("%w: sample %d has no features", ErrInvalidSample, i)
		}
		if len(s.Label) == 0 {
			return nil, fmt.Errorf("%w: sample %d has no label", ErrInvalidSample, i)
		}
		if i == 0 {
			d.inputs, d.classes = len(s.Features), len(s.Label)
		}
		if len(s.Features) != d.inputs {
			return nil, fmt.Errorf("%w: sample %d has %d features, expected %d", ErrInvalidSample, i, len(s.Features), d.inputs)
		}
		if len(s.Label) != d.classes {
			return nil, fmt.Errorf("%w: sample %d has %d classes, expected %d", ErrInvalidSample, i, len(s.Label), d.classes)
		}
		for j, v := range s.Features {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: sample %d feature %d is not finite", ErrInvalidSample, i, j)
			}
		}
		if !isOneHot(s.Label) {
			return nil, fmt.Errorf("%w: sample %d label %v is not one-hot", ErrInvalidSample, i, s.Label)
		}

		d.samples[i] = Sample{
			Features: append([]float64(nil), s.Features...),
			Label:    append([]float64(nil), s.Label...),
		}
	}

	return d, nil
}

// FromRecords encodes records and their labels into a Dataset.
func FromRecords(records []features.Record, labels []string, spec features.Spec, labelSpec features.LabelSpec) (*Dataset, error) {
	if len(records) != len(labels) {
		return nil, fmt.Errorf("%w: %d records but %d labels", ErrInvalidSample, len(records), len(labels))
	}

	samples := make([]Sample, len(records))
	for i, record := range records {
		x, err := features.Encode(record, spec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		y, err := labelSpec.EncodeLabel(labels[i])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		samples[i] = Sample{Features: x, Label: y}
	}

	return New(samples)
}

func isOneHot(label []float64) bool {
	ones := 0
	for _, v := range label {
		switch v {
		case 1:
			ones++
		case 0:
		default:
			return false
		}
	}
	return ones == 1
}

func (d *Dataset) Len() int {
	return len(d.samples)
}

// Inputs is the feature width D, or 0 for an empty dataset.
func (d *Dataset) Inputs() int {
	return d.inputs
}

// Classes is the label width K, or 0 for an empty dataset.
func (d *Dataset) Classes() int {
	return d.classes
}

// At returns a copy of sample i.
func (d *Dataset) At(i int) Sample {
	s := d.samples[i]
	return Sample{
		Features: append([]float64(nil), s.Features...),
		Label:    append([]float64(nil), s.Label...),
	}
}

// Class is the index of the hot entry in sample i's label.
func (d *Dataset) Class(i int) int {
	return floats.MaxIdx(d.samples[i].Label)
}

// Permutation returns a uniformly random visiting order over the samples.
// The dataset itself is left untouched.
func (d *Dataset) Permutation(rng *rand.Rand) []int {
	return rng.Perm(len(d.samples))
}

// FlattenBatch writes the features and labels of the samples at indices
// into row-major batch buffers of batchSize rows. Rows beyond len(indices)
// stay zero.
func (d *Dataset) FlattenBatch(indices []int, batchSize int) (x, y []float64) {
	x = make([]float64, batchSize*d.inputs)
	y = make([]float64, batchSize*d.classes)

	for i, idx := range indices {
		copy(x[i*d.inputs:], d.samples[idx].Features)
		copy(y[i*d.classes:], d.samples[idx].Label)
	}
	return x, y
}
