// Package problem describes one categorization problem instance (attribute
// encoding, labels, hyperparameters, training records and queries) as a
// YAML document, and runs it through the encode, build, train and predict
// pipeline.
package problem

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/grexie/categorize/pkg/dataset"
	"github.com/grexie/categorize/pkg/features"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDefinition = errors.New("problem: invalid definition")

type Attribute struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Min    float64  `yaml:"min,omitempty"`
	Max    float64  `yaml:"max,omitempty"`
	Values []string `yaml:"values,omitempty"`
}

// Entry is one raw record; Label is set for training entries.
type Entry struct {
	Name   string          `yaml:"name,omitempty"`
	Label  string          `yaml:"label,omitempty"`
	Record features.Record `yaml:"record"`
}

type Definition struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Features    []Attribute `yaml:"features"`
	Clamp       string      `yaml:"clamp,omitempty"`
	Labels      []string    `yaml:"labels"`

	Hidden    int     `yaml:"hidden"`
	Epochs    int     `yaml:"epochs"`
	LearnRate float64 `yaml:"learn_rate"`
	BatchSize int     `yaml:"batch_size,omitempty"`
	Seed      uint64  `yaml:"seed,omitempty"`

	Training []Entry `yaml:"training"`
	Queries  []Entry `yaml:"queries,omitempty"`
}

// Parse decodes and validates a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads the definition called name (".yaml" is appended when missing)
// from fsys.
func Load(fsys fs.FS, name string) (*Definition, error) {
	if path.Ext(name) == "" {
		name += ".yaml"
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return def, nil
}

// List returns the names of every YAML definition at the root of fsys.
func List(fsys fs.FS) ([]string, error) {
	matches, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(m, ".yaml")
	}
	slices.Sort(names)
	return names, nil
}

func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	if d.Hidden <= 0 {
		return fmt.Errorf("%w: %s: hidden must be positive, got %d", ErrInvalidDefinition, d.Name, d.Hidden)
	}
	if d.Epochs <= 0 {
		return fmt.Errorf("%w: %s: epochs must be positive, got %d", ErrInvalidDefinition, d.Name, d.Epochs)
	}
	if d.LearnRate <= 0 {
		return fmt.Errorf("%w: %s: learn_rate must be positive, got %v", ErrInvalidDefinition, d.Name, d.LearnRate)
	}
	if len(d.Training) == 0 {
		return fmt.Errorf("%w: %s: no training records", ErrInvalidDefinition, d.Name)
	}

	spec, err := d.Spec()
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.Name, err)
	}
	if err := d.LabelSpec().Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.Name, err)
	}
	for i, e := range d.Training {
		if e.Label == "" {
			return fmt.Errorf("%w: %s: training record %d has no label", ErrInvalidDefinition, d.Name, i)
		}
	}
	return nil
}

// Spec converts the attribute list into a features.Spec.
func (d *Definition) Spec() (features.Spec, error) {
	spec := features.Spec{Attributes: make([]features.Attribute, len(d.Features))}

	switch strings.ToLower(d.Clamp) {
	case "", "clamp":
		spec.Clamp = features.Clamp
	case "extrapolate":
		spec.Clamp = features.Extrapolate
	default:
		return features.Spec{}, fmt.Errorf("%w: %s: unknown clamp mode %q", ErrInvalidDefinition, d.Name, d.Clamp)
	}

	for i, a := range d.Features {
		switch strings.ToLower(a.Kind) {
		case "continuous":
			spec.Attributes[i] = features.ContinuousAttribute(a.Name, a.Min, a.Max)
		case "categorical":
			spec.Attributes[i] = features.CategoricalAttribute(a.Name, a.Values...)
		default:
			return features.Spec{}, fmt.Errorf("%w: %s: attribute %q has unknown kind %q", ErrInvalidDefinition, d.Name, a.Name, a.Kind)
		}
	}
	return spec, nil
}

func (d *Definition) LabelSpec() features.LabelSpec {
	return features.NewLabelSpec(d.Labels...)
}

// Dataset encodes the training records.
func (d *Definition) Dataset() (*dataset.Dataset, error) {
	spec, err := d.Spec()
	if err != nil {
		return nil, err
	}

	records := make([]features.Record, len(d.Training))
	labels := make([]string, len(d.Training))
	for i, e := range d.Training {
		records[i] = e.Record
		labels[i] = e.Label
	}
	return dataset.FromRecords(records, labels, spec, d.LabelSpec())
}
