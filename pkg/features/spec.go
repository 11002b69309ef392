package features

import (
	"fmt"
	"math"
)

type Kind int

const (
	Continuous Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ClampMode controls what happens to continuous values outside [Min, Max].
type ClampMode int

const (
	// Clamp pins normalised values to [0, 1].
	Clamp ClampMode = iota
	// Extrapolate leaves normalised values unbounded.
	Extrapolate
)

// Attribute describes how one named attribute of a record is encoded.
// Continuous attributes use Min and Max; categorical attributes use Values,
// whose order fixes the one-hot positions.
type Attribute struct {
	Name   string
	Kind   Kind
	Min    float64
	Max    float64
	Values []string
}

func ContinuousAttribute(name string, min, max float64) Attribute {
	return Attribute{Name: name, Kind: Continuous, Min: min, Max: max}
}

func CategoricalAttribute(name string, values ...string) Attribute {
	return Attribute{Name: name, Kind: Categorical, Values: append([]string(nil), values...)}
}

// Width is the number of vector positions the attribute occupies.
func (a Attribute) Width() int {
	if a.Kind == Categorical {
		return len(a.Values)
	}
	return 1
}

func (a Attribute) validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: attribute with empty name", ErrEncoding)
	}

	switch a.Kind {
	case Continuous:
		if math.IsNaN(a.Min) || math.IsNaN(a.Max) || math.IsInf(a.Min, 0) || math.IsInf(a.Max, 0) {
			return fmt.Errorf("%w: attribute %q has a non-finite range", ErrEncoding, a.Name)
		}
		if a.Max <= a.Min {
			return fmt.Errorf("%w: attribute %q has max %v <= min %v", ErrEncoding, a.Name, a.Max, a.Min)
		}
	case Categorical:
		if len(a.Values) == 0 {
			return fmt.Errorf("%w: attribute %q has no categories", ErrEncoding, a.Name)
		}
		seen := make(map[string]struct{}, len(a.Values))
		for _, v := range a.Values {
			if _, ok := seen[v]; ok {
				return fmt.Errorf("%w: attribute %q lists category %q twice", ErrEncoding, a.Name, v)
			}
			seen[v] = struct{}{}
		}
	default:
		return fmt.Errorf("%w: attribute %q has unknown kind %s", ErrEncoding, a.Name, a.Kind)
	}

	return nil
}

// Spec is the ordered list of attributes making up a feature vector.
type Spec struct {
	Attributes []Attribute
	Clamp      ClampMode
}

func NewSpec(attributes ...Attribute) Spec {
	return Spec{Attributes: attributes}
}

func (s Spec) Validate() error {
	if len(s.Attributes) == 0 {
		return fmt.Errorf("%w: spec has no attributes", ErrEncoding)
	}
	if s.Clamp != Clamp && s.Clamp != Extrapolate {
		return fmt.Errorf("%w: unknown clamp mode %d", ErrEncoding, s.Clamp)
	}

	names := make(map[string]struct{}, len(s.Attributes))
	for _, a := range s.Attributes {
		if err := a.validate(); err != nil {
			return err
		}
		if _, ok := names[a.Name]; ok {
			return fmt.Errorf("%w: attribute %q declared twice", ErrEncoding, a.Name)
		}
		names[a.Name] = struct{}{}
	}
	return nil
}

// Width is the length D of every vector encoded under the spec.
func (s Spec) Width() int {
	width := 0
	for _, a := range s.Attributes {
		width += a.Width()
	}
	return width
}

// Columns names each vector position, e.g. "age" or "colour=green".
func (s Spec) Columns() []string {
	columns := make([]string, 0, s.Width())
	for _, a := range s.Attributes {
		if a.Kind == Categorical {
			for _, v := range a.Values {
				columns = append(columns, a.Name+"="+v)
			}
		} else {
			columns = append(columns, a.Name)
		}
	}
	return columns
}
