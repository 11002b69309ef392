package features

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Record is a raw entity: attribute name to a number or a category string.
type Record map[string]any

// Encode concatenates the encoded block of every attribute of spec, in spec
// order. The returned slice is freshly allocated.
func Encode(record Record, spec Spec) ([]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, 0, spec.Width())
	for _, a := range spec.Attributes {
		raw, ok := record[a.Name]
		if !ok {
			return nil, fmt.Errorf("%w: record is missing attribute %q", ErrEncoding, a.Name)
		}

		switch a.Kind {
		case Continuous:
			value, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: attribute %q: %v", ErrEncoding, a.Name, err)
			}
			out = append(out, normalizeValue(value, a.Min, a.Max, spec.Clamp))
		case Categorical:
			value, err := toCategory(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: attribute %q: %v", ErrEncoding, a.Name, err)
			}
			index := slices.Index(a.Values, value)
			if index < 0 {
				return nil, fmt.Errorf("%w: attribute %q has unknown category %q", ErrEncoding, a.Name, value)
			}
			out = append(out, OneHot(index, len(a.Values))...)
		}
	}

	return out, nil
}

// EncodeAll encodes every record under spec, stopping at the first error.
func EncodeAll(records []Record, spec Spec) ([][]float64, error) {
	out := make([][]float64, len(records))
	for i, record := range records {
		vector, err := Encode(record, spec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = vector
	}
	return out, nil
}

func toFloat(raw any) (float64, error) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int8:
		value = float64(v)
	case int16:
		value = float64(v)
	case int32:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint:
		value = float64(v)
	case uint8:
		value = float64(v)
	case uint16:
		value = float64(v)
	case uint32:
		value = float64(v)
	case uint64:
		value = float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as a number", v)
		}
		value = f
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("value %v is not finite", value)
	}
	return value, nil
}

func toCategory(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected a category string, got %T", raw)
	}
}
