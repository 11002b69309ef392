package features

import (
	"fmt"
	"slices"
)

// LabelSpec is the ordered list of category labels; a label's position is
// its class index.
type LabelSpec struct {
	Labels []string
}

func NewLabelSpec(labels ...string) LabelSpec {
	return LabelSpec{Labels: append([]string(nil), labels...)}
}

func (s LabelSpec) Validate() error {
	if len(s.Labels) == 0 {
		return fmt.Errorf("%w: label spec is empty", ErrEncoding)
	}
	seen := make(map[string]struct{}, len(s.Labels))
	for _, l := range s.Labels {
		if l == "" {
			return fmt.Errorf("%w: empty label", ErrEncoding)
		}
		if _, ok := seen[l]; ok {
			return fmt.Errorf("%w: label %q declared twice", ErrEncoding, l)
		}
		seen[l] = struct{}{}
	}
	return nil
}

// Len is the number of classes K.
func (s LabelSpec) Len() int {
	return len(s.Labels)
}

func (s LabelSpec) Index(label string) (int, error) {
	index := slices.Index(s.Labels, label)
	if index < 0 {
		return -1, fmt.Errorf("%w: unknown label %q", ErrEncoding, label)
	}
	return index, nil
}

// Label returns the label at class index i, or a placeholder if i is out of
// range.
func (s LabelSpec) Label(i int) string {
	if i < 0 || i >= len(s.Labels) {
		return fmt.Sprintf("#%d", i)
	}
	return s.Labels[i]
}

func (s LabelSpec) EncodeLabel(label string) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	index, err := s.Index(label)
	if err != nil {
		return nil, err
	}
	return OneHot(index, len(s.Labels)), nil
}

// EncodeLabel is the free-function form of LabelSpec.EncodeLabel.
func EncodeLabel(label string, spec LabelSpec) ([]float64, error) {
	return spec.EncodeLabel(label)
}
