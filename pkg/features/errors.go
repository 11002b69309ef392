package features

import "errors"

// ErrEncoding is returned when a record or label cannot be encoded under a
// Spec: unknown category, missing attribute, wrong value type, or a
// malformed Spec.
var ErrEncoding = errors.New("features: encoding error")
