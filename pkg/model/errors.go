package model

import "errors"

var (
	// ErrInvalidArchitecture indicates a non-positive layer dimension.
	ErrInvalidArchitecture = errors.New("model: invalid architecture")
	// ErrTraining indicates an empty dataset, a dataset/model shape mismatch,
	// invalid training options, or a non-finite loss.
	ErrTraining = errors.New("model: training error")
	// ErrShapeMismatch indicates an inference input of the wrong width.
	ErrShapeMismatch = errors.New("model: shape mismatch")
)
