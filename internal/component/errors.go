// Package component implements the training stages. Each stage is configured once, consumes the
// artifact of the previous stage and produces its own.
package component

import "github.com/pkg/errors"

var (
	// ErrEmptyDataset is returned when the source has no record.
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrSchemaMismatch describes a partition which does not match the schema. Validation records
	// it in the artifact message rather than failing.
	ErrSchemaMismatch = errors.New("dataset does not match schema")
	// ErrInvalidData is returned when transformation receives a failed validation artifact.
	ErrInvalidData = errors.New("data validation failed")
	// ErrModelBelowExpected is returned when no candidate model reaches the expected score.
	ErrModelBelowExpected = errors.New("model score is below the expected score")
)
