package models

import "errors"

// Custom errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("insufficient data")
	ErrMissingArtifact  = errors.New("model artifact missing")
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidID        = errors.New("invalid ID format")
)
