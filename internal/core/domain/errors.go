package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Search and delete paths never return it; an empty result or
	// no-op is the expected steady state there.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as
	// empty content passed to AddDocument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageUnavailable indicates the configured storage backend
	// is unreachable. It is retryable; retry policy belongs to the
	// caller.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrDimensionMismatch indicates a vector does not match the
	// configured embedding dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
