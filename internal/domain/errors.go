package domain

import "errors"

// Sentinel errors shared between layers.
var (
	// ErrInvalidChunking signals invalid chunking parameters (window/overlap).
	ErrInvalidChunking = errors.New("invalid chunking parameters")
	// ErrVectorDimMismatch signals a vector dimension mismatch against an established index.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrIndexCorrupted signals an unreadable or misaligned persisted index pair.
	ErrIndexCorrupted = errors.New("index corrupted")
	// ErrInvalidAppend signals an append whose vector and text counts differ.
	ErrInvalidAppend = errors.New("vector and text counts differ")
	// ErrInvalidTenantID signals a tenant identifier unsafe for storage scoping.
	ErrInvalidTenantID = errors.New("invalid tenant id")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals an answer-generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)
