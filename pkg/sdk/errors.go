package grounder

import (
	"fmt"

	"github.com/kaveri-labs/grounder/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidTenantID         = domain.ErrInvalidTenantID
	ErrVectorDimMismatch       = domain.ErrVectorDimMismatch
	ErrIndexCorrupted          = domain.ErrIndexCorrupted
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrGenerationProviderError = domain.ErrGenerationProviderError
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("grounder: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the server error code back to a domain sentinel so callers can
// use errors.Is without inspecting codes.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_tenant_id":
		return ErrInvalidTenantID
	case "vector_dim_mismatch":
		return ErrVectorDimMismatch
	case "index_corrupted":
		return ErrIndexCorrupted
	case "embedding_provider_error":
		return ErrEmbeddingProviderError
	case "generation_provider_error":
		return ErrGenerationProviderError
	default:
		return nil
	}
}
