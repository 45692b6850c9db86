package heritage

import "github.com/kailas-cloud/heritage/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrDependency             = domain.ErrDependency
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
