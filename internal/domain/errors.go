package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a request that cannot be scored or stored (e.g. empty text).
	ErrInvalidInput = errors.New("invalid input")
	// ErrDimensionMismatch signals vectors of different dimensionality in one comparison.
	// The corpus holds embeddings from incompatible model versions and must be re-embedded.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrDependency signals an external collaborator failure (embedding provider, reference lookup).
	ErrDependency = errors.New("dependency failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// DependencyKind classifies an external call failure.
type DependencyKind string

const (
	// DependencyTimeout is a call that exceeded its deadline.
	DependencyTimeout DependencyKind = "timeout"
	// DependencyNetwork is a transport failure or a non-success status.
	DependencyNetwork DependencyKind = "network"
	// DependencyMalformed is a response missing the expected fields.
	DependencyMalformed DependencyKind = "malformed"
)

// DependencyError describes a failed call to an external collaborator.
// It matches ErrDependency and the underlying cause via errors.Is.
type DependencyError struct {
	Dependency string
	Kind       DependencyKind
	Err        error
}

func (e *DependencyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Dependency, e.Kind, ErrDependency.Error())
	}
	return fmt.Sprintf("%s %s: %s", e.Dependency, e.Kind, e.Err.Error())
}

func (e *DependencyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDependency}
	}
	return []error{ErrDependency, e.Err}
}

// NewDependencyError creates a dependency failure of the given kind.
func NewDependencyError(dependency string, kind DependencyKind, err error) error {
	return &DependencyError{Dependency: dependency, Kind: kind, Err: err}
}
