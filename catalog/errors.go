package catalog

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRepositoryRequired is returned when a Loader is created without a repository
	ErrRepositoryRequired = errors.New("course repository is required")

	// ErrEmbedderRequired is returned when a Loader is created without an embedder
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidCatalog is returned when the catalog JSON cannot be decoded
	ErrInvalidCatalog = errors.New("invalid course catalog")

	// ErrEmbeddingMismatch is returned when the embedder returns the wrong number of vectors
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)
