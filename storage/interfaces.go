package storage

import (
	"context"

	"github.com/poiesic/advisor/core"
)

// Filter selects documents by exact metadata.
// Set fields are combined with AND; at least one field must be set.
type Filter struct {
	Number    core.CourseID
	NumberRaw string
}

// IsEmpty reports whether no field of the filter is set.
func (f Filter) IsEmpty() bool {
	return f.Number == "" && f.NumberRaw == ""
}

// CourseRepository stores course documents partitioned into collections.
type CourseRepository interface {
	// AddDocuments stores documents in a collection, replacing any document
	// with the same ID. Sets InsertedAt if not already set.
	AddDocuments(ctx context.Context, collection core.Collection, docs ...*core.CourseDocument) ([]*core.CourseDocument, error)

	// GetDocuments retrieves documents by ID.
	// Returns only the documents that exist (no error for missing IDs), in request order.
	GetDocuments(ctx context.Context, collection core.Collection, ids ...core.ID) ([]*core.CourseDocument, error)

	// FindByFilter returns every document of the collection matching the filter.
	// Returns ErrInvalidQuery for an empty filter.
	FindByFilter(ctx context.Context, collection core.Collection, filter Filter) ([]*core.CourseDocument, error)

	// FindSimilar ranks the documents of a collection against vector.
	// Results are ordered by similarity score (highest first), up to limit.
	FindSimilar(ctx context.Context, collection core.Collection, vector []float32, limit int) ([]*core.DocumentMatch, error)

	// CountDocuments returns the number of documents in a collection.
	CountDocuments(ctx context.Context, collection core.Collection) (int, error)

	// DropCollection removes every document and index entry of a collection.
	DropCollection(ctx context.Context, collection core.Collection) error

	// Close releases resources held by the repository.
	Close() error
}
