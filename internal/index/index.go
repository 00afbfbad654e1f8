// Package index provides the similarity index that retrieval runs against.
// An Index is the opaque handle a session holds between "Process" actions;
// it is rebuilt from scratch, never incrementally updated.
package index

import (
	"context"
	"errors"

	"docchat/internal/models"
)

// ErrIndexUnavailable is returned when a query is attempted with no index
// bound. Callers are expected to check session state first.
var ErrIndexUnavailable = errors.New("no document index available")

// Index stores embedded chunks and answers nearest-neighbour queries.
type Index interface {
	// Add stores chunks with their precomputed embedding vectors.
	// len(chunks) must equal len(vectors).
	Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error

	// Query returns the content of the k chunks nearest to the query
	// vector, best match first. k is clamped to the index size.
	Query(ctx context.Context, vector []float32, k int) ([]string, error)

	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)
}
