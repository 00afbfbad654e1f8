package index

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"docchat/internal/models"
)

const compress = false

// ChromemIndex is an Index backed by a chromem-go collection, either
// in-memory or persisted under a directory.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemIndex creates a chromem-backed index. An empty dbPath keeps the
// whole collection in memory; otherwise it is persisted under dbPath.
// Embeddings are always supplied by the caller, so no embedding function is
// registered with the collection.
func NewChromemIndex(dbPath, collectionName string) (*ChromemIndex, error) {
	var (
		db  *chromem.DB
		err error
	)
	if dbPath == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &ChromemIndex{db: db, collection: collection}, nil
}

func (m *ChromemIndex) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("%s-%d", chunk.SourceFilename, chunk.ChunkID),
			Content: chunk.Content,
			Metadata: map[string]string{
				"source":   chunk.SourceFilename,
				"chunk_id": fmt.Sprintf("%d", chunk.ChunkID),
			},
			Embedding: vectors[i],
		})
	}

	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (m *ChromemIndex) Query(ctx context.Context, vector []float32, k int) ([]string, error) {
	count := m.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	contents := make([]string, 0, len(results))
	for _, result := range results {
		contents = append(contents, result.Content)
	}
	return contents, nil
}

func (m *ChromemIndex) Count(ctx context.Context) (int, error) {
	return m.collection.Count(), nil
}
