// Package ingest runs the document processing pipeline: extract text from
// each uploaded blob, split it into overlapping chunks, embed the chunks
// and load them into a fresh similarity index.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/helper"
	"docchat/internal/index"
	"docchat/internal/models"
	"docchat/internal/parser"
)

// ErrNoDocuments is returned when Build is called with an empty batch.
var ErrNoDocuments = errors.New("no documents provided")

// Builder turns a batch of uploaded documents into a queryable index. The
// pipeline is synchronous; it either returns a complete index or an error
// naming every document that failed, never a silently degraded index.
type Builder struct {
	embedder embeddings.Embedder
	cfg      *config.Config
	db       *bun.DB // only set for the postgres backend
}

func NewBuilder(embedder embeddings.Embedder, cfg *config.Config, db *bun.DB) *Builder {
	return &Builder{embedder: embedder, cfg: cfg, db: db}
}

// Build runs the full pipeline and returns the new index handle. The caller
// is responsible for binding it into session state in place of any prior
// handle.
func (b *Builder) Build(ctx context.Context, docs []parser.Document) (index.Index, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	var (
		chunks    []models.Chunk
		parseErrs []error
	)
	for _, doc := range docs {
		text, err := parser.ExtractText(doc)
		if err != nil {
			parseErrs = append(parseErrs, err)
			continue
		}
		pieces := chunker.Split(text, b.cfg.RAG.ChunkSize, b.cfg.RAG.ChunkOverlap, b.cfg.RAG.ChunkSeparator)
		for i, piece := range pieces {
			chunks = append(chunks, models.Chunk{
				Content:        piece,
				SourceFilename: doc.Name,
				ChunkID:        i + 1,
			})
		}
	}
	if len(parseErrs) > 0 {
		return nil, errors.Join(parseErrs...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: documents contained no text", ErrNoDocuments)
	}

	log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("Embedding document chunks")

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := embedding.EmbedTexts(ctx, b.embedder, texts)
	if err != nil {
		return nil, err
	}

	idx, err := b.newIndex(ctx)
	if err != nil {
		return nil, err
	}
	if err := idx.Add(ctx, chunks, vectors); err != nil {
		return nil, err
	}

	log.Info().Int("chunks", len(chunks)).Str("backend", b.cfg.RAG.Backend).Msg("Built document index")
	return idx, nil
}

func (b *Builder) newIndex(ctx context.Context) (index.Index, error) {
	collection, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}

	switch b.cfg.RAG.Backend {
	case "postgres":
		if b.db == nil {
			return nil, errors.New("postgres backend selected but no database configured")
		}
		return index.NewPgVectorIndex(ctx, b.db, collection)
	default:
		if b.cfg.RAG.DBPath != "" {
			if err := helper.CreateFolder(b.cfg.RAG.DBPath); err != nil {
				return nil, err
			}
		}
		return index.NewChromemIndex(b.cfg.RAG.DBPath, collection)
	}
}
