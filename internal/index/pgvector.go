package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docchat/internal/config"
	"docchat/internal/models"
)

// ChunkRow is one embedded chunk stored in Postgres. Rows are scoped to a
// collection so each rebuilt index only sees its own chunks. The embedding
// column is sized for 768-dimension models.
type ChunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Collection    string    `bun:"collection,notnull"`
	Content       string    `bun:"content,notnull"`
	Source        string    `bun:"source,notnull"`
	ChunkID       int       `bun:"chunk_id,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
}

// PgVectorIndex is an Index backed by a pgvector column, ordered with the
// `<->` distance operator.
type PgVectorIndex struct {
	db         *bun.DB
	collection string
}

// ConnectDB opens a bun handle over the pgdriver connector.
func ConnectDB(cfg *config.DatabaseConfig) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// NewPgVectorIndex creates the chunks table if needed and clears any rows
// left from a previous index with the same collection name.
func NewPgVectorIndex(ctx context.Context, db *bun.DB, collection string) (*PgVectorIndex, error) {
	if _, err := db.NewCreateTable().Model((*ChunkRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create chunks table: %v", err)
	}
	if _, err := db.NewDelete().Model((*ChunkRow)(nil)).Where("collection = ?", collection).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear collection %s: %v", collection, err)
	}
	return &PgVectorIndex{db: db, collection: collection}, nil
}

func (m *PgVectorIndex) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}

	rows := make([]ChunkRow, len(chunks))
	for i, chunk := range chunks {
		rows[i] = ChunkRow{
			Collection: m.collection,
			Content:    chunk.Content,
			Source:     chunk.SourceFilename,
			ChunkID:    chunk.ChunkID,
			Embedding:  vectors[i],
		}
	}
	if _, err := m.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store chunks: %v", err)
	}
	return nil
}

func (m *PgVectorIndex) Query(ctx context.Context, vector []float32, k int) ([]string, error) {
	var rows []ChunkRow
	err := m.db.NewSelect().
		Model(&rows).
		Column("content").
		Where("collection = ?", m.collection).
		OrderExpr("embedding <-> ?", vector).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	contents := make([]string, 0, len(rows))
	for _, row := range rows {
		contents = append(contents, row.Content)
	}
	return contents, nil
}

func (m *PgVectorIndex) Count(ctx context.Context) (int, error) {
	return m.db.NewSelect().Model((*ChunkRow)(nil)).Where("collection = ?", m.collection).Count(ctx)
}
