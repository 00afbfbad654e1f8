package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docchat/internal/config"
	"docchat/internal/parser"
)

type fakeEmbedder struct{ err error }

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.RAG.ChunkSize = 50
	cfg.RAG.ChunkOverlap = 10
	return cfg
}

func TestBuildEmptyBatch(t *testing.T) {
	b := NewBuilder(&fakeEmbedder{}, testConfig(), nil)
	_, err := b.Build(context.Background(), nil)
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("err = %v, want ErrNoDocuments", err)
	}
}

func TestBuildReportsEveryFailedDocument(t *testing.T) {
	b := NewBuilder(&fakeEmbedder{}, testConfig(), nil)
	docs := []parser.Document{
		{Name: "good.txt", Data: []byte("some perfectly fine text")},
		{Name: "bad-one.pdf", Data: []byte("not a pdf")},
		{Name: "bad-two.png", Data: []byte{1, 2, 3}},
	}

	_, err := b.Build(context.Background(), docs)
	if err == nil {
		t.Fatal("expected error for unparseable documents")
	}
	if !strings.Contains(err.Error(), "bad-one.pdf") {
		t.Errorf("error should name bad-one.pdf: %v", err)
	}
	if !strings.Contains(err.Error(), "bad-two.png") {
		t.Errorf("error should name bad-two.png: %v", err)
	}
}

func TestBuildIndexesAllChunks(t *testing.T) {
	b := NewBuilder(&fakeEmbedder{}, testConfig(), nil)
	docs := []parser.Document{
		{Name: "a.txt", Data: []byte(strings.Repeat("alpha beta gamma ", 20))},
		{Name: "b.txt", Data: []byte("short document")},
	}

	idx, err := b.Build(context.Background(), docs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	count, err := idx.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count < 2 {
		t.Errorf("index count = %d, want at least one chunk per document", count)
	}
}

func TestBuildEmbeddingFailure(t *testing.T) {
	embErr := errors.New("backend down")
	b := NewBuilder(&fakeEmbedder{err: embErr}, testConfig(), nil)
	docs := []parser.Document{{Name: "a.txt", Data: []byte("text")}}

	_, err := b.Build(context.Background(), docs)
	if err == nil || !strings.Contains(err.Error(), "backend down") {
		t.Errorf("err = %v, want wrapped embedding failure", err)
	}
}

func TestBuildPostgresBackendNeedsDB(t *testing.T) {
	cfg := testConfig()
	cfg.RAG.Backend = "postgres"
	b := NewBuilder(&fakeEmbedder{}, cfg, nil)

	_, err := b.Build(context.Background(), []parser.Document{{Name: "a.txt", Data: []byte("text")}})
	if err == nil {
		t.Error("postgres backend without a database should fail")
	}
}
