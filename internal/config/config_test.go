package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.RAG.ChunkSize != 3000 {
		t.Errorf("chunk size = %d, want 3000", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.ChunkOverlap != 400 {
		t.Errorf("chunk overlap = %d, want 400", cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.ChunkSeparator != "\n" {
		t.Errorf("chunk separator = %q, want newline", cfg.RAG.ChunkSeparator)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", cfg.LLM.Temperature)
	}
	if cfg.RAG.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.RAG.Backend)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
llm:
  model: test-model
  temperature: 0.7
rag:
  chunk_size: 1000
  top_k: 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.LLM.Model != "test-model" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.RAG.ChunkSize != 1000 {
		t.Errorf("chunk size = %d", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.TopK != 7 {
		t.Errorf("top_k = %d", cfg.RAG.TopK)
	}
	// Unset fields still get defaults.
	if cfg.RAG.ChunkOverlap != 400 {
		t.Errorf("chunk overlap = %d, want default 400", cfg.RAG.ChunkOverlap)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
