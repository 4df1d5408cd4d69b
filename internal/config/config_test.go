package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Redis: RedisConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port

		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_OverlapNotSmallerThanSize(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking.ChunkSize = 100
	cfg.Chunking.ChunkOverlap = 100

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for overlap equal to size")
	}
	if !strings.Contains(err.Error(), "chunk_overlap") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("expected chunk_size 500, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.MinChars != 50 {
		t.Errorf("expected min_chars 50, got %d", cfg.Chunking.MinChars)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("expected top_k 10, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Rerank.TopN != 5 {
		t.Errorf("expected top_n 5, got %d", cfg.Rerank.TopN)
	}
	if cfg.Cache.EmbeddingTTLSec != 86400 {
		t.Errorf("expected embedding ttl 86400, got %d", cfg.Cache.EmbeddingTTLSec)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected dimensions 1536, got %d", cfg.Embedding.Dimensions)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{Chunking: ChunkingConfig{ChunkSize: 256, ChunkOverlap: 32, MinChars: 10}}
	cfg.ApplyDefaults()

	if cfg.Chunking.ChunkSize != 256 || cfg.Chunking.ChunkOverlap != 32 || cfg.Chunking.MinChars != 10 {
		t.Errorf("expected explicit chunking kept, got %+v", cfg.Chunking)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RAG_TEST_ADDR", "redis-prod:6379")

	in := []byte("addr: ${RAG_TEST_ADDR}\nkey: ${RAG_TEST_UNSET:-fallback}\nempty: ${RAG_TEST_UNSET}")
	got := string(expandEnvVars(in))

	if !strings.Contains(got, "addr: redis-prod:6379") {
		t.Errorf("expected env substitution, got %q", got)
	}
	if !strings.Contains(got, "key: fallback") {
		t.Errorf("expected default applied, got %q", got)
	}
	if !strings.Contains(got, "empty: \n") && !strings.HasSuffix(got, "empty: ") {
		t.Errorf("expected unset var without default to expand empty, got %q", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected default env local, got %q", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Redis.Addrs) == 0 {
		t.Error("expected redis addrs from sample config")
	}
	if cfg.Retrieval.ScoreThreshold == nil {
		t.Error("expected score_threshold set in sample config")
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		t.Error("sample config has invalid chunking")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("no_such_env"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
