package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("ReadTimeoutSec = %d, want 10", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("WriteTimeoutSec = %d, want 120", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Profiles.Path != "angel_profiles.json" {
		t.Errorf("Profiles.Path = %q", cfg.Profiles.Path)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("Embedding.Model = %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.TimeoutSec != 30 {
		t.Errorf("Embedding.TimeoutSec = %d, want 30", cfg.Embedding.TimeoutSec)
	}
	if cfg.Rerank.Model != "gpt-4o-mini" {
		t.Errorf("Rerank.Model = %q", cfg.Rerank.Model)
	}
	if cfg.Rerank.TimeoutSec != 60 {
		t.Errorf("Rerank.TimeoutSec = %d, want 60", cfg.Rerank.TimeoutSec)
	}
	if cfg.Cache.TTLHours != 168 {
		t.Errorf("Cache.TTLHours = %d, want 168", cfg.Cache.TTLHours)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080, WriteTimeoutSec: 5},
		Embedding: EmbeddingConfig{Model: "custom-model", TimeoutSec: 7},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 5 {
		t.Errorf("WriteTimeoutSec = %d, want 5", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Embedding.Model != "custom-model" {
		t.Errorf("Embedding.Model = %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.TimeoutSec != 7 {
		t.Errorf("Embedding.TimeoutSec = %d, want 7", cfg.Embedding.TimeoutSec)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := Config{HTTP: HTTPConfig{Port: port}}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d: expected error", port)
		}
	}
}

func TestValidate_NegativeDimensions(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Dimensions: -1},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative dimensions")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `
http:
  port: ${TEST_ANGELSEARCH_PORT:-9090}
embedding:
  api_key: ${TEST_ANGELSEARCH_KEY}
  model: text-embedding-3-small
`
	if err := os.WriteFile(filepath.Join(configDir, "testenv.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TEST_ANGELSEARCH_KEY", "sk-test")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("testenv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want default 9090", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("api_key = %q, want env value", cfg.Embedding.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	if _, err := Load("nosuchenv"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
