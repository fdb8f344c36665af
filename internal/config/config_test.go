package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
secrets:
  - name: db
    encryption_keys: ["age1exampleexampleexampleexampleexampleexampleexampleexamplex"]
    path: secrets/db
storage:
  type: S3
  bucket: my-bucket
  region: us-east-1
`)

	cfg, err := Load([]string{path})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Type != StorageS3 || cfg.Storage.Bucket != "my-bucket" {
		t.Errorf("storage = %+v", cfg.Storage)
	}

	secrets, err := cfg.SecretSet()
	if err != nil {
		t.Fatalf("SecretSet() error: %v", err)
	}
	if _, ok := secrets["db"]; !ok {
		t.Fatalf("secret %q missing from set", "db")
	}
}

func TestLoadMergesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	f1 := writeConfig(t, dir, "secrets.yaml", `
secrets:
  - name: db
    encryption_keys: ["age1exampleexampleexampleexampleexampleexampleexampleexamplex"]
    path: secrets/db
`)
	f2 := writeConfig(t, dir, "storage.yaml", `
storage:
  type: Redis
  addr: localhost:6379
`)

	cfg, err := Load([]string{f1, f2})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Type != StorageRedis {
		t.Errorf("storage.Type = %q, want Redis", cfg.Storage.Type)
	}
	if len(cfg.Secrets) != 1 {
		t.Errorf("len(cfg.Secrets) = %d, want 1", len(cfg.Secrets))
	}
}

func TestLoadDuplicateStorageRejected(t *testing.T) {
	dir := t.TempDir()
	f1 := writeConfig(t, dir, "a.yaml", "storage:\n  type: S3\n  bucket: a\n")
	f2 := writeConfig(t, dir, "b.yaml", "storage:\n  type: Redis\n  addr: localhost:6379\n")

	if _, err := Load([]string{f1, f2}); err == nil {
		t.Fatal("expected error for duplicate storage configuration")
	}
}

func TestSecretSetRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
secrets:
  - name: db
    encryption_keys: ["age1example"]
    path: a
  - name: db
    encryption_keys: ["age1example"]
    path: b
`)

	cfg, err := Load([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.SecretSet(); err == nil {
		t.Fatal("expected duplicate secret name error")
	}
}

func TestValidateRequiresStorage(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing storage")
	}
}

func TestValidateS3RequiresBucket(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Type: StorageS3}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		got := ExpandPath(tt.input)
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
