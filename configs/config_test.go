package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV_FILE", filepath.Join(dir, ".env"))
	t.Setenv(APIKeyEnv, "static-key")
	t.Setenv(ProviderKeyEnv, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("port=%q", cfg.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "quiz.db" {
		t.Fatalf("database=%+v", cfg.Database)
	}
	if cfg.OpenAI.Timeout != 60*time.Second {
		t.Fatalf("timeout=%s", cfg.OpenAI.Timeout)
	}
	if cfg.OpenAI.Enabled() {
		t.Fatalf("provider should be disabled without a key")
	}
	if cfg.Auth.APIKey != "static-key" {
		t.Fatalf("api key=%q", cfg.Auth.APIKey)
	}
	if cfg.ExposeAnswers {
		t.Fatalf("answers must be hidden by default")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV_FILE", filepath.Join(dir, ".env"))
	t.Setenv(APIKeyEnv, "static-key")
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestEnsureAPIKeyGeneratesOnce(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-test\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(APIKeyEnv, "")

	first, generated, err := EnsureAPIKey(envFile)
	if err != nil {
		t.Fatalf("EnsureAPIKey: %v", err)
	}
	if !generated {
		t.Fatalf("expected a generated key")
	}
	if len(first) < 40 {
		t.Fatalf("key too short: %q", first)
	}

	entries, err := godotenv.Read(envFile)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if entries[APIKeyEnv] != first {
		t.Fatalf("persisted key=%q want %q", entries[APIKeyEnv], first)
	}
	if entries[ProviderKeyEnv] != "sk-test" {
		t.Fatalf("existing entry lost: %v", entries)
	}

	// A fresh process only sees the file.
	t.Setenv(APIKeyEnv, "")
	second, generated, err := EnsureAPIKey(envFile)
	if err != nil {
		t.Fatalf("EnsureAPIKey again: %v", err)
	}
	if generated || second != first {
		t.Fatalf("key regenerated: generated=%v first=%q second=%q", generated, first, second)
	}
}

func TestEnsureAPIKeyKeepsEnvFileLayout(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	layout := "# provider settings\nOPENAI_MODEL=gpt-4o\nAPP_API_KEY=\nOPENAI_API_KEY=sk-test"
	if err := os.WriteFile(envFile, []byte(layout), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(APIKeyEnv, "")

	key, generated, err := EnsureAPIKey(envFile)
	if err != nil || !generated {
		t.Fatalf("generated=%v err=%v", generated, err)
	}

	raw, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatal(err)
	}
	want := layout + "\n" + APIKeyEnv + "=" + key + "\n"
	if string(raw) != want {
		t.Fatalf("env file=%q want %q", raw, want)
	}

	entries, err := godotenv.Read(envFile)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if entries[APIKeyEnv] != key || entries["OPENAI_MODEL"] != "gpt-4o" {
		t.Fatalf("entries=%v", entries)
	}
}

func TestEnsureAPIKeyPrefersEnvironment(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	t.Setenv(APIKeyEnv, "from-env")

	key, generated, err := EnsureAPIKey(envFile)
	if err != nil {
		t.Fatalf("EnsureAPIKey: %v", err)
	}
	if generated || key != "from-env" {
		t.Fatalf("key=%q generated=%v", key, generated)
	}
	if _, err := os.Stat(envFile); !os.IsNotExist(err) {
		t.Fatalf("env file should not be written, stat err=%v", err)
	}
}

func TestEnsureEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	created, err := EnsureEnvFile(envFile)
	if err != nil || !created {
		t.Fatalf("created=%v err=%v", created, err)
	}
	raw, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), ProviderKeyEnv+"=") {
		t.Fatalf("content=%q", raw)
	}

	created, err = EnsureEnvFile(envFile)
	if err != nil || created {
		t.Fatalf("second call created=%v err=%v", created, err)
	}
}
