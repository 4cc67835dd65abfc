package config

import (
	"os"
	"testing"
)

const sampleConfig = `
llm:
  provider: openai
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
  temperature: 0.3
  system_prompt: be brief
history:
  backend: sqlite
  path: /tmp/history.db
window:
  last_n: 20
attachments:
  max_bytes: 1048576
app:
  password: hunter2
log:
  level: debug
`

// TestLoad verifies that Load unmarshals a full config file.
func TestLoad(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.SystemPrompt != "be brief" {
		t.Fatalf("unexpected system prompt: %q", cfg.LLM.SystemPrompt)
	}
	if cfg.History.Backend != "sqlite" {
		t.Fatalf("unexpected history backend: %s", cfg.History.Backend)
	}
	if cfg.Window.LastN != 20 {
		t.Fatalf("unexpected window: %d", cfg.Window.LastN)
	}
	if cfg.Attachments.MaxBytes != 1<<20 {
		t.Fatalf("unexpected max bytes: %d", cfg.Attachments.MaxBytes)
	}
	if cfg.App.Password != "hunter2" {
		t.Fatalf("password not parsed")
	}
}

// TestLoad_Defaults verifies defaults when the file only sets the key.
func TestLoad_Defaults(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString("llm:\n  api_key: dummy\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("default model not applied: %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Fatalf("default temperature not applied: %v", cfg.LLM.Temperature)
	}
	if cfg.History.Backend != "file" {
		t.Fatalf("default backend not applied: %s", cfg.History.Backend)
	}
	if cfg.History.Path != "chat_history.json" {
		t.Fatalf("default history path not applied: %s", cfg.History.Path)
	}
	if !cfg.History.BackupOnClear {
		t.Fatalf("default backup_on_clear not applied")
	}
	if cfg.Attachments.MaxBytes != 5<<20 {
		t.Fatalf("default size ceiling not applied: %d", cfg.Attachments.MaxBytes)
	}
	if cfg.Attachments.MaxImageDimension != 1024 {
		t.Fatalf("default image dimension not applied: %d", cfg.Attachments.MaxImageDimension)
	}
	if cfg.Attachments.ImageDetail != "high" {
		t.Fatalf("default image detail not applied: %s", cfg.Attachments.ImageDetail)
	}
}
