package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "LLM_MODEL", "LLM_MAX_TOKENS", "DB_PATH",
		"TICKET_PREFIX", "SEED_PATH", "MINOR_ISSUE_LOG_PATH", "SCHEDULE",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.LLMMaxTokens != 4096 {
		t.Errorf("expected default max tokens 4096, got %d", cfg.LLMMaxTokens)
	}
	if cfg.DBPath != "uiregression.db" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.TicketPrefix != "UI" {
		t.Errorf("expected default prefix UI, got %q", cfg.TicketPrefix)
	}
	if cfg.MinorIssueLogPath != "minor_issues.jsonl" {
		t.Errorf("expected default minor issue log path, got %q", cfg.MinorIssueLogPath)
	}
	if cfg.FileAllNewIssues {
		t.Error("file_all_new_issues should default to false")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `anthropic_api_key: sk-test
llm_model: claude-sonnet-4-5-20250929
llm_max_tokens: 2048
db_path: /tmp/tickets.db
ticket_prefix: WEB
file_all_new_issues: true
schedule: "0 9 * * *"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	for _, key := range []string{"ANTHROPIC_API_KEY", "LLM_MODEL", "LLM_MAX_TOKENS", "DB_PATH", "TICKET_PREFIX", "FILE_ALL_NEW_ISSUES", "SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("unexpected api key %q", cfg.AnthropicAPIKey)
	}
	if cfg.LLMMaxTokens != 2048 {
		t.Errorf("unexpected max tokens %d", cfg.LLMMaxTokens)
	}
	if cfg.TicketPrefix != "WEB" {
		t.Errorf("unexpected prefix %q", cfg.TicketPrefix)
	}
	if !cfg.FileAllNewIssues {
		t.Error("file_all_new_issues not loaded from yaml")
	}
	if cfg.Schedule != "0 9 * * *" {
		t.Errorf("unexpected schedule %q", cfg.Schedule)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ticket_prefix: WEB\nllm_max_tokens: 2048\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TICKET_PREFIX", "APP")
	t.Setenv("LLM_MAX_TOKENS", "1024")
	t.Setenv("LLM_CACHE_ENABLED", "true")

	cfg := LoadConfig()
	if cfg.TicketPrefix != "APP" {
		t.Errorf("env should win over yaml, got %q", cfg.TicketPrefix)
	}
	if cfg.LLMMaxTokens != 1024 {
		t.Errorf("env should win over yaml, got %d", cfg.LLMMaxTokens)
	}
	if !cfg.LLMCacheEnabled {
		t.Error("LLM_CACHE_ENABLED=true not applied")
	}
}
