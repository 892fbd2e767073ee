package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	LLMModel        string `yaml:"llm_model"`
	LLMMaxTokens    int    `yaml:"llm_max_tokens"`
	LLMCacheEnabled bool   `yaml:"llm_cache_enabled"`

	DBPath       string `yaml:"db_path"`
	TicketPrefix string `yaml:"ticket_prefix"`
	SeedPath     string `yaml:"seed_path"`

	MinorIssueLogPath string `yaml:"minor_issue_log_path"`
	FileAllNewIssues  bool   `yaml:"file_all_new_issues"`

	Schedule string `yaml:"schedule"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	envOverrideBool(&cfg.LLMCacheEnabled, "LLM_CACHE_ENABLED")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.TicketPrefix, "TICKET_PREFIX")
	envOverride(&cfg.SeedPath, "SEED_PATH")
	envOverride(&cfg.MinorIssueLogPath, "MINOR_ISSUE_LOG_PATH")
	envOverrideBool(&cfg.FileAllNewIssues, "FILE_ALL_NEW_ISSUES")
	envOverride(&cfg.Schedule, "SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")

	// Defaults
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 4096
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "uiregression.db"
	}
	if cfg.TicketPrefix == "" {
		cfg.TicketPrefix = "UI"
	}
	if cfg.MinorIssueLogPath == "" {
		cfg.MinorIssueLogPath = "minor_issues.jsonl"
	}

	return cfg
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func envOverrideBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}
