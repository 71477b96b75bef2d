package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	CORSOrigins []string

	// Codebase mapping
	CodebaseRoot       string
	CodemapMaxFiles    int
	CodemapExcludeDirs []string

	// Blueprint storage
	UploadDir string

	// NATS (optional; enables multi-instance relay fan-out when set)
	NATSURL string

	// LLM
	LLM LLMConfig
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	// Default provider: anthropic, ollama
	DefaultProvider string

	// Anthropic settings
	AnthropicKey   string
	AnthropicModel string

	// Ollama settings
	OllamaURL   string
	OllamaModel string
}

// DefaultExcludeDirs are the directory names skipped during codebase scans
// when neither the environment nor a project file overrides them.
var DefaultExcludeDirs = []string{"venv", ".venv", "__pycache__", ".git", "node_modules"}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	cfg := &Config{
		Port:               getEnvInt("PORT", 8080),
		Env:                getEnv("ENV", "development"),
		CORSOrigins:        getEnvList("CORS_ORIGINS", []string{"http://localhost:5000"}),
		CodebaseRoot:       getEnv("CODEBASE_ROOT", cwd),
		CodemapMaxFiles:    getEnvInt("CODEMAP_MAX_FILES", 200),
		CodemapExcludeDirs: getEnvList("CODEMAP_EXCLUDE_DIRS", DefaultExcludeDirs),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		NATSURL:            getEnv("NATS_URL", ""),

		LLM: LLMConfig{
			DefaultProvider: getEnv("LLM_DEFAULT_PROVIDER", "anthropic"),
			AnthropicKey:    getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			OllamaURL:       getEnv("OLLAMA_URL", ""),
			OllamaModel:     getEnv("OLLAMA_MODEL", "qwen2.5-coder:7b"),
		},
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.CodemapMaxFiles <= 0 {
		return fmt.Errorf("CODEMAP_MAX_FILES must be positive")
	}
	if c.CodebaseRoot == "" {
		return fmt.Errorf("CODEBASE_ROOT must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
