package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/AmlanDas-dot/Innovastra/pkg/inference"
	"github.com/AmlanDas-dot/Innovastra/pkg/llm"
	ollamaLLM "github.com/AmlanDas-dot/Innovastra/pkg/llm/ollama"
	openaiLLM "github.com/AmlanDas-dot/Innovastra/pkg/llm/openai"
	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
	"github.com/AmlanDas-dot/Innovastra/pkg/storage"
	fileStore "github.com/AmlanDas-dot/Innovastra/pkg/storage/file"
	mysqlStore "github.com/AmlanDas-dot/Innovastra/pkg/storage/mysql"
	postgresStore "github.com/AmlanDas-dot/Innovastra/pkg/storage/postgres"
	sqliteStore "github.com/AmlanDas-dot/Innovastra/pkg/storage/sqlite"
)

// Config contains everything needed to assemble a Controller.
//
// Example:
//
//	config := &conversation.Config{
//	    Storage: conversation.StorageConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./decisions.db",
//	        },
//	    },
//	    LLM: conversation.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "gpt-4o-mini",
//	    },
//	}
type Config struct {
	// Storage selects and configures the persistence backend.
	Storage StorageConfig `json:"storage"`

	// LLM selects and configures the generation service.
	LLM LLMConfig `json:"llm"`

	// DebounceMS overrides the selection debounce window in milliseconds.
	// Zero keeps DefaultDebounce.
	DebounceMS int `json:"debounce_ms,omitempty"`
}

// StorageConfig contains configuration for the persistence backend.
//
// Supported providers: file, sqlite, postgres, mysql
type StorageConfig struct {
	// Provider is the storage provider name (file, sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For file: dir
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name
	Config map[string]interface{} `json:"config"`
}

// LLMConfig contains configuration for the generation service.
type LLMConfig struct {
	// Provider is the LLM provider name (openai, ollama).
	Provider string `json:"provider"`

	// APIKey is the API key for the provider. Ollama ignores it.
	APIKey string `json:"api_key"`

	// Model is the model name (e.g., "gpt-4o-mini", "llama3.1:8b").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - STORAGE_PROVIDER (file, sqlite, postgres, mysql)
//   - FILE_STORAGE_DIR
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, etc.
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - INJECTION_DEBOUNCE_MS
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := conversation.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctl, err := conversation.NewController(config)
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("STORAGE_PROVIDER", "file")

	storageConfig := make(map[string]interface{})

	switch provider {
	case "file":
		storageConfig = map[string]interface{}{
			"dir": getEnvOrDefault("FILE_STORAGE_DIR", "./data"),
		}
	case "sqlite":
		storageConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./decisions.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "decision_collections"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))

		storageConfig = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       port,
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "decisions"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "decision_collections"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))

		storageConfig = map[string]interface{}{
			"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":       port,
			"user":       getEnvOrDefault("MYSQL_USER", "root"),
			"password":   os.Getenv("MYSQL_PASSWORD"),
			"db_name":    getEnvOrDefault("MYSQL_DATABASE", "decisions"),
			"table_name": getEnvOrDefault("MYSQL_TABLE", "decision_collections"),
		}
	}

	llmProvider := getEnvOrDefault("LLM_PROVIDER", "openai")
	var llmBaseURL string
	var defaultModel string

	switch llmProvider {
	case "ollama":
		llmBaseURL = os.Getenv("OLLAMA_LLM_BASE_URL")
		if llmBaseURL == "" {
			llmBaseURL = "http://localhost:11434"
		}
		defaultModel = "llama3.1:8b"
	default:
		llmBaseURL = os.Getenv("LLM_BASE_URL")
		defaultModel = "gpt-4o-mini"
	}

	config := &Config{
		Storage: StorageConfig{
			Provider: provider,
			Config:   storageConfig,
		},
		LLM: LLMConfig{
			Provider: llmProvider,
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    getEnvOrDefault("LLM_MODEL", defaultModel),
			BaseURL:  llmBaseURL,
		},
	}

	if ms, err := strconv.Atoi(os.Getenv("INJECTION_DEBOUNCE_MS")); err == nil && ms > 0 {
		config.DebounceMS = ms
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadConfigFromJSON: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("LoadConfigFromJSON: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that both providers are set. Provider-specific settings are
// checked by the backend constructors.
func (c *Config) Validate() error {
	if c.Storage.Provider == "" {
		return fmt.Errorf("Validate: %w", ErrInvalidConfig)
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("Validate: %w", ErrInvalidConfig)
	}
	return nil
}

// NewController assembles a ready-to-use Controller from a Config: storage
// backend, generation provider, extractor, summarizer and memory store.
//
// The stored collections are loaded before the controller is returned, so a
// corrupt payload degrades to an empty collection here rather than at first
// use.
//
// Parameters:
//   - cfg: The configuration (see LoadConfigFromEnv)
//
// Returns:
//   - *Controller: The assembled controller
//   - error: Error if the configuration is invalid or a backend cannot be
//     reached
func NewController(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("NewController: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := initStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	provider, err := initLLM(cfg.LLM)
	if err != nil {
		backend.Close()
		return nil, err
	}

	store := memory.NewStore(backend, inference.NewSummarizer(provider))
	if err := store.Load(context.Background()); err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	var opts []Option
	if cfg.DebounceMS > 0 {
		opts = append(opts, WithDebounce(time.Duration(cfg.DebounceMS)*time.Millisecond))
	}

	return New(store, provider, inference.NewExtractor(provider), opts...), nil
}

// initStorage initializes the storage backend.
func initStorage(cfg StorageConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "file":
		return fileStore.NewClient(&fileStore.Config{
			Dir: stringValue(cfg.Config, "dir", "./data"),
		})
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    stringValue(cfg.Config, "db_path", "./decisions.db"),
			TableName: stringValue(cfg.Config, "table_name", ""),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:      stringValue(cfg.Config, "host", "localhost"),
			Port:      intValue(cfg.Config, "port", 5432),
			User:      stringValue(cfg.Config, "user", "postgres"),
			Password:  stringValue(cfg.Config, "password", ""),
			DBName:    stringValue(cfg.Config, "db_name", "decisions"),
			TableName: stringValue(cfg.Config, "table_name", ""),
			SSLMode:   stringValue(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:      stringValue(cfg.Config, "host", "127.0.0.1"),
			Port:      intValue(cfg.Config, "port", 3306),
			User:      stringValue(cfg.Config, "user", "root"),
			Password:  stringValue(cfg.Config, "password", ""),
			DBName:    stringValue(cfg.Config, "db_name", "decisions"),
			TableName: stringValue(cfg.Config, "table_name", ""),
		})
	default:
		return nil, fmt.Errorf("initStorage: %w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// initLLM initializes the LLM provider.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		return ollamaLLM.NewClient(&ollamaLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("initLLM: %w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// stringValue reads a string setting with a fallback.
func stringValue(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intValue reads an integer setting with a fallback. JSON-decoded configs
// carry numbers as float64.
func intValue(m map[string]interface{}, key string, fallback int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
