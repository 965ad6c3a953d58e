package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration. It is loaded once at
// startup (defaults -> file(s) -> env -> CLI flags) and treated as immutable
// for the process lifetime.
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Documents   DocumentsConfig  `toml:"documents"`
	Qdrant      QdrantConfig     `toml:"qdrant"`
	Embedding   EmbeddingConfig  `toml:"embedding"`
	Search      SearchConfig     `toml:"search"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"required,min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents the local catalog database configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                      // "stdout", "file"
}

// DocumentsConfig controls the extraction and chunking pipeline.
// ChunkSize and ChunkOverlap are measured in characters.
type DocumentsConfig struct {
	ChunkSize     int    `toml:"chunk_size" validate:"required,min=50"`
	ChunkOverlap  int    `toml:"chunk_overlap" validate:"min=0"`
	BatchSize     int    `toml:"batch_size" validate:"min=1"`
	MaxUploadSize int64  `toml:"max_upload_size"` // bytes, multipart upload cap
	TempDir       string `toml:"temp_dir"`        // scratch space for uploaded PDFs
}

// QdrantConfig contains the vector database connection settings
type QdrantConfig struct {
	URL        string        `toml:"url" validate:"required"`
	APIKey     string        `toml:"api_key"`
	Collection string        `toml:"collection" validate:"required"`
	Timeout    time.Duration `toml:"timeout"`
	VectorSize int           `toml:"vector_size" validate:"required,min=1"`
}

// EmbeddingConfig selects and sizes the embedding provider
type EmbeddingConfig struct {
	Provider  string `toml:"provider" validate:"oneof=gemini offline"` // "gemini" or "offline"
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension" validate:"required,min=1"`
}

type SearchConfig struct {
	TopK           int     `toml:"top_k" validate:"min=1"`
	ScoreThreshold float64 `toml:"score_threshold"`
	BatchSize      int     `toml:"batch_size" validate:"min=1"` // upsert batch size
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the answer provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderOffline uses the no-network extractive fallback
	LLMProviderOffline LLMProvider = "offline"
)

// LLMConfig selects the default answer provider
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in scholar.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Documents: DocumentsConfig{
			ChunkSize:     500, // characters, not words
			ChunkOverlap:  100,
			BatchSize:     10,
			MaxUploadSize: 50 * 1024 * 1024, // 50MB
			TempDir:       "",               // empty = os.TempDir()
		},
		Qdrant: QdrantConfig{
			URL:        "http://localhost:6333",
			Collection: "scholar_documents",
			Timeout:    15 * time.Second,
			VectorSize: 768,
		},
		Embedding: EmbeddingConfig{
			Provider:  "gemini",
			Model:     "text-embedding-004",
			Dimension: 768,
		},
		Search: SearchConfig{
			TopK:           5,
			ScoreThreshold: 0.3,
			BatchSize:      100,
		},
		Gemini: GeminiConfig{
			APIKey:      "", // user must provide API key
			Model:       "gemini-2.5-flash",
			MaxTokens:   500,
			Timeout:     "30s",
			RateLimit:   "4s", // 15 RPM free tier
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   500,
			Timeout:     "30s",
			RateLimit:   "1s",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct-level constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Documents.ChunkOverlap >= c.Documents.ChunkSize {
		return fmt.Errorf("invalid configuration: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Documents.ChunkOverlap, c.Documents.ChunkSize)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCHOLAR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SCHOLAR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCHOLAR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("SCHOLAR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("SCHOLAR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Document pipeline configuration
	if chunkSize := os.Getenv("SCHOLAR_CHUNK_SIZE"); chunkSize != "" {
		if cs, err := strconv.Atoi(chunkSize); err == nil {
			config.Documents.ChunkSize = cs
		}
	}
	if overlap := os.Getenv("SCHOLAR_CHUNK_OVERLAP"); overlap != "" {
		if co, err := strconv.Atoi(overlap); err == nil {
			config.Documents.ChunkOverlap = co
		}
	}

	// Qdrant configuration
	if url := os.Getenv("QDRANT_URL"); url != "" {
		config.Qdrant.URL = url
	}
	if apiKey := os.Getenv("QDRANT_API_KEY"); apiKey != "" {
		config.Qdrant.APIKey = apiKey
	}
	if collection := os.Getenv("SCHOLAR_COLLECTION_NAME"); collection != "" {
		config.Qdrant.Collection = collection
	}
	if timeout := os.Getenv("SCHOLAR_QDRANT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Qdrant.Timeout = d
		}
	}

	// Embedding configuration
	if provider := os.Getenv("SCHOLAR_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
	if model := os.Getenv("SCHOLAR_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}

	// Search configuration
	if topK := os.Getenv("SCHOLAR_TOP_K_RESULTS"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			config.Search.TopK = k
		}
	}

	// Gemini configuration (GOOGLE_API_KEY kept for compatibility)
	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("SCHOLAR_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey // SCHOLAR_ prefix takes priority
	}
	if model := os.Getenv("SCHOLAR_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("SCHOLAR_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("SCHOLAR_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// LLM provider configuration
	if provider := os.Getenv("SCHOLAR_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
