package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the foliochat API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Inference InferenceConfig `yaml:"inference"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// InferenceConfig holds remote inference service settings. Token resolves
// from the HF_TOKEN environment variable when not set in the file; its
// absence is surfaced per request, never at startup.
type InferenceConfig struct {
	Provider        string  `yaml:"provider"` // huggingface, openai (default: huggingface)
	Token           string  `yaml:"token"`
	BaseURL         string  `yaml:"base_url"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	GenerationModel string  `yaml:"generation_model"`
	MaxNewTokens    int     `yaml:"max_new_tokens"`
	Temperature     float64 `yaml:"temperature"`
}

// RetrievalConfig holds ranking settings.
type RetrievalConfig struct {
	TopK                int    `yaml:"top_k"`
	QueryInstruction    string `yaml:"query_instruction"`
	DocumentInstruction string `yaml:"document_instruction"`
}

// Defaults for the inference stack. The embedding default is a 384-dimension
// sentence-embedding model; the generation default is a small
// instruction-tuned seq2seq model.
const (
	DefaultBaseURL         = "https://api-inference.huggingface.co"
	DefaultEmbeddingModel  = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultGenerationModel = "google/flan-t5-base"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Generation against a cold model can take a while.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Inference.Provider == "" {
		c.Inference.Provider = "huggingface"
	}
	if c.Inference.Token == "" {
		c.Inference.Token = os.Getenv("HF_TOKEN")
	}
	if c.Inference.BaseURL == "" {
		c.Inference.BaseURL = DefaultBaseURL
	}
	if c.Inference.EmbeddingModel == "" {
		c.Inference.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.Inference.GenerationModel == "" {
		c.Inference.GenerationModel = DefaultGenerationModel
	}
	if c.Inference.MaxNewTokens <= 0 {
		c.Inference.MaxNewTokens = 256
	}
	if c.Inference.Temperature <= 0 {
		c.Inference.Temperature = 0.2
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 4
	}
}

// Validate checks the configuration for correctness. A missing token passes
// validation: the handler reports it per request.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Inference.Provider {
	case "huggingface", "openai":
		// ok
	default:
		return fmt.Errorf(
			"inference.provider must be \"huggingface\" or \"openai\", got %q",
			c.Inference.Provider,
		)
	}
	if c.Inference.Temperature > 2 {
		return fmt.Errorf("inference.temperature must be at most 2, got %g", c.Inference.Temperature)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
