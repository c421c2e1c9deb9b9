package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Photos     Photos     `mapstructure:"photos"`
	Content    Content    `mapstructure:"content"`
	Generation Generation `mapstructure:"generation"`
	Cache      Cache      `mapstructure:"cache"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds LLM backend configuration
type AI struct {
	Backend string       `mapstructure:"backend"` // "gemini" or "ollama"
	Gemini  GeminiConfig `mapstructure:"gemini"`
	Ollama  OllamaConfig `mapstructure:"ollama"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// OllamaConfig holds local Ollama inference server configuration
type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Photos holds photo provider configuration
type Photos struct {
	Provider     string         `mapstructure:"provider"` // pexels, openverse, mock, or none
	ValidateURLs bool           `mapstructure:"validate_urls"`
	Timeout      string         `mapstructure:"timeout"`
	Providers    PhotoProviders `mapstructure:"providers"`
}

// PhotoProviders holds configuration for all photo search providers
type PhotoProviders struct {
	Pexels    PexelsConfig    `mapstructure:"pexels"`
	Openverse OpenverseConfig `mapstructure:"openverse"`
}

// PexelsConfig holds Pexels API configuration
type PexelsConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenverseConfig holds Openverse API configuration
type OpenverseConfig struct {
	RateLimit string `mapstructure:"rate_limit"`
}

// Content holds the content tree and output configuration. The primary tree
// takes precedence over the secondary tree when both contain the same slug.
type Content struct {
	PrimaryTree   string `mapstructure:"primary_tree"`
	SecondaryTree string `mapstructure:"secondary_tree"`
	OutputDir     string `mapstructure:"output_dir"`
}

// Generation holds thresholds and retry policy for the generation loop
type Generation struct {
	MaxAttempts      int     `mapstructure:"max_attempts"`
	MinContentLength int     `mapstructure:"min_content_length"`
	MaxSimilarity    float64 `mapstructure:"max_similarity"`
	MinUniqueFacts   int     `mapstructure:"min_unique_facts"`
	MinOverallScore  float64 `mapstructure:"min_overall_score"`
	ContentLength    int     `mapstructure:"content_length"`
	ItemDelay        string  `mapstructure:"item_delay"` // Courtesy sleep between batch items
}

// Cache holds SQLite cache configuration
type Cache struct {
	Directory string `mapstructure:"directory"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".postforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		config.App.ConfigFile = used
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// RegistryPath returns the location of the registry snapshot file.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.App.DataDir, "registry.json")
}

// ContentTree names one configured tree root.
type ContentTree struct {
	Name string
	Root string
}

// ContentTrees returns the configured tree roots in precedence order:
// primary first, so it wins slug collisions during sync.
func (c *Config) ContentTrees() []ContentTree {
	var trees []ContentTree
	if c.Content.PrimaryTree != "" {
		trees = append(trees, ContentTree{Name: "primary", Root: c.Content.PrimaryTree})
	}
	if c.Content.SecondaryTree != "" {
		trees = append(trees, ContentTree{Name: "secondary", Root: c.Content.SecondaryTree})
	}
	return trees
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".postforge")

	// AI defaults
	viper.SetDefault("ai.backend", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.gemini.timeout", "180s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("ai.ollama.model", "llama3.2:3b")
	viper.SetDefault("ai.ollama.timeout", "300s")

	// Photo defaults
	viper.SetDefault("photos.provider", "none")
	viper.SetDefault("photos.validate_urls", true)
	viper.SetDefault("photos.timeout", "15s")
	viper.SetDefault("photos.providers.openverse.rate_limit", "1s")

	// Content defaults
	viper.SetDefault("content.primary_tree", "content/posts")
	viper.SetDefault("content.secondary_tree", "content/archive")
	viper.SetDefault("content.output_dir", "content/posts")

	// Generation defaults
	viper.SetDefault("generation.max_attempts", 3)
	viper.SetDefault("generation.min_content_length", 500)
	viper.SetDefault("generation.max_similarity", 0.3)
	viper.SetDefault("generation.min_unique_facts", 3)
	viper.SetDefault("generation.min_overall_score", 0.75)
	viper.SetDefault("generation.content_length", 2000)
	viper.SetDefault("generation.item_delay", "30s")

	// Cache defaults
	viper.SetDefault("cache.directory", ".postforge")
}

// bindEnvironmentVariables binds well-known environment variables
func bindEnvironmentVariables() {
	_ = viper.BindEnv("ai.gemini.api_key", "GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY")
	_ = viper.BindEnv("ai.ollama.base_url", "OLLAMA_HOST")
	_ = viper.BindEnv("photos.providers.pexels.api_key", "PEXELS_API_KEY")
}

// validateConfig checks configuration values that would otherwise fail late
func validateConfig(config *Config) error {
	if config.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1, got %d", config.Generation.MaxAttempts)
	}
	if config.Generation.MaxSimilarity < 0 || config.Generation.MaxSimilarity > 1 {
		return fmt.Errorf("generation.max_similarity must be in [0,1], got %v", config.Generation.MaxSimilarity)
	}
	if config.Generation.MinOverallScore < 0 || config.Generation.MinOverallScore > 1 {
		return fmt.Errorf("generation.min_overall_score must be in [0,1], got %v", config.Generation.MinOverallScore)
	}
	for _, field := range []struct{ name, value string }{
		{"ai.gemini.timeout", config.AI.Gemini.Timeout},
		{"ai.ollama.timeout", config.AI.Ollama.Timeout},
		{"photos.timeout", config.Photos.Timeout},
		{"generation.item_delay", config.Generation.ItemDelay},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", field.name, err)
		}
	}
	return nil
}

// Duration parses a configured duration string, falling back to def when the
// value is empty or malformed.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
