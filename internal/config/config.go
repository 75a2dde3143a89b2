package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Database   Database   `mapstructure:"database"`
	Generation Generation `mapstructure:"generation"`
	Scrape     Scrape     `mapstructure:"scrape"`
	Server     Server     `mapstructure:"server"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

// GeminiConfig holds the primary (Google Gemini) backend configuration.
// Models is the ordered candidate list, most capable first.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Models      []string      `mapstructure:"models"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int32         `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
}

// AnthropicConfig holds the fallback (Anthropic) backend configuration.
// The fallback backend is materially more expensive per call, so the
// allowlist and the escalation flag are cost controls, not preferences.
type AnthropicConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	DefaultModel    string        `mapstructure:"default_model"`
	AllowedModels   []string      `mapstructure:"allowed_models"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FallbackEnabled bool          `mapstructure:"fallback_enabled"`
}

// Database holds MongoDB configuration
type Database struct {
	URI     string        `mapstructure:"uri"`
	Name    string        `mapstructure:"name"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Generation holds campaign-generation pacing and sizing configuration.
// The delays are fixed waits between sequential calls, not adaptive backoff.
type Generation struct {
	PostsPerCampaign int           `mapstructure:"posts_per_campaign"`
	CampaignDelay    time.Duration `mapstructure:"campaign_delay"`
	PlatformDelay    time.Duration `mapstructure:"platform_delay"`
}

// Scrape holds website scraping configuration
type Scrape struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORS          `mapstructure:"cors"`
}

// CORS holds CORS configuration for the HTTP server
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
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
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".brandforge")
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

	config.App.ConfigFile = viper.ConfigFileUsed()

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

// Reset clears the global configuration so the next Load starts fresh.
// Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// AI defaults. Gemini candidates are ordered most capable first;
	// the Anthropic allowlist mirrors the cheaper tiers only.
	viper.SetDefault("ai.gemini.models", []string{
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-pro",
		"gemini-2.0-flash",
	})
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.anthropic.default_model", "claude-haiku-20240307")
	viper.SetDefault("ai.anthropic.allowed_models", []string{
		"claude-haiku-20240307",
		"claude-sonnet-4-20250514",
		"claude-3-5-sonnet-20241022",
		"claude-3-haiku-20240307",
	})
	viper.SetDefault("ai.anthropic.max_tokens", 4096)
	viper.SetDefault("ai.anthropic.timeout", "60s")
	viper.SetDefault("ai.anthropic.fallback_enabled", true)

	// Database defaults
	viper.SetDefault("database.name", "brandforge")
	viper.SetDefault("database.timeout", "10s")

	// Generation defaults: 3 posts per platform+type pair, fixed
	// inter-call waits to stay under provider rate limits.
	viper.SetDefault("generation.posts_per_campaign", 3)
	viper.SetDefault("generation.campaign_delay", "2s")
	viper.SetDefault("generation.platform_delay", "3s")

	// Scrape defaults
	viper.SetDefault("scrape.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	viper.SetDefault("scrape.timeout", "20s")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Anthropic fallback backend
	bindEnvKeys("ai.anthropic.api_key", []string{
		"ANTHROPIC_API_KEY",
	})
	bindEnvKeys("ai.anthropic.model", []string{
		"ANTHROPIC_MODEL",
	})
	bindEnvKeys("ai.anthropic.fallback_enabled", []string{
		"USE_ANTHROPIC_FALLBACK",
	})

	// MongoDB
	bindEnvKeys("database.uri", []string{
		"MONGODB_URI",
		"MONGO_URI",
	})
	bindEnvKeys("database.name", []string{
		"MONGODB_DATABASE",
	})
}

// bindEnvKeys binds multiple environment variable names to a config key
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if err := viper.BindEnv(configKey, envKey); err != nil {
			fmt.Printf("Warning: Failed to bind %s to %s: %v\n", envKey, configKey, err)
		}
	}
}

// validateConfig performs basic sanity checks on loaded values
func validateConfig(config *Config) error {
	if config.Generation.PostsPerCampaign <= 0 {
		return fmt.Errorf("generation.posts_per_campaign must be positive, got %d", config.Generation.PostsPerCampaign)
	}
	if config.Generation.CampaignDelay < 0 || config.Generation.PlatformDelay < 0 {
		return fmt.Errorf("generation delays must not be negative")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", config.Server.Port)
	}
	return nil
}
