package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/skincheck-go/internal/constants"
)

type Config struct {
	Logging    LoggingConfig
	Dataset    DatasetConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Profile    ProfileConfig
	Analysis   AnalysisConfig
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Enrichment EnrichmentConfig
}

type LoggingConfig struct {
	Level string
	File  string
}

// DatasetConfig selects the ingredient dataset. An empty path uses the
// bundled dataset.
type DatasetConfig struct {
	Path string
}

type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RedisConfig struct {
	Enabled    bool
	Host       string
	Port       int
	Password   string
	DB         int
	ProfileKey string
}

// ProfileConfig is the static skin-type profile, used when Redis is off or
// holds no profile.
type ProfileConfig struct {
	SkinTypes []string
}

type AnalysisConfig struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type EnrichmentConfig struct {
	Enabled           bool
	Concurrency       int
	CacheCapacity     int
	GenerationTimeout time.Duration
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Dataset: DatasetConfig{
			Path: getEnv("INGREDIENT_DATASET_PATH", ""),
		},
		Postgres: PostgresConfig{
			Enabled:  getEnvBool("POSTGRES_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "skincheck"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "skincheck"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:    getEnvBool("REDIS_ENABLED", false),
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnvInt("REDIS_PORT", 6379),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			ProfileKey: getEnv("REDIS_PROFILE_KEY", constants.RedisConfig.DefaultProfileKey),
		},
		Profile: ProfileConfig{
			SkinTypes: parseCommaSeparated(getEnv("SKIN_TYPES", "")),
		},
		Analysis: AnalysisConfig{
			Enabled: getEnvBool("ANALYSIS_ENABLED", true),
			BaseURL: getEnv("ANALYSIS_BASE_URL", constants.APIConfig.AnalysisBaseURL),
			Timeout: getEnvDuration("ANALYSIS_TIMEOUT", constants.APIConfig.AnalysisTimeout),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Enrichment: EnrichmentConfig{
			Enabled:           getEnvBool("ENRICHMENT_ENABLED", true),
			Concurrency:       getEnvInt("ENRICHMENT_CONCURRENCY", constants.EnrichmentConfig.Concurrency),
			CacheCapacity:     getEnvInt("ENRICHMENT_CACHE_CAPACITY", constants.CacheConfig.FieldCapacity),
			GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", constants.GenerationLimits.Timeout),
			RequestsPerSecond: getEnvFloat("GENERATION_RPS", constants.GenerationLimits.RequestsPerSecond),
			Burst:             getEnvInt("GENERATION_BURST", constants.GenerationLimits.Burst),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Analysis.Enabled && c.Analysis.BaseURL == "" {
		return fmt.Errorf("ANALYSIS_BASE_URL is required when analysis is enabled")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive")
	}
	if c.Enrichment.Concurrency <= 0 {
		return fmt.Errorf("ENRICHMENT_CONCURRENCY must be positive")
	}
	if c.Enrichment.CacheCapacity <= 0 {
		return fmt.Errorf("ENRICHMENT_CACHE_CAPACITY must be positive")
	}
	if c.Enrichment.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if c.Postgres.Enabled && c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_DB is required when postgres is enabled")
	}
	if c.Redis.Enabled && c.Redis.ProfileKey == "" {
		return fmt.Errorf("REDIS_PROFILE_KEY is required when redis is enabled")
	}
	return nil
}

// GenerativeConfigured reports whether any generative provider has a key.
func (c *Config) GenerativeConfigured() bool {
	return c.Gemini.APIKey != "" || (c.OpenAI.EnableFallback && c.OpenAI.APIKey != "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("30s") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
