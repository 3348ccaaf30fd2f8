// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	AI          AIConfig          `mapstructure:"ai"`
	ImageSearch ImageSearchConfig `mapstructure:"image_search"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval"`
	MealPlan    MealPlanConfig    `mapstructure:"meal_plan"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	// DemoUserEmail identifies the profile credited with recipes synthesized
	// for anonymous requests.
	DemoUserEmail string `mapstructure:"demo_user_email"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS        bool          `mapstructure:"enable_cors"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver             string        `mapstructure:"driver"`
	Path               string        `mapstructure:"path"`
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Database           string        `mapstructure:"database"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	SSLMode            string        `mapstructure:"ssl_mode"`
	ReadReplicas       []string      `mapstructure:"read_replicas"`
	MaxOpenConns       int           `mapstructure:"max_open_conns"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel           string        `mapstructure:"log_level"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
	AutoMigrate        bool          `mapstructure:"auto_migrate"`
	Seed               bool          `mapstructure:"seed"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Password      string        `mapstructure:"password"`
	Database      int           `mapstructure:"database"`
	MaxRetries    int           `mapstructure:"max_retries"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	PoolSize      int           `mapstructure:"pool_size"`
	EnableCluster bool          `mapstructure:"enable_cluster"`
	ClusterNodes  []string      `mapstructure:"cluster_nodes"`
}

// AuthConfig contains token verification configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
}

// AIConfig contains language model configuration
type AIConfig struct {
	Provider              string        `mapstructure:"provider"`
	GeminiKey             string        `mapstructure:"gemini_key"`
	TextModel             string        `mapstructure:"text_model"`
	ImageModel            string        `mapstructure:"image_model"`
	OllamaHost            string        `mapstructure:"ollama_host"`
	OllamaModel           string        `mapstructure:"ollama_model"`
	OpenAIKey             string        `mapstructure:"openai_key"`
	OpenAIModel           string        `mapstructure:"openai_model"`
	OpenAIEndpoint        string        `mapstructure:"openai_endpoint"`
	MaxTokens             int           `mapstructure:"max_tokens"`
	Temperature           float64       `mapstructure:"temperature"`
	TimeoutSeconds        int           `mapstructure:"timeout_seconds"`
	MaxAttempts           int           `mapstructure:"max_attempts"`
	BaseDelay             time.Duration `mapstructure:"base_delay"`
	EnableCache           bool          `mapstructure:"enable_cache"`
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`
	ImageConcurrency      int           `mapstructure:"image_concurrency"`
	EnableImageGeneration bool          `mapstructure:"enable_image_generation"`
}

// Timeout returns the per-call deadline for model invocations
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ImageSearchConfig contains image search fallbacks configuration
type ImageSearchConfig struct {
	GoogleKey     string        `mapstructure:"google_key"`
	GoogleCX      string        `mapstructure:"google_cx"`
	Endpoint      string        `mapstructure:"endpoint"`
	ScrapeEnabled bool          `mapstructure:"scrape_enabled"`
	ScrapeURL     string        `mapstructure:"scrape_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CustomSearchEnabled reports whether both the key and engine id are set
func (c ImageSearchConfig) CustomSearchEnabled() bool {
	return c.GoogleKey != "" && c.GoogleCX != ""
}

// StorageConfig contains object storage configuration
type StorageConfig struct {
	Provider      string `mapstructure:"provider"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	S3Endpoint    string `mapstructure:"s3_endpoint"`
	S3Prefix      string `mapstructure:"s3_prefix"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// RetrievalConfig tunes the hybrid search pipeline
type RetrievalConfig struct {
	MinResults        int `mapstructure:"min_results"`
	MaxCatalogResults int `mapstructure:"max_catalog_results"`
}

// MealPlanConfig tunes meal plan generation
type MealPlanConfig struct {
	DefaultDays int `mapstructure:"default_days"`
	MaxDays     int `mapstructure:"max_days"`
	MinCorpus   int `mapstructure:"min_corpus"`
	CorpusLimit int `mapstructure:"corpus_limit"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics   bool    `mapstructure:"enable_metrics"`
	MetricsPort     int     `mapstructure:"metrics_port"`
	EnableTracing   bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	SamplingRate    float64 `mapstructure:"sampling_rate"`
	HealthCheckPath string  `mapstructure:"health_check_path"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enable          bool          `mapstructure:"enable"`
	RequestsPerMin  int           `mapstructure:"requests_per_min"`
	BurstSize       int           `mapstructure:"burst_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/recipewise")
	}

	// Enable environment variable override
	v.SetEnvPrefix("RECIPEWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := loadSecretFiles(v); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key that may be
// overridden from the environment needs a default so AutomaticEnv sees it.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Recipewise")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")
	v.SetDefault("app.demo_user_email", "demo@example.com")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "110s")
	v.SetDefault("server.max_header_bytes", 1<<20) // 1MB
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enable_compression", true)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "recipewise.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "recipewise")
	v.SetDefault("database.username", "recipewise")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.read_replicas", []string{})
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_query_threshold", "200ms")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.seed", true)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.pool_size", 10)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")

	// AI defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini_key", "")
	v.SetDefault("ai.text_model", "gemini-2.5-flash-lite")
	v.SetDefault("ai.image_model", "gemini-2.5-flash")
	v.SetDefault("ai.ollama_host", "http://localhost:11434")
	v.SetDefault("ai.ollama_model", "llama3.2:3b")
	v.SetDefault("ai.openai_key", "")
	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.openai_endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.base_delay", "2s")
	v.SetDefault("ai.enable_cache", true)
	v.SetDefault("ai.cache_ttl", "1h")
	v.SetDefault("ai.image_concurrency", 4)
	v.SetDefault("ai.enable_image_generation", true)

	// Image search defaults
	v.SetDefault("image_search.google_key", "")
	v.SetDefault("image_search.google_cx", "")
	v.SetDefault("image_search.endpoint", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("image_search.scrape_enabled", true)
	v.SetDefault("image_search.scrape_url", "https://www.google.com/search")
	v.SetDefault("image_search.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("image_search.timeout", "10s")

	// Storage defaults
	v.SetDefault("storage.provider", "none")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.s3_prefix", "recipe-images/")
	v.SetDefault("storage.public_base_url", "")

	// Retrieval defaults
	v.SetDefault("retrieval.min_results", 3)
	v.SetDefault("retrieval.max_catalog_results", 20)

	// Meal plan defaults
	v.SetDefault("meal_plan.default_days", 7)
	v.SetDefault("meal_plan.max_days", 14)
	v.SetDefault("meal_plan.min_corpus", 5)
	v.SetDefault("meal_plan.corpus_limit", 100)

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.metrics_port", 9090)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.sampling_rate", 0.1)
	v.SetDefault("monitoring.health_check_path", "/healthz")

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.requests_per_min", 60)
	v.SetDefault("rate_limit.burst_size", 10)
	v.SetDefault("rate_limit.cleanup_interval", "5m")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}

	switch c.AI.Provider {
	case "gemini", "ollama", "openai":
	default:
		return fmt.Errorf("ai.provider must be gemini, ollama or openai, got %q", c.AI.Provider)
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("ai.max_attempts must be at least 1")
	}
	if c.AI.ImageConcurrency < 1 {
		return fmt.Errorf("ai.image_concurrency must be at least 1")
	}

	if c.Storage.Provider == "s3" && c.Storage.S3Bucket == "" {
		return fmt.Errorf("storage.s3_bucket is required when storage.provider is s3")
	}

	if c.Retrieval.MinResults < 1 {
		return fmt.Errorf("retrieval.min_results must be at least 1")
	}
	if c.Retrieval.MaxCatalogResults < c.Retrieval.MinResults {
		return fmt.Errorf("retrieval.max_catalog_results must not be below retrieval.min_results")
	}

	if c.MealPlan.MaxDays < 1 || c.MealPlan.DefaultDays < 1 || c.MealPlan.DefaultDays > c.MealPlan.MaxDays {
		return fmt.Errorf("meal_plan.default_days must be between 1 and meal_plan.max_days")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.Database.DSN(c.Database.Host)
}

// DSN returns a postgres connection string for the given host
func (d DatabaseConfig) DSN(host string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		d.Port,
		d.Username,
		d.Password,
		d.Database,
		d.SSLMode,
	)
}
