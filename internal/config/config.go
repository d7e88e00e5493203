// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Oracle() LLMModelConfig
	Seed() SeedConfig
	Server() ServerConfig
	Explorer() ExplorerConfig

	SetOracleModel(model string)
	SetSeedEnabled(bool)
	SetServerAddr(addr string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	OracleCfg   LLMModelConfig `mapstructure:"oracle" yaml:"oracle"`
	SeedCfg     SeedConfig     `mapstructure:"seed" yaml:"seed"`
	ServerCfg   ServerConfig   `mapstructure:"server" yaml:"server"`
	ExplorerCfg ExplorerConfig `mapstructure:"explorer" yaml:"explorer"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Oracle() LLMModelConfig   { return c.OracleCfg }
func (c *Config) Seed() SeedConfig         { return c.SeedCfg }
func (c *Config) Server() ServerConfig     { return c.ServerCfg }
func (c *Config) Explorer() ExplorerConfig { return c.ExplorerCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetOracleModel(model string) { c.OracleCfg.Model = model }
func (c *Config) SetSeedEnabled(b bool)       { c.SeedCfg.Enabled = b }
func (c *Config) SetServerAddr(addr string)   { c.ServerCfg.Addr = addr }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the connection details of the threat_logs dataset.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" yaml:"url"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	HealthCheck     time.Duration `mapstructure:"health_check_period" yaml:"health_check_period"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start" yaml:"migrate_on_start"`
	ImportBatchSize int           `mapstructure:"import_batch_size" yaml:"import_batch_size"`
}

// SeedConfig controls loading the historical records at startup.
type SeedConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Limit   int           `mapstructure:"limit" yaml:"limit"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AnalyzeTimeout  time.Duration `mapstructure:"analyze_timeout" yaml:"analyze_timeout"`
}

// ExplorerConfig bounds the page sizes a view may request.
type ExplorerConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" yaml:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size" yaml:"max_page_size"`
}

// LLMProvider defines the supported LLM providers.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
)

// LLMModelConfig defines the configuration of the classification oracle.
type LLMModelConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	TopP        float32       `mapstructure:"top_p" yaml:"top_p"`
	TopK        int           `mapstructure:"top_k" yaml:"top_k"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// EnforceConfidenceConvention rejects verdicts whose confidence contradicts
	// the verdict (phishing below 0.5 or safe above 0.5).
	EnforceConfidenceConvention bool `mapstructure:"enforce_confidence_convention" yaml:"enforce_confidence_convention"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "phishguard")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Database --
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.migrate_on_start", false)
	v.SetDefault("database.import_batch_size", 1000)

	// -- Oracle --
	v.SetDefault("oracle.provider", string(ProviderGemini))
	v.SetDefault("oracle.model", "gemini-2.5-flash")
	v.SetDefault("oracle.api_timeout", "60s")
	v.SetDefault("oracle.temperature", 0.2)
	v.SetDefault("oracle.enforce_confidence_convention", false)

	// -- Seed --
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.limit", 100)
	v.SetDefault("seed.timeout", "15s")

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.analyze_timeout", "75s")

	// -- Explorer --
	v.SetDefault("explorer.default_page_size", 10)
	v.SetDefault("explorer.max_page_size", 100)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("oracle.api_key", "PHISHGUARD_API_KEY", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("database.url", "PHISHGUARD_DATABASE_URL", "DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the key if Unmarshal didn't pick it up
	if cfg.OracleCfg.APIKey == "" {
		cfg.OracleCfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// The API key and database URL are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.OracleCfg.Model == "" {
		return fmt.Errorf("oracle.model is a required configuration field")
	}
	if c.OracleCfg.Temperature < 0 || c.OracleCfg.Temperature > 2 {
		return fmt.Errorf("oracle.temperature must be between 0.0 and 2.0")
	}
	if c.SeedCfg.Enabled && c.SeedCfg.Limit <= 0 {
		return fmt.Errorf("seed.limit must be a positive integer")
	}
	if err := c.ExplorerCfg.Validate(); err != nil {
		return fmt.Errorf("explorer configuration invalid: %w", err)
	}
	if c.DatabaseCfg.ImportBatchSize <= 0 {
		return fmt.Errorf("database.import_batch_size must be a positive integer")
	}
	return nil
}

// Validate checks the explorer page size bounds.
func (e *ExplorerConfig) Validate() error {
	if e.DefaultPageSize <= 0 {
		return fmt.Errorf("default_page_size must be a positive integer")
	}
	if e.MaxPageSize < e.DefaultPageSize {
		return fmt.Errorf("max_page_size must be at least default_page_size")
	}
	return nil
}
