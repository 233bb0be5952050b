package config

import (
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// BotConfig holds tunables for the inbound command path.
type BotConfig struct {
	RateLimitSeconds int `mapstructure:"rate_limit_seconds"`
	MaxWallets       int `mapstructure:"max_wallets"`
	UpdateTimeout    int `mapstructure:"update_timeout"`
}

// ExplorerConfig holds tunables for the balance-fetch client.
type ExplorerConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxAttempts      int `mapstructure:"max_attempts"`
	RetryBaseSeconds int `mapstructure:"retry_base_seconds"`
}

// AutoCheckConfig holds the timing knobs for the periodic checker.
type AutoCheckConfig struct {
	ChunkSize           int `mapstructure:"chunk_size"`
	EntryDelaySeconds   int `mapstructure:"entry_delay_seconds"`
	ChunkDelaySeconds   int `mapstructure:"chunk_delay_seconds"`
	RestMinutes         int `mapstructure:"rest_minutes"`
	ErrorBackoffSeconds int `mapstructure:"error_backoff_seconds"`
}

// Config defines the global configuration structure.
type Config struct {
	App struct {
		Environment string `mapstructure:"environment"`
	} `mapstructure:"app"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`

	Bot       BotConfig       `mapstructure:"bot"`
	Explorer  ExplorerConfig  `mapstructure:"explorer"`
	AutoCheck AutoCheckConfig `mapstructure:"auto_check"`
}

var (
	globalConfig *Config
	configLock   sync.RWMutex
)

func setDefaults() {
	viper.SetDefault("app.environment", "production")
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("bot.rate_limit_seconds", 1)
	viper.SetDefault("bot.max_wallets", 5)
	viper.SetDefault("bot.update_timeout", 30)

	viper.SetDefault("explorer.timeout_seconds", 10)
	viper.SetDefault("explorer.max_attempts", 3)
	viper.SetDefault("explorer.retry_base_seconds", 1)

	viper.SetDefault("auto_check.chunk_size", 10)
	viper.SetDefault("auto_check.entry_delay_seconds", 2)
	viper.SetDefault("auto_check.chunk_delay_seconds", 5)
	viper.SetDefault("auto_check.rest_minutes", 30)
	viper.SetDefault("auto_check.error_backoff_seconds", 60)
}

// LoadConfig loads configuration from the specified file path and merges it
// with environment variable overrides. Missing file is not fatal; defaults
// cover every key.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.SetEnvPrefix("APP")
	viper.BindEnv("app.environment", "ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("bot.rate_limit_seconds", "RATE_LIMIT_SECONDS")
	viper.BindEnv("bot.max_wallets", "MAX_WALLETS")
	viper.BindEnv("auto_check.rest_minutes", "AUTO_CHECK_REST_MINUTES")

	setDefaults()

	var cfg Config

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling configuration: %v", err)
		return nil, err
	}

	return &cfg, nil
}

// SetGlobalConfig sets the loaded configuration globally.
func SetGlobalConfig(cfg *Config) {
	configLock.Lock()
	defer configLock.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig retrieves the globally set configuration.
func GetGlobalConfig() *Config {
	configLock.RLock()
	defer configLock.RUnlock()
	if globalConfig == nil {
		log.Println("GetGlobalConfig: Global configuration is nil.")
	}
	return globalConfig
}

// Duration helpers so call sites do not repeat second/minute conversions.

func (c ExplorerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ExplorerConfig) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseSeconds) * time.Second
}

func (c AutoCheckConfig) EntryDelay() time.Duration {
	return time.Duration(c.EntryDelaySeconds) * time.Second
}

func (c AutoCheckConfig) ChunkDelay() time.Duration {
	return time.Duration(c.ChunkDelaySeconds) * time.Second
}

func (c AutoCheckConfig) Rest() time.Duration {
	return time.Duration(c.RestMinutes) * time.Minute
}

func (c AutoCheckConfig) ErrorBackoff() time.Duration {
	return time.Duration(c.ErrorBackoffSeconds) * time.Second
}

func (c BotConfig) RateLimit() time.Duration {
	return time.Duration(c.RateLimitSeconds) * time.Second
}
