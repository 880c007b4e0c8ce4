package raffle

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Backend names accepted by the configuration.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the full runtime configuration.
type Config struct {
	Engine  *EngineConfig  `mapstructure:"raffle"`
	Redis   *RedisConfig   `mapstructure:"redis"`
	SQLite  *SQLiteConfig  `mapstructure:"sqlite"`
	Breaker *BreakerConfig `mapstructure:"circuit_breaker"`
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Engine == nil {
		return fmt.Errorf("raffle engine configuration is required")
	}
	if c.Engine.HistoryCap < 1 {
		return ErrInvalidHistoryCap
	}
	if c.Engine.RetryAttempts < 0 || c.Engine.RetryAttempts > MaxRetryAttempts {
		return ErrInvalidRetryAttempts
	}
	if c.Engine.RetryInterval < 0 {
		return ErrInvalidRetryInterval
	}

	switch c.Engine.Backend {
	case BackendRedis:
		if c.Redis == nil || c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis backend")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis pool size must be positive")
		}
	case BackendSQLite:
		// Empty path falls back to the temp-dir default.
	default:
		return fmt.Errorf("unknown storage backend %q", c.Engine.Backend)
	}
	return nil
}

// EngineConfig configures the draw engine and service behaviour.
type EngineConfig struct {
	Backend       string        `mapstructure:"backend"`
	HistoryCap    int           `mapstructure:"history_cap"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Backend:       BackendSQLite,
		HistoryCap:    DefaultHistoryCap,
		RetryAttempts: DefaultRetryAttempts,
		RetryInterval: DefaultRetryInterval,
	}
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         DefaultRedisAddr,
		Password:     DefaultRedisPassword,
		DB:           DefaultRedisDB,
		PoolSize:     DefaultRedisPoolSize,
		MinIdleConns: DefaultRedisMinIdleConns,
		MaxRetries:   DefaultRedisMaxRetries,
		DialTimeout:  DefaultRedisDialTimeout,
		ReadTimeout:  DefaultRedisReadTimeout,
		WriteTimeout: DefaultRedisWriteTimeout,
		PoolTimeout:  DefaultRedisPoolTimeout,
	}
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		Enabled:       true,
		Name:          DefaultBreakerName,
		MaxRequests:   DefaultBreakerMaxRequests,
		Interval:      DefaultBreakerInterval,
		Timeout:       DefaultBreakerTimeout,
		FailureRatio:  DefaultBreakerFailureRatio,
		MinRequests:   DefaultBreakerMinRequests,
		OnStateChange: true,
	}
}

// ConfigManager loads and watches the viper-backed configuration.
type ConfigManager struct {
	viper  *viper.Viper
	config *Config
}

// NewConfigManager creates a configuration manager that looks for config.yaml
// in the working directory, ./config, /etc/raffle and $HOME/.raffle, with
// RAFFLE_* environment overrides.
func NewConfigManager() *ConfigManager {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/raffle")
	v.AddConfigPath("$HOME/.raffle")

	v.SetEnvPrefix("RAFFLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{viper: v}
}

// NewDefaultConfigManager creates a manager preloaded with defaults, without
// touching the filesystem.
func NewDefaultConfigManager() *ConfigManager {
	cm := NewConfigManager()
	cm.setDefaults()
	cm.config = &Config{
		Engine:  DefaultEngineConfig(),
		Redis:   DefaultRedisConfig(),
		SQLite:  &SQLiteConfig{},
		Breaker: DefaultBreakerConfig(),
	}
	return cm
}

// LoadConfig reads, unmarshals and validates the configuration. A missing
// config file is not an error; defaults apply.
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	cm.setDefaults()

	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cm.config = config
	return config, nil
}

func (cm *ConfigManager) setDefaults() {
	cm.viper.SetDefault("raffle.backend", BackendSQLite)
	cm.viper.SetDefault("raffle.history_cap", DefaultHistoryCap)
	cm.viper.SetDefault("raffle.retry_attempts", DefaultRetryAttempts)
	cm.viper.SetDefault("raffle.retry_interval", "100ms")

	cm.viper.SetDefault("redis.addr", DefaultRedisAddr)
	cm.viper.SetDefault("redis.password", DefaultRedisPassword)
	cm.viper.SetDefault("redis.db", DefaultRedisDB)
	cm.viper.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", DefaultRedisMinIdleConns)
	cm.viper.SetDefault("redis.max_retries", DefaultRedisMaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", "5s")
	cm.viper.SetDefault("redis.read_timeout", "3s")
	cm.viper.SetDefault("redis.write_timeout", "3s")
	cm.viper.SetDefault("redis.pool_timeout", "4s")

	cm.viper.SetDefault("sqlite.path", "")

	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", "60s")
	cm.viper.SetDefault("circuit_breaker.timeout", "30s")
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", true)
}

// WatchConfig reloads the configuration when the file changes. Invalid
// updates are dropped without interrupting the running service.
func (cm *ConfigManager) WatchConfig(callback func(*Config)) error {
	cm.viper.WatchConfig()
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config := &Config{}
		if err := cm.viper.Unmarshal(config); err != nil {
			return
		}
		if err := config.Validate(); err != nil {
			return
		}

		cm.config = config
		if callback != nil {
			callback(config)
		}
	})
	return nil
}

// GetConfig returns the current configuration.
func (cm *ConfigManager) GetConfig() *Config { return cm.config }

// ReloadConfig re-reads the configuration from disk.
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }

// NewRedisClientFromConfig creates a Redis client from configuration.
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}
	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})
}

// NewStoreFromConfig builds the configured persistence backend, wrapped in a
// circuit breaker when enabled.
func NewStoreFromConfig(config *Config, logger Logger) (Store, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}

	var store Store
	switch config.Engine.Backend {
	case BackendRedis:
		client := NewRedisClientFromConfig(config.Redis)
		store = NewRedisStoreWithRetry(client, logger,
			config.Engine.RetryAttempts, config.Engine.RetryInterval)
	case BackendSQLite:
		path := ""
		if config.SQLite != nil {
			path = config.SQLite.Path
		}
		s, err := NewSQLiteStore(path, logger)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Engine.Backend)
	}

	if config.Breaker != nil && config.Breaker.Enabled {
		store = NewBreakerStore(store, config.Breaker, logger)
	}
	return store, nil
}
