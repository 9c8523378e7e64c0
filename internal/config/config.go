package config

import "time"

// Config is the root configuration for a tickerwatch instance.
type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Finnhub   FinnhubConfig   `yaml:"finnhub"`
	Store     StoreConfig     `yaml:"store"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Price     PriceConfig     `yaml:"price"`
	News      NewsConfig      `yaml:"news"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Events    EventsConfig    `yaml:"events"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DiscordConfig holds chat platform settings.
type DiscordConfig struct {
	Token         string `yaml:"token"`
	CommandPrefix string `yaml:"command_prefix"`
}

// FinnhubConfig holds market-data provider settings.
type FinnhubConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   *int          `yaml:"max_retries"` // nil means default; 0 disables retries
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Retries returns the configured retry count, or DefaultMaxRetries if unset.
func (c FinnhubConfig) Retries() int {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

// StoreConfig selects and configures the sent-news dedup store.
type StoreConfig struct {
	Driver   string      `yaml:"driver"` // postgres, redis or memory
	Postgres DBConfig    `yaml:"postgres"`
	Redis    RedisConfig `yaml:"redis"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RedisConfig holds the Redis connection used by the redis store driver.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SchedulerConfig holds settings shared by all jobs.
type SchedulerConfig struct {
	Timezone            string `yaml:"timezone"` // IANA zone of the symbols' home market
	RunOnStart          bool   `yaml:"run_on_start"`
	DeliveryConcurrency int    `yaml:"delivery_concurrency"`
}

// PriceConfig holds price broadcast settings.
type PriceConfig struct {
	Schedules []string      `yaml:"schedules"` // standard 5-field cron specs
	Interval  time.Duration `yaml:"interval"`  // optional extra @every trigger, 0 = off
	Pacing    time.Duration `yaml:"pacing"`    // minimum gap between quote requests
}

// NewsConfig holds news scan settings.
type NewsConfig struct {
	Interval     time.Duration `yaml:"interval"`
	Pacing       time.Duration `yaml:"pacing"`
	LookbackDays int           `yaml:"lookback_days"`
}

// CleanupConfig holds dedup store retention settings.
type CleanupConfig struct {
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
}

// EventsConfig holds delivery event stream settings.
type EventsConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig configures the delivery event producer. Empty brokers disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ServerConfig holds the ops HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Retention returns the cleanup retention window.
func (c CleanupConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
