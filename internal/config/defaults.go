package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultCommandPrefix       = "!"
	DefaultFinnhubURL          = "https://finnhub.io/api/v1"
	DefaultAPITimeout          = 10 * time.Second
	DefaultMaxRetries          = 2
	DefaultRetryBackoff        = time.Second
	DefaultStoreDriver         = "postgres"
	DefaultDBPort              = 5432
	DefaultDBSSLMode           = "prefer"
	DefaultMaxConns            = 4
	DefaultMinConns            = 1
	DefaultRedisKeyPrefix      = "tickerwatch:"
	DefaultTimezone            = "America/New_York"
	DefaultDeliveryConcurrency = 4
	DefaultPricePacing         = 1 * time.Second
	DefaultNewsInterval        = 30 * time.Minute
	DefaultNewsPacing          = 2 * time.Second
	DefaultNewsLookbackDays    = 2
	DefaultCleanupInterval     = 24 * time.Hour
	DefaultRetentionDays       = 7
	DefaultKafkaTopic          = "tickerwatch.deliveries"
	DefaultServerPort          = 8080
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

// DefaultPriceSchedules are the pre-market, market-open and midnight
// checkpoints, interpreted in the scheduler timezone.
var DefaultPriceSchedules = []string{
	"0 8 * * *",
	"30 9 * * *",
	"0 0 * * *",
}

func (c *Config) applyDefaults() {
	// Discord defaults
	if c.Discord.CommandPrefix == "" {
		c.Discord.CommandPrefix = DefaultCommandPrefix
	}

	// Finnhub defaults
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = DefaultFinnhubURL
	}
	if c.Finnhub.Timeout == 0 {
		c.Finnhub.Timeout = DefaultAPITimeout
	}
	if c.Finnhub.MaxRetries == nil {
		n := DefaultMaxRetries
		c.Finnhub.MaxRetries = &n
	}
	if c.Finnhub.RetryBackoff == 0 {
		c.Finnhub.RetryBackoff = DefaultRetryBackoff
	}

	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultStoreDriver
	}
	applyDBDefaults(&c.Store.Postgres)
	if c.Store.Redis.KeyPrefix == "" {
		c.Store.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// Scheduler defaults
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = DefaultTimezone
	}
	if c.Scheduler.DeliveryConcurrency == 0 {
		c.Scheduler.DeliveryConcurrency = DefaultDeliveryConcurrency
	}

	// Job defaults
	if len(c.Price.Schedules) == 0 {
		c.Price.Schedules = append([]string(nil), DefaultPriceSchedules...)
	}
	if c.Price.Pacing == 0 {
		c.Price.Pacing = DefaultPricePacing
	}
	if c.News.Interval == 0 {
		c.News.Interval = DefaultNewsInterval
	}
	if c.News.Pacing == 0 {
		c.News.Pacing = DefaultNewsPacing
	}
	if c.News.LookbackDays == 0 {
		c.News.LookbackDays = DefaultNewsLookbackDays
	}
	if c.Cleanup.Interval == 0 {
		c.Cleanup.Interval = DefaultCleanupInterval
	}
	if c.Cleanup.RetentionDays == 0 {
		c.Cleanup.RetentionDays = DefaultRetentionDays
	}

	// Events defaults
	if c.Events.Kafka.Topic == "" {
		c.Events.Kafka.Topic = DefaultKafkaTopic
	}

	// Server and logging defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
