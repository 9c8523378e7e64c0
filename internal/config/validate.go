package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // scheduler timezones must resolve on minimal images

	"github.com/robfig/cron/v3"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord.token is required")
	}
	if c.Finnhub.APIKey == "" {
		return errors.New("finnhub.api_key is required")
	}

	if c.Finnhub.Retries() < 0 {
		return errors.New("finnhub.max_retries must be >= 0")
	}

	if err := c.Store.Validate(); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone %q: %w", c.Scheduler.Timezone, err)
	}
	if c.Scheduler.DeliveryConcurrency < 1 {
		return errors.New("scheduler.delivery_concurrency must be >= 1")
	}

	for i, spec := range c.Price.Schedules {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("price.schedules[%d] %q: %w", i, spec, err)
		}
	}
	if c.Price.Interval < 0 {
		return errors.New("price.interval must be >= 0")
	}
	if c.Price.Pacing < 0 || c.News.Pacing < 0 {
		return errors.New("pacing must be >= 0")
	}

	if c.News.Interval <= 0 {
		return errors.New("news.interval must be > 0")
	}
	if c.News.LookbackDays < 1 {
		return errors.New("news.lookback_days must be >= 1")
	}

	if c.Cleanup.Interval <= 0 {
		return errors.New("cleanup.interval must be > 0")
	}
	if c.Cleanup.RetentionDays < 1 {
		return errors.New("cleanup.retention_days must be >= 1")
	}

	if len(c.Events.Kafka.Brokers) > 0 && c.Events.Kafka.Topic == "" {
		return errors.New("events.kafka.topic is required when brokers are set")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// Validate checks the selected store driver's settings. The sentnews
// maintenance tool validates only this section.
func (s *StoreConfig) Validate() error {
	switch s.Driver {
	case "postgres":
		return s.Postgres.validate("store.postgres")
	case "redis":
		if s.Redis.Addr == "" {
			return errors.New("store.redis.addr is required")
		}
		return nil
	case "memory":
		return nil
	default:
		return fmt.Errorf("store.driver must be postgres, redis or memory, got %q", s.Driver)
	}
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
