package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
discord:
  token: bot-token
  command_prefix: "$"
finnhub:
  api_key: fh-key
  timeout: 5s
store:
  driver: postgres
  postgres:
    host: localhost
    port: 5433
    name: tickerwatch
    user: tw
    password: secret
price:
  schedules:
    - "0 9 * * 1-5"
  pacing: 500ms
news:
  interval: 15m
  lookback_days: 3
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Discord.Token != "bot-token" {
		t.Errorf("Discord.Token = %q, want %q", cfg.Discord.Token, "bot-token")
	}
	if cfg.Discord.CommandPrefix != "$" {
		t.Errorf("Discord.CommandPrefix = %q, want %q", cfg.Discord.CommandPrefix, "$")
	}
	if cfg.Finnhub.Timeout != 5*time.Second {
		t.Errorf("Finnhub.Timeout = %v, want %v", cfg.Finnhub.Timeout, 5*time.Second)
	}
	if cfg.Store.Postgres.Port != 5433 {
		t.Errorf("Store.Postgres.Port = %d, want %d", cfg.Store.Postgres.Port, 5433)
	}
	if !reflect.DeepEqual(cfg.Price.Schedules, []string{"0 9 * * 1-5"}) {
		t.Errorf("Price.Schedules = %v", cfg.Price.Schedules)
	}
	if cfg.Price.Pacing != 500*time.Millisecond {
		t.Errorf("Price.Pacing = %v, want %v", cfg.Price.Pacing, 500*time.Millisecond)
	}
	if cfg.News.Interval != 15*time.Minute {
		t.Errorf("News.Interval = %v, want %v", cfg.News.Interval, 15*time.Minute)
	}
	if cfg.News.LookbackDays != 3 {
		t.Errorf("News.LookbackDays = %d, want %d", cfg.News.LookbackDays, 3)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DISCORD_TOKEN", "from-env")
	t.Setenv("TEST_FINNHUB_KEY", "fh-env")

	yaml := `
discord:
  token: ${TEST_DISCORD_TOKEN}
finnhub:
  api_key: ${TEST_FINNHUB_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Discord.Token != "from-env" {
		t.Errorf("Discord.Token = %q, want %q", cfg.Discord.Token, "from-env")
	}
	if cfg.Finnhub.APIKey != "fh-env" {
		t.Errorf("Finnhub.APIKey = %q, want %q", cfg.Finnhub.APIKey, "fh-env")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("TICKERWATCH_DOTENV_TEST=dotenv-value\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("TICKERWATCH_DOTENV_TEST", "")
	os.Unsetenv("TICKERWATCH_DOTENV_TEST")

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("TICKERWATCH_DOTENV_TEST"); got != "dotenv-value" {
		t.Errorf("env = %q, want %q", got, "dotenv-value")
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadDotEnv on missing file = %v, want nil", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
discord:
  token: t
finnhub:
  api_key: k
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Finnhub.BaseURL != DefaultFinnhubURL {
		t.Errorf("Finnhub.BaseURL = %q, want default %q", cfg.Finnhub.BaseURL, DefaultFinnhubURL)
	}
	if cfg.Store.Driver != DefaultStoreDriver {
		t.Errorf("Store.Driver = %q, want default %q", cfg.Store.Driver, DefaultStoreDriver)
	}
	if cfg.Store.Postgres.Port != DefaultDBPort {
		t.Errorf("Store.Postgres.Port = %d, want default %d", cfg.Store.Postgres.Port, DefaultDBPort)
	}
	if !reflect.DeepEqual(cfg.Price.Schedules, DefaultPriceSchedules) {
		t.Errorf("Price.Schedules = %v, want default %v", cfg.Price.Schedules, DefaultPriceSchedules)
	}
	if cfg.News.Interval != DefaultNewsInterval {
		t.Errorf("News.Interval = %v, want default %v", cfg.News.Interval, DefaultNewsInterval)
	}
	if cfg.News.Pacing != DefaultNewsPacing {
		t.Errorf("News.Pacing = %v, want default %v", cfg.News.Pacing, DefaultNewsPacing)
	}
	if cfg.Cleanup.RetentionDays != DefaultRetentionDays {
		t.Errorf("Cleanup.RetentionDays = %d, want default %d", cfg.Cleanup.RetentionDays, DefaultRetentionDays)
	}
	if cfg.Cleanup.Retention() != 7*24*time.Hour {
		t.Errorf("Cleanup.Retention() = %v, want %v", cfg.Cleanup.Retention(), 7*24*time.Hour)
	}
	if cfg.Scheduler.Timezone != DefaultTimezone {
		t.Errorf("Scheduler.Timezone = %q, want default %q", cfg.Scheduler.Timezone, DefaultTimezone)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Finnhub.Retries() != DefaultMaxRetries {
		t.Errorf("Finnhub.Retries() = %d, want default %d", cfg.Finnhub.Retries(), DefaultMaxRetries)
	}
}

func TestLoadWithDefaults_ZeroRetriesKept(t *testing.T) {
	yaml := `
discord:
  token: t
finnhub:
  api_key: k
  max_retries: 0
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if got := cfg.Finnhub.Retries(); got != 0 {
		t.Errorf("Finnhub.Retries() = %d, want 0", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{
			Discord: DiscordConfig{Token: "t"},
			Finnhub: FinnhubConfig{APIKey: "k"},
			Store: StoreConfig{
				Driver:   "postgres",
				Postgres: DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass"},
			},
		}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name       string
		mutate     func(*Config)
		wantErr    string
		wantAnyErr bool
	}{
		{
			name:    "missing discord token",
			mutate:  func(c *Config) { c.Discord.Token = "" },
			wantErr: "discord.token is required",
		},
		{
			name:    "missing finnhub key",
			mutate:  func(c *Config) { c.Finnhub.APIKey = "" },
			wantErr: "finnhub.api_key is required",
		},
		{
			name:    "unknown store driver",
			mutate:  func(c *Config) { c.Store.Driver = "sqlite" },
			wantErr: `store.driver must be postgres, redis or memory, got "sqlite"`,
		},
		{
			name:    "missing postgres password",
			mutate:  func(c *Config) { c.Store.Postgres.Password = "" },
			wantErr: "store.postgres.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Store.Postgres.MaxConns = 2
				c.Store.Postgres.MinConns = 5
			},
			wantErr: "store.postgres.min_conns (5) cannot exceed max_conns (2)",
		},
		{
			name:    "redis without addr",
			mutate:  func(c *Config) { c.Store.Driver = "redis" },
			wantErr: "store.redis.addr is required",
		},
		{
			name:       "bad cron schedule",
			mutate:     func(c *Config) { c.Price.Schedules = []string{"0 8 * * *", "not a cron"} },
			wantAnyErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { n := -1; c.Finnhub.MaxRetries = &n },
			wantErr: "finnhub.max_retries must be >= 0",
		},
		{
			name:    "zero retention",
			mutate:  func(c *Config) { c.Cleanup.RetentionDays = -1 },
			wantErr: "cleanup.retention_days must be >= 1",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
		{
			name:    "kafka brokers without topic",
			mutate:  func(c *Config) { c.Events.Kafka = KafkaConfig{Brokers: []string{"localhost:9092"}} },
			wantErr: "events.kafka.topic is required when brokers are set",
		},
		{
			name:   "memory driver",
			mutate: func(c *Config) { c.Store = StoreConfig{Driver: "memory"} },
		},
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()

			switch {
			case tt.wantAnyErr:
				if err == nil {
					t.Error("Validate() expected error, got nil")
				}
			case tt.wantErr == "":
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			case err == nil:
				t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
			case err.Error() != tt.wantErr:
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
