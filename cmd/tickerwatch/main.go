package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/tickerwatch/internal/chat"
	"github.com/rickgao/tickerwatch/internal/config"
	"github.com/rickgao/tickerwatch/internal/events"
	"github.com/rickgao/tickerwatch/internal/marketdata"
	"github.com/rickgao/tickerwatch/internal/metrics"
	"github.com/rickgao/tickerwatch/internal/notify"
	"github.com/rickgao/tickerwatch/internal/sentnews"
	"github.com/rickgao/tickerwatch/internal/server"
	"github.com/rickgao/tickerwatch/internal/subscription"
	"github.com/rickgao/tickerwatch/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tickerwatch.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to optional .env file")
	flag.Parse()

	if err := run(*configPath, *envPath); err != nil {
		slog.Error("tickerwatch exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		return err
	}

	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging
	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting tickerwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
		"store", cfg.Store.Driver,
		"timezone", cfg.Scheduler.Timezone,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Dedup store must be ready before any job fires.
	store, err := sentnews.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open sent-news store: %w", err)
	}
	defer store.Close()
	logger.Info("sent-news store initialized", "driver", cfg.Store.Driver)

	m := metrics.New()
	registry := subscription.NewRegistry(logger)
	m.RegisterSubscriptionGauges(func() (int, int) {
		st := registry.Stats()
		return st.Channels, st.Symbols
	})

	loc := cfg.Scheduler.Location()
	client := marketdata.NewClient(
		cfg.Finnhub.BaseURL,
		cfg.Finnhub.APIKey,
		marketdata.WithLogger(logger),
		marketdata.WithTimeout(cfg.Finnhub.Timeout),
		marketdata.WithRetries(cfg.Finnhub.Retries(), cfg.Finnhub.RetryBackoff),
		marketdata.WithLocation(loc),
	)
	quotePacer := notify.NewPacer(cfg.Price.Pacing)
	newsPacer := notify.NewPacer(cfg.News.Pacing)

	publisher := events.New(cfg.Events, logger)
	defer publisher.Close()

	discord, err := chat.NewDiscord(cfg.Discord.Token, logger)
	if err != nil {
		return err
	}
	discord.Listen(chat.NewCommandHandler(cfg.Discord.CommandPrefix, registry, client, quotePacer, logger))
	if err := discord.Open(); err != nil {
		return err
	}
	defer discord.Close()

	dispatcher := notify.NewDispatcher(
		notify.DispatcherConfig{Concurrency: cfg.Scheduler.DeliveryConcurrency},
		registry, discord, store, publisher, m, logger,
	)

	scheduler, err := notify.New(notify.Config{
		Location:        loc,
		PriceSchedules:  cfg.Price.Schedules,
		PriceInterval:   cfg.Price.Interval,
		NewsInterval:    cfg.News.Interval,
		CleanupInterval: cfg.Cleanup.Interval,
		RunOnStart:      cfg.Scheduler.RunOnStart,
	},
		notify.NewPriceJob(registry, client, quotePacer, dispatcher, m, logger),
		notify.NewNewsJob(registry, client, newsPacer, dispatcher, cfg.News.LookbackDays, m, logger),
		notify.NewCleanupJob(store, cfg.Cleanup.Retention(), logger),
		m, logger,
	)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Warn("scheduler did not stop cleanly", "error", err)
		}
	}()

	ops := server.New(cfg.Server.Port, store, registry, scheduler, m, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(ops.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return ops.Shutdown(shutdownCtx)
	})

	logger.Info("tickerwatch running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutting down...")
	return nil
}
