package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/tickerwatch/internal/events"
	"github.com/rickgao/tickerwatch/internal/metrics"
	"github.com/rickgao/tickerwatch/internal/model"
	"github.com/rickgao/tickerwatch/internal/render"
	"github.com/rickgao/tickerwatch/internal/sentnews"
)

// Job names.
const (
	JobPrice   = "price"
	JobNews    = "news"
	JobCleanup = "cleanup"
)

// Job is one unit of scheduled work. runID tags every log line and event the
// firing produces.
type Job interface {
	Name() string
	Run(ctx context.Context, runID string) error
}

// SymbolSource lists every symbol tracked by at least one channel.
type SymbolSource interface {
	AllTrackedSymbols() []string
}

// QuoteFetcher fetches a single quote.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// NewsFetcher fetches recent company news.
type NewsFetcher interface {
	FetchNews(ctx context.Context, symbol string, lookbackDays int) ([]model.NewsItem, error)
}

// PriceJob broadcasts the latest quote of every tracked symbol.
type PriceJob struct {
	symbols    SymbolSource
	quotes     QuoteFetcher
	pacer      Pacer
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewPriceJob creates a PriceJob.
func NewPriceJob(symbols SymbolSource, quotes QuoteFetcher, pacer Pacer, dispatcher *Dispatcher, m *metrics.Metrics, logger *slog.Logger) *PriceJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceJob{
		symbols:    symbols,
		quotes:     quotes,
		pacer:      pacer,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

func (j *PriceJob) Name() string { return JobPrice }

// Run fetches and fans out one quote per tracked symbol.
func (j *PriceJob) Run(ctx context.Context, runID string) error {
	start := time.Now()
	log := j.logger.With("job", JobPrice, "run_id", runID)

	symbols := j.symbols.AllTrackedSymbols()
	if len(symbols) == 0 {
		log.Info("no symbols tracked for price updates")
		return nil
	}

	var fetched, unavailable int
	tally := Tally{}

	for _, symbol := range symbols {
		if err := j.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("price job interrupted: %w", err)
		}

		q, err := j.quotes.FetchQuote(ctx, symbol)
		if err != nil {
			log.Warn("could not retrieve price data", "symbol", symbol, "error", err)
			j.metrics.Fetch("quote", "unavailable")
			unavailable++
			continue
		}
		j.metrics.Fetch("quote", "ok")
		fetched++

		tally.Add(j.dispatcher.Deliver(ctx, Message{
			Kind:   events.KindPrice,
			Symbol: symbol,
			Text:   render.Price(q),
			RunID:  runID,
		}))
	}

	log.Info("job cycle complete", append([]any{
		"symbols", len(symbols),
		"fetched", fetched,
		"unavailable", unavailable,
		"duration", time.Since(start),
	}, tally.LogAttrs()...)...)
	return nil
}

// NewsJob sends each channel the company news it has not seen yet.
type NewsJob struct {
	symbols      SymbolSource
	news         NewsFetcher
	pacer        Pacer
	dispatcher   *Dispatcher
	lookbackDays int
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewNewsJob creates a NewsJob.
func NewNewsJob(symbols SymbolSource, news NewsFetcher, pacer Pacer, dispatcher *Dispatcher, lookbackDays int, m *metrics.Metrics, logger *slog.Logger) *NewsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsJob{
		symbols:      symbols,
		news:         news,
		pacer:        pacer,
		dispatcher:   dispatcher,
		lookbackDays: lookbackDays,
		metrics:      m,
		logger:       logger,
	}
}

func (j *NewsJob) Name() string { return JobNews }

// Run fetches news per tracked symbol and delivers every item to each
// subscribing channel that has not received it.
func (j *NewsJob) Run(ctx context.Context, runID string) error {
	start := time.Now()
	log := j.logger.With("job", JobNews, "run_id", runID)

	symbols := j.symbols.AllTrackedSymbols()
	if len(symbols) == 0 {
		log.Info("no symbols tracked for news updates")
		return nil
	}

	var items, unavailable int
	tally := Tally{}

	for _, symbol := range symbols {
		if err := j.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("news job interrupted: %w", err)
		}

		articles, err := j.news.FetchNews(ctx, symbol, j.lookbackDays)
		if err != nil {
			log.Warn("could not retrieve news", "symbol", symbol, "error", err)
			j.metrics.Fetch("news", "unavailable")
			unavailable++
			continue
		}
		j.metrics.Fetch("news", "ok")

		if len(articles) == 0 {
			log.Debug("no news found", "symbol", symbol)
			continue
		}

		for _, item := range articles {
			items++
			tally.Add(j.dispatcher.Deliver(ctx, Message{
				Kind:   events.KindNews,
				Symbol: symbol,
				Text:   render.News(item),
				NewsID: item.ID,
				RunID:  runID,
			}))
		}
	}

	log.Info("job cycle complete", append([]any{
		"symbols", len(symbols),
		"items", items,
		"unavailable", unavailable,
		"duration", time.Since(start),
	}, tally.LogAttrs()...)...)
	return nil
}

// CleanupJob evicts sent-news records older than the retention window.
type CleanupJob struct {
	store     sentnews.Store
	retention time.Duration
	logger    *slog.Logger
}

// NewCleanupJob creates a CleanupJob.
func NewCleanupJob(store sentnews.Store, retention time.Duration, logger *slog.Logger) *CleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{store: store, retention: retention, logger: logger}
}

func (j *CleanupJob) Name() string { return JobCleanup }

// Run performs one eviction sweep.
func (j *CleanupJob) Run(ctx context.Context, runID string) error {
	start := time.Now()

	evicted, err := j.store.EvictOlderThan(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("evict sent news: %w", err)
	}

	j.logger.Info("job cycle complete",
		"job", JobCleanup,
		"run_id", runID,
		"evicted", evicted,
		"retention", j.retention,
		"duration", time.Since(start),
	)
	return nil
}
