// Command sentnews inspects and maintains the sent-news dedup store.
//
// Usage:
//
//	sentnews -config configs/tickerwatch.yaml -init
//	sentnews -config configs/tickerwatch.yaml -evict-days 7
//	sentnews -config configs/tickerwatch.yaml -check <news_id> <channel_id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rickgao/tickerwatch/internal/config"
	"github.com/rickgao/tickerwatch/internal/sentnews"
)

type options struct {
	configPath string
	envPath    string
	init       bool
	evictDays  int
	check      bool
	args       []string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "configs/tickerwatch.yaml", "path to config file")
	flag.StringVar(&opts.envPath, "env", ".env", "path to optional .env file")
	flag.BoolVar(&opts.init, "init", false, "create the sent-news schema")
	flag.IntVar(&opts.evictDays, "evict-days", 0, "delete records older than N days")
	flag.BoolVar(&opts.check, "check", false, "report whether <news_id> <channel_id> was sent")
	flag.Parse()
	opts.args = flag.Args()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sentnews: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if !opts.init && opts.evictDays <= 0 && !opts.check {
		return errors.New("nothing to do: pass -init, -evict-days N or -check <news_id> <channel_id>")
	}
	if opts.check && len(opts.args) != 2 {
		return errors.New("-check needs <news_id> <channel_id>")
	}

	if err := config.LoadDotEnv(opts.envPath); err != nil {
		return err
	}
	cfg, err := config.LoadWithDefaults(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Store.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	slog.SetDefault(cfg.Logging.NewLogger(os.Stderr))

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	// Open runs Init, so -init is satisfied by opening.
	store, err := sentnews.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	return execute(ctx, store, opts, out)
}

func execute(ctx context.Context, store sentnews.Store, opts options, out io.Writer) error {
	if opts.init {
		fmt.Fprintln(out, "schema ready")
	}

	if opts.evictDays > 0 {
		retention := time.Duration(opts.evictDays) * 24 * time.Hour
		n, err := store.EvictOlderThan(ctx, retention)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "evicted %d records older than %d days\n", n, opts.evictDays)
	}

	if opts.check {
		newsID, channelID := opts.args[0], opts.args[1]
		sent, err := store.WasSent(ctx, newsID, channelID)
		if err != nil {
			return err
		}
		if sent {
			fmt.Fprintf(out, "news %s was sent to channel %s\n", newsID, channelID)
		} else {
			fmt.Fprintf(out, "news %s was not sent to channel %s\n", newsID, channelID)
		}
	}

	return nil
}
