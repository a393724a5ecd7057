package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"GameScanner/internal/config"
	"GameScanner/internal/domain"
	"GameScanner/internal/infrastructure/scheduler"
	"GameScanner/internal/infrastructure/scrape"
	"GameScanner/internal/infrastructure/storage"
	"GameScanner/internal/logging"
	"GameScanner/internal/ports"
	"GameScanner/internal/recency"
	"GameScanner/internal/scanner"
	"GameScanner/internal/store"
	"GameScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	pipeline *usecase.Pipeline
	sinks    []ports.ResultSink
	history  ports.ResultHistory
	sqlite   *storage.SQLiteCache
	progress usecase.ProgressFunc
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	st := store.New(store.Options{
		PruneDays: cfg.Links.PruneDays,
		Logger:    baseLogger.With("component", "store"),
	})

	client := scrape.NewClient(
		&http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second},
		cfg.HTTP.UserAgent,
	)

	registry := scanner.NewRegistry(scrape.GenericScraper{})
	registry.Register(scrape.NewFapNationScraper(client, cfg.Sources.ExternalDomains, cfg.Sources.FilePatterns()))
	registry.Register(scrape.ItchScraper{})
	registry.Register(scrape.LewdGamesScraper{})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry: registry,
		Store:    st,
		Thresholds: recency.Thresholds{
			RecentDays:    cfg.Recency.RecentDays,
			AbandonedDays: cfg.Recency.AbandonedDays,
		},
		ExternalDomains: cfg.Sources.ExternalDomains,
		Cookie:          cfg.HTTP.Cookie,
		Logger:          baseLogger.With("component", "pipeline"),
	})

	a := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    st,
		pipeline: pipeline,
	}

	if cfg.Cache.CSVPath != "" {
		csvCache := storage.NewCSVCache(cfg.Cache.CSVPath)
		a.sinks = append(a.sinks, csvCache)
		a.history = csvCache
	}
	if cfg.Cache.SQLitePath != "" {
		cache, err := storage.OpenSQLiteCache(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open results cache: %w", err)
		}
		a.sqlite = cache
		a.sinks = append(a.sinks, cache)
		// the sqlite cache is the preferred history source when both exist
		a.history = cache
	}

	return a, nil
}

// SetProgress routes per-entry progress messages, e.g. to the CLI.
func (a *Application) SetProgress(fn usecase.ProgressFunc) {
	a.progress = fn
}

// RunOnce walks the library, scrapes every entry sequentially, exports the
// results, and returns them in input order.
func (a *Application) RunOnce(ctx context.Context) ([]domain.GameInfo, error) {
	items, err := a.store.Collect(a.cfg.Library.ActiveRoot, a.cfg.Library.WaitingRoot)
	if err != nil {
		return nil, fmt.Errorf("collect library: %w", err)
	}
	a.logger.Info("library collected", "entries", len(items))

	results := a.pipeline.ScrapeAll(ctx, items, a.progress)

	for _, sink := range a.sinks {
		if err := sink.Save(ctx, results); err != nil {
			a.logger.Warn("result export failed", "error", err)
		}
	}

	return results, nil
}

// CachedResults serves the rows of the last persisted scan without fetching
// anything, sorted by URL. Errors when no result cache is configured.
func (a *Application) CachedResults(ctx context.Context) ([]domain.GameInfo, error) {
	if a.history == nil {
		return nil, fmt.Errorf("no result cache configured")
	}

	byURL, err := a.history.LoadPrevious(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cached results: %w", err)
	}

	urls := make([]string, 0, len(byURL))
	for u := range byURL {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	results := make([]domain.GameInfo, 0, len(urls))
	for _, u := range urls {
		results = append(results, byURL[u])
	}
	return results, nil
}

// Watch performs one scan immediately and then rescans on the configured
// cron expression until the context is canceled.
func (a *Application) Watch(ctx context.Context) error {
	if _, err := a.RunOnce(ctx); err != nil {
		return err
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, func(ctx context.Context, trigger time.Time) {
		a.logger.Info("scheduled rescan", "trigger", trigger.Format(time.RFC3339))
		if _, err := a.RunOnce(ctx); err != nil {
			a.logger.Error("scheduled rescan failed", "error", err)
		}
	})

	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() {
	if a.sqlite != nil {
		_ = a.sqlite.Close()
	}
}
