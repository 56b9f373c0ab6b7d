package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/matsen/pubmedxml/internal/cache"
	"github.com/matsen/pubmedxml/internal/config"
	"github.com/matsen/pubmedxml/internal/efetch"
)

// clientOptions translates configuration into efetch options.
func clientOptions(cfg *config.Config) []efetch.ClientOption {
	var opts []efetch.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, efetch.WithAPIKey(cfg.APIKey))
	}
	if cfg.Email != "" {
		opts = append(opts, efetch.WithEmail(cfg.Email))
	}
	if cfg.Tool != "" {
		opts = append(opts, efetch.WithTool(cfg.Tool))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, efetch.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, efetch.WithRateLimit(cfg.RequestsPerSecond))
	}
	return opts
}

// lazyFetcher builds the efetch client and opens the cache on first use,
// so runs over local files never touch the cache database.
type lazyFetcher struct {
	cfg      *config.Config
	useCache bool
	logger   *slog.Logger

	once   sync.Once
	client *efetch.Client
	db     *cache.DB
}

func newLazyFetcher(cfg *config.Config, useCache bool, logger *slog.Logger) *lazyFetcher {
	return &lazyFetcher{cfg: cfg, useCache: useCache, logger: logger}
}

func (f *lazyFetcher) init() {
	opts := clientOptions(f.cfg)
	if f.useCache {
		path := f.cfg.ResolvedCachePath()
		db, err := cache.Open(path)
		if err != nil {
			f.logger.Warn("cache unavailable, fetching without it", "path", path, "error", err)
		} else {
			f.db = db
			opts = append(opts, efetch.WithCache(db))
		}
	}
	f.client = efetch.NewClient(opts...)
}

// FetchXML implements source.Fetcher.
func (f *lazyFetcher) FetchXML(ctx context.Context, pmid string) (string, error) {
	f.once.Do(f.init)
	f.logger.Debug("fetching", "pmid", pmid)
	return f.client.FetchXML(ctx, pmid)
}

// Close releases the cache database if it was opened.
func (f *lazyFetcher) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}
