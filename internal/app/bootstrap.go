// Package app orchestrates gateway startup: configuration, logging, local
// storage, the Redis mirror and exchange metadata.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/vedant-shah/pair/internal/cache"
	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/internal/event"
	"github.com/vedant-shah/pair/internal/infra"
	"github.com/vedant-shah/pair/internal/infra/hyperliq"
	"github.com/vedant-shah/pair/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config *infra.Config
	Store  *storage.CandleStore
	Quotes *cache.QuoteCache

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, dirs, DB, cache).
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping pair gateway...")

	// 0. Runtime warmup
	event.Warmup()
	slog.Info("🔥 Event pool warmed up")

	// 1. Load config (dynamic path resolution)
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Workspace layout and single-instance lock
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	// 4. Candle store (local history cache + exchange metadata)
	dbPath := filepath.Join(dataDir, "candles.db")
	store, err := storage.NewCandleStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ Candle store initialized (WAL-mode)", "path", dbPath)

	// 5. Optional Redis quote mirror
	quotes, err := cache.NewQuoteCache(cfg.API.Redis.Addr, cfg.API.Redis.DB)
	if err != nil {
		// The mirror is optional; a dead Redis must not block startup.
		slog.Warn("Redis quote mirror unavailable, continuing without it", "err", err)
	} else if quotes != nil {
		b.Quotes = quotes
		slog.Info("✅ Redis quote mirror connected", "addr", cfg.API.Redis.Addr)
	}

	return nil
}

// MaxLeverage resolves the per-asset leverage caps for the configured pair:
// live exchange metadata when reachable (written through to the local cache),
// the cached values otherwise.
func (b *Bootstrap) MaxLeverage(ctx context.Context) domain.Leverage {
	first, second := b.Config.Pair.First, b.Config.Pair.Second

	if b.Config.API.Feed.InfoURL != "" {
		meta := hyperliq.NewMetaClient(b.Config.API.Feed.InfoURL)
		if lev, err := meta.MaxLeverage(ctx); err == nil {
			if err := b.Store.SaveMaxLeverage(ctx, lev, time.Now().Unix()); err != nil {
				slog.Warn("Failed to cache leverage metadata", "err", err)
			}
			return domain.Leverage{First: lev[first], Second: lev[second]}
		} else {
			slog.Warn("Exchange metadata fetch failed, trying cache", "err", err)
		}
	}

	if lev, err := b.Store.LoadMaxLeverage(ctx); err == nil && lev != nil {
		return domain.Leverage{First: lev[first], Second: lev[second]}
	}

	slog.Warn("No leverage metadata available, defaulting to 1x caps")
	return domain.Leverage{First: 1, Second: 1}
}

// Close releases the resources acquired during Initialize.
func (b *Bootstrap) Close() {
	if b.Quotes != nil {
		b.Quotes.Close()
	}
	if b.Store != nil {
		b.Store.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
}
