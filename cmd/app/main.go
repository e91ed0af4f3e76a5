package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/vedant-shah/pair/internal/app"
	"github.com/vedant-shah/pair/internal/engine"
	"github.com/vedant-shah/pair/internal/infra"
	"github.com/vedant-shah/pair/internal/infra/hyperliq"
	"github.com/vedant-shah/pair/internal/order"
	"github.com/vedant-shah/pair/pkg/quant"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Debug listener: pprof + Prometheus metrics, localhost only
	go func() {
		http.Handle("/metrics", infra.MetricsHandler())
		slog.Info("🕵️ Debug server started on localhost:6060 (/debug/pprof, /metrics)")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Debug server failed", slog.Any("error", err))
		}
	}()

	// 2. System bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config
	infra.PrintBanner(cfg)

	// 3. Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	first, second := cfg.Pair.First, cfg.Pair.Second
	interval := quant.Interval(cfg.Pair.Interval)

	// 4. Order desk: sizing reconciler + execution client, exposed on the
	// debug listener as the control surface for placing orders.
	available, err := decimal.NewFromString(cfg.Trading.AvailableToTrade)
	if err != nil {
		slog.Warn("Invalid available_to_trade, defaulting to 0", "value", cfg.Trading.AvailableToTrade)
		available = decimal.Zero
	}
	maxLev := bootstrap.MaxLeverage(ctx)
	sizing := order.NewSizingReconciler(available, maxLev)
	desk := order.NewDesk(sizing, order.NewClient(cfg.API.Exec.URL), first, second)
	http.Handle("/order", order.NewControlHandler(desk))
	slog.Info("✅ Order desk ready (POST localhost:6060/order)",
		slog.Int("lev_first", sizing.Form().Leverage.First),
		slog.Int("lev_second", sizing.Form().Leverage.Second))

	// 5. Candle manager with local cache fallback
	candleClient := hyperliq.NewCandleClient(cfg.API.Candles.URL)
	candles := engine.NewCandleManager(candleClient, bootstrap.Store, nil)

	// 6. Synthesizer (the hotpath loop)
	synth := engine.NewSynthesizer(first, second, 1024, bootstrap.Quotes, engine.Callbacks{
		OnCandle: candles.OnLiveCandle,
	})
	go synth.Run(ctx)
	slog.InfoContext(ctx, "✅ Synthesizer (hotpath) started")

	// 7. Initial candle history
	if err := candles.Load(ctx, first, second, interval); err != nil {
		slog.Error("Bulk candle load failed", slog.Any("error", err),
			slog.Int("cached", len(candles.Series())))
	} else {
		slog.InfoContext(ctx, "✅ Candle history loaded", slog.Int("count", len(candles.Series())))
	}

	// 8. Live feeds
	var nextSeq uint64
	feeds := hyperliq.NewFeedManager(cfg.API.Feed.WSURL, cfg.API.Candles.WSURL, synth.Inbox(), &nextSeq)
	if err := feeds.Start(ctx, first, second, interval); err != nil {
		slog.Error("❌ Failed to start feeds", slog.Any("error", err))
		os.Exit(1)
	}
	defer feeds.Stop()

	slog.InfoContext(ctx, "✨ Pair gateway fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
