// pairprobe is a connectivity smoke tool: it subscribes to the live feeds for
// one pair and prints every derived quote, book spread and live candle until
// the duration elapses. Useful for checking endpoints and pair symbols before
// running the gateway. With -replay it skips the feeds and streams the locally
// cached candle history through the same pipeline instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"log/slog"

	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/internal/engine"
	"github.com/vedant-shah/pair/internal/infra"
	"github.com/vedant-shah/pair/internal/infra/hyperliq"
	"github.com/vedant-shah/pair/internal/replay"
	"github.com/vedant-shah/pair/internal/storage"
	"github.com/vedant-shah/pair/pkg/quant"
)

func main() {
	configPath := flag.String("config", "", "config file (default: standard resolution)")
	first := flag.String("first", "", "first pair asset (default: from config)")
	second := flag.String("second", "", "second pair asset (default: from config)")
	interval := flag.String("interval", "", "candle interval (default: from config)")
	duration := flag.Duration("duration", 30*time.Second, "how long to listen")
	replayMode := flag.Bool("replay", false, "replay cached candle history instead of connecting to live feeds")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	path := *configPath
	if path == "" {
		path = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *first != "" {
		cfg.Pair.First = *first
	}
	if *second != "" {
		cfg.Pair.Second = *second
	}
	if *interval != "" {
		cfg.Pair.Interval = *interval
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	pair := cfg.Pair.First + "/" + cfg.Pair.Second
	fmt.Printf("=== Pair Probe: %s @ %s (%s) ===\n\n", pair, cfg.Pair.Interval, *duration)

	synth := engine.NewSynthesizer(cfg.Pair.First, cfg.Pair.Second, 256, nil, engine.Callbacks{
		OnQuote: printQuote,
		OnBook:  printSpread,
		OnCandle: func(p, iv string, c domain.Candle) {
			arrow := "🔻"
			if c.IsUp() {
				arrow = "🔼"
			}
			fmt.Printf("🕯️  %s %s t=%d o=%.6f c=%.6f vol=%.2f %s\n",
				p, iv, c.Time, c.Open, c.Close, c.Volume, arrow)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	go synth.Run(ctx)

	var nextSeq uint64

	if *replayMode {
		dbPath := filepath.Join(infra.GetWorkspaceDir(), "data", "candles.db")
		store, err := storage.NewCandleStore(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "candle store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		n, err := replay.NewReplayer(store).Run(ctx, pair, quant.Interval(cfg.Pair.Interval),
			engine.BulkLoadCount, synth.Inbox(), &nextSeq)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay: %v\n", err)
			os.Exit(1)
		}
		// Let the loop drain the inbox before reporting.
		time.Sleep(200 * time.Millisecond)
		fmt.Printf("\n✅ Replayed %d cached candles from %s\n", n, dbPath)
		return
	}

	feeds := hyperliq.NewFeedManager(cfg.API.Feed.WSURL, cfg.API.Candles.WSURL, synth.Inbox(), &nextSeq)
	if err := feeds.Start(ctx, cfg.Pair.First, cfg.Pair.Second, quant.Interval(cfg.Pair.Interval)); err != nil {
		fmt.Fprintf(os.Stderr, "feeds: %v\n", err)
		os.Exit(1)
	}
	defer feeds.Stop()

	<-ctx.Done()

	fmt.Println()
	if q, ok := synth.LastQuote(); ok && q.Valid {
		abs, pct, _ := q.Change24h()
		fmt.Printf("✅ Final: mark=%.6f oracle=%.6f 24h=%+.6f (%+.2f%%)\n", q.Mark, q.Oracle, abs, pct)
	} else {
		fmt.Println("⚠️  No valid pair quote observed (check symbols and feed URL)")
	}
}

func printQuote(q domain.PairQuote) {
	if !q.Valid {
		fmt.Printf("📊 %s/%s UNAVAILABLE (denominator zero or malformed feed values)\n", q.First, q.Second)
		return
	}
	flash := " "
	switch q.Flash {
	case domain.FlashUp:
		flash = "▲"
	case domain.FlashDown:
		flash = "▼"
	}
	fmt.Printf("📊 %s/%s mark=%.6f %s fund=%+.8f vol=%.0f\n",
		q.First, q.Second, q.Mark, flash, q.Funding, q.DayVolume)
}

func printSpread(b domain.SyntheticBook) {
	abs, pct, ok := b.Spread()
	if !ok {
		return
	}
	fmt.Printf("📚 book %d/%d levels spread=%.6f (%.3f%%)\n",
		len(b.BuySide), len(b.SellSide), abs, pct)
}
