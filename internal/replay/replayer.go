// Package replay streams locally cached candle history back through the
// synthesizer inbox as if it arrived from the live candle feed. Used for
// offline inspection of the candle pipeline when no feed is reachable.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/vedant-shah/pair/internal/event"
	"github.com/vedant-shah/pair/internal/storage"
	"github.com/vedant-shah/pair/pkg/quant"
)

// Replayer reads cached candles from the candle store and emits them as
// ordered candle events.
type Replayer struct {
	store *storage.CandleStore
}

// NewReplayer creates a replayer over the given store.
func NewReplayer(store *storage.CandleStore) *Replayer {
	return &Replayer{store: store}
}

// Run emits every cached candle for the pair, oldest first, into inbox. The
// send blocks so replay is lossless; cancel ctx to abort early. Returns the
// number of candles replayed.
func (r *Replayer) Run(ctx context.Context, pair string, interval quant.Interval, limit int, inbox chan<- event.Event, seq *uint64) (int, error) {
	candles, err := r.store.LoadCandles(ctx, pair, string(interval), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load cached candles: %w", err)
	}

	for i, c := range candles {
		ev := &event.CandleEvent{
			BaseEvent: event.BaseEvent{
				Seq: quant.NextSeq(seq),
				Ts:  time.Now().UnixMilli(),
			},
			Pair:     pair,
			Interval: string(interval),
			Candle:   c,
		}
		select {
		case inbox <- ev:
		case <-ctx.Done():
			return i, ctx.Err()
		}
	}
	return len(candles), nil
}
