package replay

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/internal/event"
	"github.com/vedant-shah/pair/internal/storage"
	"github.com/vedant-shah/pair/pkg/quant"
)

func seedStore(t *testing.T, candles []domain.Candle) *storage.CandleStore {
	t.Helper()
	store, err := storage.NewCandleStore(filepath.Join(t.TempDir(), "replay.db"))
	if err != nil {
		t.Fatalf("NewCandleStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.SaveCandles(context.Background(), "BTC/SOL", "1h", candles); err != nil {
		t.Fatalf("SaveCandles: %v", err)
	}
	return store
}

func TestReplayer_EmitsOldestFirstWithOrderedSeq(t *testing.T) {
	candles := []domain.Candle{
		{Time: 1000, Open: 400, High: 410, Low: 395, Close: 405, Volume: 10},
		{Time: 4600, Open: 405, High: 420, Low: 400, Close: 415, Volume: 12},
		{Time: 8200, Open: 415, High: 418, Low: 408, Close: 410, Volume: 7},
	}
	store := seedStore(t, candles)

	inbox := make(chan event.Event, 8)
	var seq uint64
	n, err := NewReplayer(store).Run(context.Background(), "BTC/SOL", quant.Interval("1h"), 200, inbox, &seq)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != len(candles) {
		t.Fatalf("replayed %d candles, want %d", n, len(candles))
	}

	var lastSeq uint64
	for i, want := range candles {
		ev := (<-inbox).(*event.CandleEvent)
		if ev.Candle.Time != want.Time {
			t.Errorf("event %d: time %d, want %d", i, ev.Candle.Time, want.Time)
		}
		if ev.Pair != "BTC/SOL" || ev.Interval != "1h" {
			t.Errorf("event %d: target %s/%s", i, ev.Pair, ev.Interval)
		}
		if ev.Seq <= lastSeq {
			t.Errorf("event %d: seq %d not increasing past %d", i, ev.Seq, lastSeq)
		}
		lastSeq = ev.Seq
	}
}

func TestReplayer_CancelAborts(t *testing.T) {
	candles := []domain.Candle{
		{Time: 1000, Close: 405},
		{Time: 4600, Close: 415},
	}
	store := seedStore(t, candles)

	// Unbuffered inbox with no reader: the first send must block until cancel.
	inbox := make(chan event.Event)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var n int
	var err error
	var seq uint64
	go func() {
		n, err = NewReplayer(store).Run(ctx, "BTC/SOL", quant.Interval("1h"), 200, inbox, &seq)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("replay did not abort on cancel")
	}
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n != 0 {
		t.Errorf("replayed %d candles before abort, want 0", n)
	}
}

func TestReplayer_EmptyStore(t *testing.T) {
	store := seedStore(t, nil)

	inbox := make(chan event.Event, 1)
	var seq uint64
	n, err := NewReplayer(store).Run(context.Background(), "ETH/BTC", quant.Interval("5m"), 200, inbox, &seq)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 0 {
		t.Errorf("replayed %d candles from empty store, want 0", n)
	}
}
