package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vedant-shah/pair/internal/domain"
)

func newTestStore(t *testing.T) *CandleStore {
	t.Helper()
	store, err := NewCandleStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewCandleStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCandleStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	candles := []domain.Candle{
		{Time: 100, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: 160, Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
		{Time: 220, Open: 2.5, High: 4, Low: 2, Close: 3, Volume: 30},
	}

	if err := store.SaveCandles(ctx, "BTC/SOL", "1h", candles); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	got, err := store.LoadCandles(ctx, "BTC/SOL", "1h", 10)
	if err != nil {
		t.Fatalf("LoadCandles failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candles, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Time <= got[i-1].Time {
			t.Errorf("times not ascending: %d then %d", got[i-1].Time, got[i].Time)
		}
	}
	if got[0] != candles[0] || got[2] != candles[2] {
		t.Errorf("loaded candles differ: %+v", got)
	}
}

func TestCandleStore_LoadLimitKeepsNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var candles []domain.Candle
	for i := 0; i < 5; i++ {
		candles = append(candles, domain.Candle{Time: int64(100 + i*60), Close: float64(i)})
	}
	if err := store.SaveCandles(ctx, "BTC/SOL", "1h", candles); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	got, err := store.LoadCandles(ctx, "BTC/SOL", "1h", 2)
	if err != nil {
		t.Fatalf("LoadCandles failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candles, want 2", len(got))
	}
	if got[0].Time != 280 || got[1].Time != 340 {
		t.Errorf("expected newest two ascending, got %+v", got)
	}
}

func TestCandleStore_UpsertOverwritesBucket(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveCandles(ctx, "BTC/SOL", "1h", []domain.Candle{{Time: 100, Close: 10}}); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}
	if err := store.SaveCandles(ctx, "BTC/SOL", "1h", []domain.Candle{{Time: 100, Close: 12, Volume: 5}}); err != nil {
		t.Fatalf("SaveCandles (overwrite) failed: %v", err)
	}

	got, err := store.LoadCandles(ctx, "BTC/SOL", "1h", 10)
	if err != nil {
		t.Fatalf("LoadCandles failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candles, want 1 (upsert, not append)", len(got))
	}
	if got[0].Close != 12 || got[0].Volume != 5 {
		t.Errorf("bucket not overwritten: %+v", got[0])
	}
}

func TestCandleStore_PairsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.SaveCandles(ctx, "BTC/SOL", "1h", []domain.Candle{{Time: 100, Close: 1}})
	store.SaveCandles(ctx, "ETH/SOL", "1h", []domain.Candle{{Time: 100, Close: 2}})
	store.SaveCandles(ctx, "BTC/SOL", "5m", []domain.Candle{{Time: 100, Close: 3}})

	got, err := store.LoadCandles(ctx, "BTC/SOL", "1h", 10)
	if err != nil {
		t.Fatalf("LoadCandles failed: %v", err)
	}
	if len(got) != 1 || got[0].Close != 1 {
		t.Errorf("pair/interval rows leaked: %+v", got)
	}
}

func TestCandleStore_Metadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v, err := store.GetMetadata(ctx, "missing")
	if err != nil || v != "" {
		t.Errorf("missing key: v=%q err=%v", v, err)
	}

	if err := store.UpsertMetadata(ctx, "k", "v1", 1); err != nil {
		t.Fatalf("UpsertMetadata failed: %v", err)
	}
	if err := store.UpsertMetadata(ctx, "k", "v2", 2); err != nil {
		t.Fatalf("UpsertMetadata (update) failed: %v", err)
	}

	v, err = store.GetMetadata(ctx, "k")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if v != "v2" {
		t.Errorf("v = %q, want v2", v)
	}
}

func TestCandleStore_MaxLeverageRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lev, err := store.LoadMaxLeverage(ctx)
	if err != nil {
		t.Fatalf("LoadMaxLeverage (empty) failed: %v", err)
	}
	if lev != nil {
		t.Errorf("expected nil for empty cache, got %v", lev)
	}

	want := map[string]int{"BTC": 50, "SOL": 20}
	if err := store.SaveMaxLeverage(ctx, want, 1700000000); err != nil {
		t.Fatalf("SaveMaxLeverage failed: %v", err)
	}

	lev, err = store.LoadMaxLeverage(ctx)
	if err != nil {
		t.Fatalf("LoadMaxLeverage failed: %v", err)
	}
	if lev["BTC"] != 50 || lev["SOL"] != 20 {
		t.Errorf("leverage = %v, want %v", lev, want)
	}
}
