package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/internal/infra"
	"github.com/vedant-shah/pair/pkg/quant"
)

const (
	// BulkLoadCount is the window size of the initial load.
	BulkLoadCount = 200
	// PageLoadCount is the window size of one backward-pagination fetch.
	PageLoadCount = 150
	// InitialVisibleCount is how many trailing candles the initial view shows.
	InitialVisibleCount = 30

	// paginationFraction: a visible left edge within the oldest 1/10 of the
	// series triggers a backward fetch.
	paginationFraction = 10

	defaultScrollDebounce = 300 * time.Millisecond
)

// CandleFetcher fetches a historical candle window ending at endMillis.
type CandleFetcher interface {
	Fetch(ctx context.Context, quote, base string, interval quant.Interval, endMillis int64, count int) ([]domain.Candle, error)
}

// CandleCache is the optional local write-through store for fetched windows.
type CandleCache interface {
	SaveCandles(ctx context.Context, pair, interval string, candles []domain.Candle) error
	LoadCandles(ctx context.Context, pair, interval string, limit int) ([]domain.Candle, error)
}

// CandleManager owns the candle series for the active pair/interval: bulk
// load, backward pagination on scroll, and live update of the newest candle.
// The series is strictly increasing and duplicate-free by candle time across
// every operation. All mutation happens under one mutex because fetch
// completions land on their own goroutines.
type CandleManager struct {
	fetcher  CandleFetcher
	cache    CandleCache
	onSeries func([]domain.Candle)

	// Debounce is the visible-range-change settle time. Overridable in tests.
	Debounce time.Duration

	now func() time.Time

	mu             sync.Mutex
	first          string
	second         string
	interval       quant.Interval
	series         []domain.Candle
	generation     uint64
	loadFailed     bool
	inflightOldest int64 // Pagination dedup key (unix sec); 0 = none in flight
	debounceTimer  *time.Timer
	pendingLeft    int
}

// NewCandleManager creates a manager. cache and onSeries may be nil.
func NewCandleManager(fetcher CandleFetcher, cache CandleCache, onSeries func([]domain.Candle)) *CandleManager {
	return &CandleManager{
		fetcher:  fetcher,
		cache:    cache,
		onSeries: onSeries,
		Debounce: defaultScrollDebounce,
		now:      time.Now,
	}
}

// Load replaces the series with the most recent BulkLoadCount candles for the
// pair/interval. Any in-flight fetch for a previous target is invalidated by
// the generation bump and its late result discarded. On fetch failure the
// series degrades to the local cache contents (empty when the cache has none)
// and the failure flag is set; there is no automatic retry.
func (m *CandleManager) Load(ctx context.Context, first, second string, interval quant.Interval) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.first, m.second, m.interval = first, second, interval
	m.inflightOldest = 0
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.mu.Unlock()

	// End at the upper boundary of the live bucket so the forming candle is
	// included in the window.
	endMillis := interval.AlignMillis(m.now().UnixMilli()) + interval.Millis()

	candles, err := m.fetcher.Fetch(ctx, first, second, interval, endMillis, BulkLoadCount)

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return nil // Target changed while fetching; result is stale
	}

	if err != nil {
		infra.CandleFetches.WithLabelValues("bulk", "error").Inc()
		m.loadFailed = true
		m.series = nil
		if m.cache != nil {
			if rows, cacheErr := m.cache.LoadCandles(ctx, pairName(first, second), string(interval), BulkLoadCount); cacheErr == nil && len(rows) > 0 {
				m.series = rows
				slog.Warn("Bulk candle load failed, serving cached history",
					"pair", pairName(first, second), "cached", len(rows), "err", err)
			}
		}
		snapshot := m.snapshotLocked()
		m.mu.Unlock()
		m.notify(snapshot)
		return fmt.Errorf("bulk candle load: %w", err)
	}

	infra.CandleFetches.WithLabelValues("bulk", "ok").Inc()
	m.series = sanitizeSeries(candles)
	m.loadFailed = false
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.saveToCache(ctx, first, second, interval, snapshot)
	m.notify(snapshot)
	return nil
}

// OnVisibleRangeChange records the visible window's left edge (index into the
// series) and arms the scroll debounce. After the debounce settles, a left
// edge within the oldest tenth of the series triggers one backward fetch.
func (m *CandleManager) OnVisibleRangeChange(leftIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pendingLeft = leftIndex
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceTimer = time.AfterFunc(m.Debounce, m.paginate)
}

func (m *CandleManager) paginate() {
	m.mu.Lock()

	if len(m.series) == 0 || m.pendingLeft > len(m.series)/paginationFraction {
		m.mu.Unlock()
		return
	}

	oldest := m.series[0].Time
	if m.inflightOldest == oldest {
		m.mu.Unlock()
		return // A fetch for this boundary is already in flight
	}
	m.inflightOldest = oldest

	gen := m.generation
	first, second, interval := m.first, m.second, m.interval
	m.mu.Unlock()

	go m.fetchOlder(gen, first, second, interval, oldest)
}

// fetchOlder loads PageLoadCount candles ending at the current oldest bucket
// and prepends them. The fetched window's newest candle overlaps the series'
// oldest and is dropped.
func (m *CandleManager) fetchOlder(gen uint64, first, second string, interval quant.Interval, oldest int64) {
	ctx := context.Background()
	candles, err := m.fetcher.Fetch(ctx, first, second, interval, oldest*1000, PageLoadCount)

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return // Retargeted while fetching
	}

	if err != nil {
		infra.CandleFetches.WithLabelValues("page", "error").Inc()
		// Reset the dedup key so a later scroll can retry the same boundary.
		if m.inflightOldest == oldest {
			m.inflightOldest = 0
		}
		m.mu.Unlock()
		slog.Warn("Candle pagination failed", "pair", pairName(first, second), "oldest", oldest, "err", err)
		return
	}

	m.inflightOldest = 0

	older := sanitizeSeries(candles)
	cut := len(older)
	for cut > 0 && older[cut-1].Time >= m.series[0].Time {
		cut--
	}
	older = older[:cut]
	if len(older) == 0 {
		m.mu.Unlock()
		return // Reached the start of available history
	}

	infra.CandleFetches.WithLabelValues("page", "ok").Inc()
	merged := make([]domain.Candle, 0, len(older)+len(m.series))
	merged = append(merged, older...)
	merged = append(merged, m.series...)
	m.series = merged
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.saveToCache(ctx, first, second, interval, older)
	m.notify(snapshot)
}

// OnLiveCandle applies one streaming candle for the active pair/interval:
// equal time mutates the last candle in place, strictly greater appends,
// older is ignored. Messages for a stale target are dropped.
func (m *CandleManager) OnLiveCandle(pair, interval string, c domain.Candle) {
	m.mu.Lock()

	if pair != pairName(m.first, m.second) || interval != string(m.interval) {
		m.mu.Unlock()
		return
	}

	switch {
	case len(m.series) == 0 || c.Time > m.series[len(m.series)-1].Time:
		m.series = append(m.series, c)
	case c.Time == m.series[len(m.series)-1].Time:
		m.series[len(m.series)-1] = c
	default:
		m.mu.Unlock()
		return
	}

	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snapshot)
}

// Series returns a copy of the current series, oldest first.
func (m *CandleManager) Series() []domain.Candle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// LoadFailed reports whether the last bulk load failed.
func (m *CandleManager) LoadFailed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadFailed
}

// InitialLeftIndex returns the left edge of the default visible window.
func (m *CandleManager) InitialLeftIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.series) <= InitialVisibleCount {
		return 0
	}
	return len(m.series) - InitialVisibleCount
}

func (m *CandleManager) snapshotLocked() []domain.Candle {
	out := make([]domain.Candle, len(m.series))
	copy(out, m.series)
	return out
}

func (m *CandleManager) notify(series []domain.Candle) {
	if m.onSeries != nil {
		m.onSeries(series)
	}
}

func (m *CandleManager) saveToCache(ctx context.Context, first, second string, interval quant.Interval, candles []domain.Candle) {
	if m.cache == nil || len(candles) == 0 {
		return
	}
	if err := m.cache.SaveCandles(ctx, pairName(first, second), string(interval), candles); err != nil {
		slog.Warn("Candle cache write failed", "err", err)
	}
}

func pairName(first, second string) string {
	return first + "/" + second
}

// sanitizeSeries sorts ascending by time and drops duplicate buckets, keeping
// the later occurrence.
func sanitizeSeries(candles []domain.Candle) []domain.Candle {
	if len(candles) == 0 {
		return nil
	}
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })

	out := candles[:1]
	for _, c := range candles[1:] {
		if c.Time == out[len(out)-1].Time {
			out[len(out)-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}
