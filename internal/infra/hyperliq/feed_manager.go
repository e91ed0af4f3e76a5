package hyperliq

import (
	"context"
	"fmt"
	"sync"

	"log/slog"

	"github.com/vedant-shah/pair/internal/event"
	"github.com/vedant-shah/pair/pkg/quant"
)

// feed is the lifecycle surface shared by AssetFeed and CandleFeed.
type feed interface {
	ID() string
	Connect(ctx context.Context) error
	Disconnect()
}

// FeedManager owns the socket set for the active subscription: one asset feed
// per leg plus the pair candle feed. Retargeting tears every feed down before
// opening replacements, so two subscriptions for the same logical feed never
// overlap.
type FeedManager struct {
	feedWSURL   string
	candleWSURL string
	inbox       chan<- event.Event
	seq         *uint64

	mu    sync.Mutex
	ctx   context.Context
	feeds []feed
}

// NewFeedManager factory.
func NewFeedManager(feedWSURL, candleWSURL string, inbox chan<- event.Event, seq *uint64) *FeedManager {
	return &FeedManager{
		feedWSURL:   feedWSURL,
		candleWSURL: candleWSURL,
		inbox:       inbox,
		seq:         seq,
	}
}

// Start opens the feeds for the given pair and interval. ctx bounds every
// socket opened by this manager, including after retargets.
func (m *FeedManager) Start(ctx context.Context, first, second string, interval quant.Interval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx != nil {
		return fmt.Errorf("feed manager already started")
	}
	m.ctx = ctx
	return m.startLocked(first, second, interval)
}

// Retarget switches the subscription set to a new pair/interval. All existing
// feeds are stopped and drained before the replacements connect.
func (m *FeedManager) Retarget(first, second string, interval quant.Interval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return fmt.Errorf("feed manager not started")
	}

	m.stopLocked()
	return m.startLocked(first, second, interval)
}

// Stop tears down all feeds. The manager can be started again afterwards.
func (m *FeedManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.ctx = nil
}

func (m *FeedManager) startLocked(first, second string, interval quant.Interval) error {
	pair := first + "/" + second

	m.feeds = []feed{
		NewAssetFeed(m.feedWSURL, first, m.inbox, m.seq),
		NewAssetFeed(m.feedWSURL, second, m.inbox, m.seq),
		NewCandleFeed(m.candleWSURL, pair, interval, m.inbox, m.seq),
	}

	for _, f := range m.feeds {
		if err := f.Connect(m.ctx); err != nil {
			return fmt.Errorf("connect %s: %w", f.ID(), err)
		}
		slog.Info("Feed subscribed", "id", f.ID())
	}
	return nil
}

func (m *FeedManager) stopLocked() {
	for _, f := range m.feeds {
		f.Disconnect()
		slog.Info("Feed stopped", "id", f.ID())
	}
	m.feeds = nil
}
