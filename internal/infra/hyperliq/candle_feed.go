package hyperliq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vedant-shah/pair/internal/event"
	"github.com/vedant-shah/pair/internal/infra"
	"github.com/vedant-shah/pair/pkg/quant"
)

// CandleFeed subscribes to the live candle stream of the candle service for
// one pair and interval. The stream delivers only the newest candle of the
// active bucket; history comes from CandleClient.
type CandleFeed struct {
	base     *infra.FeedWorker
	url      string
	pair     string
	interval quant.Interval
	inbox    chan<- event.Event
	seq      *uint64
}

// NewCandleFeed factory. pair is the display form "FIRST/SECOND".
func NewCandleFeed(url, pair string, interval quant.Interval, inbox chan<- event.Event, seq *uint64) *CandleFeed {
	f := &CandleFeed{
		url:      url,
		pair:     pair,
		interval: interval,
		inbox:    inbox,
		seq:      seq,
	}
	f.base = infra.NewFeedWorker(f)
	return f
}

func (f *CandleFeed) ID() string     { return "CANDLE_" + f.pair }
func (f *CandleFeed) GetURL() string { return f.url }

func (f *CandleFeed) Connect(ctx context.Context) error {
	f.base.Start(ctx)
	return nil
}

func (f *CandleFeed) Disconnect() {
	f.base.Stop()
}

// OnConnect resets the stream with the clear sentinel, then subscribes the
// active pair at index 0.
func (f *CandleFeed) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	if err := f.base.Write(websocket.TextMessage, []byte(clearSentinel)); err != nil {
		return err
	}

	subs := []candleSubscription{
		{Index: 0, Pair: f.pair, Interval: string(f.interval)},
	}
	b, _ := json.Marshal(subs)
	return f.base.Write(websocket.TextMessage, b)
}

// OnMessage parses a per-index live candle message. Only index "0" is ever
// subscribed; other keys are ignored.
func (f *CandleFeed) OnMessage(ctx context.Context, msg []byte) {
	var slots map[string]liveCandleSlot
	if err := json.Unmarshal(msg, &slots); err != nil {
		infra.FeedDropped.WithLabelValues(f.ID(), "parse").Inc()
		return
	}

	slot, ok := slots["0"]
	if !ok {
		return
	}

	c, ok := parseCandleTuple(slot.Data)
	if !ok {
		infra.FeedDropped.WithLabelValues(f.ID(), "shape").Inc()
		return
	}
	infra.FeedMessages.WithLabelValues(f.ID(), "candle").Inc()

	ev := &event.CandleEvent{
		BaseEvent: event.BaseEvent{
			Seq: quant.NextSeq(f.seq),
			Ts:  time.Now().UnixMilli(),
		},
		Pair:     f.pair,
		Interval: string(f.interval),
		Candle:   c,
	}

	select {
	case f.inbox <- ev:
	default:
		infra.FeedDropped.WithLabelValues(f.ID(), "inbox_full").Inc()
	}
}

func (f *CandleFeed) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return f.base.Write(websocket.TextMessage, []byte("ping"))
}
