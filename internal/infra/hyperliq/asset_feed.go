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

// AssetFeed subscribes to the price-context and level-2 book channels for one
// asset and forwards normalized events to the engine inbox.
type AssetFeed struct {
	base  *infra.FeedWorker
	url   string
	coin  string
	inbox chan<- event.Event
	seq   *uint64
}

// NewAssetFeed factory.
func NewAssetFeed(url, coin string, inbox chan<- event.Event, seq *uint64) *AssetFeed {
	f := &AssetFeed{
		url:   url,
		coin:  coin,
		inbox: inbox,
		seq:   seq,
	}
	f.base = infra.NewFeedWorker(f)
	return f
}

func (f *AssetFeed) ID() string     { return "ASSET_" + f.coin }
func (f *AssetFeed) GetURL() string { return f.url }

func (f *AssetFeed) Connect(ctx context.Context) error {
	f.base.Start(ctx)
	return nil
}

func (f *AssetFeed) Disconnect() {
	f.base.Stop()
}

func (f *AssetFeed) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	for _, subType := range []string{channelAssetCtx, channelL2Book} {
		req := subscribeRequest{
			Method:       "subscribe",
			Subscription: subscriptionArg{Type: subType, Coin: f.coin},
		}
		b, _ := json.Marshal(req)
		if err := f.base.Write(websocket.TextMessage, b); err != nil {
			return err
		}
	}
	return nil
}

func (f *AssetFeed) OnMessage(ctx context.Context, msg []byte) {
	var env feedEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		infra.FeedDropped.WithLabelValues(f.ID(), "parse").Inc()
		return
	}

	switch env.Channel {
	case channelAssetCtx:
		f.onAssetCtx(env.Data)
	case channelL2Book:
		f.onL2Book(env.Data)
	default:
		// Subscription acks and unknown channels are ignored.
	}
}

func (f *AssetFeed) onAssetCtx(data json.RawMessage) {
	var d assetCtxData
	if err := json.Unmarshal(data, &d); err != nil {
		infra.FeedDropped.WithLabelValues(f.ID(), "parse").Inc()
		return
	}
	if d.Coin != f.coin {
		infra.FeedDropped.WithLabelValues(f.ID(), "symbol").Inc()
		return
	}
	infra.FeedMessages.WithLabelValues(f.ID(), channelAssetCtx).Inc()

	ev := event.AcquireQuoteEvent()
	ev.Seq = quant.NextSeq(f.seq)
	ev.Ts = time.Now().UnixMilli()
	ev.Quote = normalizeQuote(d, ev.Ts)

	select {
	case f.inbox <- ev:
	default:
		event.ReleaseQuoteEvent(ev)
		infra.FeedDropped.WithLabelValues(f.ID(), "inbox_full").Inc()
	}
}

func (f *AssetFeed) onL2Book(data json.RawMessage) {
	var d l2BookData
	if err := json.Unmarshal(data, &d); err != nil {
		infra.FeedDropped.WithLabelValues(f.ID(), "parse").Inc()
		return
	}
	if d.Coin != f.coin {
		infra.FeedDropped.WithLabelValues(f.ID(), "symbol").Inc()
		return
	}
	if len(d.Levels) < 2 {
		infra.FeedDropped.WithLabelValues(f.ID(), "shape").Inc()
		return
	}
	infra.FeedMessages.WithLabelValues(f.ID(), channelL2Book).Inc()

	ev := event.AcquireBookEvent()
	ev.Seq = quant.NextSeq(f.seq)
	ev.Ts = time.Now().UnixMilli()
	ev.Book.Symbol = d.Coin
	ev.Book.Bids = appendLadder(ev.Book.Bids[:0], d.Levels[0])
	ev.Book.Asks = appendLadder(ev.Book.Asks[:0], d.Levels[1])

	select {
	case f.inbox <- ev:
	default:
		event.ReleaseBookEvent(ev)
		infra.FeedDropped.WithLabelValues(f.ID(), "inbox_full").Inc()
	}
}

func (f *AssetFeed) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return f.base.Write(websocket.TextMessage, []byte(`{"method":"ping"}`))
}
