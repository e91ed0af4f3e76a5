// Package hyperliq implements the feed handlers and HTTP clients for the
// exchange and candle-service wire protocols.
package hyperliq

import (
	"encoding/json"
	"time"

	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/pkg/quant"
)

const (
	channelAssetCtx = "activeAssetCtx"
	channelL2Book   = "l2Book"

	// clearSentinel resets any previous subscription on the candle stream
	// before a new pair subscription is sent.
	clearSentinel = "clear"

	httpTimeout = 15 * time.Second
)

// subscribeRequest Structure
type subscribeRequest struct {
	Method       string          `json:"method"`
	Subscription subscriptionArg `json:"subscription"`
}

type subscriptionArg struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
}

// feedEnvelope is the outer shape of every exchange feed message.
type feedEnvelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// assetCtxData Structure (activeAssetCtx channel)
type assetCtxData struct {
	Coin string   `json:"coin"`
	Ctx  assetCtx `json:"ctx"`
}

type assetCtx struct {
	MarkPx    string `json:"markPx"`
	OraclePx  string `json:"oraclePx"`
	PrevDayPx string `json:"prevDayPx"`
	Funding   string `json:"funding"`
	DayNtlVlm string `json:"dayNtlVlm"`
}

// l2BookData Structure (l2Book channel). Levels[0] is the bid ladder best
// first, Levels[1] the ask ladder best first.
type l2BookData struct {
	Coin   string        `json:"coin"`
	Levels [][]wireLevel `json:"levels"`
}

type wireLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
}

// candleSubscription is the array element sent on the candle stream after the
// clear sentinel.
type candleSubscription struct {
	Index    int    `json:"index"`
	Pair     string `json:"pair"`
	Interval string `json:"interval"`
}

// liveCandleSlot wraps one live candle tuple, keyed by subscription index in
// the outer message object.
type liveCandleSlot struct {
	Data []any `json:"data"`
}

// normalizeQuote converts an asset-context message into the canonical quote.
// Malformed numeric fields coerce to NaN and are guarded downstream.
func normalizeQuote(d assetCtxData, recvUnixMs int64) domain.AssetQuote {
	return domain.AssetQuote{
		Symbol:     d.Coin,
		Mark:       quant.Num(d.Ctx.MarkPx),
		Oracle:     quant.Num(d.Ctx.OraclePx),
		PrevDay:    quant.Num(d.Ctx.PrevDayPx),
		Funding:    quant.Num(d.Ctx.Funding),
		DayVolume:  quant.Num(d.Ctx.DayNtlVlm),
		RecvUnixMs: recvUnixMs,
	}
}

// appendLadder converts one wire ladder into dst, reusing its capacity.
func appendLadder(dst []domain.RawLevel, src []wireLevel) []domain.RawLevel {
	for _, lv := range src {
		dst = append(dst, domain.RawLevel{Px: quant.Num(lv.Px), Sz: quant.Num(lv.Sz)})
	}
	return dst
}

// parseCandleTuple converts one positional [ts, o, h, l, c, v] array into a
// candle. The timestamp cell is either epoch milliseconds or an ISO string;
// candle times are stored in unix seconds.
func parseCandleTuple(cells []any) (domain.Candle, bool) {
	if len(cells) < 6 {
		return domain.Candle{}, false
	}

	var sec int64
	if s, ok := cells[0].(string); ok {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return domain.Candle{}, false
		}
		sec = t.Unix()
	} else {
		ms := quant.Coerce(cells[0])
		if !quant.Finite(ms) || ms <= 0 {
			return domain.Candle{}, false
		}
		sec = int64(ms) / 1000
	}

	return domain.Candle{
		Time:   sec,
		Open:   quant.Coerce(cells[1]),
		High:   quant.Coerce(cells[2]),
		Low:    quant.Coerce(cells[3]),
		Close:  quant.Coerce(cells[4]),
		Volume: quant.Coerce(cells[5]),
	}, true
}
