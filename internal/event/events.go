package event

import (
	"github.com/vedant-shah/pair/internal/domain"
)

// Type defines the type of event.
type Type uint16

const (
	EvQuote Type = iota + 1
	EvBook
	EvCandle
	EvOrient
)

// Event is the interface for all synthesizer inbox events.
type Event interface {
	GetSeq() uint64
	GetTs() int64
	GetType() Type
}

// BaseEvent contains common fields for all events.
// Ts is unix milliseconds at receive time.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64 { return e.Seq }
func (e BaseEvent) GetTs() int64   { return e.Ts }

// QuoteEvent carries one normalized per-asset quote from a feed worker.
type QuoteEvent struct {
	BaseEvent
	Quote domain.AssetQuote `json:"quote"`
}

func (e QuoteEvent) GetType() Type { return EvQuote }

// BookEvent carries one raw level-2 snapshot for a single asset.
type BookEvent struct {
	BaseEvent
	Book domain.RawBook `json:"book"`
}

func (e BookEvent) GetType() Type { return EvBook }

// CandleEvent carries one live candle for the active pair/interval.
type CandleEvent struct {
	BaseEvent
	Pair     string        `json:"pair"`
	Interval string        `json:"interval"`
	Candle   domain.Candle `json:"candle"`
}

func (e CandleEvent) GetType() Type { return EvCandle }

// OrientEvent flips the synthetic book orientation. It enters through the
// same inbox as feed events so the flip is ordered against book updates.
type OrientEvent struct {
	BaseEvent
	Orientation domain.Orientation `json:"orientation"`
}

func (e OrientEvent) GetType() Type { return EvOrient }
