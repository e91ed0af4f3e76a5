package event

import (
	"sync"

	"github.com/vedant-shah/pair/internal/domain"
)

// Pools for hotpath events. Quote events arrive on every feed tick for both
// assets, so they are pooled to keep the read loops allocation-free.
var quotePool = sync.Pool{
	New: func() any { return &QuoteEvent{} },
}

var bookPool = sync.Pool{
	New: func() any { return &BookEvent{} },
}

// AcquireQuoteEvent returns a zeroed QuoteEvent from the pool.
func AcquireQuoteEvent() *QuoteEvent {
	return quotePool.Get().(*QuoteEvent)
}

// ReleaseQuoteEvent resets and returns the event to the pool.
func ReleaseQuoteEvent(ev *QuoteEvent) {
	ev.BaseEvent = BaseEvent{}
	ev.Quote = domain.AssetQuote{}
	quotePool.Put(ev)
}

// AcquireBookEvent returns a BookEvent from the pool. The Book's level slices
// keep their capacity across reuse.
func AcquireBookEvent() *BookEvent {
	ev := bookPool.Get().(*BookEvent)
	return ev
}

// ReleaseBookEvent resets and returns the event to the pool.
func ReleaseBookEvent(ev *BookEvent) {
	ev.BaseEvent = BaseEvent{}
	ev.Book.Symbol = ""
	ev.Book.Bids = ev.Book.Bids[:0]
	ev.Book.Asks = ev.Book.Asks[:0]
	bookPool.Put(ev)
}

// Warmup pre-populates the pools so the first feed burst does not allocate.
func Warmup() {
	const n = 64
	quotes := make([]*QuoteEvent, 0, n)
	books := make([]*BookEvent, 0, n)
	for i := 0; i < n; i++ {
		quotes = append(quotes, AcquireQuoteEvent())
		books = append(books, AcquireBookEvent())
	}
	for i := 0; i < n; i++ {
		ReleaseQuoteEvent(quotes[i])
		ReleaseBookEvent(books[i])
	}
}
