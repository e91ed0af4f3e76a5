package event

import (
	"testing"

	"github.com/vedant-shah/pair/internal/domain"
)

func TestQuotePool(t *testing.T) {
	ev := AcquireQuoteEvent()
	ev.Quote = domain.AssetQuote{Symbol: "BTC", Mark: 60000}

	if ev.Quote.Symbol != "BTC" {
		t.Error("Symbol not set")
	}

	ReleaseQuoteEvent(ev)

	ev2 := AcquireQuoteEvent()
	if ev2.Quote.Symbol != "" {
		t.Error("Event should be reset after release")
	}
	ReleaseQuoteEvent(ev2)
}

func TestBookPool_KeepsCapacity(t *testing.T) {
	ev := AcquireBookEvent()
	ev.Book.Symbol = "SOL"
	ev.Book.Bids = append(ev.Book.Bids, domain.RawLevel{Px: 150, Sz: 1})
	ReleaseBookEvent(ev)

	ev2 := AcquireBookEvent()
	if ev2.Book.Symbol != "" || len(ev2.Book.Bids) != 0 {
		t.Error("Book should be reset after release")
	}
	ReleaseBookEvent(ev2)
}

// BenchmarkWithoutPool measures allocation without pool
func BenchmarkWithoutPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := &QuoteEvent{Quote: domain.AssetQuote{Symbol: "BTC", Mark: 60000}}
		_ = ev
	}
}

// BenchmarkWithPool measures allocation with pool
func BenchmarkWithPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := AcquireQuoteEvent()
		ev.Quote.Symbol = "BTC"
		ev.Quote.Mark = 60000
		ReleaseQuoteEvent(ev)
	}
}
