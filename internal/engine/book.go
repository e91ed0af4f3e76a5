package engine

import (
	"github.com/vedant-shah/pair/internal/domain"
)

// BookSynthesizer combines the two per-asset level-2 snapshots into the
// synthetic pair ladder. Which raw ladder feeds which synthetic side follows
// the orientation: buying the first asset maps its bid ladder onto the buy
// side and the second asset's ask ladder onto the sell side; flipping the
// orientation inverts the mapping. Both sides are rebuilt in full from the
// latest snapshots on every update, never merged incrementally.
type BookSynthesizer struct {
	first  string
	second string

	rawFirst  domain.RawBook
	rawSecond domain.RawBook

	orientation domain.Orientation
}

// NewBookSynthesizer creates a synthesizer for the given pair legs.
func NewBookSynthesizer(first, second string) *BookSynthesizer {
	return &BookSynthesizer{first: first, second: second}
}

// Update stores the latest raw snapshot for its asset and returns the freshly
// rebuilt synthetic book. Snapshots for other symbols are ignored. The levels
// are copied: callers may recycle the passed book after Update returns.
func (b *BookSynthesizer) Update(book domain.RawBook) domain.SyntheticBook {
	switch book.Symbol {
	case b.first:
		b.rawFirst.Symbol = book.Symbol
		b.rawFirst.Bids = append(b.rawFirst.Bids[:0], book.Bids...)
		b.rawFirst.Asks = append(b.rawFirst.Asks[:0], book.Asks...)
	case b.second:
		b.rawSecond.Symbol = book.Symbol
		b.rawSecond.Bids = append(b.rawSecond.Bids[:0], book.Bids...)
		b.rawSecond.Asks = append(b.rawSecond.Asks[:0], book.Asks...)
	}
	return b.Current()
}

// SetOrientation flips the side mapping and returns the rebuilt book.
func (b *BookSynthesizer) SetOrientation(o domain.Orientation) domain.SyntheticBook {
	b.orientation = o
	return b.Current()
}

// Orientation returns the active side mapping.
func (b *BookSynthesizer) Orientation() domain.Orientation {
	return b.orientation
}

// Current rebuilds the synthetic book from the stored snapshots.
func (b *BookSynthesizer) Current() domain.SyntheticBook {
	if b.orientation == domain.BuyFirst {
		return domain.SyntheticBook{
			BuySide:  domain.SynthesizeLadder(b.rawFirst.Bids),
			SellSide: domain.SynthesizeLadder(b.rawSecond.Asks),
		}
	}
	return domain.SyntheticBook{
		BuySide:  domain.SynthesizeLadder(b.rawSecond.Bids),
		SellSide: domain.SynthesizeLadder(b.rawFirst.Asks),
	}
}
