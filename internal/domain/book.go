package domain

// BookDepth bounds each synthetic ladder to the top N levels.
const BookDepth = 10

// RawLevel is one price level of an exchange level-2 snapshot.
type RawLevel struct {
	Px float64 `json:"px"`
	Sz float64 `json:"sz"`
}

// RawBook is a full level-2 snapshot for a single asset. Bids are ordered
// best (highest) first, asks best (lowest) first, as delivered by the feed.
type RawBook struct {
	Symbol string     `json:"symbol"`
	Bids   []RawLevel `json:"bids"`
	Asks   []RawLevel `json:"asks"`
}

// BookLevel is one synthetic ladder entry. SzUSD is px*sz for the level and
// CumUSD the running total from the best price outward.
type BookLevel struct {
	Px     float64 `json:"px"`
	Sz     float64 `json:"sz"`
	SzUSD  float64 `json:"sz_usd"`
	CumUSD float64 `json:"cum_usd"`
}

// SyntheticBook is the displayed bid/ask ladder for the pair. Which raw ladder
// feeds which side depends on the user's orientation; both sides are rebuilt in
// full from the latest raw snapshots on every update.
type SyntheticBook struct {
	BuySide  []BookLevel `json:"buy_side"`
	SellSide []BookLevel `json:"sell_side"`
}

// Spread returns the absolute gap between the best sell and best buy level and
// that gap as a percentage of the best sell price. ok is false while either
// side is empty.
func (b SyntheticBook) Spread() (abs, pct float64, ok bool) {
	if len(b.BuySide) == 0 || len(b.SellSide) == 0 {
		return 0, 0, false
	}
	bestBuy := b.BuySide[0].Px
	bestSell := b.SellSide[0].Px
	if bestSell == 0 {
		return 0, 0, false
	}
	abs = bestSell - bestBuy
	pct = abs / bestSell * 100
	return abs, pct, true
}

// Orientation selects which asset the user is buying; it decides how the two
// raw books map onto the synthetic buy/sell sides.
type Orientation int

const (
	// BuyFirst: buying the first asset, selling the second.
	BuyFirst Orientation = iota
	// SellFirst: selling the first asset, buying the second.
	SellFirst
)

func (o Orientation) String() string {
	if o == SellFirst {
		return "sell"
	}
	return "buy"
}

// SynthesizeLadder converts one raw ladder into a depth-limited synthetic side
// with per-level and cumulative USD sizes.
func SynthesizeLadder(levels []RawLevel) []BookLevel {
	n := len(levels)
	if n > BookDepth {
		n = BookDepth
	}
	out := make([]BookLevel, 0, n)
	cum := 0.0
	for _, lv := range levels[:n] {
		usd := lv.Px * lv.Sz
		cum += usd
		out = append(out, BookLevel{Px: lv.Px, Sz: lv.Sz, SzUSD: usd, CumUSD: cum})
	}
	return out
}
