package domain

import "github.com/vedant-shah/pair/pkg/quant"

// AssetQuote is the normalized per-asset snapshot from the exchange context
// feed. It is replaced wholesale on every message; there are no partial merges.
type AssetQuote struct {
	Symbol     string  `json:"symbol"`
	Mark       float64 `json:"mark"`
	Oracle     float64 `json:"oracle"`
	PrevDay    float64 `json:"prev_day"`
	Funding    float64 `json:"funding"`
	DayVolume  float64 `json:"day_volume"`
	RecvUnixMs int64   `json:"recv_unix_ms"`
}

// FlashDir marks the direction of the most recent mark-price change,
// used by consumers to flash the displayed price.
type FlashDir int

const (
	FlashNone FlashDir = iota
	FlashUp
	FlashDown
)

func (d FlashDir) String() string {
	switch d {
	case FlashUp:
		return "up"
	case FlashDown:
		return "down"
	default:
		return "none"
	}
}

// PairQuote is the derived quote for a synthetic pair: prices are ratios
// first/second, funding is the difference of the two funding rates, and day
// volume is the sum of both legs' notional volume.
type PairQuote struct {
	First  string `json:"first"`
	Second string `json:"second"`

	Mark      float64 `json:"mark"`
	Oracle    float64 `json:"oracle"`
	PrevDay   float64 `json:"prev_day"`
	Funding   float64 `json:"funding"`
	DayVolume float64 `json:"day_volume"`

	// Valid is false when a denominator was zero or a source field was not
	// finite. An invalid quote carries no usable prices and consumers must
	// treat it as "unavailable" rather than rendering Inf/NaN.
	Valid bool     `json:"valid"`
	Flash FlashDir `json:"flash"`
}

// DerivePair combines the two most recent per-asset quotes into a pair quote.
// prevMark is the mark price of the previously emitted pair quote (NaN when
// none has been emitted yet) and determines the flash direction.
func DerivePair(first, second AssetQuote, prevMark float64) PairQuote {
	pq := PairQuote{
		First:  first.Symbol,
		Second: second.Symbol,
	}

	if second.Mark == 0 || !quant.Finite(first.Mark) || !quant.Finite(second.Mark) ||
		!quant.Finite(first.Funding) || !quant.Finite(second.Funding) ||
		!quant.Finite(first.DayVolume) || !quant.Finite(second.DayVolume) {
		return pq
	}

	pq.Mark = first.Mark / second.Mark
	pq.Funding = first.Funding - second.Funding
	pq.DayVolume = first.DayVolume + second.DayVolume

	// Oracle and prev-day ratios share the zero-denominator guard but do not
	// invalidate the whole quote on their own; they degrade to zero.
	if second.Oracle != 0 && quant.Finite(first.Oracle) && quant.Finite(second.Oracle) {
		pq.Oracle = first.Oracle / second.Oracle
	}
	if second.PrevDay != 0 && quant.Finite(first.PrevDay) && quant.Finite(second.PrevDay) {
		pq.PrevDay = first.PrevDay / second.PrevDay
	}

	pq.Valid = true
	if quant.Finite(prevMark) {
		if pq.Mark >= prevMark {
			pq.Flash = FlashUp
		} else {
			pq.Flash = FlashDown
		}
	}
	return pq
}

// Change24h returns the absolute and percentage move of the pair mark price
// against the previous-day ratio. ok is false when prev-day data is missing.
func (pq PairQuote) Change24h() (abs, pct float64, ok bool) {
	if !pq.Valid || pq.PrevDay == 0 {
		return 0, 0, false
	}
	abs = pq.Mark - pq.PrevDay
	pct = abs / pq.PrevDay * 100
	return abs, pct, true
}
