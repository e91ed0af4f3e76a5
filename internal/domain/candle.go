package domain

// Candle is one OHLCV bucket of the synthetic pair series.
// Time is unix seconds, unique and strictly increasing within a series.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// IsUp reports whether the candle closed above its open (green candle).
func (c Candle) IsUp() bool {
	return c.Close > c.Open
}
