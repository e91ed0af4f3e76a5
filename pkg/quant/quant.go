package quant

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Interval identifies a candle aggregation period.
type Interval string

const (
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

// intervalMillis maps each supported interval to its duration in milliseconds.
// The month entry is the fixed 30-day window the candle service expects, not a
// calendar month.
var intervalMillis = map[Interval]int64{
	Interval5m:  5 * 60 * 1000,
	Interval15m: 15 * 60 * 1000,
	Interval1h:  60 * 60 * 1000,
	Interval4h:  4 * 60 * 60 * 1000,
	Interval1d:  24 * 60 * 60 * 1000,
	Interval1w:  7 * 24 * 60 * 60 * 1000,
	Interval1M:  30 * 24 * 60 * 60 * 1000,
}

// Intervals returns the supported interval set in display order.
func Intervals() []Interval {
	return []Interval{Interval5m, Interval15m, Interval1h, Interval4h, Interval1d, Interval1w, Interval1M}
}

// Valid reports whether the interval is one of the supported set.
func (iv Interval) Valid() bool {
	_, ok := intervalMillis[iv]
	return ok
}

// Millis returns the interval duration in milliseconds, or 0 for an unknown interval.
func (iv Interval) Millis() int64 {
	return intervalMillis[iv]
}

// Duration returns the interval as a time.Duration.
func (iv Interval) Duration() time.Duration {
	return time.Duration(intervalMillis[iv]) * time.Millisecond
}

// AlignMillis floors a millisecond timestamp to the interval boundary.
// Used to compute a stable end timestamp for bulk candle loads.
func (iv Interval) AlignMillis(tsMillis int64) int64 {
	m := intervalMillis[iv]
	if m == 0 {
		return tsMillis
	}
	return (tsMillis / m) * m
}

// Num coerces a feed string into a float64 with JavaScript Number() semantics:
// the empty string is zero, anything unparseable is NaN. Feed fields arrive as
// decimal strings and malformed values must flow through as NaN rather than
// abort the message.
func Num(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Coerce applies Num semantics to a decoded JSON value. Candle tuples arrive as
// positional arrays whose cells may be numbers or numeric strings.
func Coerce(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case string:
		return Num(x)
	case json.Number:
		return Num(x.String())
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// Finite reports whether f is neither NaN nor an infinity.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}
