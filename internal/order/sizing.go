// Package order implements order form state: the sizing reconciler that keeps
// slider, notional size and leverage consistent, and the request builder and
// client that validate and submit orders to the execution service.
package order

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vedant-shah/pair/internal/domain"
)

var (
	oneHundred = decimal.NewFromInt(100)
)

// DefaultLeverage is the initial per-asset leverage: half the exchange
// maximum, floored, never below 1.
func DefaultLeverage(max int) int {
	l := max / 2
	if l < 1 {
		l = 1
	}
	return l
}

// HarmonicFactor is the combined effective leverage of two offsetting legs
// sharing one margin pool: (L1*L2)/(L1+L2).
func HarmonicFactor(l1, l2 int) decimal.Decimal {
	if l1 < 1 || l2 < 1 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(int64(l1) * int64(l2))
	den := decimal.NewFromInt(int64(l1) + int64(l2))
	return num.Div(den)
}

// SizingReconciler keeps the three linked order-form quantities consistent:
//
//	size = sliderPct/100 * availableToTrade * (L1*L2)/(L1+L2)
//
// Slider and leverage changes derive size forward; typing into the size field
// inverts the formula to derive the slider and suppresses forward derivation
// for a manual-edit window, so the two directions never fight over one tick.
type SizingReconciler struct {
	mu        sync.Mutex
	form      domain.OrderForm
	available decimal.Decimal
	maxLev    domain.Leverage
	editedAt  time.Time

	// ManualWindow is how long forward derivation stays suppressed after a
	// manual size edit. Overridable in tests.
	ManualWindow time.Duration

	now func() time.Time
}

// NewSizingReconciler creates a reconciler. available is the USDC margin
// balance the sizing formula draws on; maxLev the per-asset exchange maxima.
func NewSizingReconciler(available decimal.Decimal, maxLev domain.Leverage) *SizingReconciler {
	form := domain.NewOrderForm()
	form.Leverage = domain.Leverage{
		First:  DefaultLeverage(maxLev.First),
		Second: DefaultLeverage(maxLev.Second),
	}
	return &SizingReconciler{
		form:         form,
		available:    available,
		maxLev:       maxLev,
		ManualWindow: time.Second,
		now:          time.Now,
	}
}

// SetSlider applies a slider change (clamped to [0,100]) and derives size,
// unless a manual size edit is still in flight.
func (r *SizingReconciler) SetSlider(pct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.form.SliderPct = clampPct(pct)
	r.deriveSizeLocked()
}

// SetLeverage applies a leverage change, clamped to [1, max] per asset, and
// derives size unless a manual size edit is in flight.
func (r *SizingReconciler) SetLeverage(first, second int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.form.Leverage.First = clampLeverage(first, r.maxLev.First)
	r.form.Leverage.Second = clampLeverage(second, r.maxLev.Second)
	r.deriveSizeLocked()
}

// SetSize records a manual size edit. The slider is re-derived by inverting
// the sizing formula and forward derivation is suppressed for the manual
// window. The raw string is kept verbatim so partial input ("12.") survives.
func (r *SizingReconciler) SetSize(size string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.form.Size = size
	r.editedAt = r.now()

	d, err := decimal.NewFromString(size)
	if err != nil {
		return // Partial input: leave the slider where it is
	}

	factor := HarmonicFactor(r.form.Leverage.First, r.form.Leverage.Second)
	maxNotional := r.available.Mul(factor)
	if maxNotional.IsZero() {
		r.form.SliderPct = 0
		return
	}

	pct, _ := d.Mul(oneHundred).Div(maxNotional).Float64()
	r.form.SliderPct = clampPct(pct)
}

// SetOrderType switches between market and limit.
func (r *SizingReconciler) SetOrderType(t domain.OrderType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.form.Type = t
}

// SetLimitPx records the limit price (kept as a string while editing).
func (r *SizingReconciler) SetLimitPx(px string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.form.LimitPx = px
}

// SetSlippage records the market-order slippage tolerance percent.
func (r *SizingReconciler) SetSlippage(pct string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.form.SlippagePct = pct
}

// AddTPSLRow appends an empty take-profit/stop-loss row.
func (r *SizingReconciler) AddTPSLRow() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.form.TPSL = append(r.form.TPSL, domain.TPSLEntry{})
}

// SetTPSLRow replaces the row at index i. Out-of-range indexes are ignored.
func (r *SizingReconciler) SetTPSLRow(i int, e domain.TPSLEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.form.TPSL) {
		return
	}
	r.form.TPSL[i] = e
}

// RemoveTPSLRow deletes the row at index i, always keeping at least one row.
func (r *SizingReconciler) RemoveTPSLRow(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.form.TPSL) || len(r.form.TPSL) == 1 {
		return
	}
	r.form.TPSL = append(r.form.TPSL[:i], r.form.TPSL[i+1:]...)
}

// SetAvailable updates the margin balance and re-derives size.
func (r *SizingReconciler) SetAvailable(available decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = available
	r.deriveSizeLocked()
}

// Form returns a copy of the current form state.
func (r *SizingReconciler) Form() domain.OrderForm {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.form
	f.TPSL = append([]domain.TPSLEntry(nil), r.form.TPSL...)
	return f
}

// MaxLeverage returns the per-asset leverage caps.
func (r *SizingReconciler) MaxLeverage() domain.Leverage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxLev
}

// Reset clears size, price, slider and TP/SL rows after a successful
// submission. Leverage and slippage survive.
func (r *SizingReconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.form.Reset()
}

// deriveSizeLocked applies the forward formula unless a manual size edit is
// still inside its window.
func (r *SizingReconciler) deriveSizeLocked() {
	if r.now().Sub(r.editedAt) < r.ManualWindow {
		return
	}

	factor := HarmonicFactor(r.form.Leverage.First, r.form.Leverage.Second)
	size := decimal.NewFromFloat(r.form.SliderPct).
		Div(oneHundred).
		Mul(r.available).
		Mul(factor)
	r.form.Size = size.Round(2).String()
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func clampLeverage(l, max int) int {
	if l < 1 {
		return 1
	}
	if max > 0 && l > max {
		return max
	}
	return l
}
