package order

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vedant-shah/pair/internal/domain"
)

func newTestReconciler() *SizingReconciler {
	// available=1000 USDC, max leverage 50x/20x → defaults 25x/10x.
	return NewSizingReconciler(decimal.NewFromInt(1000), domain.Leverage{First: 50, Second: 20})
}

func TestDefaultLeverage(t *testing.T) {
	tests := []struct {
		max, want int
	}{
		{50, 25},
		{20, 10},
		{3, 1},
		{1, 1},
		{0, 1},
	}
	for _, tt := range tests {
		if got := DefaultLeverage(tt.max); got != tt.want {
			t.Errorf("DefaultLeverage(%d) = %d, want %d", tt.max, got, tt.want)
		}
	}
}

func TestHarmonicFactor(t *testing.T) {
	// (25*10)/(25+10) = 250/35 ≈ 7.142857
	f, _ := HarmonicFactor(25, 10).Float64()
	if math.Abs(f-250.0/35.0) > 1e-9 {
		t.Errorf("HarmonicFactor(25,10) = %v", f)
	}

	if !HarmonicFactor(0, 10).IsZero() {
		t.Error("invalid leverage should yield zero factor")
	}
}

func TestSizingReconciler_Defaults(t *testing.T) {
	r := newTestReconciler()
	form := r.Form()

	if form.Leverage.First != 25 || form.Leverage.Second != 10 {
		t.Errorf("default leverage = %+v, want 25/10", form.Leverage)
	}
	if form.SlippagePct != domain.DefaultSlippagePct {
		t.Errorf("slippage = %q", form.SlippagePct)
	}
	if len(form.TPSL) != 1 || !form.TPSL[0].Empty() {
		t.Errorf("TPSL = %+v, want one empty row", form.TPSL)
	}
}

func TestSizingReconciler_SliderDerivesSize(t *testing.T) {
	r := newTestReconciler()

	r.SetSlider(50)

	// 0.5 * 1000 * 250/35 = 3571.428... → rounded to 2 decimals.
	got := r.Form().Size
	want := decimal.NewFromInt(500).Mul(HarmonicFactor(25, 10)).Round(2).String()
	if got != want {
		t.Errorf("Size = %q, want %q", got, want)
	}
}

func TestSizingReconciler_RoundTrip(t *testing.T) {
	r := newTestReconciler()
	r.ManualWindow = 0 // Keep forward derivation live for the round trip

	for _, s := range []float64{10, 25, 50, 87.5, 100} {
		r.SetSlider(s)
		size := r.Form().Size

		r.SetSize(size)
		got := r.Form().SliderPct
		if math.Abs(got-s) > 0.01 {
			t.Errorf("round trip slider %v -> size %q -> slider %v", s, size, got)
		}
	}
}

func TestSizingReconciler_ManualEditSuppressesForwardDerivation(t *testing.T) {
	r := newTestReconciler()
	base := time.Now()
	r.now = func() time.Time { return base }

	r.SetSize("1234.5")
	sliderAfterEdit := r.Form().SliderPct

	// Inside the manual window a slider change must not overwrite the typed
	// size.
	base = base.Add(500 * time.Millisecond)
	r.SetSlider(10)
	if got := r.Form().Size; got != "1234.5" {
		t.Errorf("Size = %q, forward derivation should be suppressed", got)
	}
	if r.Form().SliderPct == sliderAfterEdit {
		t.Error("slider change itself must still apply")
	}

	// After the window expires, forward derivation resumes.
	base = base.Add(time.Second)
	r.SetSlider(10)
	want := decimal.NewFromInt(100).Mul(HarmonicFactor(25, 10)).Round(2).String()
	if got := r.Form().Size; got != want {
		t.Errorf("Size = %q, want %q after window expiry", got, want)
	}
}

func TestSizingReconciler_PartialInputKeepsSlider(t *testing.T) {
	r := newTestReconciler()
	r.SetSlider(40)
	slider := r.Form().SliderPct

	r.SetSize("12.")

	form := r.Form()
	if form.Size != "12." {
		t.Errorf("Size = %q, partial input must survive verbatim", form.Size)
	}
	if form.SliderPct != slider {
		t.Errorf("slider = %v, must not move on unparseable input", form.SliderPct)
	}
}

func TestSizingReconciler_SliderClamped(t *testing.T) {
	r := newTestReconciler()
	r.ManualWindow = 0

	// A size far above the derivable maximum clamps the slider at 100.
	r.SetSize("9999999")
	if got := r.Form().SliderPct; got != 100 {
		t.Errorf("slider = %v, want clamp at 100", got)
	}

	r.SetSlider(-5)
	if got := r.Form().SliderPct; got != 0 {
		t.Errorf("slider = %v, want clamp at 0", got)
	}
}

func TestSizingReconciler_LeverageClamped(t *testing.T) {
	r := newTestReconciler()

	r.SetLeverage(100, 0)
	form := r.Form()
	if form.Leverage.First != 50 {
		t.Errorf("first leverage = %d, want clamp at max 50", form.Leverage.First)
	}
	if form.Leverage.Second != 1 {
		t.Errorf("second leverage = %d, want floor 1", form.Leverage.Second)
	}
}

func TestSizingReconciler_TPSLRows(t *testing.T) {
	r := newTestReconciler()

	r.AddTPSLRow()
	r.SetTPSLRow(0, domain.TPSLEntry{TakeProfitPrice: "410", TakeProfitPercent: "60", StopLossPrice: "390"})
	if got := r.Form().TPSL; len(got) != 2 || !got[0].Complete() {
		t.Errorf("TPSL = %+v", got)
	}

	r.RemoveTPSLRow(1)
	r.RemoveTPSLRow(0) // Last row must survive
	if got := r.Form().TPSL; len(got) != 1 {
		t.Errorf("TPSL rows = %d, want 1", len(got))
	}
}

func TestSizingReconciler_ResetKeepsLeverageAndSlippage(t *testing.T) {
	r := newTestReconciler()
	r.SetSlider(50)
	r.SetSlippage("2")
	r.SetLimitPx("405.5")

	r.Reset()

	form := r.Form()
	if form.Size != "" || form.LimitPx != "" || form.SliderPct != 0 {
		t.Errorf("form not cleared: %+v", form)
	}
	if form.Leverage.First != 25 || form.SlippagePct != "2" {
		t.Errorf("leverage/slippage must survive reset: %+v", form)
	}
	if len(form.TPSL) != 1 || !form.TPSL[0].Empty() {
		t.Errorf("TPSL = %+v, want one empty row", form.TPSL)
	}
}
