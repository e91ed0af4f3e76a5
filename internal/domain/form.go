package domain

// OrderType distinguishes market and limit submissions.
type OrderType string

const (
	OrderMarket OrderType = "market"
	OrderLimit  OrderType = "limit"
)

// TPSLEntry is one take-profit/stop-loss leg attached to an order.
// Prices and percents are decimal strings while the form is being edited.
type TPSLEntry struct {
	TakeProfitPrice   string `json:"take_profit_price"`
	TakeProfitPercent string `json:"take_profit_percent"`
	StopLossPrice     string `json:"stop_loss_price"`
}

// Complete reports whether the entry has all three fields filled in.
func (e TPSLEntry) Complete() bool {
	return e.TakeProfitPrice != "" && e.TakeProfitPercent != "" && e.StopLossPrice != ""
}

// Empty reports whether the entry has no fields filled in.
func (e TPSLEntry) Empty() bool {
	return e.TakeProfitPrice == "" && e.TakeProfitPercent == "" && e.StopLossPrice == ""
}

// Leverage holds the per-leg leverage selection, one value per asset.
type Leverage struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// OrderForm is the user-editable order state. Size and LimitPx stay decimal
// strings until submission so partial input ("12.", ".5") survives editing;
// they are only coerced to numbers by the request builder.
type OrderForm struct {
	Type        OrderType   `json:"type"`
	Size        string      `json:"size"`
	LimitPx     string      `json:"limit_px"`
	SliderPct   float64     `json:"slider_pct"`
	Leverage    Leverage    `json:"leverage"`
	SlippagePct string      `json:"slippage_pct"`
	TPSL        []TPSLEntry `json:"tpsl"`
}

// DefaultSlippagePct is the market-order slippage tolerance applied until the
// user changes it.
const DefaultSlippagePct = "8"

// NewOrderForm returns a form in its post-reset state: market order, empty
// size/price, slider at zero and a single blank TP/SL row.
func NewOrderForm() OrderForm {
	return OrderForm{
		Type:        OrderMarket,
		SlippagePct: DefaultSlippagePct,
		Leverage:    Leverage{First: 1, Second: 1},
		TPSL:        []TPSLEntry{{}},
	}
}

// Reset clears size, price and slider and collapses the TP/SL legs back to a
// single empty row. Leverage and slippage selections survive a reset.
func (f *OrderForm) Reset() {
	f.Size = ""
	f.LimitPx = ""
	f.SliderPct = 0
	f.TPSL = []TPSLEntry{{}}
}
